// Package layout locates the structural skeleton of an irregular sheet:
// which row names the columns, which column holds row labels, and which
// columns carry data. Financial exports bury these under title rows, blank
// spacer rows, and merged-cell artifacts, so detection is heuristic.
package layout

import (
	"errors"
	"fmt"

	"intelligent_accountant/pkg/core/sheet"
)

// HeaderScanCap bounds the top-down header scan. Statement titles and
// notes never run deeper than this in practice.
const HeaderScanCap = 15

// ErrNoHeaderFound indicates no row looked like a column header: nothing
// with at least two text cells sitting above predominantly numeric rows.
var ErrNoHeaderFound = errors.New("no header row found")

// HeaderInfo describes a detected sheet layout. Derived, never stored;
// recomputed per grid.
type HeaderInfo struct {
	HeaderRow   int
	LabelColumn int
	DataColumns []int
}

// Detect scans the first HeaderScanCap rows for a header candidate and
// derives the label and data columns from the rows beneath it.
//
// A row is a header candidate when it has at least two non-empty text cells
// and the row immediately below carries at least one numeric-looking cell in
// the candidate's columns. The first candidate wins. The label column is
// the leftmost column whose body cells are predominantly text; data columns
// are the remaining header columns whose bodies are predominantly numeric.
func Detect(g *sheet.RawGrid) (HeaderInfo, error) {
	limit := len(g.Rows)
	if limit > HeaderScanCap {
		limit = HeaderScanCap
	}

	for r := 0; r < limit; r++ {
		cols := headerColumns(g, r)
		if len(cols) < 2 {
			continue
		}
		if !rowBelowHasNumbers(g, r, cols) {
			continue
		}

		info, err := deriveColumns(g, r, cols)
		if err != nil {
			continue
		}
		return info, nil
	}
	return HeaderInfo{}, fmt.Errorf("%w: %s", ErrNoHeaderFound, g.Key())
}

// headerColumns returns the non-empty column indices of row r, or nil when
// the row does not look like a header: fewer than two text cells, or more
// numbers than text (a data row).
func headerColumns(g *sheet.RawGrid, r int) []int {
	var cols []int
	textCount, numberCount := 0, 0
	for c := 0; c < g.Width(); c++ {
		switch g.CellAt(r, c).Kind {
		case sheet.CellText:
			cols = append(cols, c)
			textCount++
		case sheet.CellNumber:
			// Year columns ("2024") read as numbers; keep them as header
			// columns as long as text still dominates the row.
			cols = append(cols, c)
			numberCount++
		}
	}
	if textCount < 2 || numberCount > textCount {
		return nil
	}
	return cols
}

func rowBelowHasNumbers(g *sheet.RawGrid, headerRow int, cols []int) bool {
	// Skip blank spacers and label-only section headings ("Income") that
	// exports place directly under the header.
	r := headerRow + 1
	for r < len(g.Rows) && (g.RowIsBlank(r) || labelOnlyRow(g, r)) {
		r++
	}
	if r >= len(g.Rows) {
		return false
	}
	for _, c := range cols {
		if sheet.LooksNumeric(g.CellAt(r, c)) {
			return true
		}
	}
	return false
}

// labelOnlyRow reports whether row r has exactly one non-empty cell.
func labelOnlyRow(g *sheet.RawGrid, r int) bool {
	count := 0
	for c := 0; c < g.Width(); c++ {
		if g.CellAt(r, c).Kind != sheet.CellEmpty {
			count++
		}
	}
	return count == 1
}

// deriveColumns splits the header columns into one label column and the
// data columns by sampling the body below the header.
func deriveColumns(g *sheet.RawGrid, headerRow int, cols []int) (HeaderInfo, error) {
	info := HeaderInfo{HeaderRow: headerRow, LabelColumn: -1}

	for _, c := range cols {
		textCount, numberCount := 0, 0
		for r := headerRow + 1; r < len(g.Rows); r++ {
			cell := g.CellAt(r, c)
			if cell.Kind == sheet.CellEmpty {
				continue
			}
			if sheet.LooksNumeric(cell) {
				numberCount++
			} else {
				textCount++
			}
		}
		if textCount >= numberCount && textCount > 0 && info.LabelColumn == -1 {
			info.LabelColumn = c
			continue
		}
		if numberCount > 0 {
			info.DataColumns = append(info.DataColumns, c)
		}
	}

	if info.LabelColumn == -1 && len(info.DataColumns) > 1 {
		// No predominantly-text column below the header: fall back to the
		// leftmost column and treat it as the label column.
		info.LabelColumn = info.DataColumns[0]
		info.DataColumns = info.DataColumns[1:]
	}
	if info.LabelColumn == -1 || len(info.DataColumns) == 0 {
		return HeaderInfo{}, ErrNoHeaderFound
	}
	return info, nil
}
