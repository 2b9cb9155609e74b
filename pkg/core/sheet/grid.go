// Package sheet reads spreadsheet containers into raw cell grids.
// A RawGrid is the untyped input of the extraction pipeline: rows of cells,
// each cell either text, a number, or empty. Typing beyond that (currency
// coercion, totals, headers) happens downstream.
package sheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the three raw cell states.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single raw cell value.
type Cell struct {
	Kind   CellKind
	Text   string  // set for CellText (original trimmed text)
	Number float64 // set for CellNumber
}

// ParseCell converts raw cell text into a Cell. Plain numerics become
// CellNumber; everything else non-empty stays text. Formatted amounts like
// "$1,234.00" are deliberately kept as text — coercion is the normalizer's
// job and must preserve the original rendering until then.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Number: f}
	}
	return Cell{Kind: CellText, Text: trimmed}
}

// RawGrid is one sheet's worth of raw cells, immutable once read.
type RawGrid struct {
	SourceFile string
	SheetName  string
	ModTime    time.Time
	Rows       [][]Cell
}

// Key identifies the grid within a workspace ("file.xlsx/Sheet1").
func (g *RawGrid) Key() string {
	return g.SourceFile + "/" + g.SheetName
}

// RowIsBlank reports whether every cell in row r is empty.
func (g *RawGrid) RowIsBlank(r int) bool {
	if r < 0 || r >= len(g.Rows) {
		return true
	}
	for _, c := range g.Rows[r] {
		if c.Kind != CellEmpty {
			return false
		}
	}
	return true
}

// CellAt returns the cell at (r, c), treating out-of-range coordinates as
// empty. Spreadsheet readers produce ragged rows, so callers must not index
// Rows directly.
func (g *RawGrid) CellAt(r, c int) Cell {
	if r < 0 || r >= len(g.Rows) {
		return Cell{Kind: CellEmpty}
	}
	row := g.Rows[r]
	if c < 0 || c >= len(row) {
		return Cell{Kind: CellEmpty}
	}
	return row[c]
}

// Width returns the widest row length in the grid.
func (g *RawGrid) Width() int {
	w := 0
	for _, row := range g.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}
