package sheet

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile indicates the file could not be opened or parsed as a
// spreadsheet container at all. Anything less (a bad cell, an odd sheet)
// never surfaces as an error from the ingestor.
var ErrUnreadableFile = errors.New("unreadable spreadsheet file")

// SheetError carries file/sheet context for a per-sheet failure further down
// the pipeline. Sheets fail independently: one bad sheet must not abort its
// siblings.
type SheetError struct {
	File  string
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q in %q: %v", e.Sheet, e.File, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// ReadWorkbook opens an xlsx workbook and returns one RawGrid per sheet.
// Unreadable cells map to empty cells; only a broken container returns an
// error (wrapping ErrUnreadableFile).
func ReadWorkbook(path string) ([]*RawGrid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	defer f.Close()

	modTime := time.Now()
	if st, err := os.Stat(path); err == nil {
		modTime = st.ModTime()
	}

	var grids []*RawGrid
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			// A sheet that cannot be enumerated yields an empty grid
			// rather than failing the workbook.
			rows = nil
		}

		grid := &RawGrid{
			SourceFile: path,
			SheetName:  sheetName,
			ModTime:    modTime,
		}
		for _, row := range rows {
			cells := make([]Cell, len(row))
			for i, raw := range row {
				cells[i] = ParseCell(raw)
			}
			grid.Rows = append(grid.Rows, cells)
		}
		grids = append(grids, grid)
	}
	return grids, nil
}
