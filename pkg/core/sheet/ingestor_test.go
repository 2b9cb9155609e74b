package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for sheetName, sheetRows := range rows {
		if first {
			f.SetSheetName("Sheet1", sheetName)
			first = false
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				t.Fatalf("NewSheet(%s): %v", sheetName, err)
			}
		}
		for r, row := range sheetRows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "statements.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Profit and Loss": {
			{"Account", "Amount"},
			{"Sales", 1500.50},
			{"Rent", "(500)"},
		},
	})

	grids, err := ReadWorkbook(path)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(grids) != 1 {
		t.Fatalf("got %d grids, want 1", len(grids))
	}

	g := grids[0]
	if g.SheetName != "Profit and Loss" {
		t.Errorf("SheetName = %q", g.SheetName)
	}
	if len(g.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(g.Rows))
	}
	if c := g.CellAt(0, 0); c.Kind != CellText || c.Text != "Account" {
		t.Errorf("header cell = %+v", c)
	}
	if c := g.CellAt(1, 1); c.Kind != CellNumber {
		t.Errorf("numeric cell = %+v, want CellNumber", c)
	}
	if g.ModTime.IsZero() {
		t.Error("ModTime not set from file stat")
	}
}

func TestReadWorkbook_MultipleSheets(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Profit and Loss": {{"Account", "Amount"}, {"Sales", 100}},
		"Balance Sheet":   {{"Account", "Amount"}, {"Cash", 250}},
	})

	grids, err := ReadWorkbook(path)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(grids) != 2 {
		t.Fatalf("got %d grids, want 2", len(grids))
	}
}

func TestReadWorkbook_Unreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xlsx")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadWorkbook(path)
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if !errors.Is(err, ErrUnreadableFile) {
		t.Errorf("error %v does not wrap ErrUnreadableFile", err)
	}
}

func TestReadWorkbook_Missing(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, ErrUnreadableFile) {
		t.Errorf("error %v does not wrap ErrUnreadableFile", err)
	}
}
