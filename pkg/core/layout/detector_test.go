package layout

import (
	"errors"
	"testing"

	"intelligent_accountant/pkg/core/sheet"
)

func gridOf(rows ...[]string) *sheet.RawGrid {
	g := &sheet.RawGrid{SourceFile: "test.xlsx", SheetName: "Sheet1"}
	for _, row := range rows {
		cells := make([]sheet.Cell, len(row))
		for i, raw := range row {
			cells[i] = sheet.ParseCell(raw)
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

func TestDetect_SimpleStatement(t *testing.T) {
	g := gridOf(
		[]string{"Account", "Amount"},
		[]string{"Sales", "1500"},
		[]string{"Rent", "(500)"},
	)

	info, err := Detect(g)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.HeaderRow != 0 {
		t.Errorf("HeaderRow = %d, want 0", info.HeaderRow)
	}
	if info.LabelColumn != 0 {
		t.Errorf("LabelColumn = %d, want 0", info.LabelColumn)
	}
	if len(info.DataColumns) != 1 || info.DataColumns[0] != 1 {
		t.Errorf("DataColumns = %v, want [1]", info.DataColumns)
	}
}

func TestDetect_TitleAndSpacerRows(t *testing.T) {
	// Accounting exports open with a title block and a blank spacer before
	// the real header.
	g := gridOf(
		[]string{"Acme Corp"},
		[]string{"Profit and Loss"},
		[]string{""},
		[]string{"Account", "Jan", "Feb", "Total"},
		[]string{""},
		[]string{"Sales", "100", "200", "300"},
		[]string{"Rent", "50", "50", "100"},
	)

	info, err := Detect(g)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.HeaderRow != 3 {
		t.Errorf("HeaderRow = %d, want 3", info.HeaderRow)
	}
	if info.LabelColumn != 0 {
		t.Errorf("LabelColumn = %d, want 0", info.LabelColumn)
	}
	if len(info.DataColumns) != 3 {
		t.Errorf("DataColumns = %v, want 3 columns", info.DataColumns)
	}
}

func TestDetect_YearHeaders(t *testing.T) {
	// Year columns read as numbers; the header still wins while text
	// dominates the row.
	g := gridOf(
		[]string{"Account", "Description", "2024"},
		[]string{"Sales", "product revenue", "1500"},
	)

	info, err := Detect(g)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.HeaderRow != 0 {
		t.Errorf("HeaderRow = %d, want 0", info.HeaderRow)
	}
}

func TestDetect_SectionHeadingUnderHeader(t *testing.T) {
	// QuickBooks-style exports put a label-only section heading directly
	// under the header row; the numeric check must look past it.
	g := gridOf(
		[]string{"Account", "Amount"},
		[]string{"Income"},
		[]string{"Salary", "$1,000.00"},
	)

	info, err := Detect(g)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.HeaderRow != 0 {
		t.Errorf("HeaderRow = %d, want 0", info.HeaderRow)
	}
}

func TestDetect_NoHeader(t *testing.T) {
	tests := []struct {
		name string
		g    *sheet.RawGrid
	}{
		{"Empty grid", gridOf()},
		{"Only blank rows", gridOf([]string{""}, []string{"", ""})},
		{"Prose only", gridOf(
			[]string{"Notes"},
			[]string{"See accountant"},
		)},
		{"Header with no data below", gridOf(
			[]string{"Account", "Amount"},
			[]string{"Sales", "pending"},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Detect(tt.g)
			if !errors.Is(err, ErrNoHeaderFound) {
				t.Errorf("Detect = %v, want ErrNoHeaderFound", err)
			}
		})
	}
}

func TestDetect_ScanCap(t *testing.T) {
	// A header buried deeper than the scan cap is not found.
	var rows [][]string
	for i := 0; i < HeaderScanCap; i++ {
		rows = append(rows, []string{""})
	}
	rows = append(rows,
		[]string{"Account", "Amount"},
		[]string{"Sales", "100"},
	)

	_, err := Detect(gridOf(rows...))
	if !errors.Is(err, ErrNoHeaderFound) {
		t.Errorf("Detect = %v, want ErrNoHeaderFound beyond scan cap", err)
	}
}
