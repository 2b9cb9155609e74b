package normalize

import (
	"testing"

	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/layout"
	"intelligent_accountant/pkg/core/sheet"
)

func gridOf(rows ...[]string) *sheet.RawGrid {
	g := &sheet.RawGrid{SourceFile: "pnl.xlsx", SheetName: "Profit and Loss"}
	for _, row := range rows {
		cells := make([]sheet.Cell, len(row))
		for i, raw := range row {
			cells[i] = sheet.ParseCell(raw)
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

func buildTable(t *testing.T, g *sheet.RawGrid) *NormalizedTable {
	t.Helper()
	info, err := layout.Detect(g)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return Build(g, info, classify.Classify(g, info, classify.DefaultRules()))
}

func TestBuild(t *testing.T) {
	table := buildTable(t, gridOf(
		[]string{"Account", "Amount"},
		[]string{"Income", ""}, // heading, dropped
		[]string{"Salary", "$1,000.00"},
		[]string{"Consulting", "(200)"},
		[]string{"Total Income", "800"},
	))

	if table.Key() != "pnl.xlsx/Profit and Loss" {
		t.Errorf("Key() = %q", table.Key())
	}
	if table.Signature() != "Amount" {
		t.Errorf("Signature() = %q", table.Signature())
	}
	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3 (heading dropped)", len(table.Rows))
	}

	salary := table.Rows[0]
	if salary.Label != "Salary" || salary.Tag != classify.TagDetail {
		t.Errorf("first row = %+v", salary)
	}
	if v := salary.Values["Amount"]; v == nil || *v != 1000 {
		t.Errorf("Salary Amount = %v, want 1000 (coerced from $1,000.00)", v)
	}
	if v := table.Rows[1].Values["Amount"]; v == nil || *v != -200 {
		t.Errorf("Consulting Amount = %v, want -200", v)
	}

	total := table.Rows[2]
	if total.Tag != classify.TagTotal || total.Confidence != classify.ConfidenceHigh {
		t.Errorf("total row = %+v", total)
	}
}

func TestBuild_MissingStaysNil(t *testing.T) {
	table := buildTable(t, gridOf(
		[]string{"Account", "Jan", "Feb"},
		[]string{"Rent", "500", "—"},
	))

	rent := table.Rows[0]
	if v := rent.Values["Jan"]; v == nil || *v != 500 {
		t.Errorf("Jan = %v, want 500", v)
	}
	if v := rent.Values["Feb"]; v != nil {
		t.Errorf("Feb = %v, want nil (missing, not zero)", *v)
	}
	if table.NonMissingCount() != 1 {
		t.Errorf("NonMissingCount() = %d, want 1", table.NonMissingCount())
	}
}

func TestBuild_ColumnNaming(t *testing.T) {
	// Numeric year headers, an unnamed column, and duplicate header text.
	g := gridOf(
		[]string{"Account", "2024", "", "Amount", "Amount"},
		[]string{"Sales", "100", "200", "300", "400"},
		[]string{"Fees", "10", "20", "30", "40"},
	)
	info := layout.HeaderInfo{HeaderRow: 0, LabelColumn: 0, DataColumns: []int{1, 2, 3, 4}}
	table := Build(g, info, classify.Classify(g, info, classify.DefaultRules()))

	want := []string{"2024", "Column_2", "Amount", "Amount_2"}
	if len(table.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", table.Columns, want)
	}
	for i, name := range want {
		if table.Columns[i] != name {
			t.Errorf("Columns[%d] = %q, want %q", i, table.Columns[i], name)
		}
	}
	if table.LastColumn() != "Amount_2" {
		t.Errorf("LastColumn() = %q", table.LastColumn())
	}
	if v := table.Rows[0].Values["Column_2"]; v == nil || *v != 200 {
		t.Errorf("unnamed column value = %v, want 200", v)
	}
}

func TestBuild_DedupSuffixNeverCollides(t *testing.T) {
	// A real header literally named "Amount_2" sits after two "Amount"
	// columns; the generated suffix must skip past it.
	g := gridOf(
		[]string{"Account", "Amount", "Amount", "Amount_2"},
		[]string{"Sales", "1", "2", "3"},
	)
	info := layout.HeaderInfo{HeaderRow: 0, LabelColumn: 0, DataColumns: []int{1, 2, 3}}
	table := Build(g, info, classify.Classify(g, info, classify.DefaultRules()))

	seen := map[string]bool{}
	for _, name := range table.Columns {
		if seen[name] {
			t.Fatalf("duplicate column name %q in %v", name, table.Columns)
		}
		seen[name] = true
	}
	if len(table.Rows[0].Values) != 3 {
		t.Errorf("Values has %d entries, want 3: %v", len(table.Rows[0].Values), table.Columns)
	}
}

func TestDetailAndTotalRows(t *testing.T) {
	table := buildTable(t, gridOf(
		[]string{"Account", "Amount"},
		[]string{"Salary", "100"},
		[]string{"Consulting", "50"},
		[]string{"Total Income", "150"},
	))

	if n := len(table.DetailRows()); n != 2 {
		t.Errorf("DetailRows() = %d rows, want 2", n)
	}
	totals := table.TotalRows()
	if len(totals) != 1 || totals[0].Label != "Total Income" {
		t.Errorf("TotalRows() = %+v", totals)
	}
}
