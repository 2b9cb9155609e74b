// Package normalize assembles detector and classifier output into the
// long-lived table artifact the query layer consumes. A NormalizedTable is
// self-describing: column names, row tags, and confidence diagnostics
// travel with the data so generated analysis needs no extra metadata
// lookups.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/layout"
	"intelligent_accountant/pkg/core/sheet"
)

// Row is one retained statement row. Values map column name to an amount;
// a nil entry is a missing value, never zero.
type Row struct {
	Label      string
	Tag        classify.RowTag
	Confidence classify.Confidence
	Values     map[string]*float64
}

// NormalizedTable is the clean, queryable form of one sheet.
type NormalizedTable struct {
	SourceFile string
	SheetName  string
	ModTime    time.Time
	Columns    []string
	Rows       []Row
}

// Build normalizes a grid using the detected layout and row classes.
// Ignored rows are dropped; text amounts are coerced; header cells with no
// text get positional names ("Column_2"), matching what exports with
// unnamed amount columns need.
func Build(g *sheet.RawGrid, info layout.HeaderInfo, classes map[int]classify.RowClass) *NormalizedTable {
	t := &NormalizedTable{
		SourceFile: g.SourceFile,
		SheetName:  g.SheetName,
		ModTime:    g.ModTime,
		Columns:    columnNames(g, info),
	}

	for r := info.HeaderRow + 1; r < len(g.Rows); r++ {
		class, ok := classes[r]
		if !ok || class.Tag == classify.TagIgnored {
			continue
		}

		row := Row{
			Label:      labelFor(g, info, r),
			Tag:        class.Tag,
			Confidence: class.Confidence,
			Values:     make(map[string]*float64, len(info.DataColumns)),
		}
		for i, c := range info.DataColumns {
			row.Values[t.Columns[i]] = sheet.ParseAmount(g.CellAt(r, c))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Signature is the ordered column-name list, used to match equivalent
// tables across sheets and files.
func (t *NormalizedTable) Signature() string {
	return strings.Join(t.Columns, "|")
}

// Key identifies the table within a workspace.
func (t *NormalizedTable) Key() string {
	return t.SourceFile + "/" + t.SheetName
}

// NonMissingCount counts populated numeric cells, the ranking input for
// preferring filled-in statements over empty templates.
func (t *NormalizedTable) NonMissingCount() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row.Values {
			if v != nil {
				n++
			}
		}
	}
	return n
}

// DetailRows returns the detail line items in order.
func (t *NormalizedTable) DetailRows() []Row {
	var out []Row
	for _, row := range t.Rows {
		if row.Tag == classify.TagDetail {
			out = append(out, row)
		}
	}
	return out
}

// TotalRows returns the aggregate rows in order.
func (t *NormalizedTable) TotalRows() []Row {
	var out []Row
	for _, row := range t.Rows {
		if row.Tag == classify.TagTotal {
			out = append(out, row)
		}
	}
	return out
}

// LastColumn returns the rightmost data column name, or "".
func (t *NormalizedTable) LastColumn() string {
	if len(t.Columns) == 0 {
		return ""
	}
	return t.Columns[len(t.Columns)-1]
}

func columnNames(g *sheet.RawGrid, info layout.HeaderInfo) []string {
	names := make([]string, 0, len(info.DataColumns))
	seen := make(map[string]bool)
	for _, c := range info.DataColumns {
		cell := g.CellAt(info.HeaderRow, c)
		name := ""
		switch cell.Kind {
		case sheet.CellText:
			name = strings.TrimSpace(cell.Text)
		case sheet.CellNumber:
			// Year headers ("2024") arrive as numbers.
			name = fmt.Sprintf("%g", cell.Number)
		}
		if name == "" {
			name = fmt.Sprintf("Column_%d", c)
		}
		// Duplicate header text gets a numeric suffix so Values keys stay
		// unique. The suffix itself can collide with a later real header
		// ("Amount_2"), so keep counting until the name is unseen.
		if seen[name] {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !seen[name] {
					break
				}
			}
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func labelFor(g *sheet.RawGrid, info layout.HeaderInfo, r int) string {
	cell := g.CellAt(r, info.LabelColumn)
	switch cell.Kind {
	case sheet.CellText:
		return strings.TrimSpace(cell.Text)
	case sheet.CellNumber:
		return strings.TrimSpace(fmt.Sprintf("%g", cell.Number))
	}
	return ""
}
