package analyst

import (
	"fmt"
	"strings"

	"intelligent_accountant/pkg/core/selector"
	"intelligent_accountant/pkg/core/workspace"
)

// sampleRowCap bounds how many rows of each table go into the LLM context.
const sampleRowCap = 15

// RenderDataInfo produces the schema-and-sample summary the LLM sees.
// It is the self-describing view of the workspace: table keys, column
// names, row tags, and sample values, plus the failure manifest so the
// model can tell the user about files that did not parse.
func RenderDataInfo(selections []selector.Selection, failures []workspace.LoadFailure) string {
	var b strings.Builder

	for _, sel := range selections {
		t := sel.Primary
		fmt.Fprintf(&b, "Table: %s\n", t.Key())
		fmt.Fprintf(&b, "  Columns: [%s]\n", strings.Join(t.Columns, ", "))
		fmt.Fprintf(&b, "  Rows: %d (%d populated numeric cells)\n", len(t.Rows), t.NonMissingCount())
		if len(sel.Alternates) > 0 {
			fmt.Fprintf(&b, "  Note: %d sheets share this layout; this is the most complete one.\n", len(sel.Alternates)+1)
		}

		b.WriteString("  Sample rows (label [tag]: values):\n")
		for i, row := range t.Rows {
			if i >= sampleRowCap {
				fmt.Fprintf(&b, "    ... %d more rows\n", len(t.Rows)-sampleRowCap)
				break
			}
			var vals []string
			for _, col := range t.Columns {
				if v := row.Values[col]; v != nil {
					vals = append(vals, fmt.Sprintf("%s=%.2f", col, *v))
				} else {
					vals = append(vals, col+"=<missing>")
				}
			}
			fmt.Fprintf(&b, "    %s [%s]: %s\n", row.Label, row.Tag, strings.Join(vals, ", "))
		}
		b.WriteString(strings.Repeat("-", 30) + "\n")
	}

	if len(failures) > 0 {
		b.WriteString("Files/sheets that could not be parsed:\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}
	if b.Len() == 0 {
		return "No tables are loaded."
	}
	return b.String()
}
