package sheet

import (
	"strings"
	"testing"
	"time"
)

const statementHTML = `<html><body>
<h1>Profit and Loss</h1>
<table>
  <tr><th>Account</th><th>Amount</th></tr>
  <tr><td>Sales</td><td>$1,500.00</td></tr>
  <tr><td>Rent</td><td>(500)</td></tr>
</table>
<table>
  <tr><th>Account</th><th>Balance</th></tr>
  <tr><td>Cash</td><td>250</td></tr>
</table>
</body></html>`

func TestReadHTMLTables(t *testing.T) {
	mod := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	grids, err := ReadHTMLTables(strings.NewReader(statementHTML), "export.html", mod)
	if err != nil {
		t.Fatalf("ReadHTMLTables: %v", err)
	}
	if len(grids) != 2 {
		t.Fatalf("got %d grids, want 2", len(grids))
	}

	g := grids[0]
	if g.SheetName != "Table 1" {
		t.Errorf("SheetName = %q, want Table 1", g.SheetName)
	}
	if !g.ModTime.Equal(mod) {
		t.Errorf("ModTime = %v, want %v", g.ModTime, mod)
	}
	if len(g.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(g.Rows))
	}
	if c := g.CellAt(1, 1); c.Kind != CellText || c.Text != "$1,500.00" {
		t.Errorf("amount cell = %+v, want raw text preserved", c)
	}
	if grids[1].SheetName != "Table 2" {
		t.Errorf("second grid name = %q", grids[1].SheetName)
	}
}

func TestReadHTMLTables_NoTables(t *testing.T) {
	grids, err := ReadHTMLTables(strings.NewReader("<html><body><p>hi</p></body></html>"), "x.html", time.Now())
	if err != nil {
		t.Fatalf("ReadHTMLTables: %v", err)
	}
	if len(grids) != 0 {
		t.Errorf("got %d grids, want 0", len(grids))
	}
}
