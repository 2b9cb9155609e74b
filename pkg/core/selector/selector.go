// Package selector ranks normalized tables that describe the same logical
// statement and picks the most complete one. Accounting exports often ship
// a populated statement next to a visually identical empty template; the
// populated one must win.
package selector

import (
	"sort"

	"intelligent_accountant/pkg/core/normalize"
)

// Selection is the outcome for one header signature: the winning table
// plus the losing alternates, kept so the user can be told "3 matching
// sheets found, using the most complete one".
type Selection struct {
	Signature  string
	Primary    *normalize.NormalizedTable
	Alternates []*normalize.NormalizedTable
}

// Select groups tables by exact header signature and ranks each group.
// Tables with different signatures are never merged, even when they look
// like the same statement at different granularity; they surface as
// separate selections.
func Select(tables []*normalize.NormalizedTable) []Selection {
	groups := make(map[string][]*normalize.NormalizedTable)
	var order []string
	for _, t := range tables {
		sig := t.Signature()
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], t)
	}

	selections := make([]Selection, 0, len(order))
	for _, sig := range order {
		group := groups[sig]
		Rank(group)
		sel := Selection{Signature: sig, Primary: group[0]}
		if len(group) > 1 {
			sel.Alternates = group[1:]
		}
		selections = append(selections, sel)
	}
	return selections
}

// Rank orders a group best-first: most non-missing numeric cells, then the
// most recently modified file, then file/sheet key for determinism. Pure
// function over table metadata — no file I/O.
func Rank(group []*normalize.NormalizedTable) {
	sort.SliceStable(group, func(i, j int) bool {
		ci, cj := group[i].NonMissingCount(), group[j].NonMissingCount()
		if ci != cj {
			return ci > cj
		}
		if !group[i].ModTime.Equal(group[j].ModTime) {
			return group[i].ModTime.After(group[j].ModTime)
		}
		return group[i].Key() < group[j].Key()
	})
}
