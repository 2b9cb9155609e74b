package analyst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"intelligent_accountant/pkg/core/classify"
	"intelligent_accountant/pkg/core/normalize"
	"intelligent_accountant/pkg/core/selector"
)

// Result is the executor's answer to a plan.
type Result struct {
	Kind   string  // "number" or "table"
	Number float64
	Rows   []normalize.Row
	Column string   // column the number came from
	Trace  []string // step-by-step account, fed to the explainer
}

// stepValue is the intermediate output of one executed step.
type stepValue struct {
	number float64
	rows   []normalize.Row
	isRows bool
}

// Execute runs a plan against the workspace selections. Missing values are
// skipped during aggregation, never treated as zero.
func Execute(plan *Plan, selections []selector.Selection) (*Result, error) {
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	table := resolveTable(plan.Table, selections)
	if table == nil {
		return nil, fmt.Errorf("no table matches %q", plan.Table)
	}

	result := &Result{
		Trace: []string{fmt.Sprintf("using table %s (signature: %s)", table.Key(), table.Signature())},
	}

	values := make([]stepValue, len(plan.Steps))
	for i, step := range plan.Steps {
		v, note, err := executeStep(step, table, values[:i])
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
		values[i] = v
		result.Trace = append(result.Trace, fmt.Sprintf("step %d: %s", i+1, note))
	}

	final := values[len(values)-1]
	if final.isRows {
		result.Kind = "table"
		result.Rows = final.rows
	} else {
		result.Kind = "number"
		result.Number = final.number
	}
	return result, nil
}

func executeStep(step Step, table *normalize.NormalizedTable, prior []stepValue) (stepValue, string, error) {
	switch step.Op {
	case "find_total":
		return findTotal(step, table)
	case "sum_section":
		return sumSection(step, table)
	case "sum_rows":
		return sumRows(step, table)
	case "lookup":
		return lookup(step, table)
	case "top_n":
		return topN(step, table)
	case "add", "subtract", "multiply", "divide":
		return arithmetic(step, prior)
	}
	return stepValue{}, "", fmt.Errorf("unknown op %q", step.Op)
}

// findTotal prefers a matching total row; when none matches it falls back
// to summing the section, mirroring how an accountant reads the sheet.
func findTotal(step Step, table *normalize.NormalizedTable) (stepValue, string, error) {
	totals := table.TotalRows()
	idx, ties := bestLabelMatch(step.Label, rowLabels(totals))
	if idx < 0 {
		v, note, err := sumSection(step, table)
		if err != nil {
			return stepValue{}, "", fmt.Errorf("no total row matches %q and section fallback failed: %w", step.Label, err)
		}
		return v, fmt.Sprintf("no total row for %q; %s", step.Label, note), nil
	}

	row := totals[idx]
	column := resolveColumn(step.Column, table)
	value := row.Values[column]
	if value == nil {
		// Empty grand-total cell: walk columns right to left.
		for i := len(table.Columns) - 1; i >= 0 && value == nil; i-- {
			column = table.Columns[i]
			value = row.Values[column]
		}
	}
	if value == nil {
		return stepValue{}, "", fmt.Errorf("total row %q has no numeric value", row.Label)
	}

	note := fmt.Sprintf("total row %q → %.2f (column %q, confidence %s)%s",
		row.Label, *value, column, row.Confidence, ambiguityNote(ties, step.Label))
	return stepValue{number: *value}, note, nil
}

// sumSection sums the contiguous detail run aggregated by the total row
// matching the label. Without any matching total the section boundary is
// unknowable, so every detail row is summed and the trace says so.
func sumSection(step Step, table *normalize.NormalizedTable) (stepValue, string, error) {
	column := resolveColumn(step.Column, table)

	var run []normalize.Row
	var matched []normalize.Row
	for _, row := range table.Rows {
		if row.Tag == classify.TagTotal {
			if labelMatches(step.Label, row.Label) {
				matched = run
				break
			}
			run = nil
			continue
		}
		run = append(run, row)
	}

	scope := "section"
	if matched == nil {
		matched = table.DetailRows()
		scope = "all detail rows (section boundary not found)"
	}
	if len(matched) == 0 {
		return stepValue{}, "", fmt.Errorf("no detail rows for section %q", step.Label)
	}

	sum, counted := 0.0, 0
	for _, row := range matched {
		if v := row.Values[column]; v != nil {
			sum += *v
			counted++
		}
	}
	if counted == 0 {
		return stepValue{}, "", fmt.Errorf("section %q has no numeric values in column %q", step.Label, column)
	}
	note := fmt.Sprintf("summed %d of %d rows in %s → %.2f (column %q)", counted, len(matched), scope, sum, column)
	return stepValue{number: sum}, note, nil
}

func sumRows(step Step, table *normalize.NormalizedTable) (stepValue, string, error) {
	column := resolveColumn(step.Column, table)
	labels := rowLabels(table.Rows)

	sum := 0.0
	var found []string
	for _, want := range step.Labels {
		idx, _ := bestLabelMatch(want, labels)
		if idx < 0 {
			continue
		}
		if v := table.Rows[idx].Values[column]; v != nil {
			sum += *v
			found = append(found, table.Rows[idx].Label)
		}
	}
	if len(found) == 0 {
		return stepValue{}, "", fmt.Errorf("none of %v found with values", step.Labels)
	}
	note := fmt.Sprintf("summed rows %s → %.2f (column %q)", strings.Join(found, ", "), sum, column)
	return stepValue{number: sum}, note, nil
}

func lookup(step Step, table *normalize.NormalizedTable) (stepValue, string, error) {
	idx, ties := bestLabelMatch(step.Label, rowLabels(table.Rows))
	if idx < 0 {
		return stepValue{}, "", fmt.Errorf("no row matches %q", step.Label)
	}
	row := table.Rows[idx]

	column := resolveColumn(step.Column, table)
	value := row.Values[column]
	for i := len(table.Columns) - 1; i >= 0 && value == nil; i-- {
		column = table.Columns[i]
		value = row.Values[column]
	}
	if value == nil {
		return stepValue{}, "", fmt.Errorf("row %q has no numeric value", row.Label)
	}
	note := fmt.Sprintf("row %q → %.2f (column %q)%s",
		row.Label, *value, column, ambiguityNote(ties, step.Label))
	return stepValue{number: *value}, note, nil
}

func topN(step Step, table *normalize.NormalizedTable) (stepValue, string, error) {
	column := resolveColumn(step.Column, table)
	n := step.N
	if n <= 0 {
		n = 5
	}

	details := table.DetailRows()
	var populated []normalize.Row
	for _, row := range details {
		if row.Values[column] != nil {
			populated = append(populated, row)
		}
	}
	if len(populated) == 0 {
		return stepValue{}, "", fmt.Errorf("no detail rows with values in column %q", column)
	}

	sort.SliceStable(populated, func(i, j int) bool {
		return *populated[i].Values[column] > *populated[j].Values[column]
	})
	if len(populated) > n {
		populated = populated[:n]
	}
	note := fmt.Sprintf("top %d detail rows by column %q", len(populated), column)
	return stepValue{rows: populated, isRows: true}, note, nil
}

func arithmetic(step Step, prior []stepValue) (stepValue, string, error) {
	left, err := numericStep(step.Left, prior)
	if err != nil {
		return stepValue{}, "", err
	}
	right, err := numericStep(step.Right, prior)
	if err != nil {
		return stepValue{}, "", err
	}

	var out float64
	switch step.Op {
	case "add":
		out = left + right
	case "subtract":
		out = left - right
	case "multiply":
		out = left * right
	case "divide":
		if right == 0 {
			return stepValue{}, "", fmt.Errorf("division by zero (step %d)", step.Right)
		}
		out = left / right
	}
	note := fmt.Sprintf("%s(step %d, step %d) → %.4f", step.Op, step.Left, step.Right, out)
	return stepValue{number: out}, note, nil
}

func numericStep(ref int, prior []stepValue) (float64, error) {
	if ref < 1 || ref > len(prior) {
		return 0, fmt.Errorf("step reference %d out of range", ref)
	}
	v := prior[ref-1]
	if v.isRows {
		return 0, fmt.Errorf("step %d produced rows, not a number", ref)
	}
	return v.number, nil
}

// resolveTable matches the plan's table reference against the selection
// primaries by key, sheet name, or signature; unresolvable references fall
// back to the first (best-ranked) table.
func resolveTable(ref string, selections []selector.Selection) *normalize.NormalizedTable {
	if len(selections) == 0 {
		return nil
	}
	if ref == "" {
		return selections[0].Primary
	}

	best, bestScore := -1, -1.0
	for i, sel := range selections {
		t := sel.Primary
		score := bestOf(
			similarity(ref, t.Key()),
			similarity(ref, t.SheetName),
			similarity(ref, t.SourceFile),
		)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < 0.3 {
		return selections[0].Primary
	}
	return selections[best].Primary
}

// resolveColumn fuzzily matches a column reference; empty or unresolvable
// references resolve to the last data column (the grand total in
// multi-column exports).
func resolveColumn(ref string, table *normalize.NormalizedTable) string {
	if ref == "" {
		return table.LastColumn()
	}
	best, bestScore := "", -1.0
	for _, col := range table.Columns {
		if s := similarity(ref, col); s > bestScore {
			best, bestScore = col, s
		}
	}
	if bestScore < 0.5 {
		return table.LastColumn()
	}
	return best
}

// bestLabelMatch finds the label closest to want, requiring either a
// substring hit or a levenshtein similarity above threshold. The second
// return is how many labels tie at the best score: duplicate row labels
// are legal in exports, and callers report the ambiguity in the trace.
func bestLabelMatch(want string, labels []string) (int, int) {
	if want == "" {
		return -1, 0
	}
	best, bestScore, ties := -1, 0.0, 0
	for i, label := range labels {
		s := similarity(want, label)
		switch {
		case s > bestScore:
			best, bestScore, ties = i, s, 1
		case best >= 0 && s == bestScore:
			ties++
		}
	}
	if bestScore < 0.55 {
		return -1, 0
	}
	return best, ties
}

func ambiguityNote(ties int, want string) string {
	if ties <= 1 {
		return ""
	}
	return fmt.Sprintf("; %d rows match %q, using the first", ties, want)
}

func labelMatches(want, label string) bool {
	return similarity(want, label) >= 0.55
}

// similarity scores two labels in [0,1]: 1.0 for case-insensitive
// containment, otherwise a normalized levenshtein ratio.
func similarity(a, b string) float64 {
	la, lb := strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return 0
	}
	if la == lb {
		return 1
	}
	if strings.Contains(lb, la) || strings.Contains(la, lb) {
		return 1
	}
	dist := levenshtein.ComputeDistance(la, lb)
	longest := len(la)
	if len(lb) > longest {
		longest = len(lb)
	}
	return 1 - float64(dist)/float64(longest)
}

func bestOf(scores ...float64) float64 {
	best := 0.0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}

func rowLabels(rows []normalize.Row) []string {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	return labels
}
