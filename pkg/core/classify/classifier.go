package classify

import (
	"math"
	"strings"

	"intelligent_accountant/pkg/core/layout"
	"intelligent_accountant/pkg/core/sheet"
)

// sumEpsilon is the per-column tolerance for the total-verification check.
// One cent: financial exports round to currency precision.
const sumEpsilon = 0.01

// Confidence qualifies a Total tag. High means the row's value is exactly
// the sum of the preceding detail run; Low means it is not, which is a
// diagnostic, never a demotion.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// RowClass is the classification of one grid row.
type RowClass struct {
	Tag        RowTag
	Confidence Confidence // set only for TagTotal
}

// Classify tags every row below the header. A row is:
//
//   - Ignored when it carries no numeric value in any data column
//     (blank rows, section headings, notes);
//   - Total when its trimmed label matches a rule — unless no contiguous
//     run of Detail rows precedes it, in which case it is demoted to
//     Detail rather than silently losing its data;
//   - Detail otherwise.
//
// A Total whose value equals the sum of the immediately preceding
// contiguous Detail rows is marked high-confidence; this later validates
// computed aggregates.
func Classify(g *sheet.RawGrid, info layout.HeaderInfo, rules *RuleSet) map[int]RowClass {
	classes := make(map[int]RowClass)

	// detailRun tracks the contiguous Detail rows seen since the last
	// Total or Ignored boundary.
	var detailRun []int

	for r := info.HeaderRow + 1; r < len(g.Rows); r++ {
		values := rowValues(g, info, r)
		if !hasAny(values) {
			classes[r] = RowClass{Tag: TagIgnored}
			detailRun = nil
			continue
		}

		label := strings.TrimSpace(labelText(g, info, r))
		tag, matched := rules.Match(label)
		if matched && tag == TagTotal {
			if len(detailRun) == 0 {
				// No preceding detail group to aggregate: demote.
				classes[r] = RowClass{Tag: TagDetail}
				detailRun = append(detailRun, r)
				continue
			}
			conf := ConfidenceLow
			if sumsMatch(g, info, detailRun, values) {
				conf = ConfidenceHigh
			}
			classes[r] = RowClass{Tag: TagTotal, Confidence: conf}
			detailRun = nil
			continue
		}
		if matched && tag == TagIgnored {
			classes[r] = RowClass{Tag: TagIgnored}
			detailRun = nil
			continue
		}

		classes[r] = RowClass{Tag: TagDetail}
		detailRun = append(detailRun, r)
	}
	return classes
}

// rowValues coerces the data-column cells of row r. Missing stays nil.
func rowValues(g *sheet.RawGrid, info layout.HeaderInfo, r int) []*float64 {
	values := make([]*float64, len(info.DataColumns))
	for i, c := range info.DataColumns {
		values[i] = sheet.ParseAmount(g.CellAt(r, c))
	}
	return values
}

func hasAny(values []*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

// sumsMatch verifies the total row against the detail run. The last data
// column is checked first (in vendor-level exports the last numeric column
// is the grand total); any populated column that disagrees fails the check.
func sumsMatch(g *sheet.RawGrid, info layout.HeaderInfo, detailRun []int, totals []*float64) bool {
	checked := false
	for i := len(totals) - 1; i >= 0; i-- {
		if totals[i] == nil {
			continue
		}
		sum := 0.0
		populated := false
		for _, dr := range detailRun {
			if v := sheet.ParseAmount(g.CellAt(dr, info.DataColumns[i])); v != nil {
				sum += *v
				populated = true
			}
		}
		if !populated {
			continue
		}
		if math.Abs(sum-*totals[i]) > sumEpsilon {
			return false
		}
		checked = true
	}
	return checked
}

func labelText(g *sheet.RawGrid, info layout.HeaderInfo, r int) string {
	cell := g.CellAt(r, info.LabelColumn)
	if cell.Kind == sheet.CellText {
		return cell.Text
	}
	return ""
}
