package sheet

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumericPattern = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount coerces cell content into a numeric value.
// Handles the renderings accountants actually use:
//
//	"$1,234.00" → 1234.0
//	"(500)"     → -500 (parentheses = negative)
//	"—", "-", "N/A", "" → nil (missing, NOT zero)
//
// A nil return is a missing-value marker; downstream aggregation must treat
// missing distinctly from zero.
func ParseAmount(c Cell) *float64 {
	switch c.Kind {
	case CellNumber:
		v := c.Number
		return &v
	case CellEmpty:
		return nil
	}

	raw := strings.TrimSpace(c.Text)
	if raw == "" || raw == "—" || raw == "-" || raw == "–" || strings.EqualFold(raw, "n/a") {
		return nil
	}

	isNegative := strings.Contains(raw, "(") && strings.Contains(raw, ")")

	cleaned := nonNumericPattern.ReplaceAllString(raw, "")
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if isNegative && value > 0 {
		value = -value
	}
	return &value
}

// LooksNumeric reports whether a cell would coerce to a number.
func LooksNumeric(c Cell) bool {
	return ParseAmount(c) != nil
}
