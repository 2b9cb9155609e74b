// Package classify tags statement rows as detail lines, aggregate totals,
// or ignorable decoration, driven by an ordered list of label patterns.
// New statement formats are supported by editing the rule file, not code.
package classify

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v2"
)

// RowTag is the classification assigned to each retained row.
type RowTag string

const (
	TagDetail  RowTag = "detail"
	TagTotal   RowTag = "total"
	TagIgnored RowTag = "ignored"
)

// Rule maps a label pattern to a tag. Rules are evaluated in order; the
// first match wins.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Tag     RowTag `yaml:"tag"`

	re *regexp.Regexp
}

// RuleSet is an ordered, compiled list of rules.
type RuleSet struct {
	rules []Rule
}

// DefaultRules covers the aggregate vocabulary of P&L and balance sheet
// exports: "Total X", "Total for Y", "Net Income", "Gross Profit".
func DefaultRules() *RuleSet {
	rs, err := NewRuleSet([]Rule{
		{Pattern: `(?i)^total\s+`, Tag: TagTotal},
		{Pattern: `(?i)^total$`, Tag: TagTotal},
		{Pattern: `(?i)\btotal\s+for\b`, Tag: TagTotal},
		{Pattern: `(?i)^subtotal`, Tag: TagTotal},
		{Pattern: `(?i)^net\s+`, Tag: TagTotal},
		{Pattern: `(?i)^gross\s+profit$`, Tag: TagTotal},
		{Pattern: `(?i)^gross\s+margin$`, Tag: TagTotal},
	})
	if err != nil {
		panic(err) // defaults are compiled constants
	}
	return rs
}

// NewRuleSet compiles rules, preserving order.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bad rule pattern %q: %w", r.Pattern, err)
		}
		r.re = re
		out = append(out, r)
	}
	return &RuleSet{rules: out}, nil
}

// LoadRules reads a rule list from a YAML file:
//
//	- pattern: "(?i)^total\\s+"
//	  tag: total
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return NewRuleSet(rules)
}

// Match returns the tag of the first matching rule.
func (rs *RuleSet) Match(label string) (RowTag, bool) {
	for _, r := range rs.rules {
		if r.re.MatchString(label) {
			return r.Tag, true
		}
	}
	return "", false
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
