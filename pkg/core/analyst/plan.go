// Package analyst turns a natural-language question into a structured
// analysis plan, executes the plan against the workspace's normalized
// tables, and explains the outcome. The plan is the sandbox: instead of
// executing model-generated code, the model emits JSON naming operations
// from a closed set, and a deterministic executor runs them.
package analyst

import (
	"fmt"

	"intelligent_accountant/pkg/core/utils"
)

// Plan is the planner model's JSON output: one target table and a sequence
// of steps. The final step's output is the answer.
type Plan struct {
	Table string `json:"table"` // file/sheet key or statement name, matched fuzzily
	Steps []Step `json:"steps"`
}

// Step is one operation of a plan.
//
// Operations:
//
//	find_total   — locate a total row by label ("Total for Income"); value
//	               read from Column or, when empty, the last data column
//	               (the grand-total column in vendor-level exports). Falls
//	               back to sum_section when no total row matches.
//	sum_section  — sum the contiguous detail rows aggregated by the total
//	               row matching Label.
//	sum_rows     — sum the rows named in Labels.
//	lookup       — read a single row's value.
//	top_n        — N largest detail rows by Column, returned as a table.
//	add, subtract, multiply, divide — combine the numeric outputs of two
//	               earlier steps, referenced by 1-based step number.
type Step struct {
	Op     string   `json:"op"`
	Label  string   `json:"label,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Column string   `json:"column,omitempty"`
	N      int      `json:"n,omitempty"`
	Left   int      `json:"left,omitempty"`
	Right  int      `json:"right,omitempty"`
}

// DecodePlan parses the planner's response, repairing the usual LLM JSON
// damage (fences, trailing commas, unquoted keys).
func DecodePlan(raw string) (*Plan, error) {
	var plan Plan
	if err := utils.DecodeLLMJSON(raw, &plan); err != nil {
		return nil, err
	}
	if len(plan.Steps) == 0 {
		return nil, fmt.Errorf("plan has no steps")
	}
	for i, s := range plan.Steps {
		if s.Op == "" {
			return nil, fmt.Errorf("plan step %d has no op", i+1)
		}
	}
	return &plan, nil
}
