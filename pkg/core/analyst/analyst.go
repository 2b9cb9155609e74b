package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"intelligent_accountant/pkg/core/agent"
	"intelligent_accountant/pkg/core/prompt"
	"intelligent_accountant/pkg/core/utils"
	"intelligent_accountant/pkg/core/workspace"
)

// Analyst drives the three LLM stages of a question: clarify, plan,
// explain. Execution between plan and explain is deterministic and local.
type Analyst struct {
	mgr *agent.Manager
}

func New(mgr *agent.Manager) *Analyst {
	return &Analyst{mgr: mgr}
}

// Answer is the outcome of Ask: either a clarifying question back to the
// user, or a computed result with its explanation.
type Answer struct {
	Type        string  `json:"type"` // "clarification" or "answer"
	Question    string  `json:"question,omitempty"`
	Result      *Result `json:"result,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
	PlanJSON    string  `json:"plan,omitempty"`
}

// Ask runs the full pipeline for one user question.
func (a *Analyst) Ask(ctx context.Context, query string, ws *workspace.Workspace) (*Answer, error) {
	dataInfo := RenderDataInfo(ws.Selections(), ws.Failures())

	verdict, err := a.AnalyzeQuery(ctx, query, dataInfo)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(verdict), "PROCEED") {
		return &Answer{Type: "clarification", Question: strings.TrimSpace(verdict)}, nil
	}

	plan, raw, err := a.GeneratePlan(ctx, query, dataInfo)
	if err != nil {
		return nil, err
	}

	result, err := Execute(plan, ws.Selections())
	if err != nil {
		return nil, fmt.Errorf("plan execution failed: %w", err)
	}

	explanation, err := a.ExplainResult(ctx, query, result)
	if err != nil {
		// The computed result is still useful without prose.
		log.Printf("[Analyst] explanation failed: %v", err)
		explanation = ""
	}

	return &Answer{
		Type:        "answer",
		Result:      result,
		Explanation: explanation,
		PlanJSON:    raw,
	}, nil
}

// AnalyzeQuery decides whether the question is answerable with the loaded
// data. Returns "PROCEED" or a clarifying question.
func (a *Analyst) AnalyzeQuery(ctx context.Context, query string, dataInfo string) (string, error) {
	system := prompt.AnalystPromptOr("clarify", defaultClarifyPrompt)
	system = strings.ReplaceAll(system, "{data_info}", dataInfo)
	return a.mgr.ExecutePrompt(ctx, "clarifier", query, system, nil)
}

// GeneratePlan asks the planner for a JSON analysis plan and decodes it.
func (a *Analyst) GeneratePlan(ctx context.Context, query string, dataInfo string) (*Plan, string, error) {
	system := prompt.AnalystPromptOr("plan", defaultPlanPrompt)
	system = strings.ReplaceAll(system, "{data_info}", dataInfo)
	system = strings.ReplaceAll(system, "{query}", query)

	raw, err := a.mgr.ExecutePrompt(ctx, "planner", "Generate the analysis plan.", system, map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	})
	if err != nil {
		return nil, "", err
	}

	plan, err := DecodePlan(raw)
	if err != nil {
		return nil, raw, fmt.Errorf("planner returned an unusable plan: %w", err)
	}
	return plan, utils.StripCodeFence(raw), nil
}

// ExplainResult turns the executed result into a human-friendly answer.
func (a *Analyst) ExplainResult(ctx context.Context, query string, result *Result) (string, error) {
	system := prompt.AnalystPromptOr("explain", defaultExplainPrompt)
	system = strings.ReplaceAll(system, "{query}", query)
	system = strings.ReplaceAll(system, "{result}", renderResult(result))
	system = strings.ReplaceAll(system, "{trace}", strings.Join(result.Trace, "\n"))

	out, err := a.mgr.ExecutePrompt(ctx, "explainer", "Explain the answer.", system, map[string]interface{}{
		"temperature": 0.5,
	})
	if err != nil {
		return "", err
	}
	cleaned := utils.CleanExplanation(out)
	if !utils.ValidMarkdown(cleaned) {
		return "", fmt.Errorf("explanation did not parse as markdown")
	}
	return cleaned, nil
}

func renderResult(result *Result) string {
	if result.Kind == "number" {
		return fmt.Sprintf("%.2f", result.Number)
	}
	rows, err := json.Marshal(result.Rows)
	if err != nil {
		return fmt.Sprintf("%d rows", len(result.Rows))
	}
	return string(rows)
}

// Built-in prompts; resources/prompts overrides these when loaded.
const defaultClarifyPrompt = `You are an expert financial analyst assistant.
Your goal is to help users analyze their financial data (Profit & Loss, Balance Sheets).

You have access to the schema and sample rows of the loaded tables.

Analyze the user's query.
1. If the query is ambiguous or unclear, or if you need more context to select the right table/column, ask a clarifying question.
2. If the query is clear and can be answered with the provided data, output "PROCEED".

IMPORTANT:
- Do not be too pedantic. If the user asks for "Total Income" and there is a "Profit and Loss" table or a row with "Income", assume that is what they want.
- NEVER ask "which file should I use?" if a table clearly matches the intent (e.g. "Profit and Loss" for income/expenses, "Balance Sheet" for assets/liabilities). Just pick the most relevant one.
- Only ask for clarification if the data is completely missing or there is a genuine unresolvable conflict.

Data Info:
{data_info}

Output ONLY the clarifying question OR "PROCEED".`

const defaultPlanPrompt = `You are a financial data analysis planner.
You answer questions about normalized financial tables by emitting a JSON analysis plan.

Data Info (schema & samples):
{data_info}

User Query: {query}

Output a single JSON object:
{"table": "<table key or statement name>", "steps": [ ... ]}

Available step operations:
- {"op":"find_total","label":"Total for Income","column":""} — find a total row by label; empty column means the LAST numeric column (usually the grand total). Use this FIRST whenever a total row might exist.
- {"op":"sum_section","label":"Income","column":""} — sum the detail rows belonging to a section, stopping at the section's total row. Use ONLY when no total row exists.
- {"op":"sum_rows","labels":["Salary","Consulting"],"column":""} — sum specific named rows.
- {"op":"lookup","label":"Cash on hand","column":""} — read one row's value.
- {"op":"top_n","column":"","n":5} — the N largest detail rows.
- {"op":"divide","left":1,"right":2} — arithmetic on earlier step numbers (also add, subtract, multiply).

Rules:
- Tables that look mostly empty are templates; prefer the table with actual values (the data info marks the most complete one).
- Row and column names in the plan need not match exactly; matching is fuzzy.
- Missing values are skipped, never treated as zero.
- The LAST step produces the answer.
- ONLY output the JSON object. No markdown, no explanations.`

const defaultExplainPrompt = `You are a helpful accountant.
The user asked: "{query}"

We computed this result:
{result}

Derivation steps:
{trace}

Explain this answer to the user in a clear, human-friendly way.
Briefly explain HOW the answer was derived. Format as plain Markdown.`
