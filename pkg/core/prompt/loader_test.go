package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrompt(t *testing.T, baseDir, rel, content string) {
	t.Helper()
	path := filepath.Join(baseDir, "prompts", rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	Get().Clear()
	defer Get().Clear()

	dir := t.TempDir()
	writePrompt(t, dir, "analyst/plan.json", `{
		"name": "Analysis Planner",
		"system_prompt": "Emit a JSON plan."
	}`)
	writePrompt(t, dir, "insight/commentary.json", `{
		"id": "insight.commentary",
		"system_prompt": "Review the statements."
	}`)

	if err := LoadFromDirectory(dir); err != nil {
		t.Fatalf("LoadFromDirectory: %v", err)
	}
	if Get().Count() != 2 {
		t.Fatalf("Count() = %d, want 2", Get().Count())
	}

	// ID defaults to category.file when the JSON does not set one.
	sp, err := Get().GetSystemPrompt("analyst.plan")
	if err != nil || sp != "Emit a JSON plan." {
		t.Errorf("GetSystemPrompt(analyst.plan) = %q, %v", sp, err)
	}

	pt, err := Get().GetPrompt("analyst.plan")
	if err != nil {
		t.Fatal(err)
	}
	if pt.Category != "analyst" {
		t.Errorf("Category = %q, want analyst", pt.Category)
	}
}

func TestLoadFromDirectory_Missing(t *testing.T) {
	if err := LoadFromDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing prompts directory")
	}
}

func TestSystemPromptOr(t *testing.T) {
	Get().Clear()
	defer Get().Clear()

	if got := Get().SystemPromptOr("analyst.clarify", "fallback"); got != "fallback" {
		t.Errorf("empty registry: got %q", got)
	}

	Get().Register(&PromptTemplate{ID: "analyst.clarify", SystemPrompt: "loaded"})
	if got := Get().SystemPromptOr("analyst.clarify", "fallback"); got != "loaded" {
		t.Errorf("loaded registry: got %q", got)
	}
	if got := AnalystPromptOr("clarify", "fallback"); got != "loaded" {
		t.Errorf("convenience accessor: got %q", got)
	}
}

func TestRenderUserPrompt(t *testing.T) {
	pt := &PromptTemplate{
		ID:             "t",
		UserPromptTmpl: "Question: {{.Query}}",
	}
	out, err := RenderUserPrompt(pt, NewContext().Set("Query", "total income?"))
	if err != nil {
		t.Fatalf("RenderUserPrompt: %v", err)
	}
	if out != "Question: total income?" {
		t.Errorf("out = %q", out)
	}
}
