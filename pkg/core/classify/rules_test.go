package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `- pattern: '(?i)^grand\s+total'
  tag: total
- pattern: '(?i)^memo:'
  tag: ignored
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if rules.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rules.Len())
	}

	if tag, ok := rules.Match("Grand Total"); !ok || tag != TagTotal {
		t.Errorf("Match(Grand Total) = (%v, %v)", tag, ok)
	}
	if tag, ok := rules.Match("memo: see attached"); !ok || tag != TagIgnored {
		t.Errorf("Match(memo) = (%v, %v)", tag, ok)
	}
	if _, ok := rules.Match("Total Income"); ok {
		t.Error("custom rules should fully replace the defaults")
	}
}

func TestLoadRules_BadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("- pattern: '(unclosed'\n  tag: total\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("expected error for invalid regexp")
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
