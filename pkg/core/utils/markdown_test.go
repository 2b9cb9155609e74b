package utils

import "testing"

func TestCleanExplanation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain text", "The total is **1500**.", "The total is **1500**."},
		{"Markdown fence", "```markdown\nThe total is 1500.\n```", "The total is 1500."},
		{"Bare fence", "```\nThe total is 1500.\n```", "The total is 1500."},
		{"Surrounding whitespace", "  \nThe total is 1500.\n ", "The total is 1500."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanExplanation(tt.input); got != tt.want {
				t.Errorf("CleanExplanation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidMarkdown(t *testing.T) {
	for _, input := range []string{
		"# Heading\n\n- item\n- item",
		"plain prose",
		"",
	} {
		if !ValidMarkdown(input) {
			t.Errorf("ValidMarkdown(%q) = false", input)
		}
	}
}
