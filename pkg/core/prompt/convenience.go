package prompt

// Convenience accessors for the assistant's prompt roles.

// GetAnalystPrompt returns an analyst-stage system prompt ("clarify",
// "plan", "explain").
func GetAnalystPrompt(stage string) (string, error) {
	return Get().GetSystemPrompt("analyst." + stage)
}

// GetInsightPrompt returns an insight agent system prompt.
func GetInsightPrompt(name string) (string, error) {
	return Get().GetSystemPrompt("insight." + name)
}

// AnalystPromptOr returns the analyst-stage prompt or the built-in
// fallback when the library is not loaded.
func AnalystPromptOr(stage string, fallback string) string {
	return Get().SystemPromptOr("analyst."+stage, fallback)
}
