// Package llm abstracts the hosted model APIs the assistant talks to.
package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Message is one turn of an OpenAI-style chat payload.
type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ResponseFormat selects text vs JSON-object output on chat-completions
// compatible APIs.
type ResponseFormat struct {
	Type string `json:"type"`
}
