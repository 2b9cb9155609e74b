package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// GroqProvider talks to Groq's OpenAI-compatible chat completions API.
// This is the default analyst backend.
type GroqProvider struct {
	Model string // defaults to "openai/gpt-oss-20b"
}

var _ Provider = (*GroqProvider)(nil)

const groqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqRequest is the chat-completions payload.
type GroqRequest struct {
	Messages       []Message       `json:"messages"`
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type GroqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *GroqProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY_MISSING: please set GROQ_API_KEY env var")
	}

	model := p.Model
	if model == "" {
		model = "openai/gpt-oss-20b"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	// Deterministic by default: extraction and planning want temperature 0.
	temperature := 0.0
	if val, ok := options["temperature"].(float64); ok {
		temperature = val
	}

	reqBody := GroqRequest{
		Messages: []Message{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Model:       model,
		Temperature: temperature,
		MaxTokens:   4096,
		Stream:      false,
	}
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		if t, ok := val["type"].(string); ok {
			reqBody.ResponseFormat = &ResponseFormat{Type: t}
		}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("GROQ_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", groqEndpoint, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("GROQ_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GROQ_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("GROQ_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != 200 {
		return "", fmt.Errorf("GROQ_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response GroqResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("GROQ_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("GROQ_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

func (p *GroqProvider) AdaptInstructions(raw string) string {
	return raw
}
