// Package utils holds small shared helpers for cleaning up LLM output:
// JSON recovery for structured responses and markdown hygiene for prose.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFence removes a wrapping markdown code block from LLM output.
// Models fence their answers ("```json ... ```") no matter how firmly the
// prompt says not to.
func StripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the language tag on the opening fence line.
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(cleaned[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			cleaned = cleaned[idx+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// DecodeLLMJSON parses an LLM JSON response into schema, tolerating the
// usual damage. Strategies in order:
//
//  1. strict encoding/json on the fence-stripped text
//  2. jsonrepair (unquoted keys, trailing commas, unclosed brackets)
//  3. hjson (most lenient: comments, optional commas)
func DecodeLLMJSON(raw string, schema interface{}) error {
	cleaned := StripCodeFence(raw)

	if err := json.Unmarshal([]byte(cleaned), schema); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal([]byte(cleaned), schema); err == nil {
		return nil
	}

	return fmt.Errorf("LLM_JSON_DECODE_FAILED: response is not recoverable JSON: %.120s", cleaned)
}
