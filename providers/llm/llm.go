// Package llm abstracts the structured-generation capability the macro
// planner needs, with genkit-backed and direct Gemini implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Client generates a structured (JSON) response for a prompt pair.
// Implementations return the extracted raw JSON; a response that does
// not contain valid JSON is an error the caller may retry.
type Client interface {
	GenerateStructured(ctx context.Context, systemPrompt, prompt string, maxTokens int) (json.RawMessage, error)
}

// DefaultFactory builds the process-wide default client when a caller
// does not inject one. Tests replace it to keep injection clean.
var DefaultFactory = func() (Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set for the default LLM client")
	}
	return NewGeminiClient(apiKey, "")
}

// ExtractJSON finds the first valid JSON object or array embedded in a
// model response, tolerating markdown fences and prose around it.
func ExtractJSON(text string) string {
	// Strip markdown code fences first
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")

	start := -1
	switch {
	case startObj != -1 && startArr != -1:
		start = startObj
		if startArr < startObj {
			start = startArr
		}
	case startObj != -1:
		start = startObj
	case startArr != -1:
		start = startArr
	}
	if start == -1 {
		return ""
	}

	trimmed := strings.TrimSpace(text[start:])
	trimmed = strings.TrimSuffix(trimmed, ";")
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}

	// Bracket matching fallback for trailing prose.
	openChar, closeChar := '{', '}'
	if text[start] == '[' {
		openChar, closeChar = '[', ']'
	}
	balance := 0
	for i, r := range text[start:] {
		if r == openChar {
			balance++
		} else if r == closeChar {
			balance--
		}
		if balance == 0 && i > 0 {
			candidate := text[start : start+i+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
		}
	}
	return ""
}
