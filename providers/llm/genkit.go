package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitClient drives any genkit-registered model (Gemini, Ollama,
// OpenAI-compatible) through the shared Generate API.
type GenkitClient struct {
	genkit  *genkit.Genkit
	model   ai.Model
	timeout time.Duration
}

var _ Client = (*GenkitClient)(nil)

// NewGenkitClient wraps an initialized genkit instance and model.
func NewGenkitClient(gk *genkit.Genkit, model ai.Model) *GenkitClient {
	return &GenkitClient{
		genkit:  gk,
		model:   model,
		timeout: 60 * time.Second,
	}
}

// GenerateStructured runs a single generation call and extracts the JSON
// payload from the response text.
func (c *GenkitClient) GenerateStructured(ctx context.Context, systemPrompt, prompt string, maxTokens int) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := genkit.Generate(ctx,
		c.genkit,
		ai.WithModel(c.model),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(prompt),
		ai.WithConfig(map[string]any{
			"maxOutputTokens": maxTokens,
			"temperature":     0.7,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("generate failed: %w", err)
	}

	text := ExtractJSON(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("response contained no valid JSON")
	}
	return json.RawMessage(text), nil
}
