package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient talks to the Gemini API directly through the official
// SDK, without going through genkit. Used by the CLI and as the
// default-factory client.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// GenerateStructured sends the prompt pair to Gemini in JSON mode and
// returns the extracted payload.
func (c *GeminiClient) GenerateStructured(ctx context.Context, systemPrompt, prompt string, maxTokens int) (json.RawMessage, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not initialized")
	}

	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	m.SetMaxOutputTokens(int32(maxTokens))
	m.ResponseMIMEType = "application/json"

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no candidates in response")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += fmt.Sprintf("%v", part)
	}

	extracted := ExtractJSON(text)
	if extracted == "" {
		return nil, fmt.Errorf("response contained no valid JSON")
	}
	return json.RawMessage(extracted), nil
}

// Close closes the underlying SDK client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
