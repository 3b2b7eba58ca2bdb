// Package gemini provides a Google Gemini completion adapter.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ai-video-summary-service/internal/service/llm"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Completer implements llm.Completer using the Gemini API.
type Completer struct {
	client *genai.Client
	model  string
}

// New creates a Gemini completer for the given API key and model.
func New(ctx context.Context, apiKey, model string) (*Completer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Completer{client: client, model: model}, nil
}

// Complete implements llm.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string, params llm.Params) (string, error) {
	temperature := float32(params.Temperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if params.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(params.MaxTokens)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return candidateText(result), nil
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	first := result.Candidates[0]
	if first == nil || first.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range first.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
