// Package openai provides a completion adapter for OpenAI-compatible chat APIs such as Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"

	service "ai-video-summary-service/internal/service/llm"
)

const (
	// DefaultAPIBase is Groq's OpenAI-compatible endpoint.
	DefaultAPIBase = "https://api.groq.com/openai/v1"
	// DefaultModel is the Llama 3 70B model served by Groq.
	DefaultModel = "llama3-70b-8192"
)

// Config holds the endpoint settings of an OpenAI-compatible API.
type Config struct {
	APIBase string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// completeFunc performs one chat completion with the given sampling parameters.
type completeFunc func(ctx context.Context, prompt string, params service.Params) (string, error)

// Completer implements service.Completer over an OpenAI-compatible chat completions API.
type Completer struct {
	complete completeFunc
	model    string
}

// New creates a completer. Missing base URL and model fall back to Groq defaults.
func New(cfg Config) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := llm.NewClient(strings.TrimSuffix(cfg.APIBase, "/"), cfg.APIKey, cfg.Model,
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	complete := func(ctx context.Context, prompt string, params service.Params) (string, error) {
		if params.MaxTokens > 0 {
			return client.Complete(ctx, "", prompt,
				llm.WithChatTemperature(params.Temperature),
				llm.WithChatMaxTokens(params.MaxTokens),
			)
		}
		return client.Complete(ctx, "", prompt, llm.WithChatTemperature(params.Temperature))
	}
	return &Completer{complete: complete, model: cfg.Model}, nil
}

// Complete implements service.Completer. The prompt is sent as the only user message.
func (c *Completer) Complete(ctx context.Context, prompt string, params service.Params) (string, error) {
	text, err := c.complete(ctx, prompt, params)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", c.model, err)
	}
	return text, nil
}
