// Package llm defines the interface for language-model completion adapters.
package llm

import "context"

// Params are the sampling parameters of one completion call.
type Params struct {
	Temperature float64
	MaxTokens   int // 0 leaves the provider default
}

// Completer defines the interface for LLM providers (Gemini, Groq/OpenAI-compatible, mock).
type Completer interface {
	// Complete sends a single user prompt and returns the first completion verbatim.
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}
