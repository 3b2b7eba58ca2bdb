// Package mock provides a scripted completer for running without model credentials.
package mock

import (
	"context"
	"sync"

	"ai-video-summary-service/internal/service/llm"
)

// DefaultResponse is returned when no Response is configured.
const DefaultResponse = "Core message: a short walkthrough of the video's main idea. " +
	"Storyline: introduction, development and wrap-up. " +
	"Tone: upbeat and informative. " +
	"Participants: the host. " +
	"Key takeaways: the lessons are summarized at the end."

// Completer implements llm.Completer and records every call.
type Completer struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded Complete invocation.
type Call struct {
	Prompt string
	Params llm.Params
}

// New creates a completer answering with DefaultResponse.
func New() *Completer {
	return &Completer{Response: DefaultResponse}
}

// Complete implements llm.Completer.
func (c *Completer) Complete(ctx context.Context, prompt string, params llm.Params) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Prompt: prompt, Params: params})
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Err != nil {
		return "", c.Err
	}
	if c.Response == "" {
		return DefaultResponse, nil
	}
	return c.Response, nil
}

// Calls returns a copy of the recorded calls.
func (c *Completer) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}
