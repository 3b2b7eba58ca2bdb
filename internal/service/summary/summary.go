// Package summary produces a language-model digest of a video transcript.
package summary

import (
	"context"
	"time"

	"github.com/anatolykoptev/go-kit/strutil"

	"ai-video-summary-service/internal/observability/logging"
	"ai-video-summary-service/internal/service/llm"
)

const (
	// MaxTranscriptChars caps the transcript characters sent to the model.
	MaxTranscriptChars = 6000
	// Temperature keeps summaries low-variance.
	Temperature = 0.3
)

const promptTemplate = `Analyze this video transcript and create a detailed summary including:

Core message and key themes
Main storyline/plot points
Emotional tone and sentiment
Notable characters/participants
Key takeaways

Transcript: `

// Summarizer turns transcript text into a summary with one completion call.
type Summarizer struct {
	completer llm.Completer
}

// New creates a Summarizer backed by completer.
func New(completer llm.Completer) *Summarizer {
	return &Summarizer{completer: completer}
}

// Summarize returns the model's completion verbatim. Completion errors are returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	logger := logging.WithComponent("summarizer")
	start := time.Now()

	prompt := BuildPrompt(text)
	out, err := s.completer.Complete(ctx, prompt, llm.Params{Temperature: Temperature})
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Summarization failed")
		return "", err
	}

	logger.Info().
		Int("promptChars", len(prompt)).
		Int("summaryChars", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Summary generated")
	return out, nil
}

// BuildPrompt embeds the first MaxTranscriptChars characters of text in the instruction template.
func BuildPrompt(text string) string {
	return promptTemplate + Truncate(text)
}

// Truncate returns the first MaxTranscriptChars runes of text.
func Truncate(text string) string {
	return strutil.TruncateWith(text, MaxTranscriptChars, "")
}
