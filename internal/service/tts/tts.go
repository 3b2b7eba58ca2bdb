// Package tts defines the interface for text-to-speech adapters.
package tts

import "context"

// Synthesizer converts text into encoded audio (MP3).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
