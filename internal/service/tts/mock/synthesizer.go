// Package mock provides a TTS synthesizer for testing without cloud credentials.
// It emits a fake MP3 payload (an ID3 tag followed by the text) after an optional delay.
package mock

import (
	"context"
	"sync/atomic"
	"time"
)

var id3Header = []byte("ID3\x04\x00\x00\x00\x00\x00\x00")

// Synthesizer implements tts.Synthesizer.
type Synthesizer struct {
	Delay time.Duration // simulated synthesis latency
	Err   error

	calls atomic.Int64
}

// New creates a mock synthesizer with no delay.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize implements tts.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.calls.Add(1)

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]byte, 0, len(id3Header)+len(text))
	out = append(out, id3Header...)
	return append(out, text...), nil
}

// Calls returns how many times Synthesize was invoked.
func (s *Synthesizer) Calls() int {
	return int(s.calls.Load())
}
