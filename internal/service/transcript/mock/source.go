// Package mock provides an in-memory transcript source.
package mock

import (
	"context"
	"errors"
	"fmt"

	"ai-video-summary-service/internal/service/transcript"
)

// ErrNotFound is returned for videos missing from the source.
var ErrNotFound = errors.New("no transcript found for video")

// DefaultSegments is served for any video id when the source has no explicit entries.
var DefaultSegments = []transcript.Segment{
	{Text: "Welcome back to the channel.", Start: 0, Duration: 2.1},
	{Text: "Today we walk through the whole story from start to finish,", Start: 2.1, Duration: 3.4},
	{Text: "and share the key lessons we learned along the way.", Start: 5.5, Duration: 3.0},
}

// Source implements transcript.Source over a map of video id to segments.
type Source struct {
	Transcripts map[string][]transcript.Segment
}

// New creates a Source that answers every id with DefaultSegments.
func New() *Source {
	return &Source{}
}

// Segments implements transcript.Source.
func (s *Source) Segments(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Transcripts == nil {
		return DefaultSegments, nil
	}
	segs, ok := s.Transcripts[videoID]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNotFound, videoID)
	}
	return segs, nil
}
