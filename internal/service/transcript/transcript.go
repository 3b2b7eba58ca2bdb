// Package transcript turns a video's caption segments into one plain-text transcript.
package transcript

import (
	"context"
	"errors"
	"strings"

	"ai-video-summary-service/internal/observability/logging"
)

// ErrNoVideoID is reported when the caller has no video id to look up.
var ErrNoVideoID = errors.New("no video id could be extracted from the link")

// Segment is one timed caption line.
type Segment struct {
	Text     string
	Start    float64 // seconds
	Duration float64 // seconds
}

// Source returns the ordered caption segments for a video.
type Source interface {
	Segments(ctx context.Context, videoID string) ([]Segment, error)
}

// Fetcher flattens a Source into transcript text.
type Fetcher struct {
	source Source
}

// NewFetcher creates a Fetcher backed by source.
func NewFetcher(source Source) *Fetcher {
	return &Fetcher{source: source}
}

// Fetch returns the segment texts joined by single spaces, in order.
// It never fails: on any error the returned text describes the error instead.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) string {
	logger := logging.WithVideo("transcript-fetcher", videoID)

	if videoID == "" {
		logger.Warn().Msg("Fetching transcript without a video id")
		return Diagnostic(ErrNoVideoID)
	}

	segments, err := f.source.Segments(ctx, videoID)
	if err != nil {
		logger.Warn().Err(err).Msg("Transcript unavailable")
		return Diagnostic(err)
	}

	text := Join(segments)
	logger.Info().
		Int("segments", len(segments)).
		Int("chars", len(text)).
		Msg("Transcript fetched")
	return text
}

// Join concatenates segment texts with single spaces, preserving order.
func Join(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

// DiagnosticPrefix starts every text returned in place of a transcript.
const DiagnosticPrefix = "Transcript error: "

// Diagnostic renders err as the text that stands in for a missing transcript.
func Diagnostic(err error) string {
	return DiagnosticPrefix + err.Error()
}
