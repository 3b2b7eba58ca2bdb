// Package search locates the single video that best matches a free-text query.
package search

import (
	"context"
	"errors"
	"time"

	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/logging"
)

// Provider is an external video search service (YouTube, mock, ...).
// Results are ordered by the provider's own relevance.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.VideoMatch, error)
}

// ErrNoResults is the cause carried by Error when the provider returns nothing.
var ErrNoResults = errors.New("no video results")

// Error is the locate failure. It is the only pipeline error that carries just a message.
type Error struct {
	Cause error
}

func (e *Error) Error() string {
	return "Search failed: " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Locator picks the provider's top result for a query.
type Locator struct {
	provider Provider
}

// NewLocator creates a Locator backed by provider.
func NewLocator(provider Provider) *Locator {
	return &Locator{provider: provider}
}

// Locate returns the first result for query. Partial results (nil fields) are not errors.
func (l *Locator) Locate(ctx context.Context, query string) (*models.VideoMatch, error) {
	logger := logging.WithComponent("video-locator")
	start := time.Now()

	results, err := l.provider.Search(ctx, query, 1)
	if err != nil {
		logger.Warn().Err(err).Str("query", query).Msg("Search provider failed")
		return nil, &Error{Cause: err}
	}
	if len(results) == 0 {
		logger.Info().Str("query", query).Msg("Search returned no results")
		return nil, &Error{Cause: ErrNoResults}
	}

	match := results[0]
	logger.Info().
		Str("query", query).
		Str("title", models.Deref(match.Title)).
		Str("link", models.Deref(match.Link)).
		Dur("duration", time.Since(start)).
		Msg("Video located")
	return &match, nil
}
