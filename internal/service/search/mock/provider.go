// Package mock provides a canned search provider for running without an API key.
package mock

import (
	"context"
	"fmt"
	"strings"

	"ai-video-summary-service/internal/models"
)

// DefaultCatalog is the fixed set of videos the mock provider searches.
var DefaultCatalog = []models.VideoMatch{
	{
		Title:   models.StringPtr("Never Gonna Give You Up"),
		Link:    models.StringPtr("https://www.youtube.com/watch?v=dQw4w9WgXcQ"),
		Channel: models.StringPtr("Rick Astley"),
	},
	{
		Title:   models.StringPtr("Me at the zoo"),
		Link:    models.StringPtr("https://www.youtube.com/watch?v=jNQXAC9IVRw"),
		Channel: models.StringPtr("jawed"),
	},
}

// Provider implements search.Provider over an in-memory catalog.
// Titles containing a query word rank first; otherwise the catalog order is kept.
type Provider struct {
	Catalog []models.VideoMatch
	// Err, when set, is returned from every Search call.
	Err error
}

// New creates a mock provider over DefaultCatalog.
func New() *Provider {
	return &Provider{Catalog: DefaultCatalog}
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string, maxResults int) ([]models.VideoMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, fmt.Errorf("mock search: %w", p.Err)
	}

	var hits, rest []models.VideoMatch
	words := strings.Fields(strings.ToLower(query))
	for _, m := range p.Catalog {
		if matchesAny(strings.ToLower(models.Deref(m.Title)), words) {
			hits = append(hits, m)
		} else {
			rest = append(rest, m)
		}
	}

	out := append(hits, rest...)
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func matchesAny(title string, words []string) bool {
	for _, w := range words {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}
