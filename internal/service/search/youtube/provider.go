// Package youtube provides a YouTube Data API search provider.
package youtube

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"ai-video-summary-service/internal/models"
)

const watchURL = "https://www.youtube.com/watch?v="

// Provider implements search.Provider using search.list of the YouTube Data API v3.
type Provider struct {
	svc *yt.Service
}

// New creates a YouTube search provider. Extra client options are appended after the API key,
// so tests can point the service at a fake endpoint.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: API key is required")
	}
	svc, err := yt.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Provider{svc: svc}, nil
}

// Search returns up to maxResults videos for query in relevance order.
func (p *Provider) Search(ctx context.Context, query string, maxResults int) ([]models.VideoMatch, error) {
	if maxResults <= 0 {
		maxResults = 1
	}

	resp, err := p.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	matches := make([]models.VideoMatch, 0, len(resp.Items))
	for _, item := range resp.Items {
		matches = append(matches, toMatch(item))
	}
	return matches, nil
}

func toMatch(item *yt.SearchResult) models.VideoMatch {
	var m models.VideoMatch
	if item == nil {
		return m
	}
	if item.Id != nil && item.Id.VideoId != "" {
		m.Link = models.StringPtr(watchURL + item.Id.VideoId)
	}
	if item.Snippet != nil {
		m.Title = models.StringPtr(item.Snippet.Title)
		m.Channel = models.StringPtr(item.Snippet.ChannelTitle)
	}
	return m
}
