package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"

	"ai-video-summary-service/internal/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestSearch_MapsResults(t *testing.T) {
	var gotQuery, gotType, gotMax string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotType = r.URL.Query().Get("type")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"id": {"kind": "youtube#video", "videoId": "dQw4w9WgXcQ"},
				 "snippet": {"title": "Never Gonna Give You Up", "channelTitle": "Rick Astley"}},
				{"id": {"kind": "youtube#video", "videoId": "ABCDEFGHIJK"},
				 "snippet": {"title": "Second", "channelTitle": ""}}
			]
		}`))
	})

	got, err := p.Search(context.Background(), "rick roll", 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotQuery != "rick roll" || gotType != "video" || gotMax != "2" {
		t.Errorf("unexpected request params q=%q type=%q maxResults=%q", gotQuery, gotType, gotMax)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if models.Deref(got[0].Link) != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("unexpected link %q", models.Deref(got[0].Link))
	}
	if models.Deref(got[0].Channel) != "Rick Astley" {
		t.Errorf("unexpected channel %q", models.Deref(got[0].Channel))
	}
	if got[1].Channel != nil {
		t.Errorf("expected nil channel for empty channelTitle, got %q", *got[1].Channel)
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "quotaExceeded"}}`))
	})

	if _, err := p.Search(context.Background(), "q", 1); err == nil {
		t.Error("expected error from upstream 403")
	}
}

func TestSearch_Empty(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})

	got, err := p.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
