package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-video-summary-service/internal/service/transcript"
)

const sampleTimedText = `<?xml version="1.0" encoding="utf-8" ?>
<transcript>
  <text start="0.0" dur="1.5">hello</text>
  <text start="1.5" dur="2.0">it&amp;#39;s a
  wonderful</text>
  <text start="3.5" dur="1.0">   </text>
  <text start="4.5" dur="1.0">world</text>
</transcript>`

func newFakeYouTube(t *testing.T, tracks func(base string) string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoID == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, tracks(srv.URL))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "en" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleTimedText))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSegments_FetchesBestTrack(t *testing.T) {
	srv := newFakeYouTube(t, func(base string) string {
		return fmt.Sprintf(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "%[1]s/timedtext?lang=de", "languageCode": "de"},
			{"baseUrl": "%[1]s/timedtext?lang=en&kind=asr", "languageCode": "en", "kind": "asr"},
			{"baseUrl": "%[1]s/timedtext?lang=en", "languageCode": "en"}
		]}}}`, base)
	})
	src := New([]string{"en"}, WithPlayerURL(srv.URL+"/player"), WithHTTPClient(srv.Client()))

	segs, err := src.Segments(context.Background(), "ABCDEFGHIJK")
	if err != nil {
		t.Fatalf("Segments() error: %v", err)
	}
	if got := transcript.Join(segs); got != "hello it's a wonderful world" {
		t.Errorf("unexpected transcript %q", got)
	}
	if segs[2].Start != 4.5 {
		t.Errorf("expected start 4.5, got %v", segs[2].Start)
	}
}

func TestSegments_NoCaptions(t *testing.T) {
	srv := newFakeYouTube(t, func(string) string {
		return `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`
	})
	src := New(nil, WithPlayerURL(srv.URL+"/player"), WithHTTPClient(srv.Client()))

	_, err := src.Segments(context.Background(), "ABCDEFGHIJK")
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("expected ErrNoCaptions, got %v", err)
	}
	if err.Error() != "no captions available for this video: Video unavailable" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSegments_OnlyPoTokenTracks(t *testing.T) {
	srv := newFakeYouTube(t, func(base string) string {
		return fmt.Sprintf(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "%s/timedtext?lang=en&exp=xpe", "languageCode": "en"}
		]}}}`, base)
	})
	src := New(nil, WithPlayerURL(srv.URL+"/player"), WithHTTPClient(srv.Client()))

	if _, err := src.Segments(context.Background(), "ABCDEFGHIJK"); !errors.Is(err, ErrPoTokenRequired) {
		t.Errorf("expected ErrPoTokenRequired, got %v", err)
	}
}

func TestSegments_PlayerHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	src := New(nil, WithPlayerURL(srv.URL), WithHTTPClient(srv.Client()))

	if _, err := src.Segments(context.Background(), "ABCDEFGHIJK"); err == nil {
		t.Error("expected error for 429 player response")
	}
}

func TestParseTimedText_Invalid(t *testing.T) {
	if _, err := parseTimedText([]byte("<transcript><text>")); err == nil {
		t.Error("expected error for truncated XML")
	}
}

func TestPickBestTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "u1", LanguageCode: "en"}
	asrEN := captionTrack{BaseURL: "u2", LanguageCode: "en", Kind: "asr"}
	enGB := captionTrack{BaseURL: "u3", LanguageCode: "en-GB"}
	de := captionTrack{BaseURL: "u4", LanguageCode: "de"}
	blocked := captionTrack{BaseURL: "u5&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   string
		wantOK bool
	}{
		{"manual preferred over asr", []captionTrack{asrEN, manualEN}, []string{"en"}, "u1", true},
		{"asr when no manual", []captionTrack{de, asrEN}, []string{"en"}, "u2", true},
		{"any english fallback", []captionTrack{de, enGB}, []string{"en"}, "u3", true},
		{"language order respected", []captionTrack{manualEN, de}, []string{"de", "en"}, "u4", true},
		{"first usable", []captionTrack{blocked, de}, []string{"fr"}, "u4", true},
		{"all blocked", []captionTrack{blocked}, []string{"en"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.BaseURL != tt.want {
				t.Errorf("picked %q, want %q", got.BaseURL, tt.want)
			}
		})
	}
}
