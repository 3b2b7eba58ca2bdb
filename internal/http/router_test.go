package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/service/audio"
	"ai-video-summary-service/internal/service/pipeline"
	"ai-video-summary-service/internal/service/search"
	ttsmock "ai-video-summary-service/internal/service/tts/mock"
)

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	calls  int
	query  string
	tts    bool
}

func (f *fakeAnalyzer) AnalyzeVideo(ctx context.Context, query string, wantAudio bool) (*models.AnalysisResult, error) {
	f.calls++
	f.query, f.tts = query, wantAudio
	return f.result, f.err
}

func newTestServer(t *testing.T, analyzer Analyzer, ready bool) (*httptest.Server, *audio.Renderer, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	renderer := audio.NewRenderer(ttsmock.New(), audio.Config{StaticDir: t.TempDir(), Workers: 1}, audio.WithMetrics(m))
	t.Cleanup(func() { renderer.Close(context.Background()) })

	srv := httptest.NewServer(newRouter(Deps{
		Analyzer: analyzer,
		Audio:    renderer,
		Metrics:  m,
		Ready:    func() bool { return ready },
	}))
	t.Cleanup(srv.Close)
	return srv, renderer, m
}

func postSummarize(t *testing.T, srv *httptest.Server, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/summarize", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /summarize: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, strings.TrimSpace(string(data))
}

func TestRoot(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, true)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["message"] != "AI Youtube Video Summary API is running." {
		t.Errorf("unexpected message %q", body["message"])
	}
}

func TestSummarize_Success(t *testing.T) {
	file := "ABCDEFGHIJK_20240101_120000.mp3"
	url := "http://localhost:8000/download-audio/" + file
	analyzer := &fakeAnalyzer{result: &models.AnalysisResult{
		Title:         models.StringPtr("T"),
		Link:          models.StringPtr("https://platform/watch?v=ABCDEFGHIJK"),
		Channel:       models.StringPtr("C"),
		Summary:       "stub",
		AudioFilename: &file,
		AudioURL:      &url,
	}}
	srv, _, m := newTestServer(t, analyzer, true)

	resp, body := postSummarize(t, srv, `{"user_query": "sample video title", "tts": true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if analyzer.query != "sample video title" || !analyzer.tts {
		t.Errorf("unexpected analyzer input query=%q tts=%v", analyzer.query, analyzer.tts)
	}

	var got models.AnalysisResult
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if models.Deref(got.AudioURL) != url || got.Summary != "stub" {
		t.Errorf("unexpected result %s", body)
	}
	if c := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/summarize", "2xx")); c != 1 {
		t.Errorf("expected 1 recorded /summarize request, got %v", c)
	}
}

func TestSummarize_TTSDefaultsToFalse(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &models.AnalysisResult{Summary: "s"}}
	srv, _, _ := newTestServer(t, analyzer, true)

	resp, _ := postSummarize(t, srv, `{"user_query": "q"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if analyzer.tts {
		t.Error("expected tts to default to false")
	}
}

func TestSummarize_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"user_query":`},
		{"missing query", `{}`},
		{"blank query", `{"user_query": "  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			srv, _, _ := newTestServer(t, analyzer, true)

			resp, body := postSummarize(t, srv, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if !strings.HasPrefix(body, `{"error":`) {
				t.Errorf("expected error body, got %s", body)
			}
			if analyzer.calls != 0 {
				t.Error("expected analyzer not to be called")
			}
		})
	}
}

func TestSummarize_PipelineErrorShape(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &pipeline.Error{
		Stage: pipeline.StageLocate,
		Err:   &search.Error{Cause: errors.New("connection reset")},
	}}
	srv, _, _ := newTestServer(t, analyzer, true)

	resp, body := postSummarize(t, srv, `{"user_query": "q"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if body != `{"error":"Search failed: connection reset"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestSummarize_UnexpectedError(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{err: errors.New("boom")}, true)

	resp, _ := postSummarize(t, srv, `{"user_query": "q"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestSummarize_ResultInvariantViolation(t *testing.T) {
	file := "x.mp3"
	srv, _, _ := newTestServer(t, &fakeAnalyzer{result: &models.AnalysisResult{AudioFilename: &file}}, true)

	resp, _ := postSummarize(t, srv, `{"user_query": "q"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 for half-populated audio fields, got %d", resp.StatusCode)
	}
}

func TestDownloadAudio(t *testing.T) {
	srv, renderer, _ := newTestServer(t, &fakeAnalyzer{}, true)
	if _, err := renderer.Render(context.Background(), "spoken summary", "ABCDEFGHIJK_20240101_120000"); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	resp, err := http.Get(srv.URL + "/download-audio/ABCDEFGHIJK_20240101_120000.mp3")
	if err != nil {
		t.Fatalf("GET download: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %s", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasSuffix(string(data), "spoken summary") {
		t.Errorf("unexpected audio payload %q", data)
	}
}

func TestDownloadAudio_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeAnalyzer{}, true)

	for _, name := range []string{"ABCDEFGHIJK_20990101_000000.mp3", "notes.txt"} {
		resp, err := http.Get(srv.URL + "/download-audio/" + name)
		if err != nil {
			t.Fatalf("GET download: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", name, resp.StatusCode)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		ready bool
		path  string
		want  int
	}{
		{"liveness", false, "/v1/liveness", http.StatusOK},
		{"ready", true, "/v1/readiness", http.StatusOK},
		{"not ready", false, "/v1/readiness", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t, &fakeAnalyzer{}, tt.ready)

			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}
