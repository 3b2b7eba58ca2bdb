package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"ai-video-summary-service/internal/app"
	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/schema"
	"ai-video-summary-service/internal/service/audio"
	"ai-video-summary-service/internal/service/pipeline"
)

const rootMessage = "AI Youtube Video Summary API is running."

// Analyzer runs the video analysis pipeline.
type Analyzer interface {
	AnalyzeVideo(ctx context.Context, query string, wantAudio bool) (*models.AnalysisResult, error)
}

// AudioStore opens rendered audio by download name.
type AudioStore interface {
	Open(name string) (*os.File, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Analyzer  Analyzer
	Audio     AudioStore
	Validator *schema.Validator
	Metrics   *metrics.Metrics
	Ready     func() bool
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	return newRouter(Deps{
		Analyzer:  application.Pipeline,
		Audio:     application.Renderer,
		Validator: application.Validator,
		Metrics:   application.Metrics,
		Ready:     application.IsReady,
	})
}

func newRouter(d Deps) http.Handler {
	if d.Validator == nil {
		d.Validator = schema.New()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.DefaultMetrics
	}
	if d.Ready == nil {
		d.Ready = func() bool { return true }
	}
	h := &handlers{deps: d}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.observe)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !d.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Get("/", h.root)
	r.Post("/summarize", h.summarize)
	r.Get("/download-audio/{fileName}", h.downloadAudio)

	return r
}

type handlers struct {
	deps Deps
}

func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (h *handlers) summarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResult{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.deps.Validator.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResult{Error: err.Error()})
		return
	}

	result, err := h.deps.Analyzer.AnalyzeVideo(r.Context(), req.UserQuery, req.TTS)
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			writeJSON(w, http.StatusBadGateway, perr.Result())
			return
		}
		log.Error().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("Analysis failed unexpectedly")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResult{Error: err.Error()})
		return
	}

	if err := h.deps.Validator.Validate(result); err != nil {
		log.Error().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("Analysis result violates schema")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResult{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) downloadAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")

	f, err := h.deps.Audio.Open(name)
	if err != nil {
		if errors.Is(err, audio.ErrNotFound) || errors.Is(err, audio.ErrInvalidName) {
			writeJSON(w, http.StatusNotFound, models.ErrorResult{Error: "audio not found: " + name})
			return
		}
		log.Error().Err(err).Str("file", name).Msg("Failed to open audio")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResult{Error: "internal error"})
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, modTime, f)
}

// observe logs every request and records it by route pattern.
func (h *handlers) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.deps.Metrics.RecordHTTPRequest(route, status)
		log.Info().
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
