package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ai-video-summary-service/internal/config"
	"ai-video-summary-service/internal/events"
	"ai-video-summary-service/internal/observability/logging"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/schema"
	"ai-video-summary-service/internal/service/audio"
	"ai-video-summary-service/internal/service/llm"
	"ai-video-summary-service/internal/service/llm/gemini"
	llmmock "ai-video-summary-service/internal/service/llm/mock"
	"ai-video-summary-service/internal/service/llm/openai"
	"ai-video-summary-service/internal/service/naming"
	"ai-video-summary-service/internal/service/pipeline"
	"ai-video-summary-service/internal/service/search"
	searchmock "ai-video-summary-service/internal/service/search/mock"
	"ai-video-summary-service/internal/service/search/youtube"
	"ai-video-summary-service/internal/service/summary"
	"ai-video-summary-service/internal/service/transcript"
	transcriptmock "ai-video-summary-service/internal/service/transcript/mock"
	transcriptyt "ai-video-summary-service/internal/service/transcript/youtube"
	"ai-video-summary-service/internal/service/tts"
	ttsgoogle "ai-video-summary-service/internal/service/tts/google"
	ttsmock "ai-video-summary-service/internal/service/tts/mock"
)

// Application holds process-wide state for the service.
// Every external client is built once here and shared by all requests.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Metrics   *metrics.Metrics
	Validator *schema.Validator
	Publisher *events.Publisher
	Renderer  *audio.Renderer
	Pipeline  *pipeline.Orchestrator

	closers []func() error
	ready   atomic.Bool
}

// New constructs a new Application from the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:       cfg,
		Metrics:   metrics.DefaultMetrics,
		Validator: schema.New(),
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	provider, err := newSearchProvider(ctx, cfg.Search)
	if err != nil {
		return nil, err
	}
	source, err := newTranscriptSource(cfg.Transcript)
	if err != nil {
		return nil, err
	}
	completer, err := newCompleter(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	synth, closeSynth, err := newSynthesizer(ctx, cfg.TTS)
	if err != nil {
		return nil, err
	}
	if closeSynth != nil {
		a.closers = append(a.closers, closeSynth)
	}

	a.Publisher = events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicAnalysis: cfg.Kafka.TopicAnalysis,
		TopicAudio:    cfg.Kafka.TopicAudio,
		Principal:     cfg.Kafka.Principal,
	})

	a.Renderer = audio.NewRenderer(synth, audio.Config{
		StaticDir: cfg.Audio.StaticDir,
		Workers:   cfg.Audio.Workers,
		QueueSize: cfg.Audio.QueueSize,
	}, audio.WithMetrics(a.Metrics), audio.WithPublisher(a.Publisher))

	a.Pipeline = pipeline.New(pipeline.Dependencies{
		Locator:    search.NewLocator(provider),
		Transcript: transcript.NewFetcher(source),
		Summarizer: summary.New(completer),
		Renderer:   a.Renderer,
		Namer:      naming.New(),
		Publisher:  a.Publisher,
	}, cfg.Service.AppDomain, pipeline.WithMetrics(a.Metrics))

	appLogger.Info().
		Str("search", cfg.Search.Provider).
		Str("transcript", cfg.Transcript.Provider).
		Str("llm", cfg.LLM.Provider).
		Str("llmModel", cfg.LLM.Model).
		Str("tts", cfg.TTS.Provider).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("AI Video Summary service application created")
	return a, nil
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:  a.Cfg.Observability.LogLevel,
		Format: a.Cfg.Observability.LogFormat,
	})

	a.Logger = logging.Logger().With().
		Str("service", "ai-video-summary-service").
		Str("component", "application").
		Logger()

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	a.ready.Store(true)
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("AI Video Summary service starting")

	return nil
}

// IsReady reports whether the application accepts traffic.
func (a *Application) IsReady() bool {
	return a.ready.Load()
}

// Shutdown stops accepting work, drains background renders until ctx expires,
// then closes Kafka writers and provider clients.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	shutdownLogger.Info().Msg("AI Video Summary service shutting down")
	a.ready.Store(false)

	var errs []error
	if err := a.Renderer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain renders: %w", err))
	}
	if err := a.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		shutdownLogger.Warn().Err(err).Msg("Shutdown completed with errors")
	} else {
		shutdownLogger.Info().Msg("Shutdown complete")
	}
	return err
}

func newSearchProvider(ctx context.Context, cfg config.SearchConfig) (search.Provider, error) {
	switch cfg.Provider {
	case "youtube":
		return youtube.New(ctx, cfg.YouTubeAPIKey)
	case "mock":
		return searchmock.New(), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

func newTranscriptSource(cfg config.TranscriptConfig) (transcript.Source, error) {
	switch cfg.Provider {
	case "youtube":
		return transcriptyt.New(cfg.Languages), nil
	case "mock":
		return transcriptmock.New(), nil
	default:
		return nil, fmt.Errorf("unknown transcript provider %q", cfg.Provider)
	}
}

func newCompleter(ctx context.Context, cfg config.LLMConfig) (llm.Completer, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(ctx, cfg.APIKey, cfg.Model)
	case "openai", "groq":
		return openai.New(openai.Config{
			APIBase: cfg.APIBase,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	case "mock":
		return llmmock.New(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newSynthesizer(ctx context.Context, cfg config.TTSConfig) (tts.Synthesizer, func() error, error) {
	switch cfg.Provider {
	case "google":
		s, err := ttsgoogle.New(ctx, ttsgoogle.Config{
			LanguageCode: cfg.LanguageCode,
			VoiceName:    cfg.VoiceName,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("google tts: %w", err)
		}
		return s, s.Close, nil
	case "mock":
		return ttsmock.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown tts provider %q", cfg.Provider)
	}
}
