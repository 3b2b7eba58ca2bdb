// Package pipeline runs the locate → transcript → summary → audio chain behind AnalyzeVideo.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/logging"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/service/naming"
	"ai-video-summary-service/internal/service/search"
	"ai-video-summary-service/internal/service/transcript"
)

const (
	downloadPath        = "/download-audio/"
	eventPublishTimeout = 5 * time.Second
)

// Locator finds the best-matching video for a query.
type Locator interface {
	Locate(ctx context.Context, query string) (*models.VideoMatch, error)
}

// TranscriptFetcher returns transcript text, or a diagnostic text on failure.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) string
}

// Summarizer turns transcript text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// AudioRenderer queues a summary for background rendering.
type AudioRenderer interface {
	RenderAsync(text, fileBaseName string) bool
}

// Namer derives render file base names.
type Namer interface {
	Next(videoID string) string
}

// EventPublisher is notified after every successful analysis.
type EventPublisher interface {
	PublishAnalysis(ctx context.Context, ev models.AnalysisCompleted) error
}

// Dependencies are the collaborators of the Orchestrator, constructed once at startup.
type Dependencies struct {
	Locator    Locator
	Transcript TranscriptFetcher
	Summarizer Summarizer
	Renderer   AudioRenderer
	Namer      Namer
	Publisher  EventPublisher // optional
}

// Orchestrator implements AnalyzeVideo.
type Orchestrator struct {
	deps      Dependencies
	appDomain string
	metrics   *metrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics overrides the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator. appDomain is the public base URL used to build audio links.
func New(deps Dependencies, appDomain string, opts ...Option) *Orchestrator {
	if deps.Namer == nil {
		deps.Namer = naming.New()
	}
	o := &Orchestrator{
		deps:      deps,
		appDomain: strings.TrimSuffix(appDomain, "/"),
		metrics:   metrics.DefaultMetrics,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AnalyzeVideo locates the video for query, summarizes its transcript and, when wantAudio is set,
// queues the summary for rendering. It never waits for the render: the returned audio file name
// and URL are predicted from the naming scheme and may 404 until rendering finishes.
//
// A non-nil error is always a *Error whose Result() is the caller-visible failure.
func (o *Orchestrator) AnalyzeVideo(ctx context.Context, query string, wantAudio bool) (*models.AnalysisResult, error) {
	logger := logging.WithComponent("pipeline").With().Str("query", query).Bool("tts", wantAudio).Logger()
	started := time.Now()

	// Locate
	stageStart := time.Now()
	match, err := o.deps.Locator.Locate(ctx, query)
	o.observe(StageLocate, stageStart, err != nil)
	if err != nil {
		return nil, o.fail(logger, StageLocate, err, wantAudio)
	}

	// ExtractId
	stageStart = time.Now()
	videoID := search.ExtractID(models.Deref(match.Link))
	o.observe(StageExtractID, stageStart, videoID == "")
	if videoID == "" {
		o.tolerate(logger, StageExtractID, errors.New("no video id in link "+models.Deref(match.Link)))
	}
	logger = logger.With().Str("videoId", videoID).Logger()

	// FetchTranscript
	stageStart = time.Now()
	text := o.deps.Transcript.Fetch(ctx, videoID)
	transcriptFailed := strings.HasPrefix(text, transcript.DiagnosticPrefix)
	o.observe(StageFetchTranscript, stageStart, transcriptFailed)
	if transcriptFailed {
		o.tolerate(logger, StageFetchTranscript, errors.New(strings.TrimPrefix(text, transcript.DiagnosticPrefix)))
	}

	// Summarize
	stageStart = time.Now()
	summary, err := o.deps.Summarizer.Summarize(ctx, text)
	o.observe(StageSummarize, stageStart, err != nil)
	if err != nil {
		return nil, o.fail(logger, StageSummarize, err, wantAudio)
	}

	// RenderAudio
	result := &models.AnalysisResult{
		Title:   match.Title,
		Link:    match.Link,
		Channel: match.Channel,
		Summary: summary,
	}
	if wantAudio {
		base := o.deps.Namer.Next(videoID)
		fileName := naming.FileName(base)
		url := o.appDomain + downloadPath + fileName
		result.AudioFilename = &fileName
		result.AudioURL = &url

		if !o.deps.Renderer.RenderAsync(summary, base) {
			o.tolerate(logger, StageRenderAudio, errors.New("render job not accepted"))
		}
	}

	// Assemble
	o.publish(logger, query, videoID, result, wantAudio)
	o.metrics.RecordAnalysis("success", wantAudio)
	logger.Info().
		Str("title", models.Deref(result.Title)).
		Int("summaryChars", len(summary)).
		Str("audioFilename", models.Deref(result.AudioFilename)).
		Dur("duration", time.Since(started)).
		Msg("Video analyzed")
	return result, nil
}

func (o *Orchestrator) observe(stage Stage, start time.Time, failed bool) {
	o.metrics.RecordStage(stage.String(), failed, time.Since(start).Seconds())
}

// fail applies a fatal stage policy.
func (o *Orchestrator) fail(logger zerolog.Logger, stage Stage, err error, wantAudio bool) *Error {
	perr := &Error{Stage: stage, Err: err}
	o.metrics.RecordAnalysis(stage.String()+"_failed", wantAudio)
	logger.Warn().
		Err(err).
		Str("stage", stage.String()).
		Str("policy", PolicyFor(stage).String()).
		Msg("Pipeline stopped")
	return perr
}

// tolerate logs a failure whose policy lets the pipeline continue.
func (o *Orchestrator) tolerate(logger zerolog.Logger, stage Stage, err error) {
	logger.Warn().
		Err(err).
		Str("stage", stage.String()).
		Str("policy", PolicyFor(stage).String()).
		Msg("Stage failed, continuing")
}

func (o *Orchestrator) publish(logger zerolog.Logger, query, videoID string, result *models.AnalysisResult, wantAudio bool) {
	if o.deps.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	err := o.deps.Publisher.PublishAnalysis(ctx, models.AnalysisCompleted{
		Query:          query,
		VideoID:        videoID,
		Title:          models.Deref(result.Title),
		Link:           models.Deref(result.Link),
		Channel:        models.Deref(result.Channel),
		SummaryChars:   len(result.Summary),
		AudioRequested: wantAudio,
		AudioFilename:  models.Deref(result.AudioFilename),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to publish analysis event")
	}
}
