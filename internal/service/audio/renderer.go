// Package audio renders summaries to MP3 files in the background and serves them back by name.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/logging"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/service/naming"
	"ai-video-summary-service/internal/service/tts"
)

var (
	// ErrNotFound is returned by Open when the file has not been rendered (yet).
	ErrNotFound = errors.New("audio file not found")
	// ErrInvalidName is returned by Open for names that are not a plain audio file name.
	ErrInvalidName = errors.New("invalid audio file name")
)

const eventPublishTimeout = 5 * time.Second

// EventPublisher receives a notification for every finished render job.
type EventPublisher interface {
	PublishAudio(ctx context.Context, ev models.AudioRendered) error
}

// Config controls where files go and how many renders run at once.
type Config struct {
	StaticDir string
	Workers   int
	QueueSize int
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		StaticDir: "static",
		Workers:   2,
		QueueSize: 64,
	}
}

// Job is one queued summary-to-audio conversion.
type Job struct {
	Text         string
	FileBaseName string
	CreatedAt    time.Time

	lifecycle *Lifecycle
}

// Renderer owns the static directory and a bounded pool of render workers.
// Jobs are best-effort: failures are only logged, counted and published as events.
type Renderer struct {
	synth     tts.Synthesizer
	publisher EventPublisher
	metrics   *metrics.Metrics
	staticDir string

	jobs chan *Job
	wg   sync.WaitGroup
	// drops counts DROPPED events still being published from RenderAsync.
	drops sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// ctx is cancelled when Close gives up waiting, abandoning in-flight synthesis.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMetrics overrides the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Renderer) { r.metrics = m }
}

// WithPublisher sets the publisher notified when jobs finish.
func WithPublisher(p EventPublisher) Option {
	return func(r *Renderer) { r.publisher = p }
}

// NewRenderer creates a Renderer and starts its workers.
func NewRenderer(synth tts.Synthesizer, cfg Config, opts ...Option) *Renderer {
	def := DefaultConfig()
	if cfg.StaticDir == "" {
		cfg.StaticDir = def.StaticDir
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Renderer{
		synth:     synth,
		metrics:   metrics.DefaultMetrics,
		staticDir: cfg.StaticDir,
		jobs:      make(chan *Job, cfg.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}

	log.Info().
		Str("staticDir", cfg.StaticDir).
		Int("workers", cfg.Workers).
		Int("queueSize", cfg.QueueSize).
		Msg("Audio renderer started")
	return r
}

// StaticDir returns the directory rendered files are written to.
func (r *Renderer) StaticDir() string {
	return r.staticDir
}

// Path returns the deterministic file path for a base name.
func (r *Renderer) Path(fileBaseName string) string {
	return filepath.Join(r.staticDir, naming.FileName(fileBaseName))
}

// Render synthesizes text and writes it to Path(fileBaseName), creating the directory if needed.
// The file appears atomically: readers never see a partial file.
func (r *Renderer) Render(ctx context.Context, text, fileBaseName string) (string, error) {
	if err := os.MkdirAll(r.staticDir, 0o755); err != nil {
		return "", fmt.Errorf("create static dir: %w", err)
	}

	audio, err := r.synth.Synthesize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	path := r.Path(fileBaseName)
	if err := writeAtomic(r.staticDir, path, audio); err != nil {
		return "", err
	}
	return path, nil
}

// RenderAsync queues a render and returns immediately. It reports whether the job was accepted;
// a full queue or a closed renderer drops the job.
func (r *Renderer) RenderAsync(text, fileBaseName string) bool {
	job := &Job{
		Text:         text,
		FileBaseName: fileBaseName,
		CreatedAt:    time.Now(),
		lifecycle:    NewLifecycle(fileBaseName),
	}
	logger := logging.WithRender(fileBaseName)

	r.mu.RLock()
	accepted, reason := r.enqueue(job)
	// Registered under the lock so Close cannot start waiting before the Add.
	async := !accepted && !r.closed
	if async {
		r.drops.Add(1)
	}
	r.mu.RUnlock()

	if accepted {
		r.metrics.RecordRenderQueued()
		logger.Debug().Int("chars", len(text)).Msg("Render job queued")
		return true
	}

	ev, ok := r.drop(job, reason)
	switch {
	case async:
		go func() {
			defer r.drops.Done()
			if ok {
				r.publish(ev)
			}
		}()
	case ok:
		r.publish(ev)
	}
	return false
}

// enqueue must be called with r.mu held for reading.
func (r *Renderer) enqueue(job *Job) (bool, string) {
	if r.closed {
		return false, "renderer closed"
	}
	select {
	case r.jobs <- job:
		return true, ""
	default:
		return false, "queue full"
	}
}

// Close stops accepting jobs and waits for queued and in-flight renders to finish.
// If ctx expires first, in-flight synthesis is cancelled and queued jobs are dropped,
// and ctx's error is returned. Either way every job event has been published when Close
// returns, so the publisher can be closed afterwards. Synthesizers must honor ctx.
func (r *Renderer) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		r.drops.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		log.Info().Msg("Audio renderer drained")
		return nil
	case <-ctx.Done():
		r.cancel()
		log.Warn().Err(ctx.Err()).Msg("Audio renderer shutdown timed out, abandoning renders")
		<-done
		return ctx.Err()
	}
}

// Open returns the rendered file for a download name such as "ABCDEFGHIJK_20240101_120000.mp3".
func (r *Renderer) Open(name string) (*os.File, error) {
	if !validFileName(name) {
		return nil, ErrInvalidName
	}
	f, err := os.Open(filepath.Join(r.staticDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func validFileName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasSuffix(name, naming.Extension)
}

func (r *Renderer) worker() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.process(job)
	}
}

func (r *Renderer) process(job *Job) {
	logger := logging.WithRender(job.FileBaseName)

	if r.ctx.Err() != nil {
		r.metrics.RecordRenderDequeued()
		if ev, ok := r.drop(job, "shutdown"); ok {
			r.publish(ev)
		}
		return
	}
	if err := job.lifecycle.Start(); err != nil {
		logger.Warn().Err(err).Str("state", job.lifecycle.State().String()).Msg("Render job not started")
		return
	}

	r.metrics.RecordRenderStart()
	start := time.Now()

	path, err := r.Render(r.ctx, job.Text, job.FileBaseName)
	elapsed := time.Since(start)

	ev := models.AudioRendered{
		FileBaseName: job.FileBaseName,
		DurationMs:   elapsed.Milliseconds(),
	}
	if err != nil {
		job.lifecycle.Fail()
		ev.Error = err.Error()
		logger.Error().Err(err).Dur("duration", elapsed).Msg("Audio render failed")
	} else {
		job.lifecycle.Complete()
		ev.Path = path
		if info, statErr := os.Stat(path); statErr == nil {
			ev.Bytes = int(info.Size())
		}
		logger.Info().
			Str("path", path).
			Int("bytes", ev.Bytes).
			Dur("queued", start.Sub(job.CreatedAt)).
			Dur("duration", elapsed).
			Msg("Audio rendered")
	}

	state := job.lifecycle.State()
	ev.State = state.String()
	r.metrics.RecordRenderEnd(strings.ToLower(state.String()), ev.Bytes, elapsed.Seconds())
	r.publish(ev)
}

// drop marks job dropped and returns the event to publish, or false if the job already finished.
func (r *Renderer) drop(job *Job, reason string) (models.AudioRendered, bool) {
	if !job.lifecycle.Drop() {
		return models.AudioRendered{}, false
	}
	r.metrics.RecordRenderDropped()
	logger := logging.WithRender(job.FileBaseName)
	logger.Warn().Str("reason", reason).Msg("Render job dropped")
	return models.AudioRendered{
		FileBaseName: job.FileBaseName,
		State:        StateDropped.String(),
		Error:        reason,
	}, true
}

func (r *Renderer) publish(ev models.AudioRendered) {
	if r.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()
	if err := r.publisher.PublishAudio(ctx, ev); err != nil {
		logger := logging.WithRender(ev.FileBaseName)
		logger.Warn().Err(err).Msg("Failed to publish audio event")
	}
}

// writeAtomic writes data to a temp file in dir and renames it onto path.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close audio: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod audio: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename audio: %w", err)
	}
	return nil
}
