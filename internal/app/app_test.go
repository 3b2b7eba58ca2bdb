package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-video-summary-service/internal/config"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Service: config.ServiceConfig{
			Principal:       "test",
			AppDomain:       "http://localhost:8000",
			ShutdownTimeout: time.Second,
		},
		Search:        config.SearchConfig{Provider: "mock"},
		Transcript:    config.TranscriptConfig{Provider: "mock"},
		LLM:           config.LLMConfig{Provider: "mock"},
		TTS:           config.TTSConfig{Provider: "mock"},
		Audio:         config.AudioConfig{StaticDir: filepath.Join(t.TempDir(), "static"), Workers: 1, QueueSize: 4},
		Observability: config.ObservabilityConfig{LogLevel: "error", LogFormat: "json"},
	}
}

func TestNew_MockProvidersEndToEnd(t *testing.T) {
	cfg := mockConfig(t)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if a.IsReady() {
		t.Error("expected application not ready before Start")
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !a.IsReady() {
		t.Error("expected application ready after Start")
	}

	result, err := a.Pipeline.AnalyzeVideo(context.Background(), "zoo", true)
	if err != nil {
		t.Fatalf("AnalyzeVideo() error: %v", err)
	}
	if result.Summary == "" {
		t.Error("expected a summary")
	}
	if result.AudioFilename == nil {
		t.Fatal("expected audio filename")
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}
	if a.IsReady() {
		t.Error("expected application not ready after Shutdown")
	}
	if _, err := os.Stat(filepath.Join(cfg.Audio.StaticDir, *result.AudioFilename)); err != nil {
		t.Errorf("expected rendered audio after shutdown drain: %v", err)
	}
}

func TestNew_UnknownProviders(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"search", func(c *config.Config) { c.Search.Provider = "bing" }},
		{"transcript", func(c *config.Config) { c.Transcript.Provider = "whisper" }},
		{"llm", func(c *config.Config) { c.LLM.Provider = "unknown" }},
		{"tts", func(c *config.Config) { c.TTS.Provider = "polly" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mockConfig(t)
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg); err == nil {
				t.Error("expected error for unknown provider")
			}
		})
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"youtube search without key", func(c *config.Config) { c.Search.Provider = "youtube" }},
		{"openai without key", func(c *config.Config) { c.LLM.Provider = "openai" }},
		{"gemini without key", func(c *config.Config) { c.LLM.Provider = "gemini" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mockConfig(t)
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg); err == nil {
				t.Error("expected error for missing credentials")
			}
		})
	}
}
