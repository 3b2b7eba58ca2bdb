package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Service       ServiceConfig
	Search        SearchConfig
	Transcript    TranscriptConfig
	LLM           LLMConfig
	TTS           TTSConfig
	Audio         AudioConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Principal       string
	HTTPPort        string
	GRPCPort        string
	AppDomain       string // externally visible base URL used to build audio links
	ShutdownTimeout time.Duration
}

type SearchConfig struct {
	Provider      string // youtube, mock
	YouTubeAPIKey string
}

type TranscriptConfig struct {
	Provider  string // youtube, mock
	Languages []string
}

type LLMConfig struct {
	Provider string // gemini, openai, mock
	APIKey   string
	APIBase  string // openai-compatible endpoint
	Model    string
}

type TTSConfig struct {
	Provider     string // google, mock
	LanguageCode string
	VoiceName    string
}

type AudioConfig struct {
	StaticDir string
	Workers   int
	QueueSize int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	Principal     string
	TopicAnalysis string
	TopicAudio    string
}

type ObservabilityConfig struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

func Load() *Config {
	llmProvider := envOrDefault("LLM_PROVIDER", "openai")
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-video-summary")

	return &Config{
		Service: ServiceConfig{
			Principal:       principal,
			HTTPPort:        envOrDefault("HTTP_PORT", "8000"),
			GRPCPort:        envOrDefault("GRPC_PORT", "50051"),
			AppDomain:       strings.TrimSuffix(envOrDefault("APP_DOMAIN", "http://localhost:8000"), "/"),
			ShutdownTimeout: envOrDefaultDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Search: SearchConfig{
			Provider:      envOrDefault("SEARCH_PROVIDER", "youtube"),
			YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		},
		Transcript: TranscriptConfig{
			Provider:  envOrDefault("TRANSCRIPT_PROVIDER", "youtube"),
			Languages: envOrDefaultList("TRANSCRIPT_LANGUAGES", "en"),
		},
		LLM: LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			APIBase:  envOrDefault("LLM_API_BASE", "https://api.groq.com/openai/v1"),
			Model:    envOrDefault("LLM_MODEL", defaultModel(llmProvider)),
		},
		TTS: TTSConfig{
			Provider:     envOrDefault("TTS_PROVIDER", "google"),
			LanguageCode: envOrDefault("TTS_LANGUAGE_CODE", "en-US"),
			VoiceName:    os.Getenv("TTS_VOICE_NAME"),
		},
		Audio: AudioConfig{
			StaticDir: envOrDefault("AUDIO_STATIC_DIR", "static"),
			Workers:   envOrDefaultInt("AUDIO_WORKERS", 2),
			QueueSize: envOrDefaultInt("AUDIO_QUEUE_SIZE", 64),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultList("KAFKA_BROKERS", ""),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
			TopicAnalysis: envOrDefault("KAFKA_TOPIC_ANALYSIS", "video.analysis.completed"),
			TopicAudio:    envOrDefault("KAFKA_TOPIC_AUDIO", "video.audio.rendered"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
		},
	}
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "llama3-70b-8192"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// envOrDefaultList splits a comma-separated variable, dropping empty entries.
func envOrDefaultList(key, def string) []string {
	raw := envOrDefault(key, def)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
