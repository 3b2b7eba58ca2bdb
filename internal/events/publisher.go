// Package events publishes pipeline domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-video-summary-service/internal/models"
	"ai-video-summary-service/internal/observability/metrics"
	"ai-video-summary-service/internal/schema"
)

// Publisher publishes analysis and audio events to separate Kafka topics.
type Publisher struct {
	writerAnalysis *kafka.Writer
	writerAudio    *kafka.Writer
	principal      string
	topicAnalysis  string
	topicAudio     string
	enabled        bool
	metrics        *metrics.Metrics
	validator      *schema.Validator
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicAnalysis string
	TopicAudio    string
	Principal     string
	Enabled       bool
}

// New creates a Kafka event publisher. A nil or disabled config yields a log-only publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled:   false,
			metrics:   m,
			validator: schema.New(),
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicAnalysis: cfg.TopicAnalysis,
			topicAudio:    cfg.TopicAudio,
			enabled:       false,
			metrics:       m,
			validator:     schema.New(),
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicAnalysis", cfg.TopicAnalysis).
		Str("topicAudio", cfg.TopicAudio).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerAnalysis: newWriter(cfg.Brokers, cfg.TopicAnalysis, transport),
		writerAudio:    newWriter(cfg.Brokers, cfg.TopicAudio, transport),
		principal:      cfg.Principal,
		topicAnalysis:  cfg.TopicAnalysis,
		topicAudio:     cfg.TopicAudio,
		enabled:        true,
		metrics:        m,
		validator:      schema.New(),
	}
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishAnalysis publishes an AnalysisCompleted event keyed by video id.
func (p *Publisher) PublishAnalysis(ctx context.Context, ev models.AnalysisCompleted) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	ev.EventType = models.EventTypeAnalysisCompleted
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	if err := p.validator.Validate(ev); err != nil {
		return err
	}
	return p.publish(ctx, p.writerAnalysis, p.topicAnalysis, "analysis", ev.VideoID, ev)
}

// PublishAudio publishes an AudioRendered event keyed by file base name.
func (p *Publisher) PublishAudio(ctx context.Context, ev models.AudioRendered) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	ev.EventType = models.EventTypeAudioRendered
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	if err := p.validator.Validate(ev); err != nil {
		return err
	}
	return p.publish(ctx, p.writerAudio, p.topicAudio, "audio", ev.FileBaseName, ev)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerAnalysis != nil {
		if e := p.writerAnalysis.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing analysis writer")
			err = e
		}
	}
	if p.writerAudio != nil {
		if e := p.writerAudio.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing audio writer")
			err = e
		}
	}
	return err
}
