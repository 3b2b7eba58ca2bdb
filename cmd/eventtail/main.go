// Command eventtail follows the analysis and audio topics and prints each event.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ai-video-summary-service/internal/models"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicAnalysis := flag.String("topic-analysis", "video.analysis.completed", "Analysis topic")
	topicAudio := flag.String("topic-audio", "video.audio.rendered", "Audio topic")
	since := flag.Duration("since", time.Hour, "Replay messages newer than this")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, topic := range []string{*topicAnalysis, *topicAudio} {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			consume(ctx, strings.Split(*brokers, ","), topic, *since)
		}(topic)
	}
	wg.Wait()
}

func consume(ctx context.Context, brokers []string, topic string, since time.Duration) {
	// Partition reader without a consumer group works through a port-forward.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Could not seek, reading from current offset")
	}
	log.Info().Str("topic", topic).Dur("since", since).Msg("Consuming")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("topic", topic).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		line, err := describe(msg.Value)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Skipping undecodable event")
			continue
		}
		log.Info().Str("topic", topic).Str("key", string(msg.Key)).Msg(line)
	}
}

// describe renders one event payload as a single human-readable line.
func describe(payload []byte) (string, error) {
	var head struct {
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return "", err
	}

	switch head.EventType {
	case models.EventTypeAnalysisCompleted:
		var ev models.AnalysisCompleted
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", err
		}
		line := fmt.Sprintf("analysis %s %q (%d chars)", ev.VideoID, truncate(ev.Title, 40), ev.SummaryChars)
		if ev.AudioRequested {
			line += " audio=" + ev.AudioFilename
		}
		return line, nil
	case models.EventTypeAudioRendered:
		var ev models.AudioRendered
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", err
		}
		line := fmt.Sprintf("audio %s %s %dms", ev.FileBaseName, ev.State, ev.DurationMs)
		if ev.Error != "" {
			line += ": " + ev.Error
		}
		return line, nil
	default:
		return "", fmt.Errorf("unknown event type %q", head.EventType)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
