// Command testclient posts a query to the summary service and, when audio was
// requested, polls the download URL until the rendered file appears.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-video-summary-service/internal/models"
)

func main() {
	server := flag.String("server", "http://localhost:8000", "Summary service base URL")
	query := flag.String("query", "me at the zoo", "Search query")
	tts := flag.Bool("tts", true, "Request an audio summary")
	out := flag.String("out", ".", "Directory to save downloaded audio into")
	wait := flag.Duration("wait", 2*time.Minute, "How long to poll for the audio file")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	client := &http.Client{Timeout: 3 * time.Minute}

	result, err := summarize(client, *server, *query, *tts)
	if err != nil {
		log.Fatal().Err(err).Msg("summarize failed")
	}

	log.Info().
		Str("title", models.Deref(result.Title)).
		Str("channel", models.Deref(result.Channel)).
		Str("link", models.Deref(result.Link)).
		Msg("Video located")
	fmt.Println(result.Summary)

	if result.AudioURL == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()

	path := filepath.Join(*out, models.Deref(result.AudioFilename))
	n, err := pollDownload(ctx, client, *result.AudioURL, path)
	if err != nil {
		log.Fatal().Err(err).Str("url", *result.AudioURL).Msg("audio download failed")
	}
	log.Info().Str("path", path).Int64("bytes", n).Msg("Audio saved")
}

func summarize(client *http.Client, server, query string, tts bool) (*models.AnalysisResult, error) {
	body, err := json.Marshal(models.SummarizeRequest{UserQuery: query, TTS: tts})
	if err != nil {
		return nil, err
	}

	log.Info().Str("query", query).Bool("tts", tts).Msg("Sending summarize request")
	resp, err := client.Post(server+"/summarize", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResult
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &result, nil
}

// pollDownload retries the download URL every second while it answers 404.
func pollDownload(ctx context.Context, client *http.Client, url, path string) (int64, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}

		switch resp.StatusCode {
		case http.StatusOK:
			n, err := save(resp.Body, path)
			resp.Body.Close()
			return n, err
		case http.StatusNotFound:
			resp.Body.Close()
			log.Debug().Int("attempt", attempt).Msg("Audio not ready yet")
		default:
			resp.Body.Close()
			return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func save(r io.Reader, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
