// Package google provides a Google Cloud Text-to-Speech adapter.
package google

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// maxChunkBytes stays under the API's 5000-byte input limit.
const maxChunkBytes = 4500

// Config holds voice configuration for synthesis.
type Config struct {
	LanguageCode string  // BCP-47 code, e.g. "en-US"
	VoiceName    string  // optional, e.g. "en-US-Neural2-C"; empty lets the API choose
	SpeakingRate float64 // 0 keeps the API default (1.0)
}

// DefaultConfig returns the default voice configuration.
func DefaultConfig() Config {
	return Config{
		LanguageCode: "en-US",
	}
}

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// Synthesizer implements tts.Synthesizer using Google Cloud Text-to-Speech.
type Synthesizer struct {
	client     *texttospeech.Client
	synthesize synthesizeFunc
	cfg        Config
}

// New creates a Google TTS synthesizer.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Synthesizer, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = DefaultConfig().LanguageCode
	}
	return &Synthesizer{
		client: c,
		synthesize: func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return c.SynthesizeSpeech(ctx, req)
		},
		cfg: cfg,
	}, nil
}

// Synthesize renders text to MP3. Long text is split into chunks whose MP3 frames are concatenated.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chunks := splitText(text, maxChunkBytes)
	if len(chunks) == 0 {
		return nil, errors.New("tts: nothing to synthesize")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		resp, err := s.synthesize(ctx, s.request(chunk))
		if err != nil {
			return nil, fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(resp.GetAudioContent())
	}
	return audio.Bytes(), nil
}

// Close releases the underlying client.
func (s *Synthesizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Synthesizer) request(text string) *texttospeechpb.SynthesizeSpeechRequest {
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.cfg.LanguageCode,
			Name:         s.cfg.VoiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  s.cfg.SpeakingRate,
		},
	}
}

// splitText cuts text into pieces of at most limit bytes, preferring sentence ends,
// then whitespace, then any rune boundary.
func splitText(text string, limit int) []string {
	text = strings.TrimSpace(text)
	var chunks []string
	for len(text) > limit {
		cut := boundary(text, limit)
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func boundary(text string, limit int) int {
	window := text[:limit]
	if i := strings.LastIndexAny(window, ".!?\n"); i > 0 {
		return i + 1
	}
	if i := strings.LastIndexAny(window, " \t"); i > 0 {
		return i + 1
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return cut
}
