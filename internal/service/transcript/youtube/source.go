// Package youtube fetches caption tracks from YouTube's Innertube player endpoint.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-video-summary-service/internal/service/transcript"
)

const (
	defaultPlayerURL = "https://www.youtube.com/youtubei/v1/player"
	androidVersion   = "20.10.38"
	androidUA        = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"

	maxTimedTextBytes = 2 << 20
)

var (
	// ErrNoCaptions is returned when the video exposes no caption tracks.
	ErrNoCaptions = errors.New("no captions available for this video")
	// ErrPoTokenRequired is returned when every track needs a browser-only PoToken.
	ErrPoTokenRequired = errors.New("caption tracks require a browser session")
)

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// Source implements transcript.Source against YouTube.
type Source struct {
	client    *http.Client
	playerURL string
	languages []string
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets the HTTP client used for both player and caption requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// WithPlayerURL overrides the Innertube player endpoint.
func WithPlayerURL(u string) Option {
	return func(s *Source) { s.playerURL = u }
}

// New creates a Source preferring captions in the given language codes.
func New(languages []string, opts ...Option) *Source {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	s := &Source{
		client:    &http.Client{Timeout: 30 * time.Second},
		playerURL: defaultPlayerURL,
		languages: languages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segments implements transcript.Source.
func (s *Source) Segments(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	tracks, err := s.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickBestTrack(tracks, s.languages)
	if !ok {
		return nil, ErrPoTokenRequired
	}
	return s.fetchTimedText(ctx, track.BaseURL)
}

func (s *Source) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	body, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.playerURL+"?prettyPrint=false", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player request: unexpected status %d", resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoCaptions, pr.PlayabilityStatus.Reason)
		}
		return nil, ErrNoCaptions
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

func (s *Source) fetchTimedText(ctx context.Context, baseURL string) ([]transcript.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", androidUA)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return nil, err
	}
	return parseTimedText(data)
}

func parseTimedText(data []byte) ([]transcript.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, transcript.Segment{Text: text, Start: start, Duration: dur})
	}
	return segments, nil
}

// needsPoToken reports whether a caption URL can only be fetched from a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an auto-generated one,
// then any English track, then the first usable track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}
