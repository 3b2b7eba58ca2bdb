package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"ai-video-summary-service/internal/service/llm"
	"ai-video-summary-service/internal/service/llm/mock"
)

func TestSummarize_TruncatesTranscript(t *testing.T) {
	tests := []struct {
		name      string
		inputLen  int
		wantChars int
	}{
		{"exactly limit", 6000, 6000},
		{"one over", 6001, 6000},
		{"double", 12000, 6000},
		{"short", 11, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mock.Completer{Response: "stub"}
			input := strings.Repeat("a", tt.inputLen)

			if _, err := New(c).Summarize(context.Background(), input); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			calls := c.Calls()
			if len(calls) != 1 {
				t.Fatalf("expected exactly 1 completion call, got %d", len(calls))
			}
			sent := strings.TrimPrefix(calls[0].Prompt, promptTemplate)
			if len(sent) != tt.wantChars {
				t.Errorf("expected %d transcript chars in prompt, got %d", tt.wantChars, len(sent))
			}
		})
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	input := strings.Repeat("é", 7000)

	got := Truncate(input)
	if n := utf8.RuneCountInString(got); n != MaxTranscriptChars {
		t.Errorf("expected %d runes, got %d", MaxTranscriptChars, n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a multi-byte character")
	}
}

func TestSummarize_PromptAndParams(t *testing.T) {
	c := &mock.Completer{Response: "stub"}

	got, err := New(c).Summarize(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "stub" {
		t.Errorf("expected completion verbatim, got %q", got)
	}

	call := c.Calls()[0]
	if call.Params.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", call.Params.Temperature)
	}
	for _, want := range []string{
		"Core message and key themes",
		"Main storyline/plot points",
		"Emotional tone and sentiment",
		"Notable characters/participants",
		"Key takeaways",
		"Transcript: hello world",
	} {
		if !strings.Contains(call.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarize_PropagatesErrors(t *testing.T) {
	boom := errors.New("model overloaded")
	c := &mock.Completer{Err: boom}

	_, err := New(c).Summarize(context.Background(), "text")
	if !errors.Is(err, boom) {
		t.Errorf("expected completion error to propagate, got %v", err)
	}
}

var _ llm.Completer = (*mock.Completer)(nil)
