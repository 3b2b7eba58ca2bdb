package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestCandidateText(t *testing.T) {
	tests := []struct {
		name   string
		result *genai.GenerateContentResponse
		want   string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"nil content", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		}, ""},
		{"joins parts", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "Core message: "},
					nil,
					{Text: "perseverance."},
				}},
			}},
		}, "Core message: perseverance."},
		{"first candidate only", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "one"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "two"}}}},
			},
		}, "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidateText(tt.result); got != tt.want {
				t.Errorf("candidateText() = %q, want %q", got, tt.want)
			}
		})
	}
}
