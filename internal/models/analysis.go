// Package models defines the data structures shared by the pipeline, the HTTP layer and events.
package models

// VideoMatch is the best search hit for a query.
// Any field may be nil when the search service returned partial data.
type VideoMatch struct {
	Title   *string `json:"title"`
	Link    *string `json:"link"`
	Channel *string `json:"channel"`
}

// AnalysisResult is the terminal output of the pipeline.
// AudioFilename and AudioURL are both set when audio was requested, both nil otherwise,
// regardless of whether rendering has finished.
type AnalysisResult struct {
	Title         *string `json:"title"`
	Link          *string `json:"link"`
	Channel       *string `json:"channel"`
	Summary       string  `json:"summary"`
	AudioFilename *string `json:"audio_filename"`
	AudioURL      *string `json:"audio_summary_url"`
}

// ErrorResult is the failure shape returned to callers. It carries no other keys.
type ErrorResult struct {
	Error string `json:"error"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	UserQuery string `json:"user_query"`
	TTS       bool   `json:"tts"`
}
