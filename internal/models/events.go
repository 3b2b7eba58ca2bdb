package models

// AnalysisCompleted is published once a result has been assembled.
type AnalysisCompleted struct {
	EventID        string `json:"eventId"`
	EventType      string `json:"eventType"`
	Timestamp      int64  `json:"timestamp"`
	Query          string `json:"query"`
	VideoID        string `json:"videoId"`
	Title          string `json:"title,omitempty"`
	Link           string `json:"link,omitempty"`
	Channel        string `json:"channel,omitempty"`
	SummaryChars   int    `json:"summaryChars"`
	AudioRequested bool   `json:"audioRequested"`
	AudioFilename  string `json:"audioFilename,omitempty"`
}

// AudioRendered is published when a background render job reaches a terminal state.
type AudioRendered struct {
	EventID      string `json:"eventId"`
	EventType    string `json:"eventType"`
	Timestamp    int64  `json:"timestamp"`
	FileBaseName string `json:"fileBaseName"`
	State        string `json:"state"`
	Path         string `json:"path,omitempty"`
	Bytes        int    `json:"bytes,omitempty"`
	DurationMs   int64  `json:"durationMs"`
	Error        string `json:"error,omitempty"`
}

const (
	EventTypeAnalysisCompleted = "video.analysis.completed"
	EventTypeAudioRendered     = "video.audio.rendered"
)
