// Package schema validates requests, results and events at the service boundary.
package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"ai-video-summary-service/internal/models"
)

// MaxQueryLength bounds the free-text query, in characters.
const MaxQueryLength = 500

// ValidationError describes the first invalid field found.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate checks the known boundary types. Unknown types pass.
func (v *Validator) Validate(value any) error {
	var err error
	switch x := value.(type) {
	case models.SummarizeRequest:
		err = validateRequest(x)
	case *models.SummarizeRequest:
		err = validateRequest(*x)
	case *models.AnalysisResult:
		err = validateResult(x)
	case models.AnalysisCompleted:
		err = validateEvent(x.EventType, models.EventTypeAnalysisCompleted, x.EventID, x.Timestamp)
	case models.AudioRendered:
		err = validateEvent(x.EventType, models.EventTypeAudioRendered, x.EventID, x.Timestamp)
		if err == nil && x.FileBaseName == "" {
			err = &ValidationError{Field: "fileBaseName", Reason: "required"}
		}
	}

	if err != nil {
		log.Debug().Err(err).Type("type", value).Msg("Schema validation failed")
	}
	return err
}

func validateRequest(r models.SummarizeRequest) error {
	q := strings.TrimSpace(r.UserQuery)
	if q == "" {
		return &ValidationError{Field: "user_query", Reason: "required"}
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return &ValidationError{Field: "user_query", Reason: fmt.Sprintf("longer than %d characters", MaxQueryLength)}
	}
	return nil
}

func validateResult(r *models.AnalysisResult) error {
	if r == nil {
		return &ValidationError{Field: "result", Reason: "missing"}
	}
	if (r.AudioFilename == nil) != (r.AudioURL == nil) {
		return &ValidationError{Field: "audio_filename", Reason: "must be set together with audio_summary_url"}
	}
	if r.AudioFilename != nil && r.AudioURL != nil && !strings.HasSuffix(*r.AudioURL, "/"+*r.AudioFilename) {
		return &ValidationError{Field: "audio_summary_url", Reason: "does not point at audio_filename"}
	}
	return nil
}

func validateEvent(got, want, id string, ts int64) error {
	if got != want {
		return &ValidationError{Field: "eventType", Reason: fmt.Sprintf("expected %q, got %q", want, got)}
	}
	if id == "" {
		return &ValidationError{Field: "eventId", Reason: "required"}
	}
	if ts <= 0 {
		return &ValidationError{Field: "timestamp", Reason: "must be positive"}
	}
	return nil
}
