package pipeline

import (
	"fmt"

	"ai-video-summary-service/internal/models"
)

// Stage is one step of AnalyzeVideo, in execution order.
type Stage int

const (
	StageLocate Stage = iota
	StageExtractID
	StageFetchTranscript
	StageSummarize
	StageRenderAudio
	StageAssemble
)

// String returns the metric/log label of the stage.
func (s Stage) String() string {
	switch s {
	case StageLocate:
		return "locate"
	case StageExtractID:
		return "extract_id"
	case StageFetchTranscript:
		return "fetch_transcript"
	case StageSummarize:
		return "summarize"
	case StageRenderAudio:
		return "render_audio"
	case StageAssemble:
		return "assemble"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Policy says what a stage failure does to the rest of the pipeline.
type Policy int

const (
	// PolicyFatal stops the pipeline; the caller gets an ErrorResult.
	PolicyFatal Policy = iota
	// PolicyContinue carries on with the stage's zero value.
	PolicyContinue
	// PolicyContent carries the failure description forward as ordinary data.
	PolicyContent
	// PolicySilent happens in the background; visible only in logs, metrics and events.
	PolicySilent
)

func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyContinue:
		return "continue"
	case PolicyContent:
		return "content"
	case PolicySilent:
		return "silent"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

type stagePolicy struct {
	policy Policy
	// prefix is prepended to the cause in the caller-visible message.
	prefix string
}

// policies is the single place that decides how each stage's failure propagates.
//
//	Stage            Policy    Caller sees
//	locate           fatal     {"error": "Search failed: <cause>"}
//	extract_id       continue  transcript of an empty id
//	fetch_transcript content   "Transcript error: <cause>" summarized as text
//	summarize        fatal     {"error": "Summarization failed: <cause>"}
//	render_audio     silent    missing file at download time
var policies = map[Stage]stagePolicy{
	StageLocate:          {policy: PolicyFatal},
	StageExtractID:       {policy: PolicyContinue},
	StageFetchTranscript: {policy: PolicyContent},
	StageSummarize:       {policy: PolicyFatal, prefix: "Summarization failed: "},
	StageRenderAudio:     {policy: PolicySilent},
	StageAssemble:        {policy: PolicyFatal},
}

// PolicyFor returns the failure policy of a stage. Unknown stages are fatal.
func PolicyFor(s Stage) Policy {
	if p, ok := policies[s]; ok {
		return p.policy
	}
	return PolicyFatal
}

// Error is a fatal stage failure.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return policies[e.Stage].prefix + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result returns the caller-visible {"error": ...} shape.
func (e *Error) Result() models.ErrorResult {
	return models.ErrorResult{Error: e.Error()}
}
