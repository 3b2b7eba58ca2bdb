// Package naming builds the deterministic file names of rendered audio.
package naming

import "time"

const (
	// TimestampLayout is the second-resolution timestamp embedded in file names.
	TimestampLayout = "20060102_150405"
	// Extension is the audio file extension.
	Extension = ".mp3"
)

// Namer derives render file base names from a video id and the current time.
// Two calls within the same second for the same video yield the same name.
type Namer struct {
	now func() time.Time
}

// New creates a Namer on the wall clock.
func New() *Namer {
	return &Namer{now: time.Now}
}

// NewWithClock creates a Namer reading time from now.
func NewWithClock(now func() time.Time) *Namer {
	return &Namer{now: now}
}

// Next returns "{videoID}_{YYYYMMDD_HHMMSS}".
func (n *Namer) Next(videoID string) string {
	return videoID + "_" + n.now().Format(TimestampLayout)
}

// FileName appends the audio extension to a base name.
func FileName(base string) string {
	return base + Extension
}
