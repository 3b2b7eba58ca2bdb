package audio

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a render job.
type State int

const (
	// StateQueued - Job accepted, waiting for a worker.
	StateQueued State = iota
	// StateRendering - A worker is synthesizing and writing the file.
	StateRendering
	// StateCompleted - The file is in place and downloadable.
	StateCompleted
	// StateFailed - Synthesis or the write failed; no file exists.
	StateFailed
	// StateDropped - Job was abandoned before rendering (queue full or shutdown).
	StateDropped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "QUEUED"
	case StateRendering:
		return "RENDERING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	case StateDropped:
		return "DROPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (COMPLETED, FAILED or DROPPED).
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateDropped
}

// Errors for invalid state transitions.
var (
	ErrJobFinished    = errors.New("render job already finished")
	ErrJobNotStarted  = errors.New("render job has not started")
	ErrAlreadyStarted = errors.New("render job already started")
)

// Lifecycle manages the state machine for a single render job.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	QUEUED → RENDERING → COMPLETED
//	  │          │
//	  │          └── Fail() ──→ FAILED
//	  │
//	  └── Drop() ──→ DROPPED
type Lifecycle struct {
	mu           sync.RWMutex
	fileBaseName string
	state        State
}

// NewLifecycle creates a new job lifecycle in QUEUED state.
func NewLifecycle(fileBaseName string) *Lifecycle {
	return &Lifecycle{
		fileBaseName: fileBaseName,
		state:        StateQueued,
	}
}

// FileBaseName returns the job's file base name.
func (l *Lifecycle) FileBaseName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fileBaseName
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Start transitions QUEUED → RENDERING.
func (l *Lifecycle) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateQueued:
		l.state = StateRendering
		return nil
	case StateRendering:
		return ErrAlreadyStarted
	default:
		return ErrJobFinished
	}
}

// Complete transitions RENDERING → COMPLETED.
func (l *Lifecycle) Complete() error {
	return l.finish(StateCompleted)
}

// Fail transitions RENDERING → FAILED.
func (l *Lifecycle) Fail() error {
	return l.finish(StateFailed)
}

func (l *Lifecycle) finish(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateRendering:
		l.state = to
		return nil
	case StateQueued:
		return ErrJobNotStarted
	default:
		return ErrJobFinished
	}
}

// Drop transitions a QUEUED job to DROPPED.
// Returns true if the job was dropped, false if it already started or finished.
func (l *Lifecycle) Drop() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateQueued {
		return false
	}
	l.state = StateDropped
	return true
}
