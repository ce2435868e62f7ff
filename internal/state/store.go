// Package state records solver runs in SQLite.
// Every solve creates a run row that is later completed with its answer or
// marked failed with the error message.
package state

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded solve.
type Run struct {
	ID             string
	InputPath      string
	InputHash      string
	Mode           string
	Workers        int
	SkipChainCheck bool
	Status         RunStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
	Error          string

	// Set once the run completes.
	Answer    *uint64
	Chain     []string
	Stages    int
	Triples   int
	Inputs    int
	Values    uint64
	Fragments int
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// NewRun describes a run about to start.
type NewRun struct {
	InputPath string
	InputHash string
	Mode      string
	Workers   int

	// SkipChainCheck is part of the reuse key.
	SkipChainCheck bool
}

// Outcome is the result recorded when a run completes.
type Outcome struct {
	Answer    uint64
	Chain     []string
	Stages    int
	Triples   int
	Inputs    int
	Values    uint64
	Fragments int
}
