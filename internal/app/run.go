package app

import (
	"errors"
	"time"

	"bcl-go/internal/bcl"
)

const (
	StatusRunning   = "running"
	StatusSuccess   = "success"
	StatusFailed    = "error"
	StatusCancelled = "cancelled"
)

// Run tracks one invocation of a CLI command. Its ID tags every log line
// written during the invocation.
type Run struct {
	ID       string
	Command  string
	Started  time.Time
	Finished time.Time
	Status   string
}

// NewRun creates a running Run.
func NewRun(ids bcl.IDGenerator, clock bcl.Clock, command string) *Run {
	return &Run{
		ID:      ids.New(),
		Command: command,
		Started: clock.Now(),
		Status:  StatusRunning,
	}
}

// Finish records the outcome of the command. Only the first call counts.
func (r *Run) Finish(clock bcl.Clock, err error) {
	if r.Status != StatusRunning {
		return
	}
	r.Finished = clock.Now()
	switch {
	case err == nil:
		r.Status = StatusSuccess
	case errors.Is(err, ErrCancelled):
		r.Status = StatusCancelled
	default:
		r.Status = StatusFailed
	}
}

// Elapsed returns the duration of a finished run.
func (r *Run) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
