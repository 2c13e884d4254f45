package core

import "github.com/bmtlab/each/core/config"

// Status tracks a token through the dispatch state machine.
type Status int

const (
	// StatusPending marks a token that was never submitted, which happens
	// after a sequential-mode halt.
	StatusPending Status = iota
	// StatusNotExecuted marks a dry-run outcome.
	StatusNotExecuted
	// StatusCompleted marks a child that was spawned and waited for.
	StatusCompleted
	// StatusSpawnFailed marks a child that could not be started.
	StatusSpawnFailed
)

// Outcome records the result of dispatching one token. Outcomes are keyed by
// token index so aggregation is deterministic regardless of completion order.
type Outcome struct {
	Index  int
	Status Status
	// Code is the child's exit code; meaningful only for StatusCompleted.
	Code int
	// Err is the spawn failure; meaningful only for StatusSpawnFailed.
	Err error
}

// Failed reports whether the outcome contributes a non-zero exit code.
func (o Outcome) Failed() bool {
	return o.ExitCode() != config.ExitOK
}

// ExitCode returns the outcome's contribution to the aggregate exit code. A
// spawn failure, or a child killed by a signal before exiting, maps to the
// reserved sentinel.
func (o Outcome) ExitCode() int {
	switch o.Status {
	case StatusCompleted:
		if o.Code < 0 {
			return config.ExitChildFailed
		}
		return o.Code
	case StatusSpawnFailed:
		return config.ExitChildFailed
	default:
		return config.ExitOK
	}
}

// Aggregate determines the program exit code from per-token outcomes: the
// first non-zero exit code by token submission order, or 0 when every
// outcome succeeded or no tokens were processed. Pure and idempotent.
func Aggregate(outcomes []Outcome) int {
	for _, o := range outcomes {
		if code := o.ExitCode(); code != config.ExitOK {
			return code
		}
	}
	return config.ExitOK
}
