package config

import "fmt"

// PlaceholderError reports a command template that never mentions the
// placeholder, so no token could ever be substituted.
type PlaceholderError struct {
	Placeholder string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("command must contain placeholder %q", e.Placeholder)
}

// ExitCode returns the reserved exit code for a missing placeholder.
func (e *PlaceholderError) ExitCode() int { return ExitNoPlaceholder }

// EnvSyntaxError reports an --env entry that is not KEY=VALUE.
type EnvSyntaxError struct {
	Entry string
}

func (e *EnvSyntaxError) Error() string {
	return fmt.Sprintf("invalid env entry (expected KEY=VALUE): %q", e.Entry)
}

// ExitCode returns the reserved exit code for a malformed env entry.
func (e *EnvSyntaxError) ExitCode() int { return ExitBadEnv }

// StdinConflictError reports parallel execution requested while the parent's
// stdin would still be forwarded to children.
type StdinConflictError struct {
	MaxProcs int
}

func (e *StdinConflictError) Error() string {
	return fmt.Sprintf("-P/--max-procs %d requires --no-stdin to avoid stdin contention", e.MaxProcs)
}

// ExitCode returns the reserved exit code for the stdin/parallel conflict.
func (e *StdinConflictError) ExitCode() int { return ExitNeedsNoStdinForParallel }

// UsageError wraps any other configuration problem the user can fix on the
// command line.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode returns the usage exit code.
func (e *UsageError) ExitCode() int { return ExitUsage }
