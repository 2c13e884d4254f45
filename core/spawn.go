package core

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// SpawnSpec names exactly which streams and environment a child receives,
// making the stdin-forwarding rule an explicit per-spawn decision instead of
// inherited ambient state.
type SpawnSpec struct {
	// Line is the fully built shell command line.
	Line string
	// Shell is the shell executable that interprets Line.
	Shell string
	// Env is the complete child environment.
	Env []string
	// Stdin is forwarded to the child; nil attaches the null device.
	Stdin io.Reader
	// Stdout and Stderr receive the child's output.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes one shell command line and reports its exit code. A
// non-nil error means the child could not be run at all.
type Runner interface {
	Run(ctx context.Context, spec SpawnSpec) (int, error)
}

// ShellRunner runs command lines through an external shell interpreter,
// equivalent to `<shell> -c <line>`.
type ShellRunner struct{}

// Run implements Runner.
func (ShellRunner) Run(ctx context.Context, spec SpawnSpec) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Shell, "-c", spec.Line)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	cmd.Env = spec.Env

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the child died to a signal; the caller maps
		// that to the reserved sentinel.
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
