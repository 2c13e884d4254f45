package core

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/juju/ratelimit"
	"golang.org/x/sync/errgroup"

	"github.com/bmtlab/each/core/config"
)

var traceColor = color.New(color.FgCyan)

// Engine owns the worker pool that executes the command template once per
// token. Construction snapshots the child environment; nothing in the engine
// is mutated after NewEngine except the per-token outcome slots, each of
// which is written by exactly one worker.
type Engine struct {
	cfg    *config.Config
	runner Runner
	env    []string
	shell  string
	bucket *ratelimit.Bucket

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// printMu serializes the engine's own trace and dry-run lines. Child
	// process output goes straight to the underlying streams and is
	// deliberately not serialized in parallel mode.
	printMu sync.Mutex
}

// NewEngine builds an engine for cfg. baseEnv is the parent environment
// snapshot (normally os.Environ()) that --env entries are merged over; the
// merge fails with the reserved exit code on a malformed entry.
func NewEngine(cfg *config.Config, runner Runner, baseEnv []string, stdin io.Reader, stdout, stderr io.Writer) (*Engine, error) {
	extra, err := config.ParseEnv(cfg.Env)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		runner: runner,
		env:    config.MergeEnviron(baseEnv, extra),
		shell:  cfg.Shell,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	if e.shell == "" {
		e.shell = config.DefaultShell
	}
	if cfg.Rate > 0 {
		e.bucket = ratelimit.NewBucketWithRate(cfg.Rate, 1)
	}
	return e, nil
}

// Run tokenizes raw input and dispatches every token, returning the final
// process exit code. Zero tokens exit 0 without touching the shell.
func (e *Engine) Run(ctx context.Context, raw []byte) (int, error) {
	// The stdin/parallelism conflict is validated up front by the CLI
	// layer, but the engine refuses to start on it regardless: the
	// parent's stdin is a single exclusive resource.
	if e.cfg.MaxProcs > 1 && e.cfg.ForwardStdin {
		return config.ExitNeedsNoStdinForParallel, &config.StdinConflictError{MaxProcs: e.cfg.MaxProcs}
	}

	tokens, err := Tokenize(raw, e.cfg)
	if err != nil {
		return config.ExitOK, err
	}
	if len(tokens) == 0 {
		return config.ExitOK, nil
	}

	var outcomes []Outcome
	if e.cfg.MaxProcs > 1 {
		outcomes = e.runParallel(ctx, tokens)
	} else {
		outcomes = e.runSequential(ctx, tokens)
	}
	return Aggregate(outcomes), nil
}

// runSequential executes tokens strictly in order, waiting for each child
// before starting the next. It stops submitting as soon as one token fails;
// outcomes already produced stay recorded, later tokens stay Pending.
func (e *Engine) runSequential(ctx context.Context, tokens []string) []Outcome {
	outcomes := newOutcomes(len(tokens))
	for i, token := range tokens {
		outcomes[i] = e.dispatch(ctx, i, token)
		if outcomes[i].Failed() {
			break
		}
	}
	return outcomes
}

// runParallel executes tokens over a pool of at most MaxProcs concurrent
// children. Submission follows token order; completion order is
// unconstrained. All submitted work runs to completion even after a failure,
// so a partially launched batch is never abandoned mid-flight.
func (e *Engine) runParallel(ctx context.Context, tokens []string) []Outcome {
	outcomes := newOutcomes(len(tokens))

	var group errgroup.Group
	group.SetLimit(e.cfg.MaxProcs)
	for i, token := range tokens {
		i, token := i, token
		group.Go(func() error {
			outcomes[i] = e.dispatch(ctx, i, token)
			return nil
		})
	}
	// Workers never return errors; failures live in the outcome slots.
	_ = group.Wait()
	return outcomes
}

// dispatch builds and executes the command for a single token.
func (e *Engine) dispatch(ctx context.Context, index int, token string) Outcome {
	line := BuildCommand(e.cfg.Template, e.cfg.Placeholder, token, e.cfg.Quote)

	e.printMu.Lock()
	if e.cfg.Trace {
		traceColor.Fprintf(e.stderr, "+ %s\n", line)
	}
	if e.cfg.DryRun {
		fmt.Fprintln(e.stdout, line)
	}
	e.printMu.Unlock()

	if e.cfg.DryRun {
		return Outcome{Index: index, Status: StatusNotExecuted}
	}

	if e.bucket != nil {
		e.bucket.Wait(1)
	}

	spec := SpawnSpec{
		Line:   line,
		Shell:  e.shell,
		Env:    e.env,
		Stdout: e.stdout,
		Stderr: e.stderr,
	}
	if e.cfg.ForwardStdin {
		spec.Stdin = e.stdin
	}

	code, err := e.runner.Run(ctx, spec)
	if err != nil {
		e.printMu.Lock()
		fmt.Fprintf(e.stderr, "each: %v\n", err)
		e.printMu.Unlock()
		return Outcome{Index: index, Status: StatusSpawnFailed, Err: err}
	}
	return Outcome{Index: index, Status: StatusCompleted, Code: code}
}

func newOutcomes(n int) []Outcome {
	outcomes := make([]Outcome, n)
	for i := range outcomes {
		outcomes[i] = Outcome{Index: i, Status: StatusPending}
	}
	return outcomes
}
