// Package runner executes the external recorder binary with a bounded
// wall-clock ceiling and reports every failure mode as an Outcome.
package runner

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"airwave/internal/schedule"
)

// OutcomeState classifies how an execution ended.
type OutcomeState string

const (
	// OutcomeSucceeded means the recorder exited zero within the ceiling.
	OutcomeSucceeded OutcomeState = "succeeded"
	// OutcomeFailed means a non-zero exit or a spawn failure.
	OutcomeFailed OutcomeState = "failed"
	// OutcomeTimedOut means the ceiling expired and the process was killed.
	OutcomeTimedOut OutcomeState = "timed_out"
)

// Outcome is the result of one recorder execution. It is ephemeral: produced
// here, consumed by the completion monitor, never persisted as-is.
type Outcome struct {
	State    OutcomeState
	ExitCode int
	Output   string // combined stdout+stderr
	Duration time.Duration
}

// Succeeded reports whether the execution completed cleanly.
func (o Outcome) Succeeded() bool { return o.State == OutcomeSucceeded }

// Executor abstracts process execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner invokes the recorder binary.
type Runner struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a runner. timeout is the execution ceiling; zero disables it.
func New(binary string, timeout time.Duration, opts ...Option) *Runner {
	r := &Runner{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the recorder for cmd and blocks until it exits or the ceiling
// expires. It never returns an error: spawn failures, non-zero exits and
// timeouts are all represented in the Outcome.
func (r *Runner) Run(ctx context.Context, cmd schedule.Command) Outcome {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	output, err := r.exec.Run(runCtx, r.binary, cmd.Args())

	outcome := Outcome{
		Output:   string(output),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		outcome.State = OutcomeSucceeded

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.State = OutcomeTimedOut
		outcome.ExitCode = -1

	default:
		outcome.State = OutcomeFailed
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
		} else {
			// Spawn failure: missing binary, permission. No process ran.
			outcome.ExitCode = -1
			outcome.Output = err.Error()
		}
	}

	return outcome
}
