package runner

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"airwave/internal/schedule"
)

type fakeExecutor struct {
	output []byte
	err    error
	delay  time.Duration

	binary string
	args   []string
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.binary = binary
	f.args = args

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.output, f.err
}

func testCommand() schedule.Command {
	return schedule.Command{
		Title:     "Late News",
		Feed:      "late-news",
		StationID: "NHK",
		Start:     "202609012300",
		End:       "202609012330",
	}
}

func TestRunner_Success(t *testing.T) {
	fake := &fakeExecutor{output: []byte("recorded ok\n")}
	r := New("myradiko", time.Minute, WithExecutor(fake))

	outcome := r.Run(context.Background(), testCommand())

	if !outcome.Succeeded() {
		t.Fatalf("Expected success, got %s", outcome.State)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", outcome.ExitCode)
	}
	if outcome.Output != "recorded ok\n" {
		t.Errorf("Expected captured output, got %q", outcome.Output)
	}
	if outcome.Duration < 0 {
		t.Errorf("Expected non-negative duration, got %v", outcome.Duration)
	}
}

func TestRunner_PassesCommandArgs(t *testing.T) {
	fake := &fakeExecutor{}
	r := New("myradiko", 0, WithExecutor(fake))

	cmd := testCommand()
	r.Run(context.Background(), cmd)

	if fake.binary != "myradiko" {
		t.Errorf("Expected binary myradiko, got %q", fake.binary)
	}
	want := cmd.Args()
	if len(fake.args) != len(want) {
		t.Fatalf("Expected %d args, got %d", len(want), len(fake.args))
	}
	for i := range want {
		if fake.args[i] != want[i] {
			t.Errorf("arg[%d]: expected %q, got %q", i, want[i], fake.args[i])
		}
	}
}

func TestRunner_NonZeroExit(t *testing.T) {
	cmd := exec.Command("false")
	_ = cmd.Run()
	exitErr := &exec.ExitError{ProcessState: cmd.ProcessState}

	fake := &fakeExecutor{output: []byte("station not found\n"), err: exitErr}
	r := New("myradiko", time.Minute, WithExecutor(fake))

	outcome := r.Run(context.Background(), testCommand())

	if outcome.State != OutcomeFailed {
		t.Fatalf("Expected failed, got %s", outcome.State)
	}
	if outcome.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", outcome.ExitCode)
	}
	if outcome.Output != "station not found\n" {
		t.Errorf("Expected recorder output preserved, got %q", outcome.Output)
	}
}

func TestRunner_Timeout(t *testing.T) {
	fake := &fakeExecutor{delay: time.Minute}
	r := New("myradiko", 20*time.Millisecond, WithExecutor(fake))

	outcome := r.Run(context.Background(), testCommand())

	if outcome.State != OutcomeTimedOut {
		t.Fatalf("Expected timed_out, got %s", outcome.State)
	}
	if outcome.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", outcome.ExitCode)
	}
}

func TestRunner_SpawnFailure(t *testing.T) {
	fake := &fakeExecutor{err: errors.New("exec: file not found")}
	r := New("/does/not/exist", time.Minute, WithExecutor(fake))

	outcome := r.Run(context.Background(), testCommand())

	if outcome.State != OutcomeFailed {
		t.Fatalf("Expected failed, got %s", outcome.State)
	}
	if outcome.ExitCode != -1 {
		t.Errorf("Expected exit code -1, got %d", outcome.ExitCode)
	}
	if outcome.Output != "exec: file not found" {
		t.Errorf("Expected error text as output, got %q", outcome.Output)
	}
}

func TestRunner_RealExecutor(t *testing.T) {
	r := New("/bin/echo", time.Minute)

	outcome := r.Run(context.Background(), schedule.Command{Title: "hello"})

	if !outcome.Succeeded() {
		t.Fatalf("Expected success running echo, got %s: %s", outcome.State, outcome.Output)
	}
	if outcome.Output == "" {
		t.Error("Expected echoed output")
	}
}
