// Package shell launches external tools and turns their exit codes into
// errors.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/dawn-engine/dawn-compose/internal"
)

// Command is a single external tool invocation. Args[0] is the executable.
type Command struct {
	Args []string

	// AllowFailure returns a non-zero exit code to the caller instead of an
	// ExitError.
	AllowFailure bool

	// Stdout overrides the output stream of the process. Defaults to the
	// context's stdout.
	Stdout io.Writer
}

func (cmd Command) String() string { return internal.CommandLine(cmd.Args) }

// ExitError reports an external command that exited non-zero.
type ExitError struct {
	Args []string
	Code int
}

func (err *ExitError) Error() string {
	return fmt.Sprintf("command `%s` exited with code %d", internal.CommandLine(err.Args), err.Code)
}

// Executor starts a process, waits for it, and returns its exit code.
// A non-nil error means the process could not be run to completion at all.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (int, error)
}

// Runner applies the failure policy of a Command on top of an Executor.
type Runner struct {
	Executor Executor
}

func (runner Runner) Run(ctx context.Context, cmd Command) (int, error) {
	if len(cmd.Args) == 0 {
		return 0, errors.New("cannot run empty command")
	}

	internal.Debug(ctx).Printf("+ %s\n", cmd)

	code, err := runner.Executor.Execute(ctx, cmd)
	if err != nil {
		return code, fmt.Errorf("failed to run `%s`: %w", cmd, err)
	}
	if code != 0 && !cmd.AllowFailure {
		return code, &ExitError{Args: cmd.Args, Code: code}
	}
	return code, nil
}

// WaitDelay is how long an interrupted process is given to exit before it is
// killed.
const WaitDelay = 5 * time.Second

// Exec runs commands as real child processes wired to the context's stdio.
type Exec struct {
	// Dir is the working directory of the process. Empty means the current one.
	Dir string
}

func (e Exec) Execute(ctx context.Context, cmd Command) (int, error) {
	proc := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	proc.Dir = e.Dir
	proc.Stdin = internal.Stdin(ctx)
	proc.Stdout = cmd.Stdout
	if proc.Stdout == nil {
		proc.Stdout = internal.Stdout(ctx)
	}
	proc.Stderr = internal.Stderr(ctx)
	proc.Cancel = func() error { return proc.Process.Signal(os.Interrupt) }
	proc.WaitDelay = WaitDelay

	err := proc.Run()
	if ctx.Err() != nil {
		return -1, context.Cause(ctx)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Printer writes each command to Out instead of running it and reports success.
type Printer struct {
	Out io.Writer
}

func (p Printer) Execute(ctx context.Context, cmd Command) (int, error) {
	_, err := fmt.Fprintf(p.Out, "+ %s\n", cmd)
	return 0, err
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd Command) (int, error)

func (fn ExecutorFunc) Execute(ctx context.Context, cmd Command) (int, error) {
	return fn(ctx, cmd)
}
