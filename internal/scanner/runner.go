package scanner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Output is what a finished child process produced
type Output struct {
	Stdout   []byte
	ExitCode int
}

// Success reports whether the process exited with status 0
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Runner runs an external command to completion and buffers its stdout.
// A process that starts and exits non-zero is not an error; only failing to
// start it (or the context expiring) is, as a *ToolInvocationError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// RunnerFunc adapts a function to the Runner interface
type RunnerFunc func(ctx context.Context, name string, args ...string) (Output, error)

func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Output, error) {
	return f(ctx, name, args...)
}

type execRunner struct{}

// ExecRunner returns a Runner backed by os/exec
func ExecRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		// a child killed by the context also reports an ExitError
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, &ToolInvocationError{Tool: name, Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Output{Stdout: stdout.Bytes(), ExitCode: exitErr.ExitCode()}, nil
		}
		return Output{}, &ToolInvocationError{Tool: name, Err: err}
	}

	return Output{Stdout: stdout.Bytes()}, nil
}
