package mdtransform

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// engineBinary is the document engine every renderer shells out to.
const engineBinary = "pandoc"

// CommandRunner abstracts engine invocation to enable testing without real
// subprocesses. dir is the working directory for the invocation; relative
// resource references in the input resolve against it.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// runEngine invokes the engine and converts a failure into an *EngineError
// carrying the argv, exit code, and captured stderr. Context cancellation
// passes through unwrapped so callers can distinguish it.
func runEngine(ctx context.Context, runner CommandRunner, dir string, args ...string) error {
	_, stderr, err := runner.Run(ctx, dir, engineBinary, args...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &EngineError{
		Args:     append([]string{engineBinary}, args...),
		ExitCode: code,
		Stderr:   stderr,
	}
}
