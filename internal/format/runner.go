// Package format pipes buffers through an external Nix formatter.
//
// Success is exit code 0, in which case the formatter's stdout replaces the
// buffer only when it actually differs. A non-zero exit is a hard failure
// carrying the captured stderr; the buffer is left untouched and nothing is
// retried.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// DefaultCommand is the formatter executable used when none is configured.
const DefaultCommand = "nixfmt"

// Runner invokes the external formatter synchronously.
type Runner struct {
	Command string
	Args    []string
}

// New returns a runner for the given command, defaulting when empty.
func New(command string, args []string) *Runner {
	if command == "" {
		command = DefaultCommand
	}
	return &Runner{Command: command, Args: args}
}

// ExitError reports a formatter run that exited non-zero. Stderr holds the
// captured diagnostic output for display to the user.
type ExitError struct {
	Command string
	Stderr  []byte
	Err     error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("format: %s failed: %v", e.Command, e.Err)
	if len(e.Stderr) > 0 {
		msg += "\n" + string(bytes.TrimRight(e.Stderr, "\n"))
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run feeds src through the formatter and returns its output. changed
// reports whether the output differs from the input; callers must not touch
// the buffer when it does not.
func (r *Runner) Run(ctx context.Context, src []byte) (out []byte, changed bool, err error) {
	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, false, &ExitError{Command: r.Command, Stderr: stderr.Bytes(), Err: err}
		}
		return nil, false, fmt.Errorf("format: run %s: %w", r.Command, err)
	}

	out = stdout.Bytes()
	return out, !bytes.Equal(out, src), nil
}

// FormatFile formats one file in place, rewriting it only when the formatted
// text differs from what is on disk.
func (r *Runner) FormatFile(ctx context.Context, path string) (changed bool, err error) {
	// #nosec G304 -- path is provided by the caller
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, changed, err := r.Run(ctx, src)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}
