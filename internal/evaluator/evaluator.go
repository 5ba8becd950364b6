// Package evaluator runs the external Nix evaluator over a buffer and turns
// its error output into diagnostics.
package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// DefaultCommand is the evaluator executable used when none is configured.
const DefaultCommand = "nix-instantiate"

// DefaultArgs request strict, traced evaluation of stdin.
var DefaultArgs = []string{"--eval", "--strict", "--show-trace", "-"}

// Evaluator spawns the external evaluator. The zero value is not usable;
// construct with New.
type Evaluator struct {
	Command string
	Args    []string
}

// New returns an evaluator invoking the given command, falling back to the
// defaults for empty values.
func New(command string, args []string) *Evaluator {
	if command == "" {
		command = DefaultCommand
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	return &Evaluator{Command: command, Args: args}
}

// Check feeds src to the evaluator on stdin and parses its error output.
// A non-zero exit with parseable errors is the normal failure mode and is
// not an error; only a failure to run the process at all is.
func (e *Evaluator) Check(ctx context.Context, src []byte) ([]Record, error) {
	cmd := exec.CommandContext(ctx, e.Command, e.Args...)
	cmd.Stdin = bytes.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("evaluator: run %s: %w", e.Command, err)
		}
		// Exit status != 0: the evaluator found problems; fall through to
		// parsing. The records, not the exit code, carry the result.
	}

	records := Parse(stderr.Bytes())
	if len(records) == 0 {
		records = Parse(stdout.Bytes())
	}
	return records, nil
}
