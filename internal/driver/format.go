package driver

import (
	"context"
	"errors"
	"os"
	"time"

	"nixel/internal/format"
)

// FormatOptions configures batch formatting.
type FormatOptions struct {
	Runner   *format.Runner
	Check    bool
	Stdout   bool
	Progress ProgressSink
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Err       error
	Formatted []byte
}

// FormatPaths formats provided files or directories (recursively collecting
// .nix files). When opts.Check is true, files are not modified; Changed
// indicates whether formatting would update the file contents. When
// opts.Stdout is true, formatted content is returned in the results without
// touching files on disk.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := collectNixFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("format: no source files found")
	}

	runner := opts.Runner
	if runner == nil {
		runner = format.New("", nil)
	}

	results := make([]FormatResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		started := time.Now()
		emit(opts.Progress, path, StageFormat, StatusWorking, nil, 0)

		result := formatOne(ctx, path, runner, opts)

		status := StatusDone
		if result.Err != nil {
			status = StatusError
		}
		emit(opts.Progress, path, StageFormat, status, result.Err, time.Since(started))
		results = append(results, result)
	}

	return results, nil
}

func formatOne(ctx context.Context, path string, runner *format.Runner, opts FormatOptions) FormatResult {
	result := FormatResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = err
		return result
	}

	formatted, changed, err := runner.Run(ctx, data)
	if err != nil {
		result.Err = err
		return result
	}
	result.Changed = changed

	if opts.Check {
		return result
	}
	if opts.Stdout {
		result.Formatted = formatted
		return result
	}
	if !changed {
		return result
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, formatted, mode.Perm()); err != nil {
		result.Err = err
		result.Changed = false
	}
	return result
}
