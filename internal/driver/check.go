package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"nixel/internal/diag"
	"nixel/internal/evaluator"
)

// CheckOptions configures a parallel evaluation run.
type CheckOptions struct {
	Evaluator      *evaluator.Evaluator
	MaxDiagnostics int
	Jobs           int
	Cache          *DiskCache
	Progress       ProgressSink
}

// CheckResult captures the outcome of checking a single file.
type CheckResult struct {
	Path   string
	Bag    *diag.Bag
	Cached bool
	Err    error
}

// CheckPaths evaluates the provided files or directories (recursively
// collecting .nix files) and returns per-file diagnostics. Files are
// processed in parallel; results preserve the sorted file order.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions) ([]CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := collectNixFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("check: no source files found")
	}

	eval := opts.Evaluator
	if eval == nil {
		eval = evaluator.New("", nil)
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range files {
		emit(opts.Progress, path, StageEval, StatusQueued, nil, 0)
	}

	// Каждый индекс пишется ровно одной горутиной, мьютекс не нужен.
	results := make([]CheckResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			started := time.Now()
			emit(opts.Progress, path, StageEval, StatusWorking, nil, 0)

			results[i] = checkOne(gctx, path, eval, maxDiag, opts.Cache)

			status := StatusDone
			if results[i].Err != nil {
				status = StatusError
			}
			emit(opts.Progress, path, StageEval, status, results[i].Err, time.Since(started))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func checkOne(ctx context.Context, path string, eval *evaluator.Evaluator, maxDiag int, cache *DiskCache) CheckResult {
	result := CheckResult{Path: path, Bag: diag.NewBag(maxDiag)}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFile,
			Message:  "failed to load file: " + err.Error(),
			File:     path,
		})
		return result
	}

	key := ContentDigest(data)
	var payload DiskPayload
	if hit, err := cache.Get(key, &payload); err == nil && hit {
		for _, rec := range payload.Records {
			result.Bag.Add(rec)
		}
		result.Cached = true
		return result
	}

	records, err := eval.Check(ctx, data)
	if err != nil {
		result.Err = err
		result.Bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.EvalSpawn,
			Message:  err.Error(),
			File:     path,
		})
		return result
	}

	for _, rec := range records {
		if rec.File == "" {
			rec.File = path
		}
		result.Bag.Add(rec)
	}

	// Кэш необязателен: проверка остаётся валидной и без записи.
	_ = cache.Put(key, &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		ContentHash: key,
		Records:     result.Bag.Items(),
	})
	return result
}

// CollectFiles expands files and directories into the sorted, deduplicated
// list of .nix source files a run would process. The progress UI uses it to
// size its display before the run starts.
func CollectFiles(ctx context.Context, paths []string) ([]string, error) {
	return collectNixFiles(ctx, paths)
}

// collectNixFiles expands files and directories into a sorted, deduplicated
// list of .nix source files.
func collectNixFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if filepath.Ext(path) == ".nix" {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		addFile(p)
	}

	sort.Strings(files)
	return files, nil
}
