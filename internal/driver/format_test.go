package driver

import (
	"context"
	"os"
	"testing"

	"nixel/internal/format"
)

func TestFormatPathsCheckMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nix", "aaa\n")

	runner := format.New("tr", []string{"a", "b"})
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Runner: runner, Check: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if !results[0].Changed {
		t.Error("check mode should report a pending change")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "aaa\n" {
		t.Errorf("check mode must not rewrite the file, got %q", data)
	}
}

func TestFormatPathsRewrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nix", "aaa\n")

	runner := format.New("tr", []string{"a", "b"})
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Runner: runner})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if !results[0].Changed {
		t.Error("expected a rewrite")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "bbb\n" {
		t.Errorf("file not rewritten, got %q", data)
	}
}

func TestFormatPathsStdoutMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nix", "aaa\n")

	runner := format.New("tr", []string{"a", "b"})
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Runner: runner, Stdout: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if string(results[0].Formatted) != "bbb\n" {
		t.Errorf("formatted output missing, got %q", results[0].Formatted)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "aaa\n" {
		t.Errorf("stdout mode must not rewrite the file, got %q", data)
	}
}

func TestFormatPathsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.nix", "already formatted\n")

	runner := format.New("cat", nil)
	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Runner: runner})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if results[0].Changed {
		t.Error("identical output should not count as a change")
	}
}

func TestFormatPathsFailureIsPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.nix", "x\n")
	writeFile(t, dir, "b.nix", "y\n")

	runner := format.New("false", nil)
	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Runner: runner, Check: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if res.Err == nil {
			t.Errorf("%s: expected a formatter failure", res.Path)
		}
	}
}
