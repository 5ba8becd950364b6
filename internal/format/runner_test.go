package format

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunIdenticalOutputIsNotAChange(t *testing.T) {
	// cat echoes stdin verbatim: the formatter agreeing with the input must
	// not count as a change.
	r := New("cat", nil)
	src := []byte("{ a = 1; }\n")

	out, changed, err := r.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if changed {
		t.Error("Expected identical output to report changed=false")
	}
	if string(out) != string(src) {
		t.Errorf("Expected output to equal input, got %q", out)
	}
}

func TestRunDifferentOutputIsAChange(t *testing.T) {
	// tr rewrites the buffer, so the run must report a change.
	r := New("tr", []string{"a", "b"})
	src := []byte("a = 1;\n")

	out, changed, err := r.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !changed {
		t.Error("Expected rewritten output to report changed=true")
	}
	if string(out) != "b = 1;\n" {
		t.Errorf("Expected rewritten output, got %q", out)
	}
}

func TestRunNonZeroExitIsHardFailure(t *testing.T) {
	r := New("false", nil)

	_, _, err := r.Run(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("Expected an error for non-zero exit")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %T: %v", err, err)
	}
}

func TestRunMissingExecutable(t *testing.T) {
	r := New("nixel-no-such-formatter", nil)

	_, _, err := r.Run(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("Expected an error for a missing executable")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Error("Expected a spawn failure, not an ExitError")
	}
}

func TestFormatFileUntouchedWhenClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.nix")
	content := []byte("{ a = 1; }\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	r := New("cat", nil)
	changed, err := r.FormatFile(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if changed {
		t.Error("Expected clean file to report changed=false")
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("Expected clean file to be left untouched on disk")
	}
}

func TestFormatFileRewrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dirty.nix")
	if err := os.WriteFile(path, []byte("aaa\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New("tr", []string{"a", "b"})
	changed, err := r.FormatFile(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !changed {
		t.Error("Expected rewrite to report changed=true")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "bbb\n" {
		t.Errorf("Expected rewritten content, got %q", got)
	}
}
