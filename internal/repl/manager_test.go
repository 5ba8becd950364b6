package repl

import (
	"context"
	"testing"
	"time"
)

// catConfig backs sessions with `cat`, which never prints a prompt: load
// waits fall through on their short window, which is all these tests need.
func catConfig() Config {
	return Config{Command: "cat", Timeout: 100 * time.Millisecond}
}

func TestManagerReusesSessionForUnchangedBuffer(t *testing.T) {
	m := NewManager(catConfig())
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	buf := Buffer{Name: "default.nix", Contents: []byte("{ a = 1; }")}
	first, err := m.Acquire(ctx, buf)
	if err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}
	second, err := m.Acquire(ctx, buf)
	if err != nil {
		t.Fatalf("Expected re-acquire to succeed, got %v", err)
	}
	if first != second {
		t.Error("Expected the same session for an unchanged buffer")
	}
}

func TestManagerRestartsSessionWhenBufferChanges(t *testing.T) {
	m := NewManager(catConfig())
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	first, err := m.Acquire(ctx, Buffer{Name: "default.nix", Contents: []byte("old")})
	if err != nil {
		t.Fatalf("Expected acquire to succeed, got %v", err)
	}
	second, err := m.Acquire(ctx, Buffer{Name: "default.nix", Contents: []byte("new")})
	if err != nil {
		t.Fatalf("Expected acquire after edit to succeed, got %v", err)
	}
	if first == second {
		t.Error("Expected a fresh session after the buffer changed")
	}
	// The stale session must be unusable.
	if first.stdin != nil {
		t.Error("Expected the old session to be torn down")
	}
}

func TestManagerSeparateSessionsPerBuffer(t *testing.T) {
	m := NewManager(catConfig())
	defer func() { _ = m.Close() }()
	ctx := context.Background()

	a, err := m.Acquire(ctx, Buffer{Name: "a.nix", Contents: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Acquire(ctx, Buffer{Name: "b.nix", Contents: []byte("x")})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("Expected distinct sessions for distinct buffers")
	}
}

func TestManagerSpawnFailure(t *testing.T) {
	m := NewManager(Config{Command: "nixel-no-such-repl", Timeout: 50 * time.Millisecond})
	defer func() { _ = m.Close() }()

	_, err := m.Acquire(context.Background(), Buffer{Name: "x.nix"})
	if err == nil {
		t.Fatal("Expected spawn failure for a missing executable")
	}
}
