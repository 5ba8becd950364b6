package repl

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"
)

// scriptedSession wires a session to an in-memory peer that plays the
// subprocess side of the protocol. The script receives the session's input
// stream and the writer feeding the session's output pump; it must keep
// draining input until the stream closes.
func scriptedSession(t *testing.T, timeout time.Duration, script func(in *bufio.Reader, out io.Writer)) *Session {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		defer func() { _ = outW.Close() }()
		in := bufio.NewReader(inR)
		script(in, outW)
		// Keep the stdin pipe drained so deferred writes never block.
		_, _ = io.Copy(io.Discard, in)
	}()

	sess := newSession(inW, outR, timeout)
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

// readUntilTab consumes input up to and including the next completion
// trigger, returning what was typed before it.
func readUntilTab(in *bufio.Reader) (string, bool) {
	var typed []byte
	for {
		b, err := in.ReadByte()
		if err != nil {
			return "", false
		}
		if b == '\t' {
			return string(typed), true
		}
		typed = append(typed, b)
	}
}

func TestCompleteSingleCandidate(t *testing.T) {
	sess := scriptedSession(t, time.Second, func(in *bufio.Reader, out io.Writer) {
		typed, ok := readUntilTab(in)
		if !ok {
			return
		}
		if typed != "buil" {
			t.Errorf("Expected prefix 'buil', subprocess saw %q", typed)
		}
		// Unique completion: echo the accepted text with the trailing
		// separator after a fresh prompt.
		_, _ = io.WriteString(out, PromptMarker+"builtins ")
	})

	got := sess.Complete(context.Background(), "buil")
	if len(got) != 1 || got[0] != "builtins" {
		t.Errorf("Expected [builtins], got %v", got)
	}
}

func TestCompleteCandidateDump(t *testing.T) {
	sess := scriptedSession(t, 200*time.Millisecond, func(in *bufio.Reader, out io.Writer) {
		if _, ok := readUntilTab(in); !ok {
			return
		}
		// Ambiguous: echo the prefix with no separator.
		_, _ = io.WriteString(out, PromptMarker+"foo.")
		if _, ok := readUntilTab(in); !ok {
			return
		}
		_, _ = io.WriteString(out, "\nfoo.alpha foo.beta foo.gamma\n"+PromptMarker+"foo.")
	})

	got := sess.Complete(context.Background(), "foo.")
	want := []string{"foo.alpha", "foo.beta", "foo.gamma"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCompleteOverflowDeclined(t *testing.T) {
	declined := make(chan byte, 1)
	sess := scriptedSession(t, 200*time.Millisecond, func(in *bufio.Reader, out io.Writer) {
		if _, ok := readUntilTab(in); !ok {
			return
		}
		_, _ = io.WriteString(out, PromptMarker+"b")
		if _, ok := readUntilTab(in); !ok {
			return
		}
		_, _ = io.WriteString(out, "Display all 532 possibilities? (y or n)")
		if b, err := in.ReadByte(); err == nil {
			declined <- b
		}
	})

	start := time.Now()
	got := sess.Complete(context.Background(), "b")
	if len(got) != 0 {
		t.Errorf("Expected empty candidate list on overflow, got %v", got)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected overflow path not to hang, took %v", elapsed)
	}

	select {
	case b := <-declined:
		if b != 'n' {
			t.Errorf("Expected decline answer 'n', subprocess saw %q", b)
		}
	case <-time.After(time.Second):
		t.Error("Expected the overflow prompt to be declined")
	}
}

func TestCompleteTimeoutYieldsEmpty(t *testing.T) {
	sess := scriptedSession(t, 100*time.Millisecond, func(in *bufio.Reader, out io.Writer) {
		// A subprocess that never answers.
	})

	start := time.Now()
	got := sess.Complete(context.Background(), "anything")
	if len(got) != 0 {
		t.Errorf("Expected empty result on timeout, got %v", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected bounded wait, took %v", elapsed)
	}
}

func TestCompleteRestoresCapture(t *testing.T) {
	sess := scriptedSession(t, 50*time.Millisecond, func(in *bufio.Reader, out io.Writer) {})

	_ = sess.Complete(context.Background(), "x")

	sess.out.mu.Lock()
	defer sess.out.mu.Unlock()
	if sess.out.capture != nil {
		t.Error("Expected output capture to be restored after the exchange")
	}
}
