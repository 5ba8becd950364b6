package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// PromptMarker is the literal the subprocess prints at the start of a line
// when it is ready for input.
const PromptMarker = "nix-repl> "

// overflowPrompt is the beginning of the subprocess's "too many candidates"
// question ("Display all N possibilities? (y or n)").
const overflowPrompt = "Display all "

const (
	completionTrigger = "\t"
	declineAnswer     = "n"
	// killLine clears whatever is left on the subprocess's input line after
	// an exchange (Ctrl-U).
	killLine = "\x15"
	pollTick = 20 * time.Millisecond
)

// DefaultTimeout bounds one poll window of a completion exchange.
const DefaultTimeout = 2 * time.Second

// Session is one live REPL subprocess bound to a buffer. Exchanges are
// serialized: at most one completion request is in flight per session.
type Session struct {
	mu      sync.Mutex
	stdin   io.WriteCloser
	out     *sink
	timeout time.Duration

	hash    [32]byte // content hash the process was loaded with
	close   func() error
	tmpFile string
}

// newSession wires a session over arbitrary pipes. The spawn path in the
// Manager uses it with a real subprocess; tests use it with a scripted peer.
func newSession(stdin io.WriteCloser, stdout io.Reader, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Session{
		stdin:   stdin,
		out:     &sink{},
		timeout: timeout,
	}
	go s.out.pump(stdout)
	return s
}

// Close tears the subprocess down. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}
	if s.close != nil {
		err := s.close()
		s.close = nil
		return err
	}
	return nil
}

func (s *Session) send(text string) {
	if s.stdin != nil {
		_, _ = io.WriteString(s.stdin, text)
	}
}

// Complete asks the subprocess for completions of prefix. Timeouts and
// overflowing candidate sets yield an empty list; no error ever reaches the
// caller.
func (s *Session) Complete(ctx context.Context, prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdin == nil {
		return nil
	}

	var scratch bytes.Buffer
	restore := s.out.redirect(&scratch)
	defer restore()
	// Leave no typed-ahead input behind, whatever path we exit through.
	defer s.send(killLine)

	// Ask for the single unambiguous completion first.
	s.send(prefix + completionTrigger)
	if reply, ok := s.waitSingle(ctx, &scratch); ok {
		return []string{norm.NFC.String(reply)}
	}

	// Ambiguous: ask for the full candidate dump.
	mark := len(s.out.snapshot(&scratch))
	s.send(completionTrigger)
	return s.waitDump(ctx, &scratch, mark)
}

// waitSingle polls until the subprocess echoes a completed line after the
// prompt marker ending in the acceptance separator, or the window expires.
func (s *Session) waitSingle(ctx context.Context, scratch *bytes.Buffer) (string, bool) {
	ok := s.poll(ctx, func() bool {
		reply := afterLastMarker(s.out.snapshot(scratch))
		return reply != "" && strings.HasSuffix(reply, " ")
	})
	if !ok {
		return "", false
	}
	return strings.TrimSpace(afterLastMarker(s.out.snapshot(scratch))), true
}

// waitDump polls for either a candidate dump terminated by the prompt
// marker or the overflow question. Overflow is declined and reported as an
// empty list; expiry returns whatever partial state exists, typically
// nothing.
func (s *Session) waitDump(ctx context.Context, scratch *bytes.Buffer, mark int) []string {
	overflow := false
	s.poll(ctx, func() bool {
		chunk := s.chunk(scratch, mark)
		if strings.Contains(chunk, overflowPrompt) {
			overflow = true
			return true
		}
		return strings.Contains(chunk, PromptMarker)
	})

	if overflow {
		s.send(declineAnswer)
		return nil
	}

	chunk := s.chunk(scratch, mark)
	idx := strings.Index(chunk, PromptMarker)
	if idx < 0 {
		return nil
	}
	fields := strings.Fields(chunk[:idx])
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, norm.NFC.String(f))
	}
	return out
}

func (s *Session) chunk(scratch *bytes.Buffer, mark int) string {
	snap := s.out.snapshot(scratch)
	if mark > len(snap) {
		return ""
	}
	return snap[mark:]
}

// poll runs cond on a short tick until it holds or the window expires.
func (s *Session) poll(ctx context.Context, cond func() bool) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticker := time.NewTicker(pollTick)
	defer ticker.Stop()
	for {
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// waitPrompt polls until the prompt marker shows up in the scratch buffer.
// Best effort: a missing prompt only costs the poll window.
func (s *Session) waitPrompt(ctx context.Context, scratch *bytes.Buffer) bool {
	return s.poll(ctx, func() bool {
		return strings.Contains(s.out.snapshot(scratch), PromptMarker)
	})
}

// afterLastMarker returns the text following the last prompt marker, up to
// the next newline if one is present.
func afterLastMarker(snap string) string {
	idx := strings.LastIndex(snap, PromptMarker)
	if idx < 0 {
		return ""
	}
	reply := snap[idx+len(PromptMarker):]
	if nl := strings.IndexByte(reply, '\n'); nl >= 0 {
		reply = reply[:nl]
	}
	return reply
}
