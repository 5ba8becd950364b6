package repl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Config selects the REPL executable and the poll window for exchanges.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// DefaultConfig runs `nix repl`.
func DefaultConfig() Config {
	return Config{Command: "nix", Args: []string{"repl"}, Timeout: DefaultTimeout}
}

// Buffer is the editor content a completion request originates from.
// Name is the buffer identity; Contents is what gets loaded into the REPL.
type Buffer struct {
	Name     string
	Contents []byte
}

// Manager owns at most one live session per distinct buffer. When a buffer's
// contents change, its old session is torn down and a fresh process is
// loaded before the next request.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	if cfg.Command == "" {
		cfg = DefaultConfig()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

// Acquire resolves the session backing buf, starting or restarting the
// subprocess when the buffer is new or its contents changed since last use.
func (m *Manager) Acquire(ctx context.Context, buf Buffer) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := sha256.Sum256(buf.Contents)
	if sess, ok := m.sessions[buf.Name]; ok {
		if sess.hash == hash {
			return sess, nil
		}
		_ = sess.Close()
		delete(m.sessions, buf.Name)
	}

	sess, err := m.spawn(ctx, buf, hash)
	if err != nil {
		return nil, err
	}
	m.sessions[buf.Name] = sess
	return sess, nil
}

// Complete is the one-call form: acquire the buffer's session and run a
// completion exchange. Session startup failure is the only error; protocol
// failures inside the exchange degrade to an empty list.
func (m *Manager) Complete(ctx context.Context, buf Buffer, prefix string) ([]string, error) {
	sess, err := m.Acquire(ctx, buf)
	if err != nil {
		return nil, err
	}
	return sess.Complete(ctx, prefix), nil
}

// Close tears down every live session.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for name, sess := range m.sessions {
		if err := sess.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.sessions, name)
	}
	return firstErr
}

// spawn starts the subprocess and loads the buffer contents into it through
// a temporary file. Waiting for the prompt is best effort; a slow start
// only shortens the first exchange's window.
func (m *Manager) spawn(ctx context.Context, buf Buffer, hash [32]byte) (*Session, error) {
	cmd := exec.Command(m.cfg.Command, m.cfg.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("repl: stdin pipe: %w", err)
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("repl: start %s: %w", m.cfg.Command, err)
	}
	go func() {
		_ = cmd.Wait()
		_ = pw.Close()
	}()

	sess := newSession(stdin, pr, m.cfg.Timeout)
	sess.hash = hash
	sess.close = func() error {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		if sess.tmpFile != "" {
			_ = os.Remove(sess.tmpFile)
		}
		return nil
	}

	m.load(ctx, sess, buf)
	return sess, nil
}

// load writes the buffer to a scratch file and :l-oads it, consuming output
// through a private capture so the greeting never leaks into an exchange.
func (m *Manager) load(ctx context.Context, sess *Session, buf Buffer) {
	tmp, err := os.CreateTemp("", "nixel-repl-*.nix")
	if err != nil {
		return
	}
	if _, err := tmp.Write(buf.Contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return
	}
	_ = tmp.Close()
	sess.tmpFile = tmp.Name()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var greeting bytes.Buffer
	restoreGreeting := sess.out.redirect(&greeting)
	sess.waitPrompt(ctx, &greeting)
	restoreGreeting()

	var scratch bytes.Buffer
	restore := sess.out.redirect(&scratch)
	defer restore()
	sess.send(":l " + tmp.Name() + "\n")
	sess.waitPrompt(ctx, &scratch)
}
