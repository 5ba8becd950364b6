package repl

import (
	"bytes"
	"io"
	"sync"
)

// sink receives everything the subprocess writes. By default the output is
// discarded; an exchange redirects it into a private scratch buffer for the
// duration of one protocol round-trip.
type sink struct {
	mu      sync.Mutex
	capture *bytes.Buffer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture != nil {
		s.capture.Write(p)
	}
	return len(p), nil
}

// redirect swaps in a capture buffer and returns the restore function.
// Callers defer the restore so it runs on every exit path.
func (s *sink) redirect(buf *bytes.Buffer) (restore func()) {
	s.mu.Lock()
	prev := s.capture
	s.capture = buf
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.capture = prev
		s.mu.Unlock()
	}
}

// snapshot returns the current contents of the capture buffer. The buffer
// is written from the pump goroutine, so reads must hold the same lock.
func (s *sink) snapshot(buf *bytes.Buffer) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buf.String()
}

// pump copies subprocess output into the sink until the stream closes.
func (s *sink) pump(r io.Reader) {
	_, _ = io.Copy(s, r)
}
