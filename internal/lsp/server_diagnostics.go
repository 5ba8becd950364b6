package lsp

import (
	"context"
	"sync/atomic"
	"time"

	"nixel/internal/diag"
)

func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	seq := atomic.AddUint64(&s.analysisSeq, 1)
	atomic.StoreUint64(&s.latestSeq, seq)
	if s.diagCancel != nil {
		s.diagCancel()
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
	s.mu.Unlock()
}

func (s *Server) runDiagnostics(seq uint64) {
	if !s.isLatestSeq(seq) {
		return
	}
	s.mu.Lock()
	if len(s.docs) == 0 {
		s.mu.Unlock()
		s.clearPublishedDiagnostics()
		return
	}
	if s.diagCancel != nil {
		s.diagCancel()
	}
	base := s.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)
	s.diagCancel = cancel
	texts := make(map[string]string, len(s.docs))
	order := make([]string, 0, len(s.docs))
	for uri, doc := range s.docs {
		texts[uri] = doc.text
		if uri == s.lastTouched {
			order = append([]string{uri}, order...)
		} else {
			order = append(order, uri)
		}
	}
	maxDiag := s.maxDiagnostics
	s.mu.Unlock()

	// The buffer being edited publishes first.
	for _, uri := range order {
		text := texts[uri]
		if !s.isLatestSeq(seq) {
			return
		}
		records, err := s.evaluate(ctx, []byte(text))
		if err != nil {
			s.logf("evaluate %s: %v", uri, err)
			continue
		}
		if !s.isLatestSeq(seq) {
			return
		}
		list := diagnosticsForDoc(uri, text, records, maxDiag)
		s.mu.Lock()
		if len(list) > 0 {
			s.published[uri] = struct{}{}
		} else {
			delete(s.published, uri)
		}
		s.mu.Unlock()
		if err := s.sendPublish(uri, list); err != nil {
			s.logf("publish %s: %v", uri, err)
			return
		}
	}
}

// diagnosticsForDoc keeps the findings that belong to this buffer: records
// without a file come from stdin evaluation, named records must match the
// buffer path.
func diagnosticsForDoc(uri, text string, records []diag.Diagnostic, maxDiag int) []lspDiagnostic {
	path := uriToPath(uri)
	var list []lspDiagnostic
	for _, rec := range records {
		if rec.File != "" && rec.File != path {
			continue
		}
		if len(list) >= maxDiag {
			break
		}
		list = append(list, toLSPDiagnostic(text, rec))
	}
	return list
}

func toLSPDiagnostic(text string, rec diag.Diagnostic) lspDiagnostic {
	line := int(rec.Line) - 1
	col := int(rec.Col) - 1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	start := position{Line: line, Character: col}
	end := position{Line: line, Character: col + tokenWidthAt(text, line, col)}
	return lspDiagnostic{
		Range:    lspRange{Start: start, End: end},
		Severity: lspSeverity(rec.Severity),
		Code:     rec.Code.String(),
		Source:   "nixel",
		Message:  rec.Message,
	}
}

// tokenWidthAt extends the diagnostic range over the identifier under the
// position so editors underline something visible.
func tokenWidthAt(text string, line, col int) int {
	lineText, _ := lineSlice(text, line)
	if col >= len(lineText) {
		return 0
	}
	end := col
	for end < len(lineText) && isWordByte(lineText[end]) {
		end++
	}
	if end == col {
		return 1
	}
	return end - col
}

func isWordByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '-' || b == '\'':
		return true
	}
	return false
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}
