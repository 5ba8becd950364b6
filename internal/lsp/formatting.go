package lsp

import (
	"encoding/json"
	"strings"
)

func (s *Server) handleFormatting(msg *rpcMessage) error {
	var params documentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, ok := s.docFor(uri)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}

	formatted, changed, err := s.formatFn(s.ctx(), []byte(doc.text))
	if err != nil {
		s.logf("format %s: %v", uri, err)
		return s.sendError(msg.ID, -32603, "formatter failed: "+err.Error())
	}
	if !changed {
		return s.sendResponse(msg.ID, []textEdit{})
	}
	edit := textEdit{
		Range:   lspRange{Start: position{}, End: endPosition(doc.text)},
		NewText: string(formatted),
	}
	return s.sendResponse(msg.ID, []textEdit{edit})
}

func (s *Server) handleOnTypeFormatting(msg *rpcMessage) error {
	var params documentOnTypeFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, ok := s.docFor(uri)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}

	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()

	line := params.Position.Line
	if line < 0 {
		return s.sendResponse(msg.ID, []textEdit{})
	}
	col, ok := engine.ComputeIndentCached(doc.snap, uint32(line)+1)
	if !ok {
		// Line starts inside a string or comment: leave it alone.
		return s.sendResponse(msg.ID, []textEdit{})
	}

	lineText, _ := lineSlice(doc.text, line)
	wsEnd := 0
	for wsEnd < len(lineText) && (lineText[wsEnd] == ' ' || lineText[wsEnd] == '\t') {
		wsEnd++
	}
	want := strings.Repeat(" ", col)
	if lineText[:wsEnd] == want {
		return s.sendResponse(msg.ID, []textEdit{})
	}
	edit := textEdit{
		Range: lspRange{
			Start: position{Line: line},
			End:   position{Line: line, Character: wsEnd},
		},
		NewText: want,
	}
	return s.sendResponse(msg.ID, []textEdit{edit})
}

// endPosition returns the LSP position just past the final character.
func endPosition(text string) position {
	line := 0
	lastStart := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastStart = i + 1
		}
	}
	return position{Line: line, Character: utf16Len(text[lastStart:])}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
