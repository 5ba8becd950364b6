package lsp

import (
	"encoding/json"
	"path/filepath"

	"nixel/internal/nav"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, ok := s.docFor(uri)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}

	lineText, lineStart := lineSlice(doc.text, params.Position.Line)
	col := offsetForPosition(doc.text, params.Position) - lineStart
	target, ok := nav.TargetAt(lineText, col)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}

	s.mu.Lock()
	roots := s.searchPath
	s.mu.Unlock()
	baseDir := filepath.Dir(uriToPath(uri))
	resolved, ok := target.Resolve(baseDir, roots)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	return s.sendResponse(msg.ID, location{URI: pathToURI(resolved)})
}
