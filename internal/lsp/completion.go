package lsp

import (
	"context"
	"encoding/json"

	"nixel/internal/repl"
)

const completionItemKindVariable = 6

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	doc, ok := s.docFor(uri)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}

	lineText, lineStart := lineSlice(doc.text, params.Position.Line)
	cursor := offsetForPosition(doc.text, params.Position) - lineStart
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(lineText) {
		cursor = len(lineText)
	}
	start := cursor
	for start > 0 && isAttrPathByte(lineText[start-1]) {
		start--
	}
	prefix := lineText[start:cursor]

	buf := repl.Buffer{Name: uriToPath(uri), Contents: []byte(doc.text)}
	candidates, err := s.complete(s.ctx(), buf, prefix)
	if err != nil {
		s.logf("completion %s: %v", uri, err)
		return s.sendResponse(msg.ID, completionList{Items: []completionItem{}})
	}

	replace := lspRange{
		Start: position{Line: params.Position.Line, Character: params.Position.Character - (cursor - start)},
		End:   position{Line: params.Position.Line, Character: params.Position.Character},
	}
	items := make([]completionItem, 0, len(candidates))
	for _, cand := range candidates {
		items = append(items, completionItem{
			Label: cand,
			Kind:  completionItemKindVariable,
			TextEdit: &textEdit{
				Range:   replace,
				NewText: cand,
			},
		})
	}
	return s.sendResponse(msg.ID, completionList{Items: items})
}

// isAttrPathByte reports bytes that can appear in an attribute path prefix
// handed to the REPL for completion.
func isAttrPathByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '-' || b == '\'' || b == '.':
		return true
	}
	return false
}

func (s *Server) ctx() context.Context {
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return context.Background()
}
