package syntax

import (
	"nixel/internal/source"
)

// TagKind classifies a span tag produced by the classifier.
type TagKind uint8

const (
	// TagPlain marks ordinary code. It is the implicit kind for untagged
	// positions and never stored.
	TagPlain TagKind = iota
	// TagStringDelim marks one delimiter position of a multiline string.
	// String context toggles at each such tag.
	TagStringDelim
	// TagAntiquoteOpen marks a ${ that opens an interpolation hole inside a
	// string.
	TagAntiquoteOpen
	// TagAntiquoteClose marks the } that closes an interpolation hole and
	// resumes string context.
	TagAntiquoteClose
)

func (k TagKind) String() string {
	switch k {
	case TagPlain:
		return "plain"
	case TagStringDelim:
		return "string-delim"
	case TagAntiquoteOpen:
		return "antiquote-open"
	case TagAntiquoteClose:
		return "antiquote-close"
	}
	return "unknown"
}

// Tag annotates a contiguous byte range with a lexical kind.
// A position carries at most one tag; antiquote tags only occur inside
// regions that are string context.
type Tag struct {
	Span source.Span
	Kind TagKind
}
