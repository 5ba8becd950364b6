package syntax

// strKind distinguishes which string flavor the scan position is inside.
type strKind uint8

const (
	strNone     strKind = iota
	strQuoted           // " .. "
	strIndented         // '' .. ''
)

// Opener is one unclosed delimiter between the buffer start and the scan
// position. Antiquote openers remember which string flavor to resume when
// their matching } is reached.
type Opener struct {
	Off       uint32 // offset of the opening byte ('(', '[' or '{')
	Delim     byte
	Antiquote bool
	resume    strKind
}

// State is the lexical scan state at a byte offset. The zero value is the
// state at the start of a buffer.
type State struct {
	str           strKind
	inBlockComment bool
	inLineComment  bool
	openers        []Opener
}

// InString reports whether the position is inside a string literal
// (quoted or multiline), outside any antiquote hole.
func (s *State) InString() bool { return s.str != strNone }

// InComment reports whether the position is inside a line or block comment.
func (s *State) InComment() bool { return s.inBlockComment || s.inLineComment }

// Openers returns the stack of unclosed delimiters, outermost first.
// The returned slice aliases internal state and must not be mutated.
func (s *State) Openers() []Opener { return s.openers }

// Depth returns the number of unclosed delimiters.
func (s *State) Depth() int { return len(s.openers) }

// Clone returns an independent copy of the state.
func (s *State) Clone() State {
	out := *s
	out.openers = make([]Opener, len(s.openers))
	copy(out.openers, s.openers)
	return out
}

func (s *State) push(op Opener) {
	s.openers = append(s.openers, op)
}

func (s *State) pop() (Opener, bool) {
	if len(s.openers) == 0 {
		return Opener{}, false
	}
	op := s.openers[len(s.openers)-1]
	s.openers = s.openers[:len(s.openers)-1]
	return op, true
}

// matchOpen maps a closing delimiter to its opener byte.
func matchOpen(close byte) byte {
	switch close {
	case ')':
		return '('
	case ']':
		return '['
	}
	return 0
}

// indentedEscape reports whether content[i:] starts an '' escape sequence
// ('''  ''$  ''\x) and returns its byte length.
func indentedEscape(content []byte, i uint32) (uint32, bool) {
	n := uint32(len(content))
	if i+2 >= n || content[i] != '\'' || content[i+1] != '\'' {
		return 0, false
	}
	switch content[i+2] {
	case '\'', '$':
		return 3, true
	case '\\':
		if i+3 < n {
			return 4, true
		}
		return 3, true
	}
	return 0, false
}

// advance walks content from offset `from` up to (not including) `to`,
// mutating st in place. A sequence that begins before `to` is consumed
// whole even when it extends past it. When emit is non-nil it receives a
// tag for every delimiter classified along the way; offsets are relative
// to the start of content.
func advance(content []byte, from, to uint32, st *State, emit func(start, end uint32, kind TagKind)) {
	n := uint32(len(content))
	if to > n {
		to = n
	}
	tag := func(start, end uint32, kind TagKind) {
		if emit != nil {
			emit(start, end, kind)
		}
	}

	i := from
	for i < to {
		b := content[i]

		if st.inLineComment {
			if b == '\n' {
				st.inLineComment = false
			}
			i++
			continue
		}
		if st.inBlockComment {
			if b == '*' && i+1 < n && content[i+1] == '/' {
				st.inBlockComment = false
				i += 2
				continue
			}
			i++
			continue
		}

		switch st.str {
		case strQuoted:
			switch {
			case b == '\\' && i+1 < n:
				i += 2
			case b == '"':
				st.str = strNone
				i++
			case b == '$' && i+1 < n && content[i+1] == '{':
				tag(i, i+2, TagAntiquoteOpen)
				st.push(Opener{Off: i + 1, Delim: '{', Antiquote: true, resume: strQuoted})
				st.str = strNone
				i += 2
			default:
				i++
			}

		case strIndented:
			if skip, ok := indentedEscape(content, i); ok {
				// ''' and ''$ and ''\x are literal content, never a close.
				i += skip
				continue
			}
			switch {
			case b == '\'' && i+1 < n && content[i+1] == '\'':
				// Closing delimiter: the second apostrophe carries the tag so
				// the string ends after it.
				tag(i+1, i+2, TagStringDelim)
				st.str = strNone
				i += 2
			case b == '$' && i+1 < n && content[i+1] == '{':
				tag(i, i+2, TagAntiquoteOpen)
				st.push(Opener{Off: i + 1, Delim: '{', Antiquote: true, resume: strIndented})
				st.str = strNone
				i += 2
			default:
				i++
			}

		default: // plain code
			switch {
			case b == '#':
				st.inLineComment = true
				i++
			case b == '/' && i+1 < n && content[i+1] == '*':
				st.inBlockComment = true
				i += 2
			case b == '"':
				st.str = strQuoted
				i++
			case b == '\'' && i+1 < n && content[i+1] == '\'':
				// Opening delimiter: the first apostrophe carries the tag.
				tag(i, i+1, TagStringDelim)
				st.str = strIndented
				i += 2
			case b == '(' || b == '[' || b == '{':
				st.push(Opener{Off: i, Delim: b})
				i++
			case b == ')' || b == ']':
				// Pop only a matching opener; unbalanced closers are left to
				// the heuristics downstream.
				if len(st.openers) > 0 {
					top := st.openers[len(st.openers)-1]
					if !top.Antiquote && top.Delim == matchOpen(b) {
						st.pop()
					}
				}
				i++
			case b == '}':
				// The matching-opener lookup decides whether this brace closes
				// an antiquote hole; a flat counter would misfire on nested
				// braces inside the hole.
				if len(st.openers) > 0 {
					top := st.openers[len(st.openers)-1]
					if top.Delim == '{' {
						st.pop()
						if top.Antiquote {
							tag(i, i+1, TagAntiquoteClose)
							st.str = top.resume
						}
					}
				}
				i++
			default:
				i++
			}
		}
	}
}
