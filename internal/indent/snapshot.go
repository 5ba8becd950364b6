package indent

import (
	"nixel/internal/syntax"
)

// row captures the structural facts at the start of one line: the lexical
// scan state and the accumulated let/in balance of all lines above it.
type row struct {
	state      syntax.State
	letBalance int
}

// Snapshot caches per-line scan rows for one buffer so indentation requests
// cost only the suffix that changed since the last edit. Rows are built
// lazily; InvalidateFrom drops everything at and after an edited line.
type Snapshot struct {
	cls  *syntax.Classifier
	rows []row // rows[i] describes the start of line i+1
}

// NewSnapshot creates an empty cache bound to the classifier.
func NewSnapshot(cls *syntax.Classifier) *Snapshot {
	return &Snapshot{cls: cls}
}

// Rebind swaps in a classifier for the edited buffer and keeps rows above
// fromLine. The caller guarantees the buffer content before fromLine is
// unchanged.
func (s *Snapshot) Rebind(cls *syntax.Classifier, fromLine uint32) {
	s.cls = cls
	s.InvalidateFrom(fromLine)
}

// InvalidateFrom drops cached rows for fromLine and every line after it.
func (s *Snapshot) InvalidateFrom(fromLine uint32) {
	if fromLine == 0 {
		fromLine = 1
	}
	if n := int(fromLine - 1); n < len(s.rows) {
		s.rows = s.rows[:n]
	}
}

// StateAtLine returns the lexical state at the start of the 1-based line.
// The returned state aliases the cache and must not be mutated.
func (s *Snapshot) StateAtLine(line uint32) *syntax.State {
	s.ensure(line)
	return &s.rows[line-1].state
}

// LetBalance returns the let/in balance accumulated strictly above the line.
func (s *Snapshot) LetBalance(line uint32) int {
	s.ensure(line)
	return s.rows[line-1].letBalance
}

// ensure extends the row cache until it covers the given 1-based line.
func (s *Snapshot) ensure(line uint32) {
	f := s.cls.File()
	if len(s.rows) == 0 {
		var st syntax.State
		s.rows = append(s.rows, row{state: st.Clone()})
	}
	for uint32(len(s.rows)) < line {
		prevLine := uint32(len(s.rows))
		prev := &s.rows[prevLine-1]

		next := prev.state.Clone()
		s.cls.Advance(&next, f.LineStart(prevLine), f.LineStart(prevLine+1))

		s.rows = append(s.rows, row{
			state:      next,
			letBalance: prev.letBalance + letDelta(f.Line(prevLine)),
		})
	}
}
