package indent

import (
	"regexp"
	"strings"

	"nixel/internal/source"
	"nixel/internal/syntax"
)

// DefaultTabWidth is the indentation unit used when none is configured.
const DefaultTabWidth = 2

// Engine computes indentation columns for one buffer at a time.
type Engine struct {
	TabWidth int
}

// NewEngine returns an engine with the given tab width, defaulting when
// the width is not positive.
func NewEngine(tabWidth int) *Engine {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return &Engine{TabWidth: tabWidth}
}

var (
	reLetOpen  = regexp.MustCompile(`^[ \t]*let\b`)
	reLetTrail = regexp.MustCompile(`\blet[ \t]*$`)
	reInOpen   = regexp.MustCompile(`^[ \t]*in\b`)
	reInWord   = regexp.MustCompile(`\bin\b`)
)

// ComputeIndent returns the target column for the 1-based line. ok is false
// when the line begins inside a string or comment; such lines are left
// untouched by callers.
func (e *Engine) ComputeIndent(c *syntax.Classifier, line uint32) (col int, ok bool) {
	f := c.File()
	st := c.StateAt(f.LineStart(line))
	if st.InString() || st.InComment() {
		return 0, false
	}
	balance := letBalance(f, line)
	return e.column(f, &st, line, balance), true
}

// ComputeIndentCached is ComputeIndent backed by a per-line Snapshot instead
// of full backward rescans.
func (e *Engine) ComputeIndentCached(s *Snapshot, line uint32) (col int, ok bool) {
	f := s.cls.File()
	st := s.StateAtLine(line)
	if st.InString() || st.InComment() {
		return 0, false
	}
	return e.column(f, st, line, s.LetBalance(line)), true
}

func (e *Engine) column(f *source.File, st *syntax.State, line uint32, balance int) int {
	col := e.TabWidth * (parenDepth(f, st, line) + balance + adjustment(f, line))
	if col < 0 {
		col = 0
	}
	return col
}

// parenDepth counts indentation levels contributed by enclosing unclosed
// delimiters. Walking from the innermost opener outward, a level is credited
// each time the opener sits on a different line than the previously visited
// position, so several openers on one line indent only once.
func parenDepth(f *source.File, st *syntax.State, line uint32) int {
	ops := st.Openers()
	depth := 0
	prevLine := line
	for i := len(ops) - 1; i >= 0; i-- {
		openerLine := f.LineOf(ops[i].Off)
		if openerLine != prevLine {
			depth++
			prevLine = openerLine
		}
	}
	return depth
}

// letBalance counts unmatched let openers minus in closers on the lines
// strictly above the given line. The count is not clamped; unbalanced input
// may drive it negative.
func letBalance(f *source.File, line uint32) int {
	balance := 0
	for ln := uint32(1); ln < line; ln++ {
		balance += letDelta(f.Line(ln))
	}
	return balance
}

// letDelta is the contribution of a single line to the let/in balance.
func letDelta(text string) int {
	if reInOpen.MatchString(text) {
		return -1
	}
	if loc := letLoc(text); loc != nil {
		// A let paired with an in later on the same line opens nothing.
		if !reInWord.MatchString(text[loc[1]:]) {
			return 1
		}
	}
	return 0
}

func letLoc(text string) []int {
	if loc := reLetOpen.FindStringIndex(text); loc != nil {
		return loc
	}
	return reLetTrail.FindStringIndex(text)
}

// closerStarters are the tokens that pull a line back one level when the
// line begins with them.
var closerStarters = []string{")", "}", "]", "''", ","}

// adjustment nudges the computed level by one in either direction: closers
// and the in keyword dedent, a previous line ending in =, + or // indents.
func adjustment(f *source.File, line uint32) int {
	trimmed := strings.TrimLeft(f.Line(line), " \t")
	for _, tok := range closerStarters {
		if strings.HasPrefix(trimmed, tok) {
			return -1
		}
	}
	if reInOpen.MatchString(trimmed) {
		return -1
	}
	if prev, ok := previousCodeLine(f, line); ok {
		prev = strings.TrimRight(prev, " \t")
		if strings.HasSuffix(prev, "=") || strings.HasSuffix(prev, "+") || strings.HasSuffix(prev, "//") {
			return 1
		}
	}
	return 0
}

// previousCodeLine returns the closest line above that is neither blank nor
// a comment line.
func previousCodeLine(f *source.File, line uint32) (string, bool) {
	for ln := line - 1; ln >= 1; ln-- {
		text := f.Line(ln)
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return text, true
	}
	return "", false
}
