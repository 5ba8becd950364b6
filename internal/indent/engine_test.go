package indent

import (
	"testing"

	"nixel/internal/source"
	"nixel/internal/syntax"
)

func classify(t *testing.T, content string) *syntax.Classifier {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.nix", []byte(content))
	return syntax.NewClassifier(fs.Get(id))
}

func TestParenDepthMatchesNesting(t *testing.T) {
	// Balanced delimiters, one per line: parenDepth equals true nesting depth.
	content := "{\n[\n(\nx\n)\n]\n}\n"
	c := classify(t, content)
	f := c.File()

	want := []int{0, 1, 2, 3, 3, 2, 1}
	for i, expected := range want {
		line := uint32(i + 1)
		st := c.StateAt(f.LineStart(line))
		if got := parenDepth(f, &st, line); got != expected {
			t.Errorf("line %d: expected parenDepth %d, got %d", line, expected, got)
		}
	}
}

func TestParenDepthSameLineOpenersCollapse(t *testing.T) {
	content := "{ [ (\nx\n"
	c := classify(t, content)
	f := c.File()

	st := c.StateAt(f.LineStart(2))
	if got := parenDepth(f, &st, 2); got != 1 {
		t.Errorf("Expected openers on one line to count one level, got %d", got)
	}
}

func TestLetBalance(t *testing.T) {
	content := "let\n  x = 1;\nin x\ny\n"
	c := classify(t, content)
	f := c.File()

	tests := []struct {
		line uint32
		want int
	}{
		{2, 1}, // between let and in
		{3, 1}, // the in line itself still sees the open let above
		{4, 0}, // immediately after the matching in
	}
	for _, tc := range tests {
		if got := letBalance(f, tc.line); got != tc.want {
			t.Errorf("line %d: expected letBalance %d, got %d", tc.line, tc.want, got)
		}
	}
}

func TestLetBalanceInlinePairDoesNotCount(t *testing.T) {
	content := "let x = 1; in x\ny\n"
	c := classify(t, content)

	if got := letBalance(c.File(), 2); got != 0 {
		t.Errorf("Expected let paired with in on the same line to open nothing, got %d", got)
	}
}

func TestAdjustmentClosers(t *testing.T) {
	// A line beginning with a closer always adjusts by -1, regardless of
	// what precedes it.
	for _, starter := range []string{")", "}", "]", ",", "''", "in "} {
		content := "x =\n" + starter + "\n"
		c := classify(t, content)
		if got := adjustment(c.File(), 2); got != -1 {
			t.Errorf("starter %q: expected adjustment -1, got %d", starter, got)
		}
	}
}

func TestAdjustmentContinuation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    uint32
		want    int
	}{
		{"after equals", "x =\n1\n", 2, 1},
		{"after plus", "a +\nb\n", 2, 1},
		{"after update op", "a //\nb\n", 2, 1},
		{"plain", "a;\nb\n", 2, 0},
		{"comment lines skipped", "x =\n# note\n1\n", 3, 1},
	}
	for _, tc := range tests {
		c := classify(t, tc.content)
		if got := adjustment(c.File(), tc.line); got != tc.want {
			t.Errorf("%s: expected adjustment %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestComputeIndentLetBody(t *testing.T) {
	content := "let\n  x = 1;\nin x\n"
	c := classify(t, content)
	e := NewEngine(2)

	col, ok := e.ComputeIndent(c, 2)
	if !ok || col != 2 {
		t.Errorf("body line: expected column 2, got %d (ok=%v)", col, ok)
	}
	col, ok = e.ComputeIndent(c, 3)
	if !ok || col != 0 {
		t.Errorf("in line: expected column 0, got %d (ok=%v)", col, ok)
	}
}

func TestComputeIndentNestedAttrset(t *testing.T) {
	content := "{\n  foo = {\n    bar = 1;\n  };\n}\n"
	c := classify(t, content)
	e := NewEngine(2)

	want := []struct {
		line uint32
		col  int
	}{
		{2, 2},
		{3, 4},
		{4, 2}, // closer pulls back
		{5, 0},
	}
	for _, tc := range want {
		col, ok := e.ComputeIndent(c, tc.line)
		if !ok || col != tc.col {
			t.Errorf("line %d: expected column %d, got %d (ok=%v)", tc.line, tc.col, col, ok)
		}
	}
}

func TestComputeIndentLeavesStringsAlone(t *testing.T) {
	content := "''\n  literal text\n''\n"
	c := classify(t, content)
	e := NewEngine(2)

	if _, ok := e.ComputeIndent(c, 2); ok {
		t.Error("Expected line inside multiline string to be left untouched")
	}
	// The closing delimiter line starts inside the string too.
	if _, ok := e.ComputeIndent(c, 3); ok {
		t.Error("Expected closing delimiter line to be left untouched")
	}
}

func TestComputeIndentLeavesCommentsAlone(t *testing.T) {
	content := "/*\n   two lines\n*/\nx\n"
	c := classify(t, content)
	e := NewEngine(2)

	if _, ok := e.ComputeIndent(c, 2); ok {
		t.Error("Expected line inside block comment to be left untouched")
	}
}

func TestComputeIndentClampsNegative(t *testing.T) {
	content := "}\n"
	c := classify(t, content)
	e := NewEngine(2)

	col, ok := e.ComputeIndent(c, 1)
	if !ok || col != 0 {
		t.Errorf("Expected stray closer to clamp at column 0, got %d (ok=%v)", col, ok)
	}
}
