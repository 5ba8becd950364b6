package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.nix", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("test.nix")
	if !exists {
		t.Error("Expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("Expected latest ID to be %d, got %d", id1, latestID)
	}

	// Re-adding the same path keeps the old version reachable by ID.
	id2 := fs.Add("test.nix", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists = fs.GetLatest("test.nix")
	if !exists {
		t.Error("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	if string(fs.Get(id1).Content) != "hello world" {
		t.Errorf("Expected first file content to be 'hello world', got '%s'", fs.Get(id1).Content)
	}
	if string(fs.Get(id2).Content) != "hello universe" {
		t.Errorf("Expected second file content to be 'hello universe', got '%s'", fs.Get(id2).Content)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.nix", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, off := range expected {
		if file.LineIdx[i] != off {
			t.Errorf("LineIdx[%d]: expected %d, got %d", i, off, file.LineIdx[i])
		}
	}
}

func TestLineHelpers(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("b.nix", []byte("let\n  x = 1;\nin x\n"))
	f := fs.Get(id)

	if got := f.LineCount(); got != 3 {
		t.Errorf("LineCount: expected 3, got %d", got)
	}

	lines := []struct {
		num  uint32
		text string
	}{
		{1, "let"},
		{2, "  x = 1;"},
		{3, "in x"},
		{4, ""},
	}
	for _, tc := range lines {
		if got := f.Line(tc.num); got != tc.text {
			t.Errorf("Line(%d): expected %q, got %q", tc.num, tc.text, got)
		}
	}

	if got := f.LineStart(2); got != 4 {
		t.Errorf("LineStart(2): expected 4, got %d", got)
	}
	if got := f.LineEnd(2); got != 12 {
		t.Errorf("LineEnd(2): expected 12, got %d", got)
	}
	if got := f.LineOf(5); got != 2 {
		t.Errorf("LineOf(5): expected line 2, got %d", got)
	}
}

func TestResolveSpan(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("c.nix", []byte("ab\ncd"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start.Line != 2 || start.Col != 1 {
		t.Errorf("Expected start 2:1, got %d:%d", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 3 {
		t.Errorf("Expected end 2:3, got %d:%d", end.Line, end.Col)
	}
}
