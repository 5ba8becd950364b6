package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		changed bool
	}{
		{"no CR", []byte("a\nb"), []byte("a\nb"), false},
		{"CRLF pairs", []byte("a\r\nb\r\n"), []byte("a\nb\n"), true},
		{"lone CR kept", []byte("a\rb"), []byte("a\rb"), false},
		{"mixed", []byte("a\r\nb\rc"), []byte("a\nb\rc"), true},
	}
	for _, tc := range tests {
		got, changed := normalizeCRLF(tc.input)
		if !bytes.Equal(got, tc.want) {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
		if changed != tc.changed {
			t.Errorf("%s: expected changed=%v, got %v", tc.name, tc.changed, changed)
		}
	}
}

func TestRemoveBOM(t *testing.T) {
	withBOM := []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}
	got, had := removeBOM(withBOM)
	if !had || string(got) != "hi" {
		t.Errorf("Expected BOM stripped, got had=%v content=%q", had, got)
	}

	plain := []byte("hi")
	got, had = removeBOM(plain)
	if had || string(got) != "hi" {
		t.Errorf("Expected no BOM, got had=%v content=%q", had, got)
	}
}

func TestToLineCol(t *testing.T) {
	content := []byte("ab\ncd\n\nef")
	lineIdx := buildLineIndex(content)

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline terminates line 1
		{3, 2, 1},
		{5, 2, 3},
		{6, 3, 1},
		{7, 4, 1},
		{8, 4, 2},
	}
	for _, tc := range tests {
		got := toLineCol(lineIdx, tc.off)
		if got.Line != tc.line || got.Col != tc.col {
			t.Errorf("off %d: expected %d:%d, got %d:%d", tc.off, tc.line, tc.col, got.Line, got.Col)
		}
	}
}

func TestToLineColEmptyIndex(t *testing.T) {
	got := toLineCol(nil, 7)
	if got.Line != 1 || got.Col != 8 {
		t.Errorf("Expected 1:8, got %d:%d", got.Line, got.Col)
	}
}
