// Package highlight holds the syntax highlighting rule table for Nix: fixed
// keyword sets mapped to display categories plus regex rules for URLs,
// filesystem paths, bracketed search-path tokens and assignment identifiers.
// It produces categorized spans; rendering is up to the caller.
package highlight

import (
	"regexp"
	"sort"
)

// Category is the display class of a highlighted span.
type Category uint8

const (
	CatNone Category = iota
	// CatKeyword covers the control keywords (if, then, let, in, ...).
	CatKeyword
	// CatBuiltin covers built-in names and constants.
	CatBuiltin
	// CatDanger covers keywords that make evaluation fail loudly.
	CatDanger
	CatURL
	CatPath
	CatSearchPath
	// CatAssign is the identifier on the left of an = binding.
	CatAssign
)

func (c Category) String() string {
	switch c {
	case CatKeyword:
		return "keyword"
	case CatBuiltin:
		return "builtin"
	case CatDanger:
		return "danger"
	case CatURL:
		return "url"
	case CatPath:
		return "path"
	case CatSearchPath:
		return "search-path"
	case CatAssign:
		return "assign"
	}
	return "none"
}

// ControlKeywords are the Nix language keywords.
var ControlKeywords = []string{
	"if", "then", "else", "assert", "with", "let", "in", "rec", "inherit", "or",
}

// Builtins are names worth calling out even though they are ordinary values.
var Builtins = []string{
	"builtins", "baseNameOf", "derivation", "dirOf", "fetchTarball", "import",
	"isNull", "map", "removeAttrs", "toString",
	"true", "false", "null",
}

// DangerKeywords abort evaluation when reached.
var DangerKeywords = []string{"abort", "throw"}

var (
	reURL        = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[a-zA-Z0-9%/?&=+._~#:-]+`)
	reSearchPath = regexp.MustCompile(`<[a-zA-Z0-9._+-]+(?:/[a-zA-Z0-9._+-]+)*>`)
	rePath       = regexp.MustCompile(`~?[a-zA-Z0-9._+-]*(?:/[a-zA-Z0-9._+-]+)+/?`)
	reAssign     = regexp.MustCompile(`^[ \t]*(?:inherit[ \t]+)?([a-zA-Z_][a-zA-Z0-9_'.-]*)[ \t]*=[^=]`)
	reWord       = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_'-]*`)
)

var wordCategory = buildWordCategory()

func buildWordCategory() map[string]Category {
	m := make(map[string]Category, len(ControlKeywords)+len(Builtins)+len(DangerKeywords))
	for _, w := range ControlKeywords {
		m[w] = CatKeyword
	}
	for _, w := range Builtins {
		m[w] = CatBuiltin
	}
	for _, w := range DangerKeywords {
		m[w] = CatDanger
	}
	return m
}

// Span is one categorized byte range within a line.
type Span struct {
	Start    int
	End      int
	Category Category
}

// ScanLine categorizes one line of Nix source. Earlier rules win; spans
// never overlap. The scan is purely lexical and ignores string context;
// callers that need exact string suppression combine it with the
// classifier's tags.
func ScanLine(line string) []Span {
	taken := make([]bool, len(line))
	var spans []Span

	claim := func(start, end int, cat Category) {
		for i := start; i < end; i++ {
			if taken[i] {
				return
			}
		}
		for i := start; i < end; i++ {
			taken[i] = true
		}
		spans = append(spans, Span{Start: start, End: end, Category: cat})
	}

	for _, loc := range reURL.FindAllStringIndex(line, -1) {
		claim(loc[0], loc[1], CatURL)
	}
	for _, loc := range reSearchPath.FindAllStringIndex(line, -1) {
		claim(loc[0], loc[1], CatSearchPath)
	}
	for _, loc := range rePath.FindAllStringIndex(line, -1) {
		claim(loc[0], loc[1], CatPath)
	}
	if m := reAssign.FindStringSubmatchIndex(line); m != nil {
		claim(m[2], m[3], CatAssign)
	}
	for _, loc := range reWord.FindAllStringIndex(line, -1) {
		word := line[loc[0]:loc[1]]
		if cat, ok := wordCategory[word]; ok {
			claim(loc[0], loc[1], cat)
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}
