// Package nav recognizes a file reference under the cursor, either a
// bracketed search-path token like <nixpkgs/lib> or a slash-delimited path,
// and resolves it to something the editor can open.
package nav

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	reBracketed = regexp.MustCompile(`<([a-zA-Z0-9._+-]+(?:/[a-zA-Z0-9._+-]+)*)>`)
	rePlainPath = regexp.MustCompile(`~?[a-zA-Z0-9._+-]*(?:/[a-zA-Z0-9._+-]+)+/?`)
)

// Target is a path-like token found under the cursor.
type Target struct {
	// Raw is the token text without angle brackets.
	Raw string
	// Bracketed marks a <search-path> token that resolves against the
	// configured search roots instead of the buffer's directory.
	Bracketed bool
}

// TargetAt returns the path token covering the byte column (0-based) of the
// line, if any. Bracketed tokens win over plain paths when both cover the
// cursor.
func TargetAt(line string, col int) (Target, bool) {
	for _, loc := range reBracketed.FindAllStringSubmatchIndex(line, -1) {
		if col >= loc[0] && col < loc[1] {
			return Target{Raw: line[loc[2]:loc[3]], Bracketed: true}, true
		}
	}
	for _, loc := range rePlainPath.FindAllStringIndex(line, -1) {
		if col >= loc[0] && col < loc[1] {
			return Target{Raw: line[loc[0]:loc[1]]}, true
		}
	}
	return Target{}, false
}

// Root is one search-path entry. Named roots only resolve tokens whose
// first segment matches the name, mirroring NIX_PATH prefix entries.
type Root struct {
	Name string
	Path string
}

// Resolve maps the target to an existing file. Bracketed tokens are looked
// up under each search root in order; plain paths resolve against baseDir.
// A directory hit falls through to its default.nix.
func (t Target) Resolve(baseDir string, searchPath []Root) (string, bool) {
	if t.Bracketed {
		for _, root := range searchPath {
			candidate, ok := root.lookup(t.Raw)
			if !ok {
				continue
			}
			if p, ok := existing(candidate); ok {
				return p, true
			}
		}
		return "", false
	}

	raw := t.Raw
	if strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		raw = filepath.Join(home, raw[2:])
	}
	if !filepath.IsAbs(raw) {
		raw = filepath.Join(baseDir, raw)
	}
	return existing(raw)
}

// existing accepts a path that stats as a file, or a directory containing a
// default.nix.
func existing(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return path, true
	}
	entry := filepath.Join(path, "default.nix")
	if fi, err := os.Stat(entry); err == nil && !fi.IsDir() {
		return entry, true
	}
	return "", false
}

// lookup maps a bracketed token to a candidate path under this root.
func (r Root) lookup(token string) (string, bool) {
	if r.Name == "" {
		return filepath.Join(r.Path, token), true
	}
	if token == r.Name {
		return r.Path, true
	}
	if rest, ok := strings.CutPrefix(token, r.Name+"/"); ok {
		return filepath.Join(r.Path, rest), true
	}
	return "", false
}

// SearchPathFromEnv parses a NIX_PATH-style value: colon-separated entries,
// each either a plain root directory or a name=path pair.
func SearchPathFromEnv(value string) []Root {
	if value == "" {
		return nil
	}
	var roots []Root
	for _, entry := range strings.Split(value, ":") {
		if entry == "" {
			continue
		}
		if eq := strings.IndexByte(entry, '='); eq >= 0 {
			roots = append(roots, Root{Name: entry[:eq], Path: entry[eq+1:]})
			continue
		}
		roots = append(roots, Root{Path: entry})
	}
	return roots
}
