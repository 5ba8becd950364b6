// Package indent computes target indentation columns for Nix buffers.
//
// The engine is a heuristic, not a parser: the column for a line is
// tabWidth * (parenDepth + letBalance + adjustment), derived from backward
// structural scans over raw text. Malformed or partial input yields
// best-effort columns, never an error.
//
// Snapshot caches the per-line scan results so editors do not pay a full
// buffer rescan on every keystroke; an edit invalidates only the suffix of
// the cache starting at the edited line.
package indent
