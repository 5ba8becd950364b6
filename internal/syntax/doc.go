// Package syntax classifies raw Nix text lexically without building an AST.
//
// It tracks three things over a buffer:
//
//   - multiline ('' .. '') and quoted (" .. ") string regions,
//   - antiquote holes (${ .. }) spliced inside strings,
//   - comment regions (# line and /* block */) and open delimiter stacks.
//
// The classifier produces span tags for string delimiters and antiquote
// boundaries. Tags are derived state: any edited range must be reclassified
// before the tags inside it are trusted. Everything here is a forward scan
// over raw bytes; there is no token stream and no parser.
package syntax
