// Package diag defines the diagnostic model shared by the evaluator runner,
// the CLI renderers and the language server.
//
// Diagnostic is the central record: severity, stable code, message and an
// external file position (line/column as reported by the evaluator, not a
// span into a FileSet; the positions originate from subprocess output and
// may name files this process never loaded). Bag accumulates records up to
// a cap; Reporter decouples producers from storage.
package diag
