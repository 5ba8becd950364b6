package diag

import (
	"fmt"
)

// NoFile is the rendering used when the evaluator reported anonymous input
// (a buffer piped over stdin rather than a file on disk).
const NoFile = "no file"

// Diagnostic is one finding, positioned the way the evaluator reports
// positions: by file name and 1-based line/column. An empty File means the
// input was anonymous.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Line     uint32
	Col      uint32
}

// FileOrNone returns the file name, or NoFile for anonymous input.
func (d Diagnostic) FileOrNone() string {
	if d.File == "" {
		return NoFile
	}
	return d.File
}

// Location renders the position as file:line:col.
func (d Diagnostic) Location() string {
	return fmt.Sprintf("%s:%d:%d", d.FileOrNone(), d.Line, d.Col)
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s at %s", d.Severity, d.Code, d.Message, d.Location())
}
