package evaluator

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"

	"nixel/internal/diag"
)

// anonymousFile is the sentinel the evaluator prints for piped input.
const anonymousFile = "(string)"

// Record is one parsed evaluator finding. An alias keeps the public parse
// surface decoupled from the diag package internals.
type Record = diag.Diagnostic

// errLine matches the evaluator's textual error format:
// error: <message> at <file>:<line>:<col>
var errLine = regexp.MustCompile(`^error: (.+) at (.+):([0-9]+):([0-9]+)$`)

// Parse extracts diagnostic records from raw evaluator output, in order of
// appearance. Lines that do not match the error format are skipped silently.
func Parse(raw []byte) []Record {
	var out []Record

	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		m := errLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}

		line, err := strconv.ParseUint(m[3], 10, 32)
		if err != nil {
			continue
		}
		col, err := strconv.ParseUint(m[4], 10, 32)
		if err != nil {
			continue
		}

		file := m[2]
		if file == anonymousFile {
			file = ""
		}

		out = append(out, Record{
			Severity: diag.SevError,
			Code:     diag.EvalError,
			Message:  m[1],
			File:     file,
			Line:     uint32(line),
			Col:      uint32(col),
		})
	}
	return out
}
