package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Evaluator findings
	EvalError Code = 1001

	// Tooling failures surfaced to the user
	FmtFailed   Code = 2001
	EvalSpawn   Code = 2002
	ReplTimeout Code = 2003
	IOLoadFile  Code = 2004
)

func (c Code) String() string {
	return fmt.Sprintf("NIX%04d", uint16(c))
}
