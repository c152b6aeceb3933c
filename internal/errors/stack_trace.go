package errors

import (
	"fmt"
	"strings"
)

// StackFrame is one entry of a VM call-stack snapshot, taken when an
// exception is thrown: function name, file, and line/column where
// available.
type StackFrame struct {
	FunctionName string // "" for an anonymous function or the top-level script
	File         string
	Line, Column int
}

func (f StackFrame) String() string {
	name := f.FunctionName
	if name == "" {
		name = "<anonymous>"
	}
	if f.File == "" {
		return fmt.Sprintf("    at %s (%d:%d)", name, f.Line, f.Column)
	}
	return fmt.Sprintf("    at %s (%s:%d:%d)", name, f.File, f.Line, f.Column)
}

// StackTrace is ordered innermost-frame-first, matching the order the
// VM unwinds call frames on an uncaught throw.
type StackTrace []StackFrame

func (t StackTrace) String() string {
	lines := make([]string, len(t))
	for i, f := range t {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}
