// Package errors formats source-level failures (lexer/parser/compiler)
// with file/line/column context and a caret pointing at the offending
// column.
package errors

import (
	"fmt"
	"strings"

	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

// Kind distinguishes the error families. Syntax/Compiler
// are host-side Go errors; the three JS-visible kinds are also used as
// the constructor name when the VM builds the corresponding thrown
// Error object.
type Kind string

const (
	KindSyntax    Kind = "SyntaxError"
	KindCompiler  Kind = "CompilerError"
	KindType      Kind = "TypeError"
	KindRange     Kind = "RangeError"
	KindReference Kind = "ReferenceError"
)

// SourceError is a single diagnostic with position and source context.
type SourceError struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

func New(kind Kind, pos lexer.Position, message, source, file string) *SourceError {
	return &SourceError{Kind: kind, Message: message, Source: source, File: file, Pos: pos}
}

func (e *SourceError) Error() string { return e.Format(false) }

// Format renders the error with a source excerpt and caret, optionally
// with ANSI color for terminal output.
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s: %s at %s:%d:%d\n", e.Kind, e.Message, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: %s at line %d:%d\n", e.Kind, e.Message, e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column - 1
		if col < 0 {
			col = 0
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}
	return sb.String()
}

func (e *SourceError) sourceLine(line int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// List collects multiple SourceErrors, e.g. all parser errors from one
// parse attempt.
type List []*SourceError

func (l List) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n\n")
}
