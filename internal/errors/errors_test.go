package errors

import (
	"strings"
	"testing"

	"github.com/go-ecmascript/ecmascript/internal/lexer"
)

func TestFormatCaret(t *testing.T) {
	source := "let x = @;"
	e := New(KindSyntax, lexer.Position{Line: 1, Column: 9}, "unexpected token", source, "test.js")

	out := e.Format(false)
	if !strings.Contains(out, "SyntaxError: unexpected token at test.js:1:9") {
		t.Fatalf("header wrong:\n%s", out)
	}
	if !strings.Contains(out, "let x = @;") {
		t.Fatalf("source excerpt missing:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	caretLine := lines[len(lines)-1]
	if !strings.HasSuffix(caretLine, "^") {
		t.Fatalf("caret missing:\n%s", out)
	}
	// The caret column lines up under the offending character.
	excerpt := lines[1]
	if strings.Index(excerpt, "@") != len(caretLine)-1 {
		t.Fatalf("caret misaligned:\n%s", out)
	}
}

func TestFormatWithoutFile(t *testing.T) {
	e := New(KindType, lexer.Position{Line: 2, Column: 1}, "boom", "a\nb", "")
	out := e.Format(false)
	if !strings.Contains(out, "TypeError: boom at line 2:1") {
		t.Fatalf("file-less header wrong:\n%s", out)
	}
}

func TestListJoinsErrors(t *testing.T) {
	l := List{
		New(KindSyntax, lexer.Position{Line: 1, Column: 1}, "first", "", ""),
		New(KindSyntax, lexer.Position{Line: 2, Column: 1}, "second", "", ""),
	}
	msg := l.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Fatalf("List.Error dropped entries: %q", msg)
	}
}

func TestStackFrameFormat(t *testing.T) {
	f := StackFrame{FunctionName: "inc", File: "counter.js", Line: 3, Column: 10}
	if got := f.String(); got != "    at inc (counter.js:3:10)" {
		t.Fatalf("frame format %q", got)
	}
	anon := StackFrame{File: "", Line: 1, Column: 1}
	if got := anon.String(); !strings.Contains(got, "<anonymous>") {
		t.Fatalf("anonymous frame format %q", got)
	}
}
