package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 5;
x = x + 10;
`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", NUMBER},
		{";", SEMICOLON},
		{"x", IDENT},
		{"=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", NUMBER},
		{";", SEMICOLON},
		{"", EOF},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.Next()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `break case catch class const continue delete do else
for function if in instanceof new return super switch
this throw try typeof var void while yield let static
async await of get set true false null`

	expected := []TokenType{
		BREAK, CASE, CATCH, CLASS, CONST, CONTINUE, DELETE, DO, ELSE,
		FOR, FUNCTION, IF, IN, INSTANCEOF, NEW, RETURN, SUPER, SWITCH,
		THIS, THROW, TRY, TYPEOF, VAR, VOID, WHILE, YIELD, LET, STATIC,
		ASYNC, AWAIT, OF, GET, SET, TRUE_LIT, FALSE_LIT, NULL_LIT,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.Next()
		if tok.Type != want {
			t.Fatalf("keyword[%d] - expected=%q, got=%q (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

// A `/` after a number is division; after `=`, `(`, or at source start
// it begins a regular expression.
func TestRegexVersusDivision(t *testing.T) {
	t.Run("division chain", func(t *testing.T) {
		l := New("1/2/3")
		expected := []struct {
			typ     TokenType
			literal string
		}{
			{NUMBER, "1"},
			{SLASH, "/"},
			{NUMBER, "2"},
			{SLASH, "/"},
			{NUMBER, "3"},
			{EOF, ""},
		}
		for i, want := range expected {
			tok := l.Next()
			if tok.Type != want.typ || tok.Literal != want.literal {
				t.Fatalf("token[%d] - expected %q %q, got %q %q", i, want.typ, want.literal, tok.Type, tok.Literal)
			}
		}
	})

	t.Run("regex after assign", func(t *testing.T) {
		l := New(`x = /ab+c/gi`)
		l.Next() // x
		l.Next() // =
		tok := l.Next()
		if tok.Type != REGEXP {
			t.Fatalf("expected REGEXP, got %q (literal=%q)", tok.Type, tok.Literal)
		}
	})

	t.Run("regex at source start", func(t *testing.T) {
		l := New(`/abc/.test`)
		tok := l.Next()
		if tok.Type != REGEXP {
			t.Fatalf("expected REGEXP, got %q", tok.Type)
		}
	})

	t.Run("regex after return", func(t *testing.T) {
		l := New(`return /x/`)
		l.Next()
		tok := l.Next()
		if tok.Type != REGEXP {
			t.Fatalf("expected REGEXP after return, got %q", tok.Type)
		}
	})

	t.Run("division after paren close", func(t *testing.T) {
		l := New(`(a)/b`)
		l.Next() // (
		l.Next() // a
		l.Next() // )
		tok := l.Next()
		if tok.Type != SLASH {
			t.Fatalf("expected SLASH after ')', got %q", tok.Type)
		}
	})
}

func TestNumericLiterals(t *testing.T) {
	tests := []struct {
		input    string
		typ      TokenType
		literal  string
	}{
		{"42", NUMBER, "42"},
		{"3.14", NUMBER, "3.14"},
		{"1e10", NUMBER, "1e10"},
		{"0xff", NUMBER, "0xff"},
		{"0b1010", NUMBER, "0b1010"},
		{"0o777", NUMBER, "0o777"},
		{"1_000_000", NUMBER, "1_000_000"},
		{"123n", BIGINT, "123n"},
		{"0xffn", BIGINT, "0xffn"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			tok := l.Next()
			if tok.Type != tt.typ {
				t.Fatalf("type wrong. expected=%q, got=%q", tt.typ, tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Fatalf("literal wrong. expected=%q, got=%q", tt.literal, tok.Literal)
			}
			if errs := l.Errors(); len(errs) > 0 {
				t.Fatalf("unexpected lex errors: %v", errs)
			}
		})
	}
}

func TestNumericSeparatorErrors(t *testing.T) {
	inputs := []string{"1__0", "1_", "0x_f"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			l := New(input)
			for tok := l.Next(); tok.Type != EOF; tok = l.Next() {
			}
			if len(l.Errors()) == 0 {
				t.Fatalf("expected a lex error for %q, got none", input)
			}
		})
	}
}

func TestTemplateLiteral(t *testing.T) {
	l := New("`a ${x + 1} b ${y} c`")
	tok := l.Next()
	if tok.Type != TEMPLATE {
		t.Fatalf("expected TEMPLATE, got %q", tok.Type)
	}
	if tok.Template == nil {
		t.Fatalf("TEMPLATE token carries no TemplateSpan")
	}
	if got := len(tok.Template.Exprs); got != 2 {
		t.Fatalf("expected 2 substitution expressions, got %d", got)
	}
	if got := len(tok.Template.Quasis); got != 3 {
		t.Fatalf("expected 3 quasis, got %d", got)
	}
	if tok.Template.Exprs[0] != "x + 1" {
		t.Errorf("first substitution expected %q, got %q", "x + 1", tok.Template.Exprs[0])
	}
}

func TestNestedTemplate(t *testing.T) {
	l := New("`outer ${ `inner ${x}` } end`")
	tok := l.Next()
	if tok.Type != TEMPLATE {
		t.Fatalf("expected TEMPLATE, got %q", tok.Type)
	}
	if got := len(tok.Template.Exprs); got != 1 {
		t.Fatalf("expected 1 substitution, got %d", got)
	}
}

func TestHasNewlineBefore(t *testing.T) {
	l := New("a\nb c")
	a := l.Next()
	b := l.Next()
	cTok := l.Next()
	if a.HasNewlineBefore {
		t.Errorf("first token should not report a preceding newline")
	}
	if !b.HasNewlineBefore {
		t.Errorf("token after newline should report HasNewlineBefore")
	}
	if cTok.HasNewlineBefore {
		t.Errorf("same-line token should not report HasNewlineBefore")
	}
}

func TestPeekDoesNotAdvance(t *testing.T) {
	l := New("a b")
	p1 := l.Peek()
	p2 := l.Peek()
	if p1.Literal != p2.Literal {
		t.Fatalf("two peeks disagree: %q vs %q", p1.Literal, p2.Literal)
	}
	n := l.Next()
	if n.Literal != "a" {
		t.Fatalf("Next after Peek expected %q, got %q", "a", n.Literal)
	}
}

func TestSaveRestoreState(t *testing.T) {
	l := New("a b c")
	l.Next()
	saved := l.SaveState()
	b1 := l.Next()
	l.RestoreState(saved)
	b2 := l.Next()
	if b1.Literal != b2.Literal {
		t.Fatalf("restore did not rewind: %q vs %q", b1.Literal, b2.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	for tok := l.Next(); tok.Type != EOF; tok = l.Next() {
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected an unterminated-string error")
	}
}

func TestPrivateName(t *testing.T) {
	l := New("#count")
	tok := l.Next()
	if tok.Type != PRIVATE_ID {
		t.Fatalf("expected PRIVATE_ID, got %q", tok.Type)
	}
	if tok.Literal != "#count" {
		t.Fatalf("expected literal %q, got %q", "#count", tok.Literal)
	}
}
