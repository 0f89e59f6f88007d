package parser

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `IPC('system.cpu') / 2 + Sum("cpu*.ipc") - 0.5 * Delta(sim_ticks)`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "IPC"},
		{LPAREN, "("},
		{STRING, "system.cpu"},
		{RPAREN, ")"},
		{SLASH, "/"},
		{INT, "2"},
		{PLUS, "+"},
		{IDENT, "Sum"},
		{LPAREN, "("},
		{STRING, "cpu*.ipc"},
		{RPAREN, ")"},
		{MINUS, "-"},
		{FLOAT, "0.5"},
		{ASTERISK, "*"},
		{IDENT, "Delta"},
		{LPAREN, "("},
		{IDENT, "sim_ticks"},
		{RPAREN, ")"},
		{EOF, ""},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestDottedIdentifiers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"system.cpu0.ipc", "system.cpu0.ipc"},
		{"heap.alloc", "heap.alloc"},
		{"sim_ticks", "sim_ticks"},
		{"a.b.c.d.e", "a.b.c.d.e"},
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != IDENT {
			t.Errorf("input %q: expected IDENT, got %q", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.expected, tok.Literal)
		}
		if next := l.NextToken(); next.Type != EOF {
			t.Errorf("input %q: expected single token, got trailing %q", tt.input, next.Literal)
		}
	}
}

func TestTrailingDotNotConsumed(t *testing.T) {
	// A dot with no name segment after it belongs to the next token, not
	// the identifier.
	l := NewLexer("system.cpu.")
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "system.cpu" {
		t.Fatalf("expected IDENT %q, got %q %q", "system.cpu", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for bare dot, got %q", tok.Type)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input        string
		expectedType TokenType
	}{
		{"42", INT},
		{"0", INT},
		{"3.14", FLOAT},
		{"1e6", FLOAT},
		{"2.5e-3", FLOAT},
		{"1E+9", FLOAT},
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.input {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.input, tok.Literal)
		}
	}
}

func TestStringQuoting(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`'system.cpu'`, "system.cpu"},
		{`"system.cpu"`, "system.cpu"},
		{`'cpu*.ipc'`, "cpu*.ipc"},
		{`'l2.bank::0'`, "l2.bank::0"},
		{`''`, ""},
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Errorf("input %q: expected STRING, got %q", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}
