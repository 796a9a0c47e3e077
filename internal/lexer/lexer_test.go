package lexer

import (
	"testing"

	"github.com/loxlang/loxvm/internal/token"
)

func TestNextToken_BasicTokens(t *testing.T) {
	input := `(){},.-+;*/`

	tests := []struct {
		expectedType   token.Type
		expectedLexeme string
	}{
		{token.LEFT_PAREN, "("},
		{token.RIGHT_PAREN, ")"},
		{token.LEFT_BRACE, "{"},
		{token.RIGHT_BRACE, "}"},
		{token.COMMA, ","},
		{token.DOT, "."},
		{token.MINUS, "-"},
		{token.PLUS, "+"},
		{token.SEMICOLON, ";"},
		{token.STAR, "*"},
		{token.SLASH, "/"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%v, got=%v", i, tt.expectedType, tok.Type)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `! != = == < <= > >=`

	tests := []token.Type{
		token.BANG, token.BANG_EQUAL,
		token.EQUAL, token.EQUAL_EQUAL,
		token.LESS, token.LESS_EQUAL,
		token.GREATER, token.GREATER_EQUAL,
		token.EOF,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - type wrong. expected=%v, got=%v", i, want, tok.Type)
		}
	}
}

func TestNextToken_KeywordsAndIdentifiers(t *testing.T) {
	input := `and class else false for fun if nil or print return super this true var while orchid`

	tests := []struct {
		expectedType   token.Type
		expectedLexeme string
	}{
		{token.AND, "and"},
		{token.CLASS, "class"},
		{token.ELSE, "else"},
		{token.FALSE, "false"},
		{token.FOR, "for"},
		{token.FUN, "fun"},
		{token.IF, "if"},
		{token.NIL, "nil"},
		{token.OR, "or"},
		{token.PRINT, "print"},
		{token.RETURN, "return"},
		{token.SUPER, "super"},
		{token.THIS, "this"},
		{token.TRUE, "true"},
		{token.VAR, "var"},
		{token.WHILE, "while"},
		{token.IDENTIFIER, "orchid"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%v, got=%v (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNextToken_NumberLiteral(t *testing.T) {
	l := New(`123 1.5 0.25`)

	want := []float64{123, 1.5, 0.25}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("tests[%d] - expected NUMBER, got %v", i, tok.Type)
		}
		if tok.Literal.(float64) != w {
			t.Fatalf("tests[%d] - expected %v, got %v", i, w, tok.Literal)
		}
	}
}

func TestNextToken_StringLiteral(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %v", tok.Type)
	}
	if tok.Literal.(string) != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", tok.Literal)
	}
}

func TestNextToken_MultiLineString(t *testing.T) {
	l := New("\"line one\nline two\"\n1")
	tok := l.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected STRING, got %v", tok.Type)
	}
	next := l.NextToken()
	if next.Type != token.NUMBER || next.Line != 3 {
		t.Fatalf("expected NUMBER on line 3, got %v on line %d", next.Type, next.Line)
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"never closes`)
	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("expected ERROR, got %v", tok.Type)
	}
}

func TestNextToken_LineComment(t *testing.T) {
	l := New("// a comment\n1")
	tok := l.NextToken()
	if tok.Type != token.NUMBER || tok.Line != 2 {
		t.Fatalf("expected NUMBER on line 2, got %v on line %d", tok.Type, tok.Line)
	}
}

func TestNextToken_UnexpectedCharacter(t *testing.T) {
	l := New(`@`)
	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("expected ERROR, got %v", tok.Type)
	}
}
