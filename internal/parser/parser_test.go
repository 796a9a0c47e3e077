package parser

import (
	"testing"

	"github.com/loxlang/loxvm/internal/ast"
)

func TestParseExpressionStatement(t *testing.T) {
	p := New(`1 + 2 * 3;`)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	exprStmt, ok := stmts[0].(*ast.Expression)
	if !ok {
		t.Fatalf("expected *ast.Expression, got %T", stmts[0])
	}
	bin, ok := exprStmt.Expression.(*ast.Binary)
	if !ok {
		t.Fatalf("expected top-level *ast.Binary (precedence should bind * tighter than +), got %T", exprStmt.Expression)
	}
	if bin.Operator.Lexeme != "+" {
		t.Fatalf("expected top-level operator '+', got %q", bin.Operator.Lexeme)
	}
}

func TestParseVarDeclaration(t *testing.T) {
	p := New(`var x = "hi";`)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	v, ok := stmts[0].(*ast.Var)
	if !ok {
		t.Fatalf("expected *ast.Var, got %T", stmts[0])
	}
	if v.Name.Lexeme != "x" {
		t.Fatalf("expected name 'x', got %q", v.Name.Lexeme)
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	p := New(`class B < A { m() { return super.m(); } }`)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	cls, ok := stmts[0].(*ast.Class)
	if !ok {
		t.Fatalf("expected *ast.Class, got %T", stmts[0])
	}
	if cls.Superclass == nil || cls.Superclass.Name.Lexeme != "A" {
		t.Fatalf("expected superclass A, got %v", cls.Superclass)
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name.Lexeme != "m" {
		t.Fatalf("expected one method 'm', got %v", cls.Methods)
	}
}

func TestForLoopDesugarsToWhile(t *testing.T) {
	p := New(`for (var i = 0; i < 3; i = i + 1) print i;`)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected errors: %v", p.Errors())
	}
	block, ok := stmts[0].(*ast.Block)
	if !ok || len(block.Statements) != 2 {
		t.Fatalf("expected desugared block with [init, while], got %#v", stmts[0])
	}
	if _, ok := block.Statements[0].(*ast.Var); !ok {
		t.Fatalf("expected first statement to be the initializer, got %T", block.Statements[0])
	}
	if _, ok := block.Statements[1].(*ast.While); !ok {
		t.Fatalf("expected second statement to be a while loop, got %T", block.Statements[1])
	}
}

func TestInvalidAssignmentTargetIsError(t *testing.T) {
	p := New(`1 + 2 = 3;`)
	p.ParseProgram()
	if !p.HadError() {
		t.Fatalf("expected an error for an invalid assignment target")
	}
}

func TestMissingInitializerSynchronizes(t *testing.T) {
	p := New("var x = ; var y = 2;")
	stmts := p.ParseProgram()
	if !p.HadError() {
		t.Fatalf("expected a parse error")
	}
	// Synchronization should let the parser recover and still parse `var y`.
	found := false
	for _, s := range stmts {
		if v, ok := s.(*ast.Var); ok && v.Name.Lexeme == "y" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parser to recover and parse 'var y', got %#v", stmts)
	}
}
