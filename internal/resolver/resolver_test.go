package resolver

import (
	"testing"

	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/parser"
)

// recordingBinder is a test double standing in for the interpreter,
// recording every Resolve call it receives.
type recordingBinder struct {
	depths map[ast.Expr]int
}

func newRecordingBinder() *recordingBinder {
	return &recordingBinder{depths: make(map[ast.Expr]int)}
}

func (b *recordingBinder) Resolve(expr ast.Expr, depth int) {
	b.depths[expr] = depth
}

func parseAndResolve(t *testing.T, source string) (*Resolver, []ast.Stmt) {
	t.Helper()
	p := parser.New(source)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	r := New(newRecordingBinder())
	r.Resolve(stmts)
	return r, stmts
}

func TestResolveLocalVariableDistance(t *testing.T) {
	source := `
	var a = 1;
	{
		var b = 2;
		print a + b;
	}
	`
	r, stmts := parseAndResolve(t, source)
	if r.HadError() {
		t.Fatalf("unexpected resolve errors: %v", r.Errors())
	}
	sum := stmts[1].(*ast.Block).Statements[1].(*ast.Print).Expression.(*ast.Binary)
	depths := r.in.(*recordingBinder).depths
	if d, ok := depths[sum.Right]; !ok || d != 0 {
		t.Fatalf("b: got depth (%d, %v), want (0, true)", d, ok)
	}
	if _, ok := depths[sum.Left]; ok {
		t.Fatal("a is global and must not be resolved to a local depth")
	}
}

func TestSelfReadInInitializerIsError(t *testing.T) {
	source := `
	{
		var a = a;
	}
	`
	r, _ := parseAndResolve(t, source)
	if !r.HadError() {
		t.Fatal("expected a self-read-in-initializer error")
	}
}

func TestDuplicateDeclarationInScopeIsError(t *testing.T) {
	source := `
	{
		var a = 1;
		var a = 2;
	}
	`
	r, _ := parseAndResolve(t, source)
	if !r.HadError() {
		t.Fatal("expected a duplicate declaration error")
	}
}

func TestReturnFromTopLevelIsError(t *testing.T) {
	r, _ := parseAndResolve(t, `return 1;`)
	if !r.HadError() {
		t.Fatal("expected a return-from-top-level error")
	}
}

func TestReturnValueFromInitializerIsError(t *testing.T) {
	source := `
	class Foo {
		init() {
			return 1;
		}
	}
	`
	r, _ := parseAndResolve(t, source)
	if !r.HadError() {
		t.Fatal("expected a return-value-from-initializer error")
	}
}

func TestThisOutsideClassIsError(t *testing.T) {
	r, _ := parseAndResolve(t, `print this;`)
	if !r.HadError() {
		t.Fatal("expected a this-outside-class error")
	}
}

func TestSuperWithoutSuperclassIsError(t *testing.T) {
	source := `
	class Foo {
		bar() {
			super.bar();
		}
	}
	`
	r, _ := parseAndResolve(t, source)
	if !r.HadError() {
		t.Fatal("expected a super-without-superclass error")
	}
}

func TestSelfInheritanceIsError(t *testing.T) {
	r, _ := parseAndResolve(t, `class Foo < Foo {}`)
	if !r.HadError() {
		t.Fatal("expected a self-inheritance error")
	}
}

func TestValidClassWithSuperclassResolvesCleanly(t *testing.T) {
	source := `
	class Base {
		greet() { print "hi"; }
	}
	class Derived < Base {
		greet() { super.greet(); }
	}
	`
	r, _ := parseAndResolve(t, source)
	if r.HadError() {
		t.Fatalf("unexpected resolve errors: %v", r.Errors())
	}
}
