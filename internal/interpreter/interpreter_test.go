package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loxlang/loxvm/internal/parser"
	"github.com/loxlang/loxvm/internal/resolver"
)

func run(t *testing.T, source string) string {
	t.Helper()
	p := parser.New(source)
	stmts := p.ParseProgram()
	if p.HadError() {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}

	var out bytes.Buffer
	in := New(&out)

	res := resolver.New(in)
	res.Resolve(stmts)
	if res.HadError() {
		t.Fatalf("unexpected resolve errors: %v", res.Errors())
	}

	if err := in.Interpret(stmts); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return out.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	got := run(t, `print 1 + 2 * 3;`)
	if got != "7\n" {
		t.Fatalf("got %q, want %q", got, "7\n")
	}
}

func TestStringConcatenation(t *testing.T) {
	got := run(t, `print "foo" + "bar";`)
	if got != "foobar\n" {
		t.Fatalf("got %q, want %q", got, "foobar\n")
	}
}

func TestIntegralNumberPrintsWithoutDecimal(t *testing.T) {
	got := run(t, `print 10 / 2;`)
	if got != "5\n" {
		t.Fatalf("got %q, want %q", got, "5\n")
	}
}

func TestVariablesAndScoping(t *testing.T) {
	source := `
	var a = "outer";
	{
		var a = "inner";
		print a;
	}
	print a;
	`
	got := run(t, source)
	want := "inner\nouter\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClosures(t *testing.T) {
	source := `
	fun makeCounter() {
		var i = 0;
		fun count() {
			i = i + 1;
			return i;
		}
		return count;
	}
	var counter = makeCounter();
	print counter();
	print counter();
	`
	got := run(t, source)
	want := "1\n2\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClassesAndMethods(t *testing.T) {
	source := `
	class Greeter {
		init(name) {
			this.name = name;
		}
		greet() {
			return "hello, " + this.name;
		}
	}
	var g = Greeter("world");
	print g.greet();
	`
	got := run(t, source)
	if got != "hello, world\n" {
		t.Fatalf("got %q, want %q", got, "hello, world\n")
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	source := `
	class A {
		method() {
			return "A method";
		}
	}
	class B < A {
		method() {
			return super.method() + " from B";
		}
	}
	print B().method();
	`
	got := run(t, source)
	if got != "A method from B\n" {
		t.Fatalf("got %q, want %q", got, "A method from B\n")
	}
}

func TestWhileAndForLoops(t *testing.T) {
	source := `
	var sum = 0;
	for (var i = 0; i < 5; i = i + 1) {
		sum = sum + i;
	}
	print sum;
	`
	got := run(t, source)
	if got != "10\n" {
		t.Fatalf("got %q, want %q", got, "10\n")
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	p := parser.New(`print nope;`)
	stmts := p.ParseProgram()
	var out bytes.Buffer
	in := New(&out)
	res := resolver.New(in)
	res.Resolve(stmts)
	err := in.Interpret(stmts)
	if err == nil {
		t.Fatal("expected a runtime error for an undefined variable")
	}
	if !strings.Contains(err.Error(), "Undefined variable") {
		t.Fatalf("got error %q, want it to mention the undefined variable", err.Error())
	}
}

func TestTypeErrorOnBadOperands(t *testing.T) {
	p := parser.New(`print "foo" - 1;`)
	stmts := p.ParseProgram()
	var out bytes.Buffer
	in := New(&out)
	res := resolver.New(in)
	res.Resolve(stmts)
	err := in.Interpret(stmts)
	if err == nil {
		t.Fatal("expected a runtime type error")
	}
}
