package vm

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	m := New(&out, Options{})
	if err := m.Interpret(source); err != nil {
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

func TestClosuresCaptureByReference(t *testing.T) {
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

func TestClassesInitAndMethods(t *testing.T) {
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

func TestInheritanceAndSuperInvoke(t *testing.T) {
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

func TestWhileAndForLoopsDesugarEquivalently(t *testing.T) {
	forSum := run(t, `
	var sum = 0;
	for (var i = 0; i < 5; i = i + 1) {
		sum = sum + i;
	}
	print sum;
	`)
	whileSum := run(t, `
	var sum = 0;
	var i = 0;
	while (i < 5) {
		sum = sum + i;
		i = i + 1;
	}
	print sum;
	`)
	if forSum != whileSum || forSum != "10\n" {
		t.Fatalf("for-loop %q and while-loop %q should both print 10", forSum, whileSum)
	}
}

func TestShortCircuitAndOr(t *testing.T) {
	source := `
	fun sideEffect() {
		print "called";
		return true;
	}
	print false and sideEffect();
	print true or sideEffect();
	`
	got := run(t, source)
	want := "false\ntrue\n"
	if got != want {
		t.Fatalf("got %q, want %q (sideEffect must never run)", got, want)
	}
}

func TestBoundMethodReadsReceiverFieldsLive(t *testing.T) {
	source := `
	class Box {
		init(v) { this.v = v; }
		get() { return this.v; }
	}
	var b = Box(1);
	var bound = b.get;
	b.v = 2;
	print bound();
	`
	got := run(t, source)
	if got != "2\n" {
		t.Fatalf("got %q, want %q (bound method reads the receiver live)", got, "2\n")
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	err := m.Interpret(`print nope;`)
	if err == nil {
		t.Fatal("expected a runtime error for an undefined variable")
	}
	if !strings.Contains(err.Error(), "Undefined variable") {
		t.Fatalf("got error %q, want it to mention the undefined variable", err.Error())
	}
}

func TestTypeErrorOnBadOperands(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	err := m.Interpret(`print "foo" - 1;`)
	if err == nil {
		t.Fatal("expected a runtime type error")
	}
}

func TestCompileErrorReturnsNilFunction(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	fn, errs := m.CompileErrors(`var 1 = 2;`)
	if fn != nil {
		t.Fatalf("expected a nil function on a compile error, got %v", fn)
	}
	if len(errs) == 0 {
		t.Fatal("expected at least one compile error")
	}
}

func TestStackOverflowIsARuntimeError(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	err := m.Interpret(`
	fun recurse() {
		return recurse();
	}
	recurse();
	`)
	if err == nil {
		t.Fatal("expected a stack overflow runtime error")
	}
	if !strings.Contains(err.Error(), "Stack overflow") {
		t.Fatalf("got error %q, want it to mention stack overflow", err.Error())
	}
}

func TestStressGCDoesNotCorruptLiveState(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{StressGC: true})
	source := `
	class LinkedNode {
		init(value, next) {
			this.value = value;
			this.next = next;
		}
	}
	fun buildAndSum(n) {
		var head = nil;
		var i = 0;
		while (i < n) {
			head = LinkedNode(i, head);
			i = i + 1;
		}
		var sum = 0;
		while (head != nil) {
			sum = sum + head.value;
			head = head.next;
		}
		return sum;
	}
	print buildAndSum(50);
	`
	err := m.Interpret(source)
	if err != nil {
		t.Fatalf("unexpected runtime error under GC stress: %v", err)
	}
	if out.String() != "1225\n" {
		t.Fatalf("got %q, want %q", out.String(), "1225\n")
	}
}

func TestDisassembleRendersConstantAndJumpOperands(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	fn, errs := m.CompileErrors(`
	var a = 1;
	if (a == 1) { print "one"; } else { print "other"; }
	`)
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
	text := Disassemble(fn.Chunk, "script")
	for _, want := range []string{"OP_CONSTANT", "OP_JUMP_IF_FALSE", "OP_JUMP", "OP_RETURN"} {
		if !strings.Contains(text, want) {
			t.Fatalf("disassembly missing %q:\n%s", want, text)
		}
	}
}
