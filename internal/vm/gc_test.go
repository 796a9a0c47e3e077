package vm

import (
	"bytes"
	"testing"
)

// countHeap walks the VM's intrusive sweep list.
func countHeap(vm *VM) int {
	n := 0
	for o := vm.heap; o != nil; o = o.header().Next {
		n++
	}
	return n
}

func TestCollectGarbageSweepsUnreachableObjects(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})

	before := countHeap(m)
	// Nothing in this script survives past Interpret returning: the
	// concatenated string is printed and popped, and the top-level script's
	// own closure/function/chunk-constants stop being rooted the moment its
	// frame is gone.
	if err := m.Interpret(`print "hello" + " world";`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afterAlloc := countHeap(m)
	if afterAlloc <= before {
		t.Fatalf("expected heap to grow from compiling/running the script, got %d -> %d", before, afterAlloc)
	}

	m.collectGarbage()
	afterGC := countHeap(m)
	if afterGC >= afterAlloc {
		t.Fatalf("expected collectGarbage to shrink the heap list, got %d -> %d", afterAlloc, afterGC)
	}
}

func TestCollectGarbageDuringNestedFunctionCompileKeepsInternInvariant(t *testing.T) {
	// Forces a collection on every allocation (including every interned
	// identifier) while compiling deeply nested function bodies, to guard
	// against a stale compilerRoot leaving the in-progress inner Function
	// unrooted mid-compile (which would desync the string interner and
	// break the "equal bytes share one ObjString" invariant).
	var out bytes.Buffer
	m := New(&out, Options{StressGC: true})
	source := `
	fun outer() {
		var tag = "same-name";
		fun middle() {
			var tag = "same-name";
			fun inner() {
				var tag = "same-name";
				return tag;
			}
			return inner() == tag;
		}
		return middle();
	}
	print outer();
	`
	if err := m.Interpret(source); err != nil {
		t.Fatalf("unexpected error under nested-compile GC stress: %v", err)
	}
	if out.String() != "true\n" {
		t.Fatalf("got %q, want %q (all three \"tag\" strings must be the same interned object)", out.String(), "true\n")
	}
}

func TestGlobalsRootPreventsCollectionOfLiveClasses(t *testing.T) {
	var out bytes.Buffer
	m := New(&out, Options{})
	err := m.Interpret(`
	class Counter {
		init() { this.n = 0; }
		bump() { this.n = this.n + 1; return this.n; }
	}
	var c = Counter();
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.collectGarbage()
	if err := m.Interpret(`print c.bump(); print c.bump();`); err != nil {
		t.Fatalf("unexpected error after GC: %v", err)
	}
	if out.String() != "1\n2\n" {
		t.Fatalf("got %q, want %q (global c must survive collection)", out.String(), "1\n2\n")
	}
}
