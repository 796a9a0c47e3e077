package vm

import "github.com/loxlang/loxvm/internal/config"

// collectGarbage runs one full tri-color mark-sweep cycle (spec §4.7):
// mark roots, trace every gray object to black, drop the interner's weak
// references to now-unreachable strings, sweep the heap list, then raise
// nextGC for the next cycle. Safe to call with an empty VM (construction
// time) or mid-compile (Compile roots the in-progress funcCompiler chain
// via vm.compilerRoot).
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.removeWhite()
	vm.sweep()

	vm.nextGC = vm.bytesAlloc * config.GCHeapGrowFactor
	if vm.nextGC < config.InitialGCThreshold {
		vm.nextGC = config.InitialGCThreshold
	}
}

// markObject grays obj: sets its mark bit and pushes it onto the gray
// worklist, unless it's already marked (cycles and shared subobjects are
// common — ObjClass.Methods, interned strings — so this must be idempotent).
func (vm *VM) markObject(obj Obj) {
	if obj == nil {
		return
	}
	// A nil *ObjString (initString before New interns "init", or the script
	// function's Name) arrives here as a non-nil Obj.
	if s, ok := obj.(*ObjString); ok && s == nil {
		return
	}
	h := obj.header()
	if h.Mark {
		return
	}
	h.Mark = true
	vm.grayStack = append(vm.grayStack, obj)
}

// markValue grays v if it is a heap object; numbers, bools and nil need no
// marking (spec §4.7's "mark" only ever touches Obj-typed roots).
func (vm *VM) markValue(v Value) {
	if obj, ok := v.(Obj); ok {
		vm.markObject(obj)
	}
}

func (vm *VM) markTable(t *Table) {
	if t == nil {
		return
	}
	t.Each(func(key *ObjString, value Value) {
		vm.markObject(key)
		vm.markValue(value)
	})
}

// markRoots marks every value reachable without following another object's
// fields: the value stack, every call frame's closure, the open-upvalue
// list, globals, the cached "init" string, and (mid-compile only) the
// compiler's own in-progress function chain (spec §4.7 step 1).
func (vm *VM) markRoots() {
	for _, v := range vm.stack {
		vm.markValue(v)
	}
	for _, f := range vm.frames {
		vm.markObject(f.closure)
	}
	for uv := vm.openUpvals; uv != nil; uv = uv.NextOpen {
		vm.markObject(uv)
	}
	vm.markTable(vm.globals)
	vm.markObject(vm.initString)

	for fc := vm.compilerRoot; fc != nil; fc = fc.enclosing {
		vm.markObject(fc.function)
	}
}

// traceReferences drains the gray worklist, blackening each object by
// marking whatever it points to, until nothing gray remains (spec §4.7
// step 2).
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		n := len(vm.grayStack) - 1
		obj := vm.grayStack[n]
		vm.grayStack = vm.grayStack[:n]
		vm.blacken(obj)
	}
}

func (vm *VM) blacken(obj Obj) {
	switch o := obj.(type) {
	case *ObjString:
		// leaf: no outgoing references.
	case *ObjNative:
		// leaf: Name is a plain Go string, Fn closes over nothing we track.
	case *ObjFunction:
		vm.markObject(o.Name)
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *ObjClosure:
		vm.markObject(o.Function)
		for _, uv := range o.Upvalues {
			vm.markObject(uv)
		}
	case *ObjUpvalue:
		if !o.Open {
			vm.markValue(o.Closed)
		}
	case *ObjClass:
		vm.markObject(o.Name)
		vm.markTable(o.Methods)
	case *ObjInstance:
		vm.markObject(o.Class)
		vm.markTable(o.Fields)
	case *ObjBoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	}
}

// sweep walks the intrusive heap list, dropping every object whose mark bit
// is still clear (unreachable) and clearing the bit on every survivor for
// the next cycle (spec §4.7 step 4).
func (vm *VM) sweep() {
	var prev Obj
	cur := vm.heap
	for cur != nil {
		h := cur.header()
		if h.Mark {
			h.Mark = false
			prev = cur
			cur = h.Next
			continue
		}

		unreached := cur
		cur = h.Next
		vm.bytesAlloc -= objSize(unreached)
		if prev == nil {
			vm.heap = cur
		} else {
			prev.header().Next = cur
		}
	}
}
