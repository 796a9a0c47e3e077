// Package vm implements Lox's bytecode backend: the single-pass Pratt
// compiler, the stack VM, and the mark-sweep garbage collector (spec
// §4.4-§4.7). It is one of the two evaluator backends; internal/interpreter
// is the other.
package vm

import (
	"fmt"
	"io"
	"time"

	"github.com/loxlang/loxvm/internal/config"
	"github.com/loxlang/loxvm/internal/diagnostics"
)

// CallFrame is one activation record: the running closure, its instruction
// pointer, and the stack index its locals are offset from (spec §4.6).
type CallFrame struct {
	closure  *ObjClosure
	ip       int
	slotBase int
}

// Options carries the debug/tuning knobs `.loxrc.yaml` and `-trace` expose
// (SPEC_FULL.md's MODULE EXPANSION); none of them change language
// semantics, only VM instrumentation.
type Options struct {
	TraceExecution     bool
	StressGC           bool
	InitialGCThreshold int
}

// VM is the whole runtime: the value stack, call frames, globals, the
// string interner, the open-upvalue list, the heap-object list, and GC
// accounting (spec §4.6's "State"). One VM instance is one independent
// session; constructing and discarding several in sequence leaves no
// residual state (spec §9's "process-wide state" note).
type VM struct {
	stack  []Value
	frames []CallFrame

	globals    *Table
	strings    *internTable
	openUpvals *ObjUpvalue
	heap       Obj
	bytesAlloc int
	nextGC     int
	initString *ObjString

	out   io.Writer
	start time.Time
	opts  Options

	grayStack []Obj

	// compilerRoot is the innermost in-progress funcCompiler while Compile
	// is running against this VM (kept current as compilation descends
	// into and returns from nested function bodies), or nil between calls
	// (spec §4.7's "mark the compiler's own in-progress Function objects").
	compilerRoot *funcCompiler
}

// New creates a VM writing `print` output to out and registers the `clock`
// native (spec §6).
func New(out io.Writer, opts Options) *VM {
	threshold := opts.InitialGCThreshold
	if threshold == 0 {
		threshold = config.InitialGCThreshold
	}
	vm := &VM{
		globals: NewTable(),
		strings: newInternTable(),
		out:     out,
		start:   time.Now(),
		opts:    opts,
		nextGC:  threshold,
	}
	vm.strings.onAlloc = func(s *ObjString) { vm.track(s) }
	vm.initString = vm.strings.intern("init")
	vm.defineNative("clock", 0, func(vm *VM, args []Value) (Value, error) {
		return time.Since(vm.start).Seconds(), nil
	})
	return vm
}

func (vm *VM) defineNative(name string, arity int, fn NativeFn) {
	native := &ObjNative{Name: name, Arity: arity, Fn: fn}
	vm.track(native)
	vm.globals.Set(vm.strings.intern(name), native)
}

// track adds obj to the sweep list and its header's byte cost to GC
// accounting, running a collection first if the bytes already allocated
// exceed nextGC or StressGC is set (spec §4.7's allocation-time trigger).
func (vm *VM) track(obj Obj) {
	if vm.opts.StressGC {
		vm.collectGarbage()
	} else if vm.bytesAlloc > vm.nextGC {
		vm.collectGarbage()
	}
	h := obj.header()
	h.Next = vm.heap
	vm.heap = obj
	vm.bytesAlloc += objSize(obj)
}

// objSize is a coarse, GC-accounting-only size estimate — not the real Go
// allocation size, just enough of a signal for the threshold heuristic to
// do its job (spec §4.7 does not mandate byte-exact accounting).
func objSize(obj Obj) int {
	switch o := obj.(type) {
	case *ObjString:
		return 32 + len(o.Chars)
	case *ObjFunction:
		return 64
	case *ObjClosure:
		return 32 + 8*len(o.Upvalues)
	case *ObjUpvalue:
		return 32
	case *ObjClass:
		return 32
	case *ObjInstance:
		return 32
	case *ObjBoundMethod:
		return 32
	case *ObjNative:
		return 32
	default:
		return 16
	}
}

// Interpret compiles and runs one program, sharing this VM's globals and
// interner across calls (so REPL sessions persist bindings between lines,
// spec §6).
func (vm *VM) Interpret(source string) error {
	fn, errs := Compile(source, vm.strings, vm)
	if fn == nil {
		return &diagnostics.RuntimeError{Message: formatCompileErrors(errs)}
	}

	vm.push(fn)
	closure := &ObjClosure{Function: fn}
	vm.track(closure)
	vm.pop()
	vm.push(closure)

	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

// CompileErrors exposes Compile's errors directly, so the CLI can tell a
// compile failure (exit 65) apart from a runtime failure (exit 70) without
// string-matching the message.
func (vm *VM) CompileErrors(source string) (*ObjFunction, []diagnostics.CompileError) {
	return Compile(source, vm.strings, vm)
}

func formatCompileErrors(errs []diagnostics.CompileError) string {
	var msg string
	for i, e := range errs {
		if i > 0 {
			msg += "\n"
		}
		msg += e.Error()
	}
	return msg
}

// --- stack primitives ---

func (vm *VM) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) frame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

// runtimeError builds a *diagnostics.RuntimeError carrying the current
// call-frame backtrace innermost-first (spec §4.6, §4.8), then clears the
// stack so the VM is back to empty (spec §7: "runtime errors unwind the
// entire VM to empty").
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	frames := make([]diagnostics.Frame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(f.closure.Function.Chunk.Lines) {
			line = f.closure.Function.Chunk.Lines[f.ip-1]
		}
		name := ""
		if f.closure.Function.Name != nil {
			name = f.closure.Function.Name.Chars
		}
		frames = append(frames, diagnostics.Frame{FunctionName: name, Line: line})
	}
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	return &diagnostics.RuntimeError{Message: msg, Frames: frames}
}
