package vm

import "fmt"

// Value is a Lox value: nil, a bool, a float64, or a pointer to one of the
// Obj-implementing heap types below (spec §3). Go's interface equality
// already implements the value-equality rule spec §4.2 requires — IEEE-754
// comparison for float64, identity comparison for pointers — so callers
// compare Values with plain ==; see valuesEqual below (nil-safety is
// automatic; NaN handling follows Go's own float semantics, matching the
// IEEE-754 policy spec §9's open question allows).
type Value = interface{}

// Obj is implemented by every heap-allocated object. ObjHeader carries the
// GC's mark bit and the intrusive next-object pointer used to walk every
// live allocation during sweep (spec §3's shared heap-object header).
type Obj interface {
	isObj()
	header() *ObjHeader
}

// ObjHeader is embedded in every heap object.
type ObjHeader struct {
	Mark bool
	Next Obj
}

func (h *ObjHeader) header() *ObjHeader { return h }

// ObjString is an interned, immutable byte sequence plus its cached FNV-1a
// hash (spec §3). Two ObjStrings with equal Chars are always the same
// pointer once both have passed through the VM's interner.
type ObjString struct {
	ObjHeader
	Chars string
	Hash  uint32
}

func (*ObjString) isObj() {}

// hashString computes the 32-bit FNV-1a hash spec §4.3 calls for.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// ObjFunction is a compiled function body: arity, how many upvalues its
// closures must capture, its own chunk, and an optional name (nil for the
// implicit top-level script function).
type ObjFunction struct {
	ObjHeader
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString
}

func (*ObjFunction) isObj() {}

func (f *ObjFunction) displayName() string {
	if f.Name == nil {
		return "script"
	}
	return f.Name.Chars
}

// NativeFn is a host-provided computation bound to a name (spec §3's
// NativeFunction).
type NativeFn func(vm *VM, args []Value) (Value, error)

type ObjNative struct {
	ObjHeader
	Name  string
	Arity int
	Fn    NativeFn
}

func (*ObjNative) isObj() {}

// ObjUpvalue is open while StackSlot still names a live index into the VM's
// value stack, closed once it owns its value directly in Closed (spec §3,
// §4.6). Go's growable stack slice can reallocate its backing array on
// append, so an open upvalue holds the stack INDEX rather than a raw
// pointer into the slice — a pointer would dangle the moment the stack
// grows; an index stays valid because every other piece of VM state
// (CallFrame.slotBase, GET_LOCAL/SET_LOCAL operands) is already
// index-relative for the same reason.
type ObjUpvalue struct {
	ObjHeader
	Open      bool
	StackSlot int
	Closed    Value
	NextOpen  *ObjUpvalue // intrusive open-upvalue list, descending by stack address
}

func (*ObjUpvalue) isObj() {}

func (u *ObjUpvalue) get(vm *VM) Value {
	if u.Open {
		return vm.stack[u.StackSlot]
	}
	return u.Closed
}

func (u *ObjUpvalue) set(vm *VM, v Value) {
	if u.Open {
		vm.stack[u.StackSlot] = v
		return
	}
	u.Closed = v
}

func (u *ObjUpvalue) close(vm *VM) {
	u.Closed = vm.stack[u.StackSlot]
	u.Open = false
}

// ObjClosure pairs a Function with the upvalues its body captured at
// creation time (spec §3).
type ObjClosure struct {
	ObjHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (*ObjClosure) isObj() {}

// ObjClass is a name plus its own method table (spec §3). INHERIT copies a
// superclass's table into this one at class-declaration time rather than
// chaining lookups, matching spec §4.4's "emit INHERIT to copy all methods
// from the superclass into the subclass".
type ObjClass struct {
	ObjHeader
	Name    *ObjString
	Methods *Table
}

func (*ObjClass) isObj() {}

// ObjInstance is a class pointer plus a per-instance field table.
type ObjInstance struct {
	ObjHeader
	Class  *ObjClass
	Fields *Table
}

func (*ObjInstance) isObj() {}

// ObjBoundMethod pairs a receiver with a method Closure (spec §3); calling
// it runs Method with slot 0 set to Receiver.
type ObjBoundMethod struct {
	ObjHeader
	Receiver Value
	Method   *ObjClosure
}

func (*ObjBoundMethod) isObj() {}

func isTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func valuesEqual(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a == b
}

// stringify renders a Value for `print` (spec §6's numeric-printing rule:
// integral floats print without ".0"; nil and booleans print literally;
// objects print the class/instance/function forms their types call for).
func stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(val)
	case *ObjString:
		return val.Chars
	case *ObjFunction:
		return "<fn " + val.displayName() + ">"
	case *ObjNative:
		return "<native fn " + val.Name + ">"
	case *ObjClosure:
		return "<fn " + val.Function.displayName() + ">"
	case *ObjClass:
		return val.Name.Chars
	case *ObjInstance:
		return val.Class.Name.Chars + " instance"
	case *ObjBoundMethod:
		return "<fn " + val.Method.Function.displayName() + ">"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case *ObjString:
		return "string"
	case *ObjClosure, *ObjNative, *ObjBoundMethod:
		return "function"
	case *ObjClass:
		return "class"
	case *ObjInstance:
		return "instance"
	default:
		return "value"
	}
}
