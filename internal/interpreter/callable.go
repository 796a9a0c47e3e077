package interpreter

// Callable is implemented by every value that can appear as the callee of
// a Call expression: user functions/methods and native functions (spec
// §4.2's call semantics, generalized across both kinds).
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []interface{}) (interface{}, error)
	String() string
}

// NativeFunction wraps a host-provided computation (spec §3's
// NativeFunction heap object, realized here as a plain Go closure since the
// tree-walker has no bytecode heap to place it on).
type NativeFunction struct {
	Name    string
	Ar      int
	Fn      func(in *Interpreter, args []interface{}) (interface{}, error)
}

func (n *NativeFunction) Arity() int { return n.Ar }

func (n *NativeFunction) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	return n.Fn(in, args)
}

func (n *NativeFunction) String() string { return "<native fn " + n.Name + ">" }
