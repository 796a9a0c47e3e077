package interpreter

import "github.com/loxlang/loxvm/internal/ast"

// LoxFunction is a user-defined function or method: its declaration plus
// the environment active at the point it was declared (spec §3's Closure
// object, realized here as "declaration + captured environment" the way
// the tree-walker captures by environment chain rather than by individual
// upvalue — spec §4.5).
type LoxFunction struct {
	declaration   *ast.Function
	closure       *Environment
	isInitializer bool
}

func (f *LoxFunction) Arity() int { return len(f.declaration.Params) }

func (f *LoxFunction) String() string { return "<fn " + f.declaration.Name.Lexeme + ">" }

// Bind returns a new LoxFunction whose closure additionally binds `this` to
// instance — spec §4.5: "this is pre-bound in a synthetic scope around
// methods". Each call to Bind produces a distinct closure, but two
// BoundMethod-equivalent values created from the same instance compare
// equal by receiver, satisfying the method-binding testable property
// (spec §8) even though the tree-walker has no separate BoundMethod type.
func (f *LoxFunction) Bind(instance *LoxInstance) *LoxFunction {
	env := NewEnclosedEnvironment(f.closure)
	env.Define("this", instance)
	return &LoxFunction{declaration: f.declaration, closure: env, isInitializer: f.isInitializer}
}

func (f *LoxFunction) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnclosedEnvironment(f.closure)
	for i, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	result, err := in.executeBlock(f.declaration.Body, env)
	if ret, ok := err.(*returnSignal); ok {
		if f.isInitializer {
			return f.closure.GetAt(0, "this"), nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	return result, nil
}

// returnSignal is the non-local escape used to unwind out of a function
// body on `return` (spec §4.5 design notes: "a non-local escape mechanism
// ... propagated explicitly"). It implements error so exec/eval's normal
// (interface{}, error) threading carries it without a separate control
// channel.
type returnSignal struct {
	value interface{}
}

func (r *returnSignal) Error() string { return "return outside of a function" }
