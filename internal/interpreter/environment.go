package interpreter

import "github.com/loxlang/loxvm/internal/diagnostics"

// Environment is a mapping from names to values plus an optional pointer to
// an enclosing environment (spec §3): the global environment has no
// parent. Lox's core is explicitly single-threaded and synchronous (spec
// §5), so — unlike the teacher's own Environment, which carries a
// sync.RWMutex for its concurrent module evaluation — this one carries no
// lock.
type Environment struct {
	values map[string]interface{}
	outer  *Environment
}

// NewEnvironment creates a parentless (global) environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]interface{})}
}

// NewEnclosedEnvironment creates an environment whose enclosing scope is
// outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{values: make(map[string]interface{}), outer: outer}
}

// Define binds name to value in this environment, shadowing any outer
// binding of the same name. Re-running a `var` declaration at the same
// scope (the REPL's top level, or inside a loop body) simply redefines it.
func (e *Environment) Define(name string, value interface{}) {
	e.values[name] = value
}

// Get looks up name, walking outward through enclosing environments.
func (e *Environment) Get(name string) (interface{}, bool) {
	if v, ok := e.values[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// Assign rebinds an already-declared name, walking outward. It reports
// whether the name was found.
func (e *Environment) Assign(name string, value interface{}) bool {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return true
	}
	if e.outer != nil {
		return e.outer.Assign(name, value)
	}
	return false
}

// Ancestor returns the environment distance hops up the enclosing chain.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.outer
	}
	return env
}

// GetAt returns the binding for name in the ancestor distance hops up
// (spec §3: `getAt(distance, name)`), as resolved by the resolver pass.
func (e *Environment) GetAt(distance int, name string) interface{} {
	v, _ := e.Ancestor(distance).values[name]
	return v
}

// AssignAt rebinds name in the ancestor distance hops up.
func (e *Environment) AssignAt(distance int, name string, value interface{}) {
	e.Ancestor(distance).values[name] = value
}

// undefinedVariableError builds the runtime error for a read or assignment
// of a name with no binding anywhere in the chain (global lookup miss).
func undefinedVariableError(name string) *diagnostics.RuntimeError {
	return &diagnostics.RuntimeError{Message: "Undefined variable '" + name + "'."}
}
