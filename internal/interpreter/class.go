package interpreter

import "github.com/loxlang/loxvm/internal/diagnostics"

// LoxClass is a class value: a name plus a mapping from method name to
// function (spec §3's Class heap object).
type LoxClass struct {
	Name       string
	Superclass *LoxClass
	Methods    map[string]*LoxFunction
}

func (c *LoxClass) String() string { return c.Name }

// FindMethod looks up name on c, then walks the superclass chain — this is
// how INHERIT's "copy all methods from the superclass" (spec §4.4) is
// realized in the tree-walker: rather than physically copying entries,
// lookup falls through to the superclass's own table.
func (c *LoxClass) FindMethod(name string) (*LoxFunction, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Arity is the arity of `init`, or 0 if the class declares none (spec
// §4.6's CALL dispatch on a Class: "otherwise argc must be 0").
func (c *LoxClass) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call instantiates c: allocate a new Instance, then run `init` (bound to
// the new instance) if the class declares one (spec §4.6).
func (c *LoxClass) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	instance := &LoxInstance{Class: c, Fields: make(map[string]interface{})}
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// LoxInstance is a class instance: a class pointer plus a per-instance
// field mapping (spec §3's Instance heap object).
type LoxInstance struct {
	Class  *LoxClass
	Fields map[string]interface{}
}

func (i *LoxInstance) String() string { return i.Class.Name + " instance" }

// Get resolves a property access: fields shadow methods (spec §4.6's
// GET_PROPERTY semantics), and a hit on a method returns it bound to i.
func (i *LoxInstance) Get(name string) (interface{}, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if m, ok := i.Class.FindMethod(name); ok {
		return m.Bind(i), nil
	}
	return nil, &diagnostics.RuntimeError{Message: "Undefined property '" + name + "'."}
}

// Set always writes to the instance's field map (spec §4.6).
func (i *LoxInstance) Set(name string, value interface{}) {
	i.Fields[name] = value
}
