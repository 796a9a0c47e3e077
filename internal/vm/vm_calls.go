package vm

import "github.com/loxlang/loxvm/internal/config"

// callValue dispatches CALL on whatever value sits at the callee slot
// (spec §4.6's "Call dispatch on CALL").
func (vm *VM) callValue(callee Value, argCount int) error {
	switch c := callee.(type) {
	case *ObjClosure:
		return vm.call(c, argCount)
	case *ObjNative:
		if argCount != c.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", c.Arity, argCount)
		}
		args := vm.stack[len(vm.stack)-argCount:]
		result, err := c.Fn(vm, args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stack = vm.stack[:len(vm.stack)-argCount-1]
		vm.push(result)
		return nil
	case *ObjClass:
		instance := &ObjInstance{Class: c, Fields: NewTable()}
		vm.track(instance)
		vm.stack[len(vm.stack)-argCount-1] = instance
		if init, ok := c.Methods.Get(vm.initString); ok {
			return vm.call(init.(*ObjClosure), argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
		}
		return nil
	case *ObjBoundMethod:
		vm.stack[len(vm.stack)-argCount-1] = c.Receiver
		return vm.call(c.Method, argCount)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// call pushes a new CallFrame for closure, verifying arity and the call
// frame depth limit (spec §4.6, §8's "stack overflow" runtime error).
func (vm *VM) call(closure *ObjClosure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if len(vm.frames) >= config.MaxCallFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure:  closure,
		ip:       0,
		slotBase: len(vm.stack) - argCount - 1,
	})
	return nil
}

// bindMethod allocates a BoundMethod pairing the value at the top of the
// stack (the receiver) with name's Closure on class (spec §4.6's
// GET_PROPERTY method-hit path).
func (vm *VM) bindMethod(class *ObjClass, name *ObjString) error {
	methodVal, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := &ObjBoundMethod{Receiver: vm.peek(0), Method: methodVal.(*ObjClosure)}
	vm.track(bound)
	vm.pop()
	vm.push(bound)
	return nil
}

// invoke fuses GET_PROPERTY+CALL for `receiver.name(args)` (spec §4.6):
// a field hit is called like any other value; a method hit dispatches
// directly to the class without allocating an intermediate BoundMethod.
func (vm *VM) invoke(name *ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	instance, ok := receiver.(*ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[len(vm.stack)-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) error {
	methodVal, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(methodVal.(*ObjClosure), argCount)
}

// captureUpvalue returns the open upvalue for stack slot index, reusing an
// existing one if the open-upvalue list (sorted descending by stack
// address) already has one for that slot (spec §4.6's upvalue machinery).
func (vm *VM) captureUpvalue(index int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvals
	for cur != nil && cur.StackSlot > index {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.StackSlot == index {
		return cur
	}

	created := &ObjUpvalue{Open: true, StackSlot: index}
	vm.track(created)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvals = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above stack index from,
// copying each one's current slot value into its own storage (spec §4.6:
// "CLOSE_UPVALUE and function return").
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvals != nil && vm.openUpvals.StackSlot >= from {
		uv := vm.openUpvals
		uv.close(vm)
		vm.openUpvals = uv.NextOpen
	}
}
