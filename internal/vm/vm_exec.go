package vm

import "fmt"

// run is the VM's single hot loop: read an opcode from the current
// frame's ip, advance, dispatch (spec §4.6's "Dispatch").
func (vm *VM) run() error {
	for {
		frame := vm.frame()

		if vm.opts.TraceExecution {
			vm.traceInstruction(frame)
		}

		op := Opcode(vm.readByte())

		switch op {
		case OP_CONSTANT:
			vm.push(vm.readConstant())

		case OP_NIL:
			vm.push(nil)
		case OP_TRUE:
			vm.push(true)
		case OP_FALSE:
			vm.push(false)

		case OP_POP:
			vm.pop()

		case OP_GET_LOCAL:
			slot := int(vm.readByte())
			vm.push(vm.stack[vm.frame().slotBase+slot])

		case OP_SET_LOCAL:
			slot := int(vm.readByte())
			vm.stack[vm.frame().slotBase+slot] = vm.peek(0)

		case OP_GET_GLOBAL:
			name := vm.readConstant().(*ObjString)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)

		case OP_DEFINE_GLOBAL:
			name := vm.readConstant().(*ObjString)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case OP_SET_GLOBAL:
			name := vm.readConstant().(*ObjString)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case OP_GET_UPVALUE:
			slot := int(vm.readByte())
			vm.push(vm.frame().closure.Upvalues[slot].get(vm))

		case OP_SET_UPVALUE:
			slot := int(vm.readByte())
			vm.frame().closure.Upvalues[slot].set(vm, vm.peek(0))

		case OP_GET_PROPERTY:
			instance, ok := vm.peek(0).(*ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			name := vm.readConstant().(*ObjString)
			if v, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}

		case OP_SET_PROPERTY:
			instance, ok := vm.peek(1).(*ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			name := vm.readConstant().(*ObjString)
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)

		case OP_GET_SUPER:
			name := vm.readConstant().(*ObjString)
			superclass := vm.pop().(*ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case OP_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(valuesEqual(a, b))

		case OP_GREATER:
			if err := vm.binaryNumeric(func(a, b float64) Value { return a > b }); err != nil {
				return err
			}
		case OP_LESS:
			if err := vm.binaryNumeric(func(a, b float64) Value { return a < b }); err != nil {
				return err
			}

		case OP_ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case OP_SUBTRACT:
			if err := vm.binaryNumeric(func(a, b float64) Value { return a - b }); err != nil {
				return err
			}
		case OP_MULTIPLY:
			if err := vm.binaryNumeric(func(a, b float64) Value { return a * b }); err != nil {
				return err
			}
		case OP_DIVIDE:
			if err := vm.binaryNumeric(func(a, b float64) Value { return a / b }); err != nil {
				return err
			}

		case OP_NOT:
			vm.push(!isTruthy(vm.pop()))

		case OP_NEGATE:
			n, ok := vm.peek(0).(float64)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case OP_PRINT:
			fmt.Fprintln(vm.out, stringify(vm.pop()))

		case OP_JUMP:
			offset := vm.readShort()
			vm.frame().ip += offset

		case OP_JUMP_IF_FALSE:
			offset := vm.readShort()
			if !isTruthy(vm.peek(0)) {
				vm.frame().ip += offset
			}

		case OP_LOOP:
			offset := vm.readShort()
			vm.frame().ip -= offset

		case OP_CALL:
			argCount := int(vm.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}

		case OP_INVOKE:
			name := vm.readConstant().(*ObjString)
			argCount := int(vm.readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}

		case OP_SUPER_INVOKE:
			name := vm.readConstant().(*ObjString)
			argCount := int(vm.readByte())
			superclass := vm.pop().(*ObjClass)
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}

		case OP_CLOSURE:
			fn := vm.readConstant().(*ObjFunction)
			closure := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
			vm.track(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte()
				index := int(vm.readByte())
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(vm.frame().slotBase + index)
				} else {
					closure.Upvalues[i] = vm.frame().closure.Upvalues[index]
				}
			}
			vm.push(closure)

		case OP_CLOSE_UPVALUE:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case OP_RETURN:
			result := vm.pop()
			finishedFrame := vm.frame()
			vm.closeUpvalues(finishedFrame.slotBase)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // discard the top-level script's own slot
				return nil
			}
			vm.stack = vm.stack[:finishedFrame.slotBase]
			vm.push(result)

		case OP_CLASS:
			name := vm.readConstant().(*ObjString)
			class := &ObjClass{Name: name, Methods: NewTable()}
			vm.track(class)
			vm.push(class)

		case OP_INHERIT:
			superclassVal := vm.peek(1)
			superclass, ok := superclassVal.(*ObjClass)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).(*ObjClass)
			subclass.Methods.AddAll(superclass.Methods)
			vm.pop() // pop the subclass; the superclass stays as the "super" local

		case OP_METHOD:
			name := vm.readConstant().(*ObjString)
			method := vm.peek(0).(*ObjClosure)
			class := vm.peek(1).(*ObjClass)
			class.Methods.Set(name, method)
			vm.pop()

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := f.closure.Function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.readByte()
	lo := vm.readByte()
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant() Value {
	idx := vm.readByte()
	return vm.frame().closure.Function.Chunk.Constants[idx]
}
