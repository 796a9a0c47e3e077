package vm

// binaryNumeric pops two numbers and pushes apply(a, b), or raises a
// runtime error if either operand isn't a number (spec §4.2's numeric
// binary operator rule).
func (vm *VM) binaryNumeric(apply func(a, b float64) Value) error {
	b, bNum := vm.peek(0).(float64)
	a, aNum := vm.peek(1).(float64)
	if !aNum || !bNum {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(apply(a, b))
	return nil
}

// add implements ADD's overload: number+number or string+string (spec
// §4.2's PLUS rule); anything else is a type error.
func (vm *VM) add() error {
	bv, av := vm.peek(0), vm.peek(1)

	if bn, ok := bv.(float64); ok {
		if an, ok := av.(float64); ok {
			vm.pop()
			vm.pop()
			vm.push(an + bn)
			return nil
		}
	}
	if bs, ok := bv.(*ObjString); ok {
		if as, ok := av.(*ObjString); ok {
			vm.pop()
			vm.pop()
			concatenated := vm.strings.intern(as.Chars + bs.Chars)
			vm.push(concatenated)
			return nil
		}
	}
	return vm.runtimeError("Operands must be two numbers or two strings.")
}
