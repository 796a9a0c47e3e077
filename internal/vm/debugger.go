package vm

import (
	"fmt"
	"strings"
)

// traceInstruction prints the value stack followed by the disassembly of
// the instruction about to run, matching clox's debug-trace-execution mode
// (spec's Options.TraceExecution / `-trace` CLI flag and `.loxrc.yaml`'s
// traceExecution key). Called once per dispatch iteration, before the
// opcode is read.
func (vm *VM) traceInstruction(frame *CallFrame) {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range vm.stack {
		fmt.Fprintf(&sb, "[ %s ]", stringify(v))
	}
	sb.WriteString("\n")
	fmt.Fprint(vm.out, sb.String())

	var out strings.Builder
	disassembleInstruction(&out, frame.closure.Function.Chunk, frame.ip)
	fmt.Fprint(vm.out, out.String())
}
