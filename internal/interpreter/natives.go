package interpreter

import "time"

// registerNatives binds the host-provided functions spec §6 requires into
// the global environment (currently just `clock`).
func registerNatives(in *Interpreter) {
	in.globals.Define("clock", &NativeFunction{
		Name: "clock",
		Ar:   0,
		Fn: func(in *Interpreter, args []interface{}) (interface{}, error) {
			return time.Since(in.start).Seconds(), nil
		},
	})
}
