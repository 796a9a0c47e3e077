// Package cli is the command-line entry point shared by cmd/lox and its
// tests: argument parsing, REPL loop, file execution, and exit-code mapping
// (spec §6, §7), kept as a plain Run function so tests can drive it without
// forking a process (teacher: pkg/cli/entry.go's own testable-entry-point
// shape).
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/loxlang/loxvm/internal/config"
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/interpreter"
	"github.com/loxlang/loxvm/internal/parser"
	"github.com/loxlang/loxvm/internal/resolver"
	"github.com/loxlang/loxvm/internal/vm"
)

const usage = "Usage: lox [-tree] [-trace] [script]\n       lox disasm <script>\n"

// Run parses args and drives the requested mode, returning a sysexits-style
// exit code (spec §6) instead of calling os.Exit itself, so callers (and
// tests) can capture behavior without forking a process.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "disasm" {
		return runDisasmCommand(args[1:], stdout, stderr)
	}

	useTree := false
	trace := false
	var paths []string
	for _, a := range args {
		switch a {
		case "-tree":
			useTree = true
		case "-trace":
			trace = true
		default:
			paths = append(paths, a)
		}
	}
	if len(paths) > 1 {
		fmt.Fprint(stderr, usage)
		return config.ExitUsageError
	}

	cfg, err := loadLoxrc(".")
	if err != nil {
		fmt.Fprintf(stderr, "lox: reading %s: %s\n", loxrcFileName, err)
		return config.ExitIOErr
	}
	if cfg.TraceExecution {
		trace = true
	}

	opts := vm.Options{
		TraceExecution:     trace,
		StressGC:           cfg.GCStressTest,
		InitialGCThreshold: cfg.InitialGCThreshold,
	}

	run := &runner{useTree: useTree, opts: opts, stdout: stdout, stderr: stderr}

	if len(paths) == 1 {
		return run.file(paths[0])
	}
	return run.repl(stdin, stdout, stderr)
}

// runner owns the single long-lived backend instance a session uses, so
// globals and string interning persist across REPL lines (spec §6's
// "persistent globals persist between lines").
type runner struct {
	useTree bool
	opts    vm.Options
	stdout  io.Writer
	stderr  io.Writer

	// tree-walker state, built lazily on first use
	interp *interpreter.Interpreter
	// vm backend state, built lazily on first use
	machine *vm.VM
}

func (r *runner) interpreter() *interpreter.Interpreter {
	if r.interp == nil {
		r.interp = interpreter.New(r.stdout)
	}
	return r.interp
}

func (r *runner) vm() *vm.VM {
	if r.machine == nil {
		r.machine = vm.New(r.stdout, r.opts)
	}
	return r.machine
}

// file reads, compiles, and runs one source file, mapping failures to the
// sysexits codes spec §6/§7 specify.
func (r *runner) file(path string) int {
	if !config.HasSourceExt(path) {
		fmt.Fprintf(r.stderr, "lox: warning: %s does not have the %s extension\n", path, config.SourceFileExt)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.stderr, "lox: %s\n", err)
		return config.ExitIOErr
	}
	return r.runSource(string(source))
}

// runSource compiles and executes source against whichever backend is
// selected, returning the exit code that corresponds to how it failed (or 0).
func (r *runner) runSource(source string) int {
	if r.useTree {
		return r.runTree(source)
	}
	return r.runVM(source)
}

func (r *runner) runTree(source string) int {
	p := parser.New(source)
	statements := p.ParseProgram()
	if p.HadError() {
		reportCompileErrors(r.stderr, p.Errors())
		return config.ExitCompileErr
	}

	in := r.interpreter()
	res := resolver.New(in)
	res.Resolve(statements)
	if res.HadError() {
		reportCompileErrors(r.stderr, res.Errors())
		return config.ExitCompileErr
	}

	if err := in.Interpret(statements); err != nil {
		reportRuntimeError(r.stderr, err)
		return config.ExitRuntimeErr
	}
	return config.ExitSuccess
}

func (r *runner) runVM(source string) int {
	m := r.vm()

	// Compile first so a syntax/compile error (exit 65) can be told apart
	// from a genuine runtime error (exit 70); Interpret below recompiles,
	// which only re-interns already-interned strings and is harmless.
	if fn, errs := m.CompileErrors(source); fn == nil {
		reportCompileErrors(r.stderr, errs)
		return config.ExitCompileErr
	}

	if err := m.Interpret(source); err != nil {
		reportRuntimeError(r.stderr, err)
		return config.ExitRuntimeErr
	}
	return config.ExitSuccess
}

func reportCompileErrors(stderr io.Writer, errs []diagnostics.CompileError) {
	for _, e := range errs {
		fmt.Fprintln(stderr, e.Error())
	}
}

func reportRuntimeError(stderr io.Writer, err error) {
	if rt, ok := err.(*diagnostics.RuntimeError); ok {
		fmt.Fprintln(stderr, rt.Report())
		return
	}
	fmt.Fprintln(stderr, err.Error())
}

// repl runs the interactive line-by-line loop (spec §6): each line is
// compiled and executed independently, sharing this runner's backend so
// globals persist. A non-interactive stdin (piped input, or a test harness's
// bytes.Reader) suppresses the prompt, mirroring the teacher's own
// isatty.IsTerminal guard before touching the terminal.
func (r *runner) repl(stdin io.Reader, stdout, stderr io.Writer) int {
	interactive := false
	if f, ok := stdin.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	scanner := bufio.NewScanner(stdin)
	for {
		if interactive {
			fmt.Fprint(stdout, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.runSource(line)
	}
	return config.ExitSuccess
}

// runDisasmCommand implements `lox disasm <file>`: compile without running,
// print the bytecode listing (spec_full.md's disassembly CLI verb).
func runDisasmCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: lox disasm <script>")
		return config.ExitUsageError
	}
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "lox: %s\n", err)
		return config.ExitIOErr
	}

	m := vm.New(stdout, vm.Options{})
	fn, errs := m.CompileErrors(string(source))
	if fn == nil {
		reportCompileErrors(stderr, errs)
		return config.ExitCompileErr
	}
	fmt.Fprint(stdout, vm.Disassemble(fn.Chunk, path))
	return config.ExitSuccess
}
