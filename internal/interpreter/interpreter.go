// Package interpreter implements Lox's tree-walking evaluator: the
// alternative backend to the bytecode VM (spec §4.5, §4.6 as contrasted
// with the VM). It shares the scanner and AST with the resolver pass and
// consumes the resolver's scope-depth annotations to look up locals by
// environment distance rather than by name.
package interpreter

import (
	"fmt"
	"io"
	"time"

	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/token"
)

// Interpreter holds the process-wide mutable state of one tree-walker run:
// the global environment, the current environment, the resolver's
// expr->depth table, and the output stream `print` writes to.
type Interpreter struct {
	globals     *Environment
	environment *Environment
	locals      map[ast.Expr]int

	out   io.Writer
	start time.Time

	callStack []diagnostics.Frame
}

// New creates an Interpreter writing `print` output to out and registers
// the `clock` native (spec §6).
func New(out io.Writer) *Interpreter {
	in := &Interpreter{
		globals: NewEnvironment(),
		locals:  make(map[ast.Expr]int),
		out:     out,
		start:   time.Now(),
	}
	in.environment = in.globals
	registerNatives(in)
	return in
}

// Globals exposes the global environment, e.g. for a REPL driver that
// wants to print a trailing expression's value.
func (in *Interpreter) Globals() *Environment { return in.globals }

// Resolve records that expr, wherever it is next evaluated, should look up
// its variable `depth` environments up from the current one. Called by the
// resolver pass before interpretation begins.
func (in *Interpreter) Resolve(expr ast.Expr, depth int) {
	in.locals[expr] = depth
}

// Interpret runs a full program's statements in the global environment,
// stopping at the first runtime error (spec §7: "runtime errors unwind the
// entire VM to empty"; the tree-walker's analogous contract is that the
// remaining top-level statements do not run).
func (in *Interpreter) Interpret(statements []ast.Stmt) error {
	for _, stmt := range statements {
		if _, err := in.execute(stmt); err != nil {
			return in.toRuntimeError(err)
		}
	}
	return nil
}

// toRuntimeError normalizes any error surfacing out of Interpret into a
// *diagnostics.RuntimeError carrying the current backtrace, so the CLI can
// format it uniformly regardless of which internal check produced it.
func (in *Interpreter) toRuntimeError(err error) *diagnostics.RuntimeError {
	if re, ok := err.(*diagnostics.RuntimeError); ok {
		return re
	}
	return &diagnostics.RuntimeError{Message: err.Error()}
}

func (in *Interpreter) execute(stmt ast.Stmt) (interface{}, error) {
	r := stmt.Accept(in).(execResult)
	return r.value, r.err
}

// execResult lets Stmt.Accept (which returns plain interface{} per the
// shared ast.StmtVisitor contract) carry back an (interface{}, error) pair.
type execResult struct {
	value interface{}
	err   error
}

func (in *Interpreter) eval(expr ast.Expr) (interface{}, error) {
	r := expr.Accept(in).(evalResult)
	return r.value, r.err
}

type evalResult struct {
	value interface{}
	err   error
}

// executeBlock runs statements in a fresh child environment, restoring the
// caller's environment on every exit path (spec §5: "acquired and released
// in matched pairs... with release guaranteed on every exit path").
func (in *Interpreter) executeBlock(statements []ast.Stmt, env *Environment) (interface{}, error) {
	previous := in.environment
	in.environment = env
	defer func() { in.environment = previous }()

	var last interface{}
	for _, stmt := range statements {
		v, err := in.execute(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (interface{}, error) {
	if distance, ok := in.locals[expr]; ok {
		return in.environment.GetAt(distance, name.Lexeme), nil
	}
	if v, ok := in.globals.Get(name.Lexeme); ok {
		return v, nil
	}
	return nil, undefinedVariableError(name.Lexeme)
}

func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// isEqual implements spec §4.2's value equality: nil==nil, same-type
// primitive equality (IEEE-754 for numbers, so NaN != NaN), reference
// identity for every object type. Go's `==` over an interface{} holding
// two float64s already compares their IEEE-754 values, and over two
// pointers already compares identity, so a single comparison serves both
// rules as long as the dynamic types match.
func isEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a == b
}

// stringify renders a Value for `print` and string concatenation's operand
// conversion is NOT included here — concatenation requires operands to
// already be strings (spec §4.2). This is purely the display form (spec
// §6's numeric-printing rule: integral floats print without ".0"; nil and
// booleans print literally).
func stringify(v interface{}) string {
	if v == nil {
		return "nil"
	}
	switch val := v.(type) {
	case float64:
		return formatNumber(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatNumber(f float64) string {
	s := fmt.Sprintf("%g", f)
	// %g already drops a trailing ".0" for integral values in most ranges,
	// but for whole numbers beyond %g's default precision switchover it can
	// emit exponential notation; fall back to a fixed-point integral
	// rendering for values that are exact integers.
	if f == float64(int64(f)) && (f < 1e15 && f > -1e15) {
		return fmt.Sprintf("%d", int64(f))
	}
	return s
}
