package interpreter

import (
	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/token"
)

// The VisitXExpr methods implement ast.ExprVisitor, each wrapping its
// result in evalResult so Expr.Accept's plain interface{} return can still
// carry an error through eval().

func (in *Interpreter) VisitAssignExpr(e *ast.Assign) interface{} {
	value, err := in.eval(e.Value)
	if err != nil {
		return evalResult{nil, err}
	}

	if distance, ok := in.locals[e]; ok {
		in.environment.AssignAt(distance, e.Name.Lexeme, value)
		return evalResult{value, nil}
	}
	if in.globals.Assign(e.Name.Lexeme, value) {
		return evalResult{value, nil}
	}
	return evalResult{nil, undefinedVariableError(e.Name.Lexeme)}
}

func (in *Interpreter) VisitBinaryExpr(e *ast.Binary) interface{} {
	left, err := in.eval(e.Left)
	if err != nil {
		return evalResult{nil, err}
	}
	right, err := in.eval(e.Right)
	if err != nil {
		return evalResult{nil, err}
	}

	switch e.Operator.Type {
	case token.GREATER:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l > r, nil}
	case token.GREATER_EQUAL:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l >= r, nil}
	case token.LESS:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l < r, nil}
	case token.LESS_EQUAL:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l <= r, nil}
	case token.BANG_EQUAL:
		return evalResult{!isEqual(left, right), nil}
	case token.EQUAL_EQUAL:
		return evalResult{isEqual(left, right), nil}
	case token.MINUS:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l - r, nil}
	case token.SLASH:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l / r, nil}
	case token.STAR:
		l, r, err := numberOperands(e.Operator, left, right)
		if err != nil {
			return evalResult{nil, err}
		}
		return evalResult{l * r, nil}
	case token.PLUS:
		return in.visitPlus(e.Operator, left, right)
	}
	return evalResult{nil, &diagnostics.RuntimeError{Message: "Unknown binary operator."}}
}

// visitPlus implements spec §4.2's overloaded PLUS: number+number adds,
// string+string concatenates, anything else is a type error.
func (in *Interpreter) visitPlus(operator token.Token, left, right interface{}) evalResult {
	if l, ok := left.(float64); ok {
		if r, ok := right.(float64); ok {
			return evalResult{l + r, nil}
		}
	}
	if l, ok := left.(string); ok {
		if r, ok := right.(string); ok {
			return evalResult{l + r, nil}
		}
	}
	return evalResult{nil, &diagnostics.RuntimeError{Message: "Operands must be two numbers or two strings."}}
}

func numberOperands(operator token.Token, left, right interface{}) (float64, float64, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, &diagnostics.RuntimeError{Message: "Operands must be numbers."}
	}
	return l, r, nil
}

func (in *Interpreter) VisitCallExpr(e *ast.Call) interface{} {
	callee, err := in.eval(e.Callee)
	if err != nil {
		return evalResult{nil, err}
	}

	args := make([]interface{}, len(e.Arguments))
	for i, a := range e.Arguments {
		v, err := in.eval(a)
		if err != nil {
			return evalResult{nil, err}
		}
		args[i] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return evalResult{nil, &diagnostics.RuntimeError{Message: "Can only call functions and classes."}}
	}
	if len(args) != callable.Arity() {
		return evalResult{nil, &diagnostics.RuntimeError{
			Message: formatArityError(callable.Arity(), len(args)),
		}}
	}

	in.callStack = append(in.callStack, diagnostics.Frame{FunctionName: callable.String(), Line: e.Paren.Line})
	defer func() { in.callStack = in.callStack[:len(in.callStack)-1] }()

	v, err := callable.Call(in, args)
	if err != nil {
		if re, ok := err.(*diagnostics.RuntimeError); ok && re.Frames == nil {
			re.Frames = make([]diagnostics.Frame, 0, len(in.callStack))
			for i := len(in.callStack) - 1; i >= 0; i-- {
				re.Frames = append(re.Frames, in.callStack[i])
			}
		}
		return evalResult{nil, err}
	}
	return evalResult{v, nil}
}

func formatArityError(want, got int) string {
	return "Expected " + itoa(want) + " arguments but got " + itoa(got) + "."
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (in *Interpreter) VisitGetExpr(e *ast.Get) interface{} {
	object, err := in.eval(e.Object)
	if err != nil {
		return evalResult{nil, err}
	}
	instance, ok := object.(*LoxInstance)
	if !ok {
		return evalResult{nil, &diagnostics.RuntimeError{Message: "Only instances have properties."}}
	}
	v, err := instance.Get(e.Name.Lexeme)
	return evalResult{v, err}
}

func (in *Interpreter) VisitSetExpr(e *ast.Set) interface{} {
	object, err := in.eval(e.Object)
	if err != nil {
		return evalResult{nil, err}
	}
	instance, ok := object.(*LoxInstance)
	if !ok {
		return evalResult{nil, &diagnostics.RuntimeError{Message: "Only instances have fields."}}
	}
	value, err := in.eval(e.Value)
	if err != nil {
		return evalResult{nil, err}
	}
	instance.Set(e.Name.Lexeme, value)
	return evalResult{value, nil}
}

func (in *Interpreter) VisitGroupingExpr(e *ast.Grouping) interface{} {
	v, err := in.eval(e.Expression)
	return evalResult{v, err}
}

func (in *Interpreter) VisitLiteralExpr(e *ast.Literal) interface{} {
	return evalResult{e.Value, nil}
}

func (in *Interpreter) VisitLogicalExpr(e *ast.Logical) interface{} {
	left, err := in.eval(e.Left)
	if err != nil {
		return evalResult{nil, err}
	}
	if e.Operator.Type == token.OR {
		if isTruthy(left) {
			return evalResult{left, nil}
		}
	} else {
		if !isTruthy(left) {
			return evalResult{left, nil}
		}
	}
	v, err := in.eval(e.Right)
	return evalResult{v, err}
}

func (in *Interpreter) VisitSuperExpr(e *ast.Super) interface{} {
	distance := in.locals[e]
	superclass := in.environment.GetAt(distance, "super").(*LoxClass)
	instance := in.environment.GetAt(distance-1, "this").(*LoxInstance)

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return evalResult{nil, &diagnostics.RuntimeError{
			Message: "Undefined property '" + e.Method.Lexeme + "'.",
		}}
	}
	return evalResult{method.Bind(instance), nil}
}

func (in *Interpreter) VisitThisExpr(e *ast.This) interface{} {
	v, err := in.lookUpVariable(e.Keyword, e)
	return evalResult{v, err}
}

func (in *Interpreter) VisitUnaryExpr(e *ast.Unary) interface{} {
	right, err := in.eval(e.Right)
	if err != nil {
		return evalResult{nil, err}
	}
	switch e.Operator.Type {
	case token.MINUS:
		n, ok := right.(float64)
		if !ok {
			return evalResult{nil, &diagnostics.RuntimeError{Message: "Operand must be a number."}}
		}
		return evalResult{-n, nil}
	case token.BANG:
		return evalResult{!isTruthy(right), nil}
	}
	return evalResult{nil, &diagnostics.RuntimeError{Message: "Unknown unary operator."}}
}

func (in *Interpreter) VisitVariableExpr(e *ast.Variable) interface{} {
	v, err := in.lookUpVariable(e.Name, e)
	return evalResult{v, err}
}
