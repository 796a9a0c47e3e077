package interpreter

import (
	"fmt"

	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/diagnostics"
)

// The VisitXStmt methods implement ast.StmtVisitor. Each wraps its
// (interface{}, error) result in execResult so Stmt.Accept's plain
// interface{} return type can still carry an error through execute().

func (in *Interpreter) VisitBlockStmt(s *ast.Block) interface{} {
	v, err := in.executeBlock(s.Statements, NewEnclosedEnvironment(in.environment))
	return execResult{v, err}
}

func (in *Interpreter) VisitClassStmt(s *ast.Class) interface{} {
	var superclass *LoxClass
	if s.Superclass != nil {
		sc, err := in.eval(s.Superclass)
		if err != nil {
			return execResult{nil, err}
		}
		cls, ok := sc.(*LoxClass)
		if !ok {
			return execResult{nil, &diagnostics.RuntimeError{Message: "Superclass must be a class."}}
		}
		superclass = cls
	}

	in.environment.Define(s.Name.Lexeme, nil)

	env := in.environment
	if s.Superclass != nil {
		env = NewEnclosedEnvironment(in.environment)
		env.Define("super", superclass)
	}

	methods := make(map[string]*LoxFunction, len(s.Methods))
	for _, m := range s.Methods {
		fn := &LoxFunction{
			declaration:   m,
			closure:       env,
			isInitializer: m.Name.Lexeme == "init",
		}
		methods[m.Name.Lexeme] = fn
	}

	class := &LoxClass{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	in.environment.Assign(s.Name.Lexeme, class)
	return execResult{nil, nil}
}

func (in *Interpreter) VisitExpressionStmt(s *ast.Expression) interface{} {
	v, err := in.eval(s.Expression)
	return execResult{v, err}
}

func (in *Interpreter) VisitFunctionStmt(s *ast.Function) interface{} {
	fn := &LoxFunction{declaration: s, closure: in.environment, isInitializer: false}
	in.environment.Define(s.Name.Lexeme, fn)
	return execResult{nil, nil}
}

func (in *Interpreter) VisitIfStmt(s *ast.If) interface{} {
	cond, err := in.eval(s.Condition)
	if err != nil {
		return execResult{nil, err}
	}
	if isTruthy(cond) {
		v, err := in.execute(s.ThenBranch)
		return execResult{v, err}
	}
	if s.ElseBranch != nil {
		v, err := in.execute(s.ElseBranch)
		return execResult{v, err}
	}
	return execResult{nil, nil}
}

func (in *Interpreter) VisitPrintStmt(s *ast.Print) interface{} {
	v, err := in.eval(s.Expression)
	if err != nil {
		return execResult{nil, err}
	}
	fmt.Fprintln(in.out, stringify(v))
	return execResult{nil, nil}
}

func (in *Interpreter) VisitReturnStmt(s *ast.Return) interface{} {
	var value interface{}
	if s.Value != nil {
		v, err := in.eval(s.Value)
		if err != nil {
			return execResult{nil, err}
		}
		value = v
	}
	return execResult{nil, &returnSignal{value: value}}
}

func (in *Interpreter) VisitVarStmt(s *ast.Var) interface{} {
	var value interface{}
	if s.Initializer != nil {
		v, err := in.eval(s.Initializer)
		if err != nil {
			return execResult{nil, err}
		}
		value = v
	}
	in.environment.Define(s.Name.Lexeme, value)
	return execResult{nil, nil}
}

func (in *Interpreter) VisitWhileStmt(s *ast.While) interface{} {
	for {
		cond, err := in.eval(s.Condition)
		if err != nil {
			return execResult{nil, err}
		}
		if !isTruthy(cond) {
			break
		}
		if _, err := in.execute(s.Body); err != nil {
			return execResult{nil, err}
		}
	}
	return execResult{nil, nil}
}
