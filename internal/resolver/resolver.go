// Package resolver implements the tree-walker's static resolution pass
// (spec §4.4): a single walk over the AST between parsing and evaluation
// that determines, for every variable reference, how many environments out
// from the current scope its binding lives. The pass also enforces the
// compile-time checks that depend on lexical nesting rather than grammar
// alone: self-reference inside an initializer, duplicate declarations in
// one scope, `return` outside any function, returning a value from `init`,
// and `this`/`super` used outside of a class.
package resolver

import (
	"github.com/loxlang/loxvm/internal/ast"
	"github.com/loxlang/loxvm/internal/diagnostics"
	"github.com/loxlang/loxvm/internal/token"
)

type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionInitializer
	functionMethod
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// binder is implemented by *interpreter.Interpreter: the resolver's only
// side effect on its host is recording expr->depth annotations.
type binder interface {
	Resolve(expr ast.Expr, depth int)
}

// Resolver walks a parsed program once, annotating the interpreter's
// locals table and collecting any static errors it finds along the way.
type Resolver struct {
	in     binder
	scopes []map[string]bool

	currentFunction functionType
	currentClass    classType

	reporter diagnostics.Reporter
}

// New creates a Resolver that will call back into in to record scope
// distances.
func New(in binder) *Resolver {
	return &Resolver{in: in}
}

// Errors returns the compile errors collected during Resolve.
func (r *Resolver) Errors() []diagnostics.CompileError { return r.reporter.Errors }

// HadError reports whether Resolve found any static error.
func (r *Resolver) HadError() bool { return r.reporter.HadError }

// Resolve runs the pass over a whole program.
func (r *Resolver) Resolve(statements []ast.Stmt) {
	r.resolveStatements(statements)
}

func (r *Resolver) resolveStatements(statements []ast.Stmt) {
	for _, s := range statements {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) { s.Accept(r) }
func (r *Resolver) resolveExpr(e ast.Expr) { e.Accept(r) }

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, make(map[string]bool)) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, ok := scope[name.Lexeme]; ok {
		r.reporter.Report(diagnostics.NewError(name, "Already a variable with this name in this scope."))
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.in.Resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
	// Not found in any scope: treated as global, resolved by name at
	// runtime (spec §4.4's "unresolved names fall through to the global
	// environment").
}

func (r *Resolver) resolveFunction(fn *ast.Function, kind functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	defer r.endScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
}

// --- StmtVisitor ---

func (r *Resolver) VisitBlockStmt(s *ast.Block) interface{} {
	r.beginScope()
	r.resolveStatements(s.Statements)
	r.endScope()
	return nil
}

func (r *Resolver) VisitClassStmt(s *ast.Class) interface{} {
	enclosingClass := r.currentClass
	r.currentClass = classClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.reporter.Report(diagnostics.NewError(s.Superclass.Name, "A class can't inherit from itself."))
		}
		r.currentClass = classSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	defer r.endScope()

	for _, method := range s.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method, kind)
	}
	return nil
}

func (r *Resolver) VisitExpressionStmt(s *ast.Expression) interface{} {
	r.resolveExpr(s.Expression)
	return nil
}

func (r *Resolver) VisitFunctionStmt(s *ast.Function) interface{} {
	r.declare(s.Name)
	r.define(s.Name)
	r.resolveFunction(s, functionFunction)
	return nil
}

func (r *Resolver) VisitIfStmt(s *ast.If) interface{} {
	r.resolveExpr(s.Condition)
	r.resolveStmt(s.ThenBranch)
	if s.ElseBranch != nil {
		r.resolveStmt(s.ElseBranch)
	}
	return nil
}

func (r *Resolver) VisitPrintStmt(s *ast.Print) interface{} {
	r.resolveExpr(s.Expression)
	return nil
}

func (r *Resolver) VisitReturnStmt(s *ast.Return) interface{} {
	if r.currentFunction == functionNone {
		r.reporter.Report(diagnostics.NewError(s.Keyword, "Can't return from top-level code."))
	}
	if s.Value != nil {
		if r.currentFunction == functionInitializer {
			r.reporter.Report(diagnostics.NewError(s.Keyword, "Can't return a value from an initializer."))
		}
		r.resolveExpr(s.Value)
	}
	return nil
}

func (r *Resolver) VisitVarStmt(s *ast.Var) interface{} {
	r.declare(s.Name)
	if s.Initializer != nil {
		r.resolveExpr(s.Initializer)
	}
	r.define(s.Name)
	return nil
}

func (r *Resolver) VisitWhileStmt(s *ast.While) interface{} {
	r.resolveExpr(s.Condition)
	r.resolveStmt(s.Body)
	return nil
}

// --- ExprVisitor ---

func (r *Resolver) VisitAssignExpr(e *ast.Assign) interface{} {
	r.resolveExpr(e.Value)
	r.resolveLocal(e, e.Name)
	return nil
}

func (r *Resolver) VisitBinaryExpr(e *ast.Binary) interface{} {
	r.resolveExpr(e.Left)
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitCallExpr(e *ast.Call) interface{} {
	r.resolveExpr(e.Callee)
	for _, a := range e.Arguments {
		r.resolveExpr(a)
	}
	return nil
}

func (r *Resolver) VisitGetExpr(e *ast.Get) interface{} {
	r.resolveExpr(e.Object)
	return nil
}

func (r *Resolver) VisitSetExpr(e *ast.Set) interface{} {
	r.resolveExpr(e.Value)
	r.resolveExpr(e.Object)
	return nil
}

func (r *Resolver) VisitGroupingExpr(e *ast.Grouping) interface{} {
	r.resolveExpr(e.Expression)
	return nil
}

func (r *Resolver) VisitLiteralExpr(e *ast.Literal) interface{} { return nil }

func (r *Resolver) VisitLogicalExpr(e *ast.Logical) interface{} {
	r.resolveExpr(e.Left)
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitSuperExpr(e *ast.Super) interface{} {
	switch r.currentClass {
	case classNone:
		r.reporter.Report(diagnostics.NewError(e.Keyword, "Can't use 'super' outside of a class."))
	case classClass:
		r.reporter.Report(diagnostics.NewError(e.Keyword, "Can't use 'super' in a class with no superclass."))
	}
	r.resolveLocal(e, e.Keyword)
	return nil
}

func (r *Resolver) VisitThisExpr(e *ast.This) interface{} {
	if r.currentClass == classNone {
		r.reporter.Report(diagnostics.NewError(e.Keyword, "Can't use 'this' outside of a class."))
		return nil
	}
	r.resolveLocal(e, e.Keyword)
	return nil
}

func (r *Resolver) VisitUnaryExpr(e *ast.Unary) interface{} {
	r.resolveExpr(e.Right)
	return nil
}

func (r *Resolver) VisitVariableExpr(e *ast.Variable) interface{} {
	if len(r.scopes) > 0 {
		if ready, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !ready {
			r.reporter.Report(diagnostics.NewError(e.Name, "Can't read local variable in its own initializer."))
		}
	}
	r.resolveLocal(e, e.Name)
	return nil
}
