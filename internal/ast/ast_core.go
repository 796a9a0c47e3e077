// Package ast defines the tree-walker's syntax tree: tagged-sum Expr and
// Stmt node families dispatched through a Visitor, in the idiom the teacher
// uses for its own (much larger) AST.
package ast

// Expr is implemented by every expression node.
type Expr interface {
	Accept(v ExprVisitor) interface{}
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Accept(v StmtVisitor) interface{}
}

// ExprVisitor dispatches over the concrete Expr variants.
type ExprVisitor interface {
	VisitAssignExpr(e *Assign) interface{}
	VisitBinaryExpr(e *Binary) interface{}
	VisitCallExpr(e *Call) interface{}
	VisitGetExpr(e *Get) interface{}
	VisitSetExpr(e *Set) interface{}
	VisitGroupingExpr(e *Grouping) interface{}
	VisitLiteralExpr(e *Literal) interface{}
	VisitLogicalExpr(e *Logical) interface{}
	VisitSuperExpr(e *Super) interface{}
	VisitThisExpr(e *This) interface{}
	VisitUnaryExpr(e *Unary) interface{}
	VisitVariableExpr(e *Variable) interface{}
}

// StmtVisitor dispatches over the concrete Stmt variants.
type StmtVisitor interface {
	VisitBlockStmt(s *Block) interface{}
	VisitClassStmt(s *Class) interface{}
	VisitExpressionStmt(s *Expression) interface{}
	VisitFunctionStmt(s *Function) interface{}
	VisitIfStmt(s *If) interface{}
	VisitPrintStmt(s *Print) interface{}
	VisitReturnStmt(s *Return) interface{}
	VisitVarStmt(s *Var) interface{}
	VisitWhileStmt(s *While) interface{}
}
