// interfaces.go contains the visitor interfaces that any code traversing
// expression and statement AST nodes must implement, plus the base
// Expression and Stmt interfaces every node satisfies via Accept. This is
// the same dispatch pattern the tree-walking predecessor used; the
// compiler, the unused-declaration checker, and the debug AST printer are
// all just different ExpressionVisitor/StmtVisitor implementations.

package ast

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. Any type that wants to perform an operation on expressions (a
// compiler, an ast-printer, an unused-declaration checker) implements
// this interface; each Visit method corresponds to one Expression node.
type ExpressionVisitor interface {
	VisitError(expr Error) any
	VisitLiteral(expr Literal) any
	VisitUnary(expr Unary) any
	VisitBinary(expr Binary) any
	VisitTernary(expr Ternary) any
	VisitGrouping(expr Grouping) any
	VisitVariable(expr Variable) any
	VisitAssign(expr Assign) any
	VisitPrefixIncDec(expr PrefixIncDec) any
	VisitPostfixIncDec(expr PostfixIncDec) any
	VisitIndex(expr Index) any
	VisitIndexAssign(expr IndexAssign) any
	VisitArrayLiteral(expr ArrayLiteral) any
	VisitDictLiteral(expr DictLiteral) any
	VisitFnCall(expr FnCall) any
	VisitTypeCast(expr TypeCast) any
	VisitTypeOf(expr TypeOf) any
	VisitTypeExpr(expr TypeExpr) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
type StmtVisitor interface {
	VisitErrorStmt(stmt ErrorStmt) any
	VisitExpressionStmt(stmt ExpressionStmt) any
	VisitPrintStmt(stmt PrintStmt) any
	VisitAssertStmt(stmt AssertStmt) any
	VisitVarDecl(stmt VarDecl) any
	VisitBlock(stmt Block) any
	VisitIf(stmt If) any
	VisitWhile(stmt While) any
	VisitFor(stmt For) any
	VisitForeach(stmt Foreach) any
	VisitBreak(stmt Break) any
	VisitContinue(stmt Continue) any
	VisitPass(stmt Pass) any
	VisitReturn(stmt Return) any
	VisitFnDecl(stmt FnDecl) any
	VisitImport(stmt Import) any
	VisitExport(stmt Export) any
}

// Expression is the core interface for all expression nodes in the AST.
// The Accept method enables the Visitor design pattern so that operations
// can be performed on expressions without the node types needing to know
// the details of those operations.
type Expression interface {
	Accept(v ExpressionVisitor) any
}

// Stmt is the base interface for all statement nodes in the AST. Unlike
// Expression, a statement's evaluation is run for effect rather than for
// a produced value.
type Stmt interface {
	Accept(v StmtVisitor) any
}
