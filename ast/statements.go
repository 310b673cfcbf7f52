// statements.go contains all the statement AST nodes. A statement node
// does not produce a value; it is run for effect.

package ast

import "github.com/xvr-lang/xvr/token"

// ErrorStmt mirrors Error but on the statement side of panic-mode
// recovery, so a malformed top-level construct still yields something
// the caller's Stmt slice can hold.
type ErrorStmt struct {
	Message string
	Line    int32
}

func (e ErrorStmt) Accept(v StmtVisitor) any { return v.VisitErrorStmt(e) }

// ExpressionStmt is a bare expression evaluated for its side effects,
// its result discarded. Example: "foo();".
type ExpressionStmt struct {
	Expression Expression
}

func (e ExpressionStmt) Accept(v StmtVisitor) any { return v.VisitExpressionStmt(e) }

// PrintStmt outputs the result of evaluating an expression. Example:
// "print foo + bar;".
type PrintStmt struct {
	Expression Expression
}

func (p PrintStmt) Accept(v StmtVisitor) any { return v.VisitPrintStmt(p) }

// AssertStmt is "assert condition, message;".
type AssertStmt struct {
	Condition Expression
	Message   Expression
}

func (a AssertStmt) Accept(v StmtVisitor) any { return v.VisitAssertStmt(a) }

// VarDecl declares a new binding: "var name: type (const)? (= expr)?;".
// Type may be the zero TypeExpr (Kind == "") when no annotation was
// given; the compiler then declares the binding with type `any`.
type VarDecl struct {
	Name        token.Token
	Type        TypeExpr
	HasType     bool
	Const       bool
	Initializer Expression
}

func (vd VarDecl) Accept(v StmtVisitor) any { return v.VisitVarDecl(vd) }

// Block is "{ statement* }", introducing a new lexical scope.
type Block struct {
	Statements []Stmt
}

func (b Block) Accept(v StmtVisitor) any { return v.VisitBlock(b) }

// If is "if (cond) then (else else)?".
type If struct {
	Condition Expression
	Then      Stmt
	Else      Stmt
}

func (i If) Accept(v StmtVisitor) any { return v.VisitIf(i) }

// While is "while (cond) body".
type While struct {
	Condition Expression
	Body      Stmt
}

func (w While) Accept(v StmtVisitor) any { return v.VisitWhile(w) }

// For is "for (init; cond; post) body". Init and Post may be nil.
type For struct {
	Init      Stmt
	Condition Expression
	Post      Stmt
	Body      Stmt
}

func (f For) Accept(v StmtVisitor) any { return v.VisitFor(f) }

// Foreach is "foreach (key, value in collection) body" (or a single
// binding form "foreach (value of collection) body" when Of is true).
type Foreach struct {
	KeyName   token.Token
	HasKey    bool
	ValueName token.Token
	Of        bool
	Collection Expression
	Body      Stmt
}

func (f Foreach) Accept(v StmtVisitor) any { return v.VisitForeach(f) }

// Break is "break;".
type Break struct {
	Line int32
}

func (b Break) Accept(v StmtVisitor) any { return v.VisitBreak(b) }

// Continue is "continue;".
type Continue struct {
	Line int32
}

func (c Continue) Accept(v StmtVisitor) any { return v.VisitContinue(c) }

// Pass is "pass;", the explicit empty-body marker required wherever
// if/while/for would otherwise have an empty body (spec.md §4.2).
type Pass struct{}

func (p Pass) Accept(v StmtVisitor) any { return v.VisitPass(p) }

// Return is "return expr(, expr)*;"; Values may be empty for a bare
// "return;".
type Return struct {
	Values []Expression
	Line   int32
}

func (r Return) Accept(v StmtVisitor) any { return v.VisitReturn(r) }

// Param is one entry of a FnDecl's parameter list.
type Param struct {
	Name token.Token
	Type TypeExpr
}

// FnDecl is "fn name(params) (: returnType (, returnType)*)? block"; the
// return types follow a colon, and there is no "->" form. RestParam, when
// HasRestParam is true, collects trailing positional arguments into an
// array (spec.md §4.6 "RestArg").
type FnDecl struct {
	Name         token.Token
	Params       []Param
	HasRestParam bool
	RestParam    token.Token
	ReturnTypes  []TypeExpr
	Body         Stmt
}

func (f FnDecl) Accept(v StmtVisitor) any { return v.VisitFnDecl(f) }

// Import is "import identifier (as alias)?;", dispatched at runtime to
// a registered NativeHook.
type Import struct {
	Identifier token.Token
	HasAlias   bool
	Alias      token.Token
}

func (i Import) Accept(v StmtVisitor) any { return v.VisitImport(i) }

// Export wraps a top-level VarDecl or FnDecl that should be visible to
// the host runner collaborator after the run completes.
type Export struct {
	Decl Stmt
}

func (e Export) Accept(v StmtVisitor) any { return v.VisitExport(e) }
