// Package unused implements the post-parse, pre-compile unused-declaration
// check (spec.md §4.3): a single AST walk that tracks a stack of scopes,
// records each VarDecl/FnDecl, marks records used as identifiers are
// referenced, and reports anything still unused when its scope closes.
package unused

import (
	"fmt"

	"github.com/xvr-lang/xvr/ast"
)

// Warning is one unreferenced declaration found by the checker.
type Warning struct {
	Name       string
	Line       int32
	IsFunction bool
}

func (w Warning) String() string {
	kind := "variable"
	if w.IsFunction {
		kind = "procedure"
	}
	return fmt.Sprintf("unused %s %q declared at line %d", kind, w.Name, w.Line)
}

type record struct {
	name       string
	line       int32
	used       bool
	isFunction bool
}

type scope struct {
	records []*record
	parent  *scope
}

// Checker walks a parsed program and collects unused-declaration
// warnings. It implements both ast.ExpressionVisitor and ast.StmtVisitor
// so Check can reuse the AST's Accept dispatch instead of a type switch.
type Checker struct {
	current  *scope
	warnings []Warning
}

// New constructs an empty Checker.
func New() *Checker {
	return &Checker{}
}

// Check walks the given program, returning every unused-declaration
// warning found. The returned slice is empty (not nil) when everything
// was referenced.
func Check(program []ast.Stmt) []Warning {
	c := New()
	c.pushScope()
	for _, stmt := range program {
		stmt.Accept(c)
	}
	c.popScope()
	if c.warnings == nil {
		return []Warning{}
	}
	return c.warnings
}

// HadWarnings reports whether the most recent Check-equivalent traversal
// produced any findings; callers that drive Checker directly (rather than
// through the package-level Check helper) can gate compilation on it.
func (c *Checker) HadWarnings() bool { return len(c.warnings) > 0 }

func (c *Checker) pushScope() {
	c.current = &scope{parent: c.current}
}

func (c *Checker) popScope() {
	for _, r := range c.current.records {
		if !r.used {
			c.warnings = append(c.warnings, Warning{Name: r.name, Line: r.line, IsFunction: r.isFunction})
		}
	}
	c.current = c.current.parent
}

func (c *Checker) declare(name string, line int32, isFunction bool) {
	c.current.records = append(c.current.records, &record{name: name, line: line, isFunction: isFunction})
}

// reference marks the nearest enclosing record named name as used,
// walking outward through the scope chain. A name with no matching
// record (a builtin, a parameter, an import alias) is silently ignored;
// the checker only tracks VarDecl/FnDecl bindings.
func (c *Checker) reference(name string) {
	for s := c.current; s != nil; s = s.parent {
		for i := len(s.records) - 1; i >= 0; i-- {
			if s.records[i].name == name {
				s.records[i].used = true
				return
			}
		}
	}
}

// --- StmtVisitor ---

func (c *Checker) VisitErrorStmt(stmt ast.ErrorStmt) any { return nil }

func (c *Checker) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	stmt.Expression.Accept(c)
	return nil
}

func (c *Checker) VisitPrintStmt(stmt ast.PrintStmt) any {
	stmt.Expression.Accept(c)
	return nil
}

func (c *Checker) VisitAssertStmt(stmt ast.AssertStmt) any {
	stmt.Condition.Accept(c)
	if stmt.Message != nil {
		stmt.Message.Accept(c)
	}
	return nil
}

func (c *Checker) VisitVarDecl(stmt ast.VarDecl) any {
	if stmt.Initializer != nil {
		stmt.Initializer.Accept(c)
	}
	c.declare(stmt.Name.Lexeme, stmt.Name.Line, false)
	return nil
}

func (c *Checker) VisitBlock(stmt ast.Block) any {
	c.pushScope()
	for _, s := range stmt.Statements {
		s.Accept(c)
	}
	c.popScope()
	return nil
}

func (c *Checker) VisitIf(stmt ast.If) any {
	stmt.Condition.Accept(c)
	stmt.Then.Accept(c)
	if stmt.Else != nil {
		stmt.Else.Accept(c)
	}
	return nil
}

func (c *Checker) VisitWhile(stmt ast.While) any {
	stmt.Condition.Accept(c)
	stmt.Body.Accept(c)
	return nil
}

func (c *Checker) VisitFor(stmt ast.For) any {
	c.pushScope()
	if stmt.Init != nil {
		stmt.Init.Accept(c)
	}
	if stmt.Condition != nil {
		stmt.Condition.Accept(c)
	}
	stmt.Body.Accept(c)
	if stmt.Post != nil {
		stmt.Post.Accept(c)
	}
	c.popScope()
	return nil
}

// VisitForeach does not register KeyName/ValueName as records: like
// function parameters, the loop bindings are implicit declarations, not
// VarDecl/FnDecl nodes, so spec.md §4.3's tracked-record set excludes
// them.
func (c *Checker) VisitForeach(stmt ast.Foreach) any {
	stmt.Collection.Accept(c)
	stmt.Body.Accept(c)
	return nil
}

func (c *Checker) VisitBreak(stmt ast.Break) any       { return nil }
func (c *Checker) VisitContinue(stmt ast.Continue) any { return nil }
func (c *Checker) VisitPass(stmt ast.Pass) any         { return nil }

func (c *Checker) VisitReturn(stmt ast.Return) any {
	for _, v := range stmt.Values {
		v.Accept(c)
	}
	return nil
}

func (c *Checker) VisitFnDecl(stmt ast.FnDecl) any {
	c.declare(stmt.Name.Lexeme, stmt.Name.Line, true)
	// Parameters are never reported as unused (spec.md §4.3 tracks only
	// VarDecl/FnDecl records), so the function's own scope is pushed
	// without declaring them.
	c.pushScope()
	stmt.Body.Accept(c)
	c.popScope()
	return nil
}

func (c *Checker) VisitImport(stmt ast.Import) any { return nil }

func (c *Checker) VisitExport(stmt ast.Export) any {
	stmt.Decl.Accept(c)
	return nil
}

// --- ExpressionVisitor ---

func (c *Checker) VisitError(expr ast.Error) any { return nil }

func (c *Checker) VisitLiteral(expr ast.Literal) any { return nil }

func (c *Checker) VisitUnary(expr ast.Unary) any {
	expr.Right.Accept(c)
	return nil
}

func (c *Checker) VisitBinary(expr ast.Binary) any {
	expr.Left.Accept(c)
	expr.Right.Accept(c)
	return nil
}

func (c *Checker) VisitTernary(expr ast.Ternary) any {
	expr.Condition.Accept(c)
	expr.Then.Accept(c)
	expr.Else.Accept(c)
	return nil
}

func (c *Checker) VisitGrouping(expr ast.Grouping) any {
	expr.Expression.Accept(c)
	return nil
}

func (c *Checker) VisitVariable(expr ast.Variable) any {
	c.reference(expr.Name.Lexeme)
	return nil
}

// VisitAssign does not mark Name used: a plain assignment is a write,
// not a read, and spec.md §4.3 counts only identifier references (a
// compound assignment reads the old value too, so it does mark used).
func (c *Checker) VisitAssign(expr ast.Assign) any {
	if expr.Operator.IsAssignOp() && expr.Operator.Lexeme != "=" {
		c.reference(expr.Name.Lexeme)
	}
	expr.Value.Accept(c)
	return nil
}

func (c *Checker) VisitPrefixIncDec(expr ast.PrefixIncDec) any {
	expr.Target.Accept(c)
	return nil
}

func (c *Checker) VisitPostfixIncDec(expr ast.PostfixIncDec) any {
	expr.Target.Accept(c)
	return nil
}

func (c *Checker) VisitIndex(expr ast.Index) any {
	expr.Compound.Accept(c)
	if expr.First != nil {
		expr.First.Accept(c)
	}
	if expr.Second != nil {
		expr.Second.Accept(c)
	}
	if expr.Third != nil {
		expr.Third.Accept(c)
	}
	return nil
}

func (c *Checker) VisitIndexAssign(expr ast.IndexAssign) any {
	c.VisitIndex(expr.Target)
	expr.Value.Accept(c)
	return nil
}

func (c *Checker) VisitArrayLiteral(expr ast.ArrayLiteral) any {
	for _, e := range expr.Elements {
		e.Accept(c)
	}
	return nil
}

func (c *Checker) VisitDictLiteral(expr ast.DictLiteral) any {
	for _, pair := range expr.Pairs {
		pair.Key.Accept(c)
		pair.Value.Accept(c)
	}
	return nil
}

func (c *Checker) VisitFnCall(expr ast.FnCall) any {
	c.reference(expr.Callee.Lexeme)
	if expr.IsDot {
		expr.Receiver.Accept(c)
	}
	for _, a := range expr.Args {
		a.Accept(c)
	}
	return nil
}

func (c *Checker) VisitTypeCast(expr ast.TypeCast) any {
	expr.Value.Accept(c)
	return nil
}

func (c *Checker) VisitTypeOf(expr ast.TypeOf) any {
	expr.Value.Accept(c)
	return nil
}

func (c *Checker) VisitTypeExpr(expr ast.TypeExpr) any { return nil }
