// expressions.go contains all the expression AST nodes. An expression
// node always evaluates to a value.

package ast

import (
	"github.com/xvr-lang/xvr/token"
	"github.com/xvr-lang/xvr/value"
)

// Error is a distinguished node produced by the parser on a syntax
// error. It satisfies both Expression and Stmt so panic-mode recovery
// can slot it in wherever a node is expected.
type Error struct {
	Message string
	Line    int32
}

func (e Error) Accept(v ExpressionVisitor) any { return v.VisitError(e) }

// Literal is a constant value known at parse time (numbers, strings,
// booleans, null).
type Literal struct {
	Value value.Value
	Line  int32
}

func (l Literal) Accept(v ExpressionVisitor) any { return v.VisitLiteral(l) }

// Unary is a prefix operator applied to a single operand, e.g. "-a" or
// "!a".
type Unary struct {
	Operator token.Token
	Right    Expression
}

func (u Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(u) }

// Binary is a two-operand infix expression, e.g. "a + b", "a == b",
// "a && b". Logical AND/OR are represented here rather than as a
// separate node: both sides are always evaluated (no short-circuit),
// which the interpreter realizes directly from the opcode stream.
type Binary struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (b Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(b) }

// Ternary is the conditional expression "cond ? then : else".
type Ternary struct {
	Condition Expression
	Then      Expression
	Else      Expression
}

func (t Ternary) Accept(v ExpressionVisitor) any { return v.VisitTernary(t) }

// Grouping is a parenthesized expression, kept as its own node so the
// compiler can emit GROUPING_BEGIN/GROUPING_END around it.
type Grouping struct {
	Expression Expression
}

func (g Grouping) Accept(v ExpressionVisitor) any { return v.VisitGrouping(g) }

// Variable is a reference to a previously declared identifier.
type Variable struct {
	Name token.Token
}

func (variable Variable) Accept(v ExpressionVisitor) any { return v.VisitVariable(variable) }

// Assign models "name = expr" and its compound forms ("name += expr",
// etc). Operator carries which form was used so the compiler can emit
// the matching VAR_*_ASSIGN opcode.
type Assign struct {
	Name     token.Token
	Operator token.Token
	Value    Expression
}

func (a Assign) Accept(v ExpressionVisitor) any { return v.VisitAssign(a) }

// PrefixIncDec is "++a" / "--a".
type PrefixIncDec struct {
	Operator token.Token
	Target   Expression
}

func (p PrefixIncDec) Accept(v ExpressionVisitor) any { return v.VisitPrefixIncDec(p) }

// PostfixIncDec is "a++" / "a--".
type PostfixIncDec struct {
	Operator token.Token
	Target   Expression
}

func (p PostfixIncDec) Accept(v ExpressionVisitor) any { return v.VisitPostfixIncDec(p) }

// Index is "compound[first:second:third]". Any of First, Second, Third
// may be nil, meaning the component was omitted (compiled as
// value.IndexBlank).
type Index struct {
	Compound Expression
	First    Expression
	Second   Expression
	Third    Expression
}

func (i Index) Accept(v ExpressionVisitor) any { return v.VisitIndex(i) }

// IndexAssign is "compound[first:second:third] op= value", where Operator is
// one of ASSIGN or a compound-assignment operator.
type IndexAssign struct {
	Target   Index
	Operator token.Token
	Value    Expression
}

func (i IndexAssign) Accept(v ExpressionVisitor) any { return v.VisitIndexAssign(i) }

// ArrayLiteral is "[e1, e2, ...]".
type ArrayLiteral struct {
	Elements []Expression
}

func (a ArrayLiteral) Accept(v ExpressionVisitor) any { return v.VisitArrayLiteral(a) }

// Pair is one "key: value" entry of a DictLiteral.
type Pair struct {
	Key   Expression
	Value Expression
}

// DictLiteral is "[k1: v1, k2: v2, ...]" (or "[:]" for an empty
// dictionary, distinguishing it from an empty array literal "[]").
type DictLiteral struct {
	Pairs []Pair
}

func (d DictLiteral) Accept(v ExpressionVisitor) any { return v.VisitDictLiteral(d) }

// FnCall is a function invocation. When IsDot is true the call was
// written in method-style ("a.foo(b)") and Receiver holds "a"; the
// compiler realizes this by shuffling Receiver to the end of Args and
// prefixing Callee's lexeme with "_" (spec.md §4.6 "DOT").
type FnCall struct {
	Callee   token.Token
	Args     []Expression
	IsDot    bool
	Receiver Expression
}

func (f FnCall) Accept(v ExpressionVisitor) any { return v.VisitFnCall(f) }

// TypeCast is "expr astype type".
type TypeCast struct {
	Value  Expression
	Target TypeExpr
}

func (t TypeCast) Accept(v ExpressionVisitor) any { return v.VisitTypeCast(t) }

// TypeOf is "typeof expr".
type TypeOf struct {
	Value Expression
}

func (t TypeOf) Accept(v ExpressionVisitor) any { return v.VisitTypeOf(t) }

// TypeExpr is a type annotation appearing in a var/param declaration or
// as the right-hand operand of `astype`, e.g. "int", "array<int>",
// "dictionary<string, any>".
type TypeExpr struct {
	Kind     token.TokenType
	Subtypes []TypeExpr
	Constant bool
	Line     int32
}

func (t TypeExpr) Accept(v ExpressionVisitor) any { return v.VisitTypeExpr(t) }
