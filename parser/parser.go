// Recursive descent parser with a Pratt-style precedence-climbing
// expression table (spec.md §4.2). Each token type that can start or
// continue an expression maps to a (prefix, infix, precedence) triple in
// the rules table below; parseExpression repeatedly consults it to
// decide whether to keep folding the current expression into a larger
// one.
package parser

import (
	"fmt"

	"github.com/xvr-lang/xvr/ast"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/token"
	"github.com/xvr-lang/xvr/value"
)

// precedence levels, lowest to highest.
const (
	precNone = iota
	precAssignment
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precPostfix
	precPrimary
)

type prefixFn func(p *Parser) (ast.Expression, error)
type infixFn func(p *Parser, left ast.Expression) (ast.Expression, error)

type rule struct {
	prefix     prefixFn
	infix      infixFn
	precedence int
}

var rules map[token.TokenType]rule

func init() {
	rules = map[token.TokenType]rule{
		token.LPA:          {prefix: parseGrouping, infix: parseCall, precedence: precPostfix},
		token.LBRACKET:     {prefix: parseCompoundLiteral, infix: parseIndex, precedence: precPostfix},
		token.DOT:          {infix: parseDotCall, precedence: precPostfix},
		token.INCREMENT:    {prefix: parsePrefixIncDec, infix: parsePostfixIncDec, precedence: precPostfix},
		token.DECREMENT:    {prefix: parsePrefixIncDec, infix: parsePostfixIncDec, precedence: precPostfix},
		token.SUB:          {prefix: parseUnary, infix: parseBinary, precedence: precTerm},
		token.ADD:          {infix: parseBinary, precedence: precTerm},
		token.BANG:         {prefix: parseUnary},
		token.MULT:         {infix: parseBinary, precedence: precFactor},
		token.DIV:          {infix: parseBinary, precedence: precFactor},
		token.MOD:          {infix: parseBinary, precedence: precFactor},
		token.EQUAL_EQUAL:  {infix: parseBinary, precedence: precEquality},
		token.NOT_EQUAL:    {infix: parseBinary, precedence: precEquality},
		token.LESS:         {infix: parseBinary, precedence: precComparison},
		token.LESS_EQUAL:   {infix: parseBinary, precedence: precComparison},
		token.LARGER:       {infix: parseBinary, precedence: precComparison},
		token.LARGER_EQUAL: {infix: parseBinary, precedence: precComparison},
		token.AND_AND:      {infix: parseBinary, precedence: precAnd},
		token.OR_OR:        {infix: parseBinary, precedence: precOr},
		token.QUESTION:     {infix: parseTernary, precedence: precTernary},
		token.ASSIGN:       {infix: parseAssign, precedence: precAssignment},
		token.PLUS_ASSIGN:  {infix: parseAssign, precedence: precAssignment},
		token.MINUS_ASSIGN: {infix: parseAssign, precedence: precAssignment},
		token.MULT_ASSIGN:  {infix: parseAssign, precedence: precAssignment},
		token.DIV_ASSIGN:   {infix: parseAssign, precedence: precAssignment},
		token.MOD_ASSIGN:   {infix: parseAssign, precedence: precAssignment},
		token.ASTYPE:       {infix: parseAsTypeCast, precedence: precUnary},
		token.TYPEOF:       {prefix: parseTypeOf},
		token.IDENTIFIER:   {prefix: parseVariable},
		token.INT:          {prefix: parseLiteral},
		token.FLOAT:        {prefix: parseLiteral},
		token.STRING:       {prefix: parseLiteral},
		token.TRUE:         {prefix: parseLiteral},
		token.FALSE:        {prefix: parseLiteral},
		token.NULL:         {prefix: parseLiteral},
	}
}

func ruleFor(tt token.TokenType) rule { return rules[tt] }

// Parser consumes a token stream produced by lexer.Lexer and builds an
// AST. Unlike the lexer it replaces, it operates over a fully materialized
// token slice so arbitrary lookahead (needed for slice-index parsing and
// type annotations) is a plain index bump.
type Parser struct {
	tokens   []token.Token
	position int
	panicked bool
}

// New constructs a Parser over src, driving the lexer to completion up
// front (spec.md's "lazy sequence of tokens" contract is satisfied by
// lexer.Lexer itself; the parser's lookahead needs are easier to satisfy
// against a materialized slice).
func New(src string) *Parser {
	return &Parser{tokens: lexer.New(src).Scan()}
}

// FromTokens builds a Parser directly from an already-scanned token
// slice, used by tests and by tooling that wants to inspect tokens
// before parsing.
func FromTokens(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token     { return p.tokens[p.position] }
func (p *Parser) previous() token.Token { return p.tokens[p.position-1] }

func (p *Parser) isFinished() bool { return p.peek().TokenType == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) check(tt token.TokenType) bool {
	return !p.isFinished() && p.peek().TokenType == tt
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt token.TokenType, message string) (token.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return token.Token{}, CreateSyntaxError(p.peek().Line, message)
}

// synchronize advances past the current token run until it finds a
// likely statement boundary (spec.md §4.2 "panic mode"): a semicolon, a
// closing brace, or a token that starts a new statement.
func (p *Parser) synchronize() {
	p.panicked = false
	for !p.isFinished() {
		if p.previous().TokenType == token.SEMICOLON || p.previous().TokenType == token.RCUR {
			return
		}
		switch p.peek().TokenType {
		case token.IF, token.WHILE, token.FOR, token.FOREACH, token.FUNC, token.VAR,
			token.RETURN, token.PRINT, token.IMPORT, token.ASSERT, token.BREAK,
			token.CONTINUE, token.PASS, token.EXPORT, token.LCUR:
			return
		}
		p.advance()
	}
}

// ParseProgram parses the entire token stream into a slice of top-level
// statements, recovering from syntax errors at statement boundaries so a
// single typo doesn't stop the parser from reporting the rest.
func (p *Parser) ParseProgram() []ast.Stmt {
	var statements []ast.Stmt
	for !p.isFinished() {
		statements = append(statements, p.declaration())
	}
	return statements
}

// declaration dispatches the statement grammar rule, turning any syntax
// error into an ast.ErrorStmt and resynchronizing so parsing continues.
func (p *Parser) declaration() ast.Stmt {
	stmt, err := p.statement()
	if err != nil {
		p.panicked = true
		p.synchronize()
		se, ok := err.(SyntaxError)
		if !ok {
			return ast.ErrorStmt{Message: err.Error()}
		}
		return ast.ErrorStmt{Message: se.Message, Line: se.Line}
	}
	return stmt
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.SEMICOLON):
		return ast.Pass{}, nil
	case p.match(token.LCUR):
		return p.block()
	case p.match(token.ASSERT):
		return p.assertStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.FOR):
		return p.forStmt()
	case p.match(token.FOREACH):
		return p.foreachStmt()
	case p.match(token.BREAK):
		line := p.previous().Line
		_, err := p.consume(token.SEMICOLON, "expected ';' after 'break'")
		return ast.Break{Line: line}, err
	case p.match(token.CONTINUE):
		line := p.previous().Line
		_, err := p.consume(token.SEMICOLON, "expected ';' after 'continue'")
		return ast.Continue{Line: line}, err
	case p.match(token.PASS):
		_, err := p.consume(token.SEMICOLON, "expected ';' after 'pass'")
		return ast.Pass{}, err
	case p.match(token.PRINT):
		return p.printStmt()
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.IMPORT):
		return p.importStmt()
	case p.match(token.EXPORT):
		return p.exportStmt()
	case p.match(token.VAR):
		return p.varDecl()
	case p.match(token.FUNC):
		return p.fnDecl()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) block() (ast.Stmt, error) {
	var statements []ast.Stmt
	for !p.check(token.RCUR) && !p.isFinished() {
		statements = append(statements, p.declaration())
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return ast.Block{Statements: statements}, nil
}

// nonEmptyBody parses a statement used as the body of if/while/for,
// rejecting an empty "{}" or bare ";" body per spec.md §4.2 ("use `pass`
// to express an intentional empty body"). An explicit `pass;` statement
// is accepted since it signals intent.
func (p *Parser) nonEmptyBody() (ast.Stmt, error) {
	if p.check(token.SEMICOLON) {
		return nil, CreateSyntaxError(p.peek().Line, "empty body not allowed; use 'pass'")
	}
	stmt, err := p.statement()
	if err != nil {
		return nil, err
	}
	if block, ok := stmt.(ast.Block); ok && len(block.Statements) == 0 {
		return nil, CreateSyntaxError(p.previous().Line, "empty body not allowed; use 'pass'")
	}
	return stmt, nil
}

func (p *Parser) assertStmt() (ast.Stmt, error) {
	cond, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	var message ast.Expression
	if p.match(token.COMMA) {
		message, err = p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
	}
	_, err = p.consume(token.SEMICOLON, "expected ';' after assert")
	return ast.AssertStmt{Condition: cond, Message: message}, err
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	cond, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	then, err := p.nonEmptyBody()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		elseStmt, err = p.nonEmptyBody()
		if err != nil {
			return nil, err
		}
	}
	return ast.If{Condition: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	cond, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	body, err := p.nonEmptyBody()
	if err != nil {
		return nil, err
	}
	return ast.While{Condition: cond, Body: body}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var initStmt ast.Stmt
	if !p.check(token.SEMICOLON) {
		var err error
		if p.match(token.VAR) {
			initStmt, err = p.varDecl()
		} else {
			initStmt, err = p.exprStmt()
		}
		if err != nil {
			return nil, err
		}
	} else {
		p.advance()
	}

	var cond ast.Expression
	if !p.check(token.SEMICOLON) {
		var err error
		cond, err = p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after for-condition"); err != nil {
		return nil, err
	}

	var post ast.Stmt
	if !p.check(token.RPA) {
		postExpr, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		post = ast.ExpressionStmt{Expression: postExpr}
	}
	if _, err := p.consume(token.RPA, "expected ')' after for-clauses"); err != nil {
		return nil, err
	}

	body, err := p.nonEmptyBody()
	if err != nil {
		return nil, err
	}
	return ast.For{Init: initStmt, Condition: cond, Post: post, Body: body}, nil
}

// foreachStmt parses "foreach (key, value in collection) body" or the
// single-binding form "foreach (value of collection) body".
func (p *Parser) foreachStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' after 'foreach'"); err != nil {
		return nil, err
	}
	first, err := p.consume(token.IDENTIFIER, "expected identifier in foreach")
	if err != nil {
		return nil, err
	}

	var stmt ast.Foreach
	if p.match(token.COMMA) {
		second, err := p.consume(token.IDENTIFIER, "expected identifier after ',' in foreach")
		if err != nil {
			return nil, err
		}
		stmt.KeyName, stmt.HasKey = first, true
		stmt.ValueName = second
		if _, err := p.consume(token.IN, "expected 'in' in foreach"); err != nil {
			return nil, err
		}
	} else if p.match(token.OF) {
		stmt.ValueName = first
		stmt.Of = true
	} else if p.match(token.IN) {
		stmt.ValueName = first
	} else {
		return nil, CreateSyntaxError(p.peek().Line, "expected 'of' or 'in' in foreach")
	}

	collection, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	stmt.Collection = collection
	if _, err := p.consume(token.RPA, "expected ')' after foreach collection"); err != nil {
		return nil, err
	}
	stmt.Body, err = p.nonEmptyBody()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) printStmt() (ast.Stmt, error) {
	expr, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	_, err = p.consume(token.SEMICOLON, "expected ';' after print")
	return ast.PrintStmt{Expression: expr}, err
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	line := p.previous().Line
	var values []ast.Expression
	if !p.check(token.SEMICOLON) {
		for {
			expr, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			values = append(values, expr)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	_, err := p.consume(token.SEMICOLON, "expected ';' after return")
	return ast.Return{Values: values, Line: line}, err
}

func (p *Parser) importStmt() (ast.Stmt, error) {
	identifier, err := p.consume(token.IDENTIFIER, "expected identifier after 'import'")
	if err != nil {
		return nil, err
	}
	stmt := ast.Import{Identifier: identifier}
	if p.match(token.AS) {
		alias, err := p.consume(token.IDENTIFIER, "expected identifier after 'as'")
		if err != nil {
			return nil, err
		}
		stmt.HasAlias = true
		stmt.Alias = alias
	}
	_, err = p.consume(token.SEMICOLON, "expected ';' after import")
	return stmt, err
}

func (p *Parser) exportStmt() (ast.Stmt, error) {
	var decl ast.Stmt
	var err error
	switch {
	case p.match(token.VAR):
		decl, err = p.varDecl()
	case p.match(token.FUNC):
		decl, err = p.fnDecl()
	default:
		return nil, CreateSyntaxError(p.peek().Line, "expected 'var' or 'fn' after 'export'")
	}
	if err != nil {
		return nil, err
	}
	return ast.Export{Decl: decl}, nil
}

func (p *Parser) exprStmt() (ast.Stmt, error) {
	expr, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	_, err = p.consume(token.SEMICOLON, "expected ';' after expression")
	return ast.ExpressionStmt{Expression: expr}, err
}

// varDecl parses "var IDENT (: type ('const')?)? (= expr)? ;". If
// match(VAR) has already been consumed by the caller (it always has:
// either statement() or for's init-clause), this picks up right after.
func (p *Parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}

	decl := ast.VarDecl{Name: name}
	if p.match(token.COLON) {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decl.Type = ty
		decl.HasType = true
		if p.match(token.CONST) {
			decl.Const = true
		}
	}
	if p.match(token.ASSIGN) {
		decl.Initializer, err = p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
	}
	_, err = p.consume(token.SEMICOLON, "expected ';' after variable declaration")
	return decl, err
}

// parseType parses a type annotation: a base type keyword, optionally
// followed by '<' subtype (',' subtype)? '>' for array/dictionary.
func (p *Parser) parseType() (ast.TypeExpr, error) {
	tok := p.peek()
	switch tok.TokenType {
	case token.BOOL_TYPE, token.INT_TYPE, token.FLOAT_TYPE, token.STRING_TYPE,
		token.ARRAY_TYPE, token.DICT_TYPE, token.OPAQUE_TYPE, token.ANY_TYPE, token.NULL:
		p.advance()
	default:
		return ast.TypeExpr{}, CreateSyntaxError(tok.Line, "expected a type name")
	}
	ty := ast.TypeExpr{Kind: tok.TokenType, Line: tok.Line}

	if p.match(token.LESS) {
		sub, err := p.parseType()
		if err != nil {
			return ast.TypeExpr{}, err
		}
		ty.Subtypes = append(ty.Subtypes, sub)
		if p.match(token.COMMA) {
			sub2, err := p.parseType()
			if err != nil {
				return ast.TypeExpr{}, err
			}
			ty.Subtypes = append(ty.Subtypes, sub2)
		}
		if _, err := p.consume(token.LARGER, "expected '>' to close type parameter list"); err != nil {
			return ast.TypeExpr{}, err
		}
	}
	return ty, nil
}

func (p *Parser) fnDecl() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPA, "expected '(' after function name"); err != nil {
		return nil, err
	}

	decl := ast.FnDecl{Name: name}
	for !p.check(token.RPA) {
		if p.match(token.ELLIPSE) {
			restName, err := p.consume(token.IDENTIFIER, "expected rest-parameter name")
			if err != nil {
				return nil, err
			}
			decl.HasRestParam = true
			decl.RestParam = restName
			break
		}
		paramName, err := p.consume(token.IDENTIFIER, "expected parameter name")
		if err != nil {
			return nil, err
		}
		param := ast.Param{Name: paramName}
		if p.match(token.COLON) {
			param.Type, err = p.parseType()
			if err != nil {
				return nil, err
			}
		}
		decl.Params = append(decl.Params, param)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after parameter list"); err != nil {
		return nil, err
	}

	if p.match(token.COLON) {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decl.ReturnTypes = append(decl.ReturnTypes, ty)
		for p.match(token.COMMA) {
			ty, err := p.parseType()
			if err != nil {
				return nil, err
			}
			decl.ReturnTypes = append(decl.ReturnTypes, ty)
		}
	}

	if _, err := p.consume(token.LCUR, "expected '{' to begin function body"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	return decl, nil
}

// parseExpression is the Pratt-loop entry point: parse one prefix
// expression, then keep folding in infix/postfix operators whose
// precedence is at least minPrec.
func (p *Parser) parseExpression(minPrec int) (ast.Expression, error) {
	tok := p.peek()
	r := ruleFor(tok.TokenType)
	if r.prefix == nil {
		return nil, CreateSyntaxError(tok.Line, fmt.Sprintf("unexpected token %q", tok.Lexeme))
	}
	p.advance()
	left, err := r.prefix(p)
	if err != nil {
		return nil, err
	}

	for {
		next := ruleFor(p.peek().TokenType)
		if next.infix == nil || next.precedence < minPrec {
			break
		}
		p.advance()
		left, err = next.infix(p, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func parseLiteral(p *Parser) (ast.Expression, error) {
	tok := p.previous()
	var v value.Value
	switch tok.TokenType {
	case token.INT:
		v = value.NewInt(tok.Literal.(int32))
	case token.FLOAT:
		v = value.NewFloat(tok.Literal.(float32))
	case token.STRING:
		sv, err := value.NewString(tok.Literal.(string))
		if err != nil {
			return nil, CreateSyntaxError(tok.Line, err.Error())
		}
		v = sv
	case token.TRUE:
		v = value.NewBool(true)
	case token.FALSE:
		v = value.NewBool(false)
	case token.NULL:
		v = value.Null
	}
	return ast.Literal{Value: v, Line: tok.Line}, nil
}

func parseVariable(p *Parser) (ast.Expression, error) {
	return ast.Variable{Name: p.previous()}, nil
}

func parseGrouping(p *Parser) (ast.Expression, error) {
	expr, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPA, "expected ')' to close grouping"); err != nil {
		return nil, err
	}
	return ast.Grouping{Expression: expr}, nil
}

func parseUnary(p *Parser) (ast.Expression, error) {
	op := p.previous()
	right, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}
	return ast.Unary{Operator: op, Right: right}, nil
}

func parsePrefixIncDec(p *Parser) (ast.Expression, error) {
	op := p.previous()
	target, err := p.parseExpression(precPostfix)
	if err != nil {
		return nil, err
	}
	return ast.PrefixIncDec{Operator: op, Target: target}, nil
}

func parsePostfixIncDec(p *Parser, left ast.Expression) (ast.Expression, error) {
	return ast.PostfixIncDec{Operator: p.previous(), Target: left}, nil
}

func parseBinary(p *Parser, left ast.Expression) (ast.Expression, error) {
	op := p.previous()
	r := ruleFor(op.TokenType)
	right, err := p.parseExpression(r.precedence + 1)
	if err != nil {
		return nil, err
	}
	return ast.Binary{Left: left, Operator: op, Right: right}, nil
}

func parseTernary(p *Parser, cond ast.Expression) (ast.Expression, error) {
	then, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.COLON, "expected ':' in ternary expression"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpression(precTernary)
	if err != nil {
		return nil, err
	}
	return ast.Ternary{Condition: cond, Then: then, Else: elseExpr}, nil
}

// parseAssign realizes "target op= value", where target must be a
// Variable or an Index expression (spec.md §4.5's INDEX_ASSIGN path).
func parseAssign(p *Parser, left ast.Expression) (ast.Expression, error) {
	op := p.previous()
	value, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}
	switch target := left.(type) {
	case ast.Variable:
		return ast.Assign{Name: target.Name, Operator: op, Value: value}, nil
	case ast.Index:
		return ast.IndexAssign{Target: target, Operator: op, Value: value}, nil
	default:
		return nil, CreateSyntaxError(op.Line, "invalid assignment target")
	}
}

func parseAsTypeCast(p *Parser, left ast.Expression) (ast.Expression, error) {
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return ast.TypeCast{Value: left, Target: ty}, nil
}

func parseTypeOf(p *Parser) (ast.Expression, error) {
	operand, err := p.parseExpression(precUnary)
	if err != nil {
		return nil, err
	}
	return ast.TypeOf{Value: operand}, nil
}

// parseCall parses a function-call's argument list once '(' has been
// consumed as an infix operator on a bare identifier-shaped callee.
// Xvr only calls named functions, never arbitrary expressions, so the
// callee must already be an ast.Variable.
func parseCall(p *Parser, left ast.Expression) (ast.Expression, error) {
	variable, ok := left.(ast.Variable)
	if !ok {
		return nil, CreateSyntaxError(p.previous().Line, "only named functions may be called")
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return ast.FnCall{Callee: variable.Name, Args: args}, nil
}

// parseDotCall realizes method-style dispatch: "a.foo(b)" parses as a
// call to "foo" with "a" shuffled in as an argument (spec.md §4.5/§4.6
// "DOT"); the shuffle position itself is the compiler's job, this just
// records Receiver and IsDot for it to act on.
func parseDotCall(p *Parser, left ast.Expression) (ast.Expression, error) {
	name, err := p.consume(token.IDENTIFIER, "expected method name after '.'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPA, "expected '(' after method name"); err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return ast.FnCall{Callee: name, Args: args, IsDot: true, Receiver: left}, nil
}

func (p *Parser) parseArgs() ([]ast.Expression, error) {
	var args []ast.Expression
	if !p.check(token.RPA) {
		for {
			arg, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseIndex parses "[first:second:third]" once '[' has been consumed as
// an infix operator on the compound being indexed. Any component may be
// omitted (IndexBlank); "]" alone (no colon at all) means a plain
// single-index access with First only.
func parseIndex(p *Parser, left ast.Expression) (ast.Expression, error) {
	idx := ast.Index{Compound: left}

	if !p.check(token.COLON) && !p.check(token.RBRACKET) {
		first, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		idx.First = first
	}
	if p.match(token.COLON) {
		if !p.check(token.COLON) && !p.check(token.RBRACKET) {
			second, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			idx.Second = second
		}
		if p.match(token.COLON) {
			if !p.check(token.RBRACKET) {
				third, err := p.parseExpression(precAssignment)
				if err != nil {
					return nil, err
				}
				idx.Third = third
			}
		}
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' to close index expression"); err != nil {
		return nil, err
	}
	return idx, nil
}

// parseCompoundLiteral parses "[...]" as a primary expression: either an
// array literal, a dictionary literal ("[k: v, ...]"), or the empty
// dictionary "[:]" (distinguished from the empty array "[]").
func parseCompoundLiteral(p *Parser) (ast.Expression, error) {
	if p.match(token.COLON) {
		if _, err := p.consume(token.RBRACKET, "expected ']' to close empty dictionary literal"); err != nil {
			return nil, err
		}
		return ast.DictLiteral{}, nil
	}
	if p.check(token.RBRACKET) {
		p.advance()
		return ast.ArrayLiteral{}, nil
	}

	first, err := p.parseExpression(precAssignment)
	if err != nil {
		return nil, err
	}

	if p.match(token.COLON) {
		firstValue, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		pairs := []ast.Pair{{Key: first, Value: firstValue}}
		for p.match(token.COMMA) {
			k, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON, "expected ':' in dictionary literal"); err != nil {
				return nil, err
			}
			v, err := p.parseExpression(precAssignment)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, ast.Pair{Key: k, Value: v})
		}
		if _, err := p.consume(token.RBRACKET, "expected ']' to close dictionary literal"); err != nil {
			return nil, err
		}
		return ast.DictLiteral{Pairs: pairs}, nil
	}

	elements := []ast.Expression{first}
	for p.match(token.COMMA) {
		el, err := p.parseExpression(precAssignment)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	if _, err := p.consume(token.RBRACKET, "expected ']' to close array literal"); err != nil {
		return nil, err
	}
	return ast.ArrayLiteral{Elements: elements}, nil
}
