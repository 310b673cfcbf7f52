package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvr-lang/xvr/ast"
)

func parseProgram(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts := New(src).ParseProgram()
	for _, s := range stmts {
		if es, ok := s.(ast.ErrorStmt); ok {
			t.Fatalf("unexpected parse error: %s (line %d)", es.Message, es.Line)
		}
	}
	return stmts
}

func TestParseVarDeclNoType(t *testing.T) {
	stmts := parseProgram(t, `var x = 1;`)
	require.Len(t, stmts, 1)
	decl := stmts[0].(ast.VarDecl)
	assert.Equal(t, "x", decl.Name.Lexeme)
	assert.False(t, decl.HasType)
	assert.NotNil(t, decl.Initializer)
}

func TestParseVarDeclWithTypeAndConst(t *testing.T) {
	stmts := parseProgram(t, `var x: int const = 1;`)
	decl := stmts[0].(ast.VarDecl)
	assert.True(t, decl.HasType)
	assert.True(t, decl.Const)
}

func TestParseVarDeclWithParameterizedType(t *testing.T) {
	stmts := parseProgram(t, `var x: array<int>;`)
	decl := stmts[0].(ast.VarDecl)
	require.Len(t, decl.Type.Subtypes, 1)
	assert.Nil(t, decl.Initializer)
}

func TestParseDictType(t *testing.T) {
	stmts := parseProgram(t, `var x: dictionary<string, any>;`)
	decl := stmts[0].(ast.VarDecl)
	require.Len(t, decl.Type.Subtypes, 2)
}

func TestParseAssignmentPrecedence(t *testing.T) {
	stmts := parseProgram(t, `x = 1 + 2 * 3;`)
	exprStmt := stmts[0].(ast.ExpressionStmt)
	assign := exprStmt.Expression.(ast.Assign)
	binary := assign.Value.(ast.Binary)
	assert.Equal(t, "+", string(binary.Operator.TokenType))
	rhs := binary.Right.(ast.Binary)
	assert.Equal(t, "*", string(rhs.Operator.TokenType))
}

func TestParseCompoundAssign(t *testing.T) {
	stmts := parseProgram(t, `x += 1;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	assert.Equal(t, "+=", string(assign.Operator.TokenType))
}

func TestParseTernary(t *testing.T) {
	stmts := parseProgram(t, `x = cond ? 1 : 2;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	_, ok := assign.Value.(ast.Ternary)
	assert.True(t, ok)
}

func TestParseLogicalAndOrAsBinary(t *testing.T) {
	stmts := parseProgram(t, `x = a && b || c;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	top := assign.Value.(ast.Binary)
	assert.Equal(t, "||", string(top.Operator.TokenType))
	left := top.Left.(ast.Binary)
	assert.Equal(t, "&&", string(left.Operator.TokenType))
}

func TestParseUnaryAndPostfix(t *testing.T) {
	stmts := parseProgram(t, `x = -a++;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	unary := assign.Value.(ast.Unary)
	_, ok := unary.Right.(ast.PostfixIncDec)
	assert.True(t, ok)
}

func TestParsePrefixIncDec(t *testing.T) {
	stmts := parseProgram(t, `++a;`)
	_, ok := stmts[0].(ast.ExpressionStmt).Expression.(ast.PrefixIncDec)
	assert.True(t, ok)
}

func TestParseGrouping(t *testing.T) {
	stmts := parseProgram(t, `x = (1 + 2) * 3;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	top := assign.Value.(ast.Binary)
	_, ok := top.Left.(ast.Grouping)
	assert.True(t, ok)
}

func TestParseArrayLiteral(t *testing.T) {
	stmts := parseProgram(t, `var x = [1, 2, 3];`)
	decl := stmts[0].(ast.VarDecl)
	arr := decl.Initializer.(ast.ArrayLiteral)
	assert.Len(t, arr.Elements, 3)
}

func TestParseEmptyArrayLiteral(t *testing.T) {
	stmts := parseProgram(t, `var x = [];`)
	decl := stmts[0].(ast.VarDecl)
	arr := decl.Initializer.(ast.ArrayLiteral)
	assert.Empty(t, arr.Elements)
}

func TestParseDictLiteral(t *testing.T) {
	stmts := parseProgram(t, `var x = ["a": 1, "b": 2];`)
	decl := stmts[0].(ast.VarDecl)
	dict := decl.Initializer.(ast.DictLiteral)
	assert.Len(t, dict.Pairs, 2)
}

func TestParseEmptyDictLiteral(t *testing.T) {
	stmts := parseProgram(t, `var x = [:];`)
	decl := stmts[0].(ast.VarDecl)
	dict := decl.Initializer.(ast.DictLiteral)
	assert.Empty(t, dict.Pairs)
}

func TestParseIndexFullSlice(t *testing.T) {
	stmts := parseProgram(t, `x = a[1:2:3];`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	idx := assign.Value.(ast.Index)
	assert.NotNil(t, idx.First)
	assert.NotNil(t, idx.Second)
	assert.NotNil(t, idx.Third)
}

func TestParseIndexSingleAccess(t *testing.T) {
	stmts := parseProgram(t, `x = a[1];`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	idx := assign.Value.(ast.Index)
	assert.NotNil(t, idx.First)
	assert.Nil(t, idx.Second)
	assert.Nil(t, idx.Third)
}

func TestParseIndexOmittedComponents(t *testing.T) {
	stmts := parseProgram(t, `x = a[:2:];`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	idx := assign.Value.(ast.Index)
	assert.Nil(t, idx.First)
	assert.NotNil(t, idx.Second)
	assert.Nil(t, idx.Third)
}

func TestParseIndexAssign(t *testing.T) {
	stmts := parseProgram(t, `a[0] = 5;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.IndexAssign)
	assert.Equal(t, "=", string(assign.Operator.TokenType))
}

func TestParseFnCall(t *testing.T) {
	stmts := parseProgram(t, `foo(1, 2);`)
	call := stmts[0].(ast.ExpressionStmt).Expression.(ast.FnCall)
	assert.Equal(t, "foo", call.Callee.Lexeme)
	assert.Len(t, call.Args, 2)
	assert.False(t, call.IsDot)
}

func TestParseDotCall(t *testing.T) {
	stmts := parseProgram(t, `a.foo(1);`)
	call := stmts[0].(ast.ExpressionStmt).Expression.(ast.FnCall)
	assert.Equal(t, "foo", call.Callee.Lexeme)
	assert.True(t, call.IsDot)
	assert.NotNil(t, call.Receiver)
	assert.Len(t, call.Args, 1)
}

func TestParseTypeCastAndTypeOf(t *testing.T) {
	stmts := parseProgram(t, `x = y astype int;`)
	assign := stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	cast := assign.Value.(ast.TypeCast)
	assert.Equal(t, "INT_TYPE", string(cast.Target.Kind))

	stmts = parseProgram(t, `x = typeof y;`)
	assign = stmts[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	_, ok := assign.Value.(ast.TypeOf)
	assert.True(t, ok)
}

func TestParseBlockStatement(t *testing.T) {
	stmts := parseProgram(t, `{ var x = 1; print x; }`)
	block := stmts[0].(ast.Block)
	assert.Len(t, block.Statements, 2)
}

func TestParseIfElse(t *testing.T) {
	stmts := parseProgram(t, `if (a) { print 1; } else { print 2; }`)
	ifStmt := stmts[0].(ast.If)
	assert.NotNil(t, ifStmt.Then)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseWhile(t *testing.T) {
	stmts := parseProgram(t, `while (a) { pass; }`)
	_, ok := stmts[0].(ast.While)
	assert.True(t, ok)
}

func TestParseEmptyBodyRejected(t *testing.T) {
	stmts := New(`while (a) {}`).ParseProgram()
	_, ok := stmts[0].(ast.ErrorStmt)
	assert.True(t, ok)
}

func TestParseFor(t *testing.T) {
	stmts := parseProgram(t, `for (var i = 0; i < 10; i++) { print i; }`)
	forStmt := stmts[0].(ast.For)
	assert.NotNil(t, forStmt.Init)
	assert.NotNil(t, forStmt.Condition)
	assert.NotNil(t, forStmt.Post)
}

func TestParseForAllClausesOptional(t *testing.T) {
	stmts := parseProgram(t, `for (;;) { break; }`)
	forStmt := stmts[0].(ast.For)
	assert.Nil(t, forStmt.Init)
	assert.Nil(t, forStmt.Condition)
	assert.Nil(t, forStmt.Post)
}

func TestParseForeachKeyValue(t *testing.T) {
	stmts := parseProgram(t, `foreach (k, v in d) { print v; }`)
	f := stmts[0].(ast.Foreach)
	assert.True(t, f.HasKey)
	assert.Equal(t, "k", f.KeyName.Lexeme)
	assert.Equal(t, "v", f.ValueName.Lexeme)
}

func TestParseForeachOf(t *testing.T) {
	stmts := parseProgram(t, `foreach (v of a) { print v; }`)
	f := stmts[0].(ast.Foreach)
	assert.False(t, f.HasKey)
	assert.True(t, f.Of)
}

func TestParseBreakContinuePass(t *testing.T) {
	stmts := parseProgram(t, `while (true) { break; continue; pass; }`)
	w := stmts[0].(ast.While)
	block := w.Body.(ast.Block)
	require.Len(t, block.Statements, 3)
	_, ok := block.Statements[0].(ast.Break)
	assert.True(t, ok)
	_, ok = block.Statements[1].(ast.Continue)
	assert.True(t, ok)
	_, ok = block.Statements[2].(ast.Pass)
	assert.True(t, ok)
}

func TestParseReturnMultipleValues(t *testing.T) {
	stmts := parseProgram(t, `fn f() { return 1, 2; }`)
	fn := stmts[0].(ast.FnDecl)
	block := fn.Body.(ast.Block)
	ret := block.Statements[0].(ast.Return)
	assert.Len(t, ret.Values, 2)
}

func TestParseReturnBare(t *testing.T) {
	stmts := parseProgram(t, `fn f() { return; }`)
	fn := stmts[0].(ast.FnDecl)
	block := fn.Body.(ast.Block)
	ret := block.Statements[0].(ast.Return)
	assert.Empty(t, ret.Values)
}

func TestParseFnDeclWithParamsAndReturnType(t *testing.T) {
	stmts := parseProgram(t, `fn add(a: int, b: int): int { return a + b; }`)
	fn := stmts[0].(ast.FnDecl)
	assert.Equal(t, "add", fn.Name.Lexeme)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name.Lexeme)
	require.Len(t, fn.ReturnTypes, 1)
}

func TestParseFnDeclWithRestParam(t *testing.T) {
	stmts := parseProgram(t, `fn f(a, ...rest) { pass; }`)
	fn := stmts[0].(ast.FnDecl)
	assert.True(t, fn.HasRestParam)
	assert.Equal(t, "rest", fn.RestParam.Lexeme)
}

func TestParseImport(t *testing.T) {
	stmts := parseProgram(t, `import math as m;`)
	imp := stmts[0].(ast.Import)
	assert.Equal(t, "math", imp.Identifier.Lexeme)
	assert.True(t, imp.HasAlias)
	assert.Equal(t, "m", imp.Alias.Lexeme)
}

func TestParseImportWithoutAlias(t *testing.T) {
	stmts := parseProgram(t, `import math;`)
	imp := stmts[0].(ast.Import)
	assert.False(t, imp.HasAlias)
}

func TestParseExport(t *testing.T) {
	stmts := parseProgram(t, `export var x = 1;`)
	exp := stmts[0].(ast.Export)
	_, ok := exp.Decl.(ast.VarDecl)
	assert.True(t, ok)
}

func TestParseAssertWithMessage(t *testing.T) {
	stmts := parseProgram(t, `assert x > 0, "must be positive";`)
	a := stmts[0].(ast.AssertStmt)
	assert.NotNil(t, a.Condition)
	assert.NotNil(t, a.Message)
}

func TestParseAssertWithoutMessage(t *testing.T) {
	stmts := parseProgram(t, `assert x > 0;`)
	a := stmts[0].(ast.AssertStmt)
	assert.Nil(t, a.Message)
}

func TestParsePrint(t *testing.T) {
	stmts := parseProgram(t, `print "hi";`)
	_, ok := stmts[0].(ast.PrintStmt)
	assert.True(t, ok)
}

func TestParseStandaloneSemicolonIsPass(t *testing.T) {
	stmts := parseProgram(t, `;`)
	_, ok := stmts[0].(ast.Pass)
	assert.True(t, ok)
}

func TestParseErrorRecoverySynchronizesAtNextStatement(t *testing.T) {
	stmts := New(`var x = ; var y = 2;`).ParseProgram()
	require.Len(t, stmts, 2)
	_, ok := stmts[0].(ast.ErrorStmt)
	assert.True(t, ok)
	decl, ok := stmts[1].(ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "y", decl.Name.Lexeme)
}

func TestParseInvalidAssignmentTargetErrors(t *testing.T) {
	stmts := New(`1 = 2;`).ParseProgram()
	_, ok := stmts[0].(ast.ErrorStmt)
	assert.True(t, ok)
}
