package compiler

import (
	"encoding/binary"

	"github.com/xvr-lang/xvr/ast"
	"github.com/xvr-lang/xvr/token"
	"github.com/xvr-lang/xvr/value"
)

// loopFrame tracks the pending break/continue jump sites of one enclosing
// loop, patched once the loop's extent is known.
type loopFrame struct {
	breaks    []int
	continues []int
}

// ASTCompiler walks a parsed program and emits a Bytecode image (spec.md
// §4.5): one shared literal pool and function section, and a code section
// per function body plus one for the top level. It implements both
// ast.ExpressionVisitor and ast.StmtVisitor, the same dispatch the
// unused-declaration checker and the debug printer use.
type ASTCompiler struct {
	literals  []value.Value
	functions []FunctionProto
	exports   []string
	code      []byte
	loops     []*loopFrame
}

// New constructs an empty ASTCompiler.
func New() *ASTCompiler {
	return &ASTCompiler{}
}

// Compile runs program through a fresh ASTCompiler. Semantic problems
// (SemanticError, LimitError) raised while walking the AST are recovered
// here rather than panicking through to the caller.
func Compile(program []ast.Stmt) (bc Bytecode, err error) {
	c := New()
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case SemanticError:
				err = e
			case LimitError:
				err = e
			default:
				panic(r)
			}
		}
	}()
	for _, stmt := range program {
		stmt.Accept(c)
	}
	return Bytecode{Literals: c.literals, Functions: c.functions, Code: c.code, Exports: c.exports}, nil
}

// --- low-level emission helpers ---

func (c *ASTCompiler) emit(op Opcode, operands ...int) int {
	instr, err := MakeInstruction(op, operands...)
	if err != nil {
		panic(LimitError{Message: err.Error()})
	}
	pos := len(c.code)
	c.code = append(c.code, instr...)
	return pos
}

func (c *ASTCompiler) patchJumpTo(pos, target int) {
	if target > 0xFFFF {
		panic(LimitError{Message: "jump target exceeds a function's 65535-byte code limit"})
	}
	binary.BigEndian.PutUint16(c.code[pos+1:pos+3], uint16(target))
}

func (c *ASTCompiler) patchJump(pos int) {
	c.patchJumpTo(pos, len(c.code))
}

// addLiteral dedups v against the existing pool via Value.Equal (which
// matches scalars, strings/identifiers and the payload-free marker kinds
// such as IndexBlank, never types or containers), appending a new entry
// otherwise.
func (c *ASTCompiler) addLiteral(v value.Value) int {
	for i, existing := range c.literals {
		if existing.Equal(v) {
			return i
		}
	}
	if len(c.literals) >= 1<<16 {
		panic(LimitError{Message: "literal pool exceeds 65536 entries"})
	}
	c.literals = append(c.literals, v)
	return len(c.literals) - 1
}

func (c *ASTCompiler) emitLiteral(v value.Value) {
	idx := c.addLiteral(v)
	if idx <= 0xFF {
		c.emit(OP_LITERAL, idx)
	} else {
		c.emit(OP_LITERAL_LONG, idx)
	}
}

func (c *ASTCompiler) addIdentifierLiteral(name string) int {
	id, err := value.NewIdentifier(name)
	if err != nil {
		panic(LimitError{Message: err.Error()})
	}
	return c.addLiteral(id)
}

// pushIdentifier pushes name as an unresolved Identifier value; callers that
// want its bound value follow with OP_LITERAL_RAW.
func (c *ASTCompiler) pushIdentifier(name string) {
	idx := c.addIdentifierLiteral(name)
	if idx <= 0xFF {
		c.emit(OP_LITERAL, idx)
	} else {
		c.emit(OP_LITERAL_LONG, idx)
	}
}

func (c *ASTCompiler) pushIndexComponent(e ast.Expression) {
	if e == nil {
		c.emitLiteral(value.IndexBlank)
		return
	}
	e.Accept(c)
}

func (c *ASTCompiler) resolveType(te ast.TypeExpr) value.Type {
	if te.Kind == "" {
		return value.Type{TypeOf: value.KindAny}
	}
	t := value.Type{TypeOf: tokenTypeToKind(te.Kind, te.Line), Constant: te.Constant}
	for _, s := range te.Subtypes {
		t.Subtypes = append(t.Subtypes, c.resolveType(s))
	}
	return t
}

func tokenTypeToKind(tt token.TokenType, line int32) value.Kind {
	switch tt {
	case token.BOOL_TYPE:
		return value.KindBoolean
	case token.INT_TYPE:
		return value.KindInteger
	case token.FLOAT_TYPE:
		return value.KindFloat
	case token.STRING_TYPE:
		return value.KindString
	case token.ARRAY_TYPE:
		return value.KindArray
	case token.DICT_TYPE:
		return value.KindDictionary
	case token.OPAQUE_TYPE:
		return value.KindOpaque
	case token.ANY_TYPE:
		return value.KindAny
	}
	panic(SemanticError{Line: line, Message: "unknown type annotation " + string(tt)})
}

func assignOpcode(t token.Token) Opcode {
	switch t.TokenType {
	case token.ASSIGN:
		return OP_VAR_ASSIGN
	case token.PLUS_ASSIGN:
		return OP_VAR_ADDITION_ASSIGN
	case token.MINUS_ASSIGN:
		return OP_VAR_SUBTRACTION_ASSIGN
	case token.MULT_ASSIGN:
		return OP_VAR_MULTIPLICATION_ASSIGN
	case token.DIV_ASSIGN:
		return OP_VAR_DIVISION_ASSIGN
	case token.MOD_ASSIGN:
		return OP_VAR_MODULO_ASSIGN
	}
	panic(SemanticError{Line: t.Line, Message: "unknown assignment operator " + t.Lexeme})
}

func indexAssignQualifier(t token.Token) int {
	switch t.TokenType {
	case token.ASSIGN:
		return int(IndexAssignPlain)
	case token.PLUS_ASSIGN:
		return int(IndexAssignAdd)
	case token.MINUS_ASSIGN:
		return int(IndexAssignSub)
	case token.MULT_ASSIGN:
		return int(IndexAssignMul)
	case token.DIV_ASSIGN:
		return int(IndexAssignDiv)
	case token.MOD_ASSIGN:
		return int(IndexAssignMod)
	}
	panic(SemanticError{Line: t.Line, Message: "unknown index-assignment operator " + t.Lexeme})
}

func binaryOpcode(t token.Token) Opcode {
	switch t.TokenType {
	case token.ADD:
		return OP_ADDITION
	case token.SUB:
		return OP_SUBTRACTION
	case token.MULT:
		return OP_MULTIPLICATION
	case token.DIV:
		return OP_DIVISION
	case token.MOD:
		return OP_MODULO
	case token.EQUAL_EQUAL:
		return OP_COMPARE_EQUAL
	case token.NOT_EQUAL:
		return OP_NOT_EQUAL
	case token.LESS:
		return OP_LESS
	case token.LESS_EQUAL:
		return OP_LESS_EQUAL
	case token.LARGER:
		return OP_GREATER
	case token.LARGER_EQUAL:
		return OP_GREATER_EQUAL
	case token.AND_AND:
		return OP_AND
	case token.OR_OR:
		return OP_OR
	}
	panic(SemanticError{Line: t.Line, Message: "unknown binary operator " + t.Lexeme})
}

// --- ExpressionVisitor ---

func (c *ASTCompiler) VisitError(expr ast.Error) any {
	panic(SemanticError{Line: expr.Line, Message: expr.Message})
}

func (c *ASTCompiler) VisitLiteral(expr ast.Literal) any {
	c.emitLiteral(expr.Value)
	return nil
}

func (c *ASTCompiler) VisitUnary(expr ast.Unary) any {
	expr.Right.Accept(c)
	switch expr.Operator.TokenType {
	case token.SUB:
		c.emit(OP_NEGATE)
	case token.BANG:
		c.emit(OP_INVERT)
	default:
		panic(SemanticError{Line: expr.Operator.Line, Message: "unknown unary operator " + expr.Operator.Lexeme})
	}
	return nil
}

func (c *ASTCompiler) VisitBinary(expr ast.Binary) any {
	expr.Left.Accept(c)
	expr.Right.Accept(c)
	c.emit(binaryOpcode(expr.Operator))
	return nil
}

func (c *ASTCompiler) VisitTernary(expr ast.Ternary) any {
	expr.Condition.Accept(c)
	elseJump := c.emit(OP_IF_FALSE_JUMP, 0)
	expr.Then.Accept(c)
	endJump := c.emit(OP_JUMP, 0)
	c.patchJump(elseJump)
	expr.Else.Accept(c)
	c.patchJump(endJump)
	return nil
}

func (c *ASTCompiler) VisitGrouping(expr ast.Grouping) any {
	c.emit(OP_GROUPING_BEGIN)
	expr.Expression.Accept(c)
	c.emit(OP_GROUPING_END)
	return nil
}

func (c *ASTCompiler) VisitVariable(expr ast.Variable) any {
	c.pushIdentifier(expr.Name.Lexeme)
	c.emit(OP_LITERAL_RAW)
	return nil
}

func (c *ASTCompiler) VisitAssign(expr ast.Assign) any {
	c.pushIdentifier(expr.Name.Lexeme)
	expr.Value.Accept(c)
	c.emit(assignOpcode(expr.Operator))
	return nil
}

// compileIncDec realizes both "++a"/"--a" and "a++"/"a--" identically,
// leaving the updated value as the expression's result: prefix and postfix
// forms are equivalent here since nothing in the opcode catalog can stash a
// pre-update copy without a dedicated dup/pop-one pair. Documented as a
// deliberate simplification rather than full C semantics.
func (c *ASTCompiler) compileIncDec(operator token.Token, target ast.Expression) {
	v, ok := target.(ast.Variable)
	if !ok {
		panic(SemanticError{Line: operator.Line, Message: "++/-- target must be a variable"})
	}
	c.pushIdentifier(v.Name.Lexeme)
	c.pushIdentifier(v.Name.Lexeme)
	c.emit(OP_LITERAL_RAW)
	c.emitLiteral(value.NewInt(1))
	if operator.TokenType == token.INCREMENT {
		c.emit(OP_ADDITION)
	} else {
		c.emit(OP_SUBTRACTION)
	}
	c.emit(OP_VAR_ASSIGN)
}

func (c *ASTCompiler) VisitPrefixIncDec(expr ast.PrefixIncDec) any {
	c.compileIncDec(expr.Operator, expr.Target)
	return nil
}

func (c *ASTCompiler) VisitPostfixIncDec(expr ast.PostfixIncDec) any {
	c.compileIncDec(expr.Operator, expr.Target)
	return nil
}

func (c *ASTCompiler) VisitIndex(expr ast.Index) any {
	expr.Compound.Accept(c)
	c.pushIndexComponent(expr.First)
	c.pushIndexComponent(expr.Second)
	c.pushIndexComponent(expr.Third)
	c.emit(OP_INDEX)
	return nil
}

// VisitIndexAssign only supports a plain variable as the indexed compound
// ("a[i] = v"), not a chained index ("a[0][1] = v"): INDEX_ASSIGN_INTERMEDIATE
// resolves the live container by name via scope.Peek, which has no way to
// address an element nested inside another container's already-resolved
// value. Chained index-assignment is out of scope for this compiler.
func (c *ASTCompiler) VisitIndexAssign(expr ast.IndexAssign) any {
	v, ok := expr.Target.Compound.(ast.Variable)
	if !ok {
		panic(SemanticError{Line: expr.Operator.Line, Message: "indexed assignment target must be a plain variable"})
	}
	c.pushIdentifier(v.Name.Lexeme)
	c.pushIndexComponent(expr.Target.First)
	c.pushIndexComponent(expr.Target.Second)
	c.pushIndexComponent(expr.Target.Third)
	c.emit(OP_INDEX_ASSIGN_INTERMEDIATE)
	expr.Value.Accept(c)
	c.emit(OP_INDEX_ASSIGN, indexAssignQualifier(expr.Operator))
	return nil
}

func (c *ASTCompiler) VisitArrayLiteral(expr ast.ArrayLiteral) any {
	if len(expr.Elements) > 0xFFFF {
		panic(LimitError{Message: "array literal exceeds 65535 elements"})
	}
	for _, e := range expr.Elements {
		e.Accept(c)
	}
	c.emit(OP_ARRAY_BUILD, len(expr.Elements))
	return nil
}

func (c *ASTCompiler) VisitDictLiteral(expr ast.DictLiteral) any {
	if len(expr.Pairs) > 0xFFFF {
		panic(LimitError{Message: "dictionary literal exceeds 65535 pairs"})
	}
	for _, p := range expr.Pairs {
		p.Key.Accept(c)
		p.Value.Accept(c)
	}
	c.emit(OP_DICT_BUILD, len(expr.Pairs))
	return nil
}

// VisitFnCall realizes a dot call ("a.foo(b)") as an ordinary call to
// "_foo" with the receiver appended as the final argument, per the
// convention documented on ast.FnCall; OP_DOT stays defined in the opcode
// catalog for interp-side completeness but is never emitted here.
func (c *ASTCompiler) VisitFnCall(expr ast.FnCall) any {
	name := expr.Callee.Lexeme
	args := expr.Args
	if expr.IsDot {
		name = "_" + name
		shuffled := make([]ast.Expression, 0, len(expr.Args)+1)
		shuffled = append(shuffled, expr.Args...)
		shuffled = append(shuffled, expr.Receiver)
		args = shuffled
	}
	if len(args) > 0xFF {
		panic(LimitError{Message: "call has more than 255 arguments"})
	}
	c.pushIdentifier(name)
	for _, a := range args {
		a.Accept(c)
	}
	c.emit(OP_FN_CALL, len(args))
	return nil
}

func (c *ASTCompiler) VisitTypeCast(expr ast.TypeCast) any {
	expr.Value.Accept(c)
	t := c.resolveType(expr.Target)
	c.emitLiteral(value.NewType(&t))
	c.emit(OP_TYPE_CAST)
	return nil
}

func (c *ASTCompiler) VisitTypeOf(expr ast.TypeOf) any {
	expr.Value.Accept(c)
	c.emit(OP_TYPE_OF)
	return nil
}

func (c *ASTCompiler) VisitTypeExpr(expr ast.TypeExpr) any {
	t := c.resolveType(expr)
	c.emitLiteral(value.NewType(&t))
	return nil
}

// --- StmtVisitor ---

func (c *ASTCompiler) VisitErrorStmt(stmt ast.ErrorStmt) any {
	panic(SemanticError{Line: stmt.Line, Message: stmt.Message})
}

func (c *ASTCompiler) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	stmt.Expression.Accept(c)
	c.emit(OP_POP_STACK)
	return nil
}

func (c *ASTCompiler) VisitPrintStmt(stmt ast.PrintStmt) any {
	stmt.Expression.Accept(c)
	c.emit(OP_PRINT)
	return nil
}

func (c *ASTCompiler) VisitAssertStmt(stmt ast.AssertStmt) any {
	stmt.Condition.Accept(c)
	if stmt.Message != nil {
		stmt.Message.Accept(c)
	} else {
		c.emitLiteral(value.Null)
	}
	c.emit(OP_ASSERT)
	return nil
}

func (c *ASTCompiler) VisitVarDecl(stmt ast.VarDecl) any {
	c.pushIdentifier(stmt.Name.Lexeme)
	if stmt.Initializer != nil {
		stmt.Initializer.Accept(c)
	} else {
		c.emitLiteral(value.Null)
	}
	t := value.Type{TypeOf: value.KindAny}
	if stmt.HasType {
		t = c.resolveType(stmt.Type)
	}
	t.Constant = stmt.Const
	idx := c.addLiteral(value.NewType(&t))
	if idx <= 0xFF {
		c.emit(OP_VAR_DECL, idx)
	} else {
		c.emit(OP_VAR_DECL_LONG, idx)
	}
	return nil
}

func (c *ASTCompiler) VisitBlock(stmt ast.Block) any {
	c.emit(OP_SCOPE_BEGIN)
	for _, s := range stmt.Statements {
		s.Accept(c)
	}
	c.emit(OP_SCOPE_END)
	return nil
}

func (c *ASTCompiler) VisitIf(stmt ast.If) any {
	stmt.Condition.Accept(c)
	elseJump := c.emit(OP_IF_FALSE_JUMP, 0)
	stmt.Then.Accept(c)
	if stmt.Else != nil {
		endJump := c.emit(OP_JUMP, 0)
		c.patchJump(elseJump)
		stmt.Else.Accept(c)
		c.patchJump(endJump)
		return nil
	}
	c.patchJump(elseJump)
	return nil
}

func (c *ASTCompiler) VisitWhile(stmt ast.While) any {
	loopStart := len(c.code)
	lf := &loopFrame{}
	c.loops = append(c.loops, lf)

	stmt.Condition.Accept(c)
	exitJump := c.emit(OP_IF_FALSE_JUMP, 0)
	stmt.Body.Accept(c)
	for _, pos := range lf.continues {
		c.patchJumpTo(pos, loopStart)
	}
	c.emit(OP_JUMP, loopStart)
	c.patchJump(exitJump)
	for _, pos := range lf.breaks {
		c.patchJump(pos)
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

func (c *ASTCompiler) VisitFor(stmt ast.For) any {
	c.emit(OP_SCOPE_BEGIN)
	if stmt.Init != nil {
		stmt.Init.Accept(c)
	}
	condStart := len(c.code)
	hasCond := stmt.Condition != nil
	var exitJump int
	if hasCond {
		stmt.Condition.Accept(c)
		exitJump = c.emit(OP_IF_FALSE_JUMP, 0)
	}

	lf := &loopFrame{}
	c.loops = append(c.loops, lf)
	stmt.Body.Accept(c)
	postStart := len(c.code)
	for _, pos := range lf.continues {
		c.patchJumpTo(pos, postStart)
	}
	if stmt.Post != nil {
		stmt.Post.Accept(c)
	}
	c.emit(OP_JUMP, condStart)
	if hasCond {
		c.patchJump(exitJump)
	}
	for _, pos := range lf.breaks {
		c.patchJump(pos)
	}
	c.loops = c.loops[:len(c.loops)-1]
	c.emit(OP_SCOPE_END)
	return nil
}

// VisitForeach desugars to three loop-specific opcodes (FOREACH_BEGIN/NEXT/
// END) rather than a generic while loop: the iterator's position through an
// array or dictionary isn't representable with the variable-binding opcodes
// alone, and this keeps the key/value bindings out of the literal pool's
// identifier-resolution path entirely.
func (c *ASTCompiler) VisitForeach(stmt ast.Foreach) any {
	c.emit(OP_SCOPE_BEGIN)
	stmt.Collection.Accept(c)

	keyLexeme := "_"
	if stmt.HasKey {
		keyLexeme = stmt.KeyName.Lexeme
	}
	keyIdx := c.addIdentifierLiteral(keyLexeme)
	valueIdx := c.addIdentifierLiteral(stmt.ValueName.Lexeme)
	if keyIdx > 0xFF || valueIdx > 0xFF {
		panic(LimitError{Message: "foreach binding name resolves past the first 256 literal-pool entries"})
	}
	hasKeyFlag := 0
	if stmt.HasKey {
		hasKeyFlag = 1
	}
	c.emit(OP_FOREACH_BEGIN, keyIdx, valueIdx, hasKeyFlag)

	lf := &loopFrame{}
	c.loops = append(c.loops, lf)

	foreachStart := len(c.code)
	naturalExit := c.emit(OP_FOREACH_NEXT, 0)
	stmt.Body.Accept(c)
	for _, pos := range lf.continues {
		c.patchJumpTo(pos, foreachStart)
	}
	c.emit(OP_JUMP, foreachStart)
	c.patchJump(naturalExit)
	afterLoopJump := c.emit(OP_JUMP, 0)
	for _, pos := range lf.breaks {
		c.patchJump(pos)
	}
	c.emit(OP_FOREACH_END)
	c.patchJump(afterLoopJump)

	c.loops = c.loops[:len(c.loops)-1]
	c.emit(OP_SCOPE_END)
	return nil
}

func (c *ASTCompiler) VisitBreak(stmt ast.Break) any {
	if len(c.loops) == 0 {
		panic(SemanticError{Line: stmt.Line, Message: "break outside of a loop"})
	}
	lf := c.loops[len(c.loops)-1]
	lf.breaks = append(lf.breaks, c.emit(OP_JUMP, 0))
	return nil
}

func (c *ASTCompiler) VisitContinue(stmt ast.Continue) any {
	if len(c.loops) == 0 {
		panic(SemanticError{Line: stmt.Line, Message: "continue outside of a loop"})
	}
	lf := c.loops[len(c.loops)-1]
	lf.continues = append(lf.continues, c.emit(OP_JUMP, 0))
	return nil
}

func (c *ASTCompiler) VisitPass(stmt ast.Pass) any {
	c.emit(OP_PASS)
	return nil
}

// VisitReturn pushes a leading count literal so FN_RETURN, itself
// operand-less, knows how many values to collect off the stack: the count
// sits beneath all the return values since it's pushed first.
func (c *ASTCompiler) VisitReturn(stmt ast.Return) any {
	c.emitLiteral(value.NewInt(int32(len(stmt.Values))))
	for _, v := range stmt.Values {
		v.Accept(c)
	}
	c.emit(OP_FN_RETURN)
	return nil
}

func (c *ASTCompiler) VisitFnDecl(stmt ast.FnDecl) any {
	proto := FunctionProto{
		Name:         stmt.Name.Lexeme,
		HasRestParam: stmt.HasRestParam,
	}
	for _, p := range stmt.Params {
		proto.ParamNames = append(proto.ParamNames, p.Name.Lexeme)
		proto.ParamTypes = append(proto.ParamTypes, c.resolveType(p.Type))
	}
	if stmt.HasRestParam {
		proto.RestParamName = stmt.RestParam.Lexeme
	}
	for _, rt := range stmt.ReturnTypes {
		proto.ReturnTypes = append(proto.ReturnTypes, c.resolveType(rt))
	}

	savedCode, savedLoops := c.code, c.loops
	c.code, c.loops = nil, nil
	stmt.Body.Accept(c)
	proto.Code = c.code
	c.code, c.loops = savedCode, savedLoops

	if len(c.functions) >= 1<<16 {
		panic(LimitError{Message: "function section exceeds 65536 entries"})
	}
	idx := len(c.functions)
	c.functions = append(c.functions, proto)
	if idx <= 0xFF {
		c.emit(OP_FN_DECL, idx)
	} else {
		c.emit(OP_FN_DECL_LONG, idx)
	}
	return nil
}

func (c *ASTCompiler) VisitImport(stmt ast.Import) any {
	c.pushIdentifier(stmt.Identifier.Lexeme)
	alias := stmt.Identifier.Lexeme
	if stmt.HasAlias {
		alias = stmt.Alias.Lexeme
	}
	c.pushIdentifier(alias)
	c.emit(OP_IMPORT)
	return nil
}

// VisitExport records the wrapped declaration's name in the image's export
// list before compiling it normally; exporting carries no opcode of its
// own, since a VarDecl/FnDecl already binds the name in the top-level
// scope the host inspects after a run.
func (c *ASTCompiler) VisitExport(stmt ast.Export) any {
	switch d := stmt.Decl.(type) {
	case ast.VarDecl:
		c.exports = append(c.exports, d.Name.Lexeme)
	case ast.FnDecl:
		c.exports = append(c.exports, d.Name.Lexeme)
	}
	stmt.Decl.Accept(c)
	return nil
}
