package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvr-lang/xvr/parser"
	"github.com/xvr-lang/xvr/value"
)

type instr struct {
	op       Opcode
	operands []int
	pos      int
}

func decode(t *testing.T, code []byte) []instr {
	t.Helper()
	var out []instr
	pos := 0
	for pos < len(code) {
		op := Opcode(code[pos])
		def, err := Get(op)
		require.NoError(t, err)
		operands := make([]int, len(def.OperandWidths))
		offset := pos + 1
		for i, w := range def.OperandWidths {
			operands[i] = ReadOperand(code, offset, w)
			offset += w
		}
		out = append(out, instr{op: op, operands: operands, pos: pos})
		pos = offset
	}
	return out
}

func compileOK(t *testing.T, src string) Bytecode {
	t.Helper()
	program := parser.New(src).ParseProgram()
	bc, err := Compile(program)
	require.NoError(t, err)
	return bc
}

func findFirst(instrs []instr, op Opcode) (instr, bool) {
	for _, in := range instrs {
		if in.op == op {
			return in, true
		}
	}
	return instr{}, false
}

func TestLiteralShortOpcodeForSmallPool(t *testing.T) {
	bc := compileOK(t, `print 42;`)
	instrs := decode(t, bc.Code)
	lit, ok := findFirst(instrs, OP_LITERAL)
	require.True(t, ok)
	assert.Equal(t, 42, int(bc.Literals[lit.operands[0]].Int()))
}

func TestLiteralLongOpcodeOnceLiteralPoolExceeds256(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&sb, "print %d;\n", i)
	}
	bc := compileOK(t, sb.String())
	instrs := decode(t, bc.Code)
	_, ok := findFirst(instrs, OP_LITERAL_LONG)
	assert.True(t, ok, "expected at least one LITERAL_LONG once the pool passes 256 entries")
}

func TestLiteralPoolDedupesRepeatedScalar(t *testing.T) {
	bc := compileOK(t, `print 7; print 7;`)
	count := 0
	for _, l := range bc.Literals {
		if l.Kind == value.KindInteger && l.Int() == 7 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestIfElseBothBranchesEmitted(t *testing.T) {
	bc := compileOK(t, `if (true) { print 1; } else { print 2; }`)
	instrs := decode(t, bc.Code)
	ifFalse, ok := findFirst(instrs, OP_IF_FALSE_JUMP)
	require.True(t, ok)
	// the else-jump target must land after the jump and within the code, and the
	// unconditional jump ending the then-branch must land at the very end.
	assert.Greater(t, ifFalse.operands[0], ifFalse.pos)
	assert.LessOrEqual(t, ifFalse.operands[0], len(bc.Code))

	jmp, ok := findFirst(instrs, OP_JUMP)
	require.True(t, ok)
	assert.Equal(t, len(bc.Code), jmp.operands[0])
}

func TestWhileLoopBreakJumpsPastLoop(t *testing.T) {
	bc := compileOK(t, `var i = 0; while (i < 3) { break; }`)
	instrs := decode(t, bc.Code)
	var jumps []instr
	for _, in := range instrs {
		if in.op == OP_JUMP {
			jumps = append(jumps, in)
		}
	}
	require.NotEmpty(t, jumps)
	for _, j := range jumps {
		if j.operands[0] == len(bc.Code) {
			return
		}
	}
	t.Fatal("expected the break to jump to the end of the code section")
}

func TestBreakOutsideLoopIsASemanticError(t *testing.T) {
	program := parser.New(`break;`).ParseProgram()
	_, err := Compile(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break outside of a loop")
}

func TestContinueOutsideLoopIsASemanticError(t *testing.T) {
	program := parser.New(`continue;`).ParseProgram()
	_, err := Compile(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "continue outside of a loop")
}

func TestFunctionDeclProducesFunctionProto(t *testing.T) {
	bc := compileOK(t, `fn add(a, b) { return a + b; }`)
	require.Len(t, bc.Functions, 1)
	proto := bc.Functions[0]
	assert.Equal(t, "add", proto.Name)
	assert.Equal(t, []string{"a", "b"}, proto.ParamNames)
	assert.False(t, proto.HasRestParam)

	bodyInstrs := decode(t, proto.Code)
	_, hasReturn := findFirst(bodyInstrs, OP_FN_RETURN)
	assert.True(t, hasReturn)
}

func TestFunctionWithRestParamRecordsItsName(t *testing.T) {
	bc := compileOK(t, `fn sum(first, ...rest) { return first; }`)
	require.Len(t, bc.Functions, 1)
	proto := bc.Functions[0]
	assert.True(t, proto.HasRestParam)
	assert.Equal(t, "rest", proto.RestParamName)
}

func TestBreakDoesNotEscapeIntoEnclosingFunctionLoop(t *testing.T) {
	// The while loop encloses the fn declaration lexically, but break
	// inside the function body must not resolve to the outer loop.
	program := parser.New(`
		while (true) {
			fn f() { break; }
			break;
		}
	`).ParseProgram()
	_, err := Compile(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break outside of a loop")
}

func TestDotCallShufflesReceiverAndPrefixesUnderscore(t *testing.T) {
	bc := compileOK(t, `var a = [1]; a.push(2);`)
	instrs := decode(t, bc.Code)
	call, ok := findFirst(instrs, OP_FN_CALL)
	require.True(t, ok)
	assert.Equal(t, 2, call.operands[0]) // receiver + one explicit arg

	sawUnderscorePush := false
	for _, l := range bc.Literals {
		if l.Kind == value.KindIdentifier && l.Str() == "_push" {
			sawUnderscorePush = true
		}
	}
	assert.True(t, sawUnderscorePush)
}

func TestIndexAssignRequiresPlainVariableTarget(t *testing.T) {
	program := parser.New(`var a = [[1]]; a[0][0] = 1;`).ParseProgram()
	_, err := Compile(program)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plain variable")
}

func TestIndexAssignOnPlainVariableCompiles(t *testing.T) {
	bc := compileOK(t, `var a = [1]; a[0] = 2;`)
	instrs := decode(t, bc.Code)
	_, ok := findFirst(instrs, OP_INDEX_ASSIGN_INTERMEDIATE)
	assert.True(t, ok)
	assign, ok := findFirst(instrs, OP_INDEX_ASSIGN)
	require.True(t, ok)
	assert.Equal(t, int(IndexAssignPlain), assign.operands[0])
}

func TestVarDeclEmitsDeclaredTypeLiteral(t *testing.T) {
	bc := compileOK(t, `var x: int = 5;`)
	instrs := decode(t, bc.Code)
	decl, ok := findFirst(instrs, OP_VAR_DECL)
	require.True(t, ok)
	tv := bc.Literals[decl.operands[0]]
	require.Equal(t, value.KindType, tv.Kind)
	assert.Equal(t, value.KindInteger, tv.Type().TypeOf)
}

func TestVarDeclWithoutAnnotationResolvesToAny(t *testing.T) {
	bc := compileOK(t, `var x = 5;`)
	instrs := decode(t, bc.Code)
	decl, ok := findFirst(instrs, OP_VAR_DECL)
	require.True(t, ok)
	tv := bc.Literals[decl.operands[0]]
	assert.Equal(t, value.KindAny, tv.Type().TypeOf)
}

func TestForeachDualFormEmitsHasKeyFlag(t *testing.T) {
	bc := compileOK(t, `var d = [:]; foreach (k, v in d) { pass; }`)
	instrs := decode(t, bc.Code)
	begin, ok := findFirst(instrs, OP_FOREACH_BEGIN)
	require.True(t, ok)
	assert.Equal(t, 1, begin.operands[2])
}

func TestForeachSingleFormClearsHasKeyFlag(t *testing.T) {
	bc := compileOK(t, `var a = [1, 2]; foreach (v of a) { pass; }`)
	instrs := decode(t, bc.Code)
	begin, ok := findFirst(instrs, OP_FOREACH_BEGIN)
	require.True(t, ok)
	assert.Equal(t, 0, begin.operands[2])
}

func TestExportRecordsDeclaredName(t *testing.T) {
	bc := compileOK(t, `export fn f() { pass; }`)
	assert.Equal(t, []string{"f"}, bc.Exports)
}

func TestArrayLiteralWithNonConstantElementsBuildsAtRuntime(t *testing.T) {
	bc := compileOK(t, `var a = 1; var b = [a, 2];`)
	instrs := decode(t, bc.Code)
	build, ok := findFirst(instrs, OP_ARRAY_BUILD)
	require.True(t, ok)
	assert.Equal(t, 2, build.operands[0])
}

func TestTernaryPatchesBothJumps(t *testing.T) {
	bc := compileOK(t, `print true ? 1 : 2;`)
	instrs := decode(t, bc.Code)
	ifFalse, ok := findFirst(instrs, OP_IF_FALSE_JUMP)
	require.True(t, ok)
	jmp, ok := findFirst(instrs, OP_JUMP)
	require.True(t, ok)
	assert.Greater(t, ifFalse.operands[0], ifFalse.pos)
	assert.Greater(t, jmp.operands[0], jmp.pos)
}
