package interp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/lexer"
	"github.com/xvr-lang/xvr/parser"
	"github.com/xvr-lang/xvr/value"
)

func captureOutput(in *Interpreter) *[]string {
	lines := &[]string{}
	in.SetPrint(func(s string) { *lines = append(*lines, s) })
	return lines
}

func TestArithmeticPrecedenceAndPrint(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var x: int = 1 + 2 * 3;
		print x;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, *lines)
}

func TestFloatPromotionOnMixedArithmetic(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var x: float = 1;
		print x + 1.5;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.5"}, *lines)
}

func TestFunctionCallAndReturn(t *testing.T) {
	in := New()
	err := in.RunSource(`
		fn add(a: int, b: int): int {
			return a + b;
		}
	`)
	require.NoError(t, err)

	results, err := in.CallFunction("add", []value.Value{value.NewInt(3), value.NewInt(4)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(7), results[0].Int())
}

func TestRecursionDepthLimitIsFatal(t *testing.T) {
	in := New()
	err := in.RunSource(`
		fn spin(n: int): int {
			return spin(n + 1);
		}
		spin(0);
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursion")
}

func TestForeachArraySum(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [1, 2, 3];
		var sum: int = 0;
		foreach (v in arr) {
			sum += v;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, *lines)
}

func TestForeachArrayBreak(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [1, 2, 3, 4, 5];
		var sum: int = 0;
		foreach (v in arr) {
			if (v > 3) {
				break;
			}
			sum += v;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, *lines)
}

func TestForeachDictionaryWithKeyVisitsEveryPair(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var d: dictionary<string, int> = ["a": 1, "b": 2];
		var total: int = 0;
		var count: int = 0;
		foreach (k, v in d) {
			total += v;
			count += 1;
		}
		print total;
		print count;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, *lines)
}

func TestSingleElementIndexVsSlice(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [10, 20, 30, 40];
		print arr[1];
		print arr[1:3];
	`)
	require.NoError(t, err)
	require.Len(t, *lines, 2)
	assert.Equal(t, "20", (*lines)[0])
	assert.Equal(t, "[20, 30]", (*lines)[1])
}

func TestEncodedImageRoundTripProducesIdenticalOutput(t *testing.T) {
	src := `
		fn fib(n: int): int {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		var a: array<int> = [1, 2, 3];
		print fib(10);
		print a[2::-1];
	`

	direct := New()
	directLines := captureOutput(direct)
	require.NoError(t, direct.RunSource(src))

	toks := lexer.New(src).Scan()
	program := parser.FromTokens(toks).ParseProgram()
	bc, err := compiler.Compile(program)
	require.NoError(t, err)
	image, err := bc.Encode()
	require.NoError(t, err)

	fromImage := New()
	fromImageLines := captureOutput(fromImage)
	require.NoError(t, fromImage.RunImage(image))

	assert.Equal(t, *directLines, *fromImageLines)
}

func TestNegativeStepSliceWithBlankSecondReversesTheWholeArray(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [1, 2, 3];
		print arr[2::-1];
	`)
	require.NoError(t, err)
	require.Len(t, *lines, 1)
	assert.Equal(t, "[3, 2, 1]", (*lines)[0])
}

func TestNativePushRequiresReassignment(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [1];
		arr.push(2);
		print arr;
		arr = arr.push(3);
		print arr;
	`)
	require.NoError(t, err)
	require.Len(t, *lines, 2)
	assert.Equal(t, "[1]", (*lines)[0], "a bare call doesn't mutate the caller's binding")
	assert.Equal(t, "[1, 3]", (*lines)[1], "reassigning the call's result keeps the change")
}

func TestNativeLengthAndClear(t *testing.T) {
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var arr: array<int> = [1, 2, 3];
		print arr.length();
		arr = arr.clear();
		print arr.length();
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "0"}, *lines)
}

func TestAndOrFullyEvaluateBothOperands(t *testing.T) {
	// Both branches of an AND/OR must run even once the result is already
	// decided, since this bytecode shape has no short-circuit jump between
	// the two operand expressions.
	in := New()
	lines := captureOutput(in)
	err := in.RunSource(`
		var calls: int = 0;
		fn sideEffect(): bool {
			calls += 1;
			return true;
		}
		var a: bool = false && sideEffect();
		var b: bool = true || sideEffect();
		print calls;
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, *lines)
}

func TestUndeclaredVariableIsFrameErrorNotFatal(t *testing.T) {
	// A frameError unwinds only the frame it occurred in (here, the
	// top-level script is itself one frame) and is reported through the
	// error callback without RunSource returning a Go error — unlike a
	// fatalError (assert failure, stack overflow), which always does.
	var reported []string
	in := New()
	in.SetError(func(e error) { reported = append(reported, e.Error()) })
	err := in.RunSource(`print missingVariable;`)
	require.NoError(t, err)
	require.NotEmpty(t, reported)
	assert.True(t, strings.Contains(reported[len(reported)-1], "undeclared"))
}

func TestFrameErrorInAFunctionLeavesNoReturnValueForTheCaller(t *testing.T) {
	// boom's own frame unwinds on the undeclared-variable frameError
	// before FN_RETURN ever runs, so the call contributes zero values to
	// the caller's stack (spec.md: "the child interpreter's top-of-stack
	// values become the caller's push results") — calling it bare, where
	// the compiler always emits exactly one POP_STACK afterward, then
	// underflows the stack, which is itself a fatalError.
	in := New()
	err := in.RunSource(`
		fn boom(): int {
			return missingVariable;
		}
		boom();
	`)
	require.Error(t, err)
}

func TestAssertFailureIsFatal(t *testing.T) {
	in := New()
	err := in.RunSource(`assert 1 == 2, "nope";`)
	require.Error(t, err)
}
