package unused

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvr-lang/xvr/parser"
)

func checkSource(t *testing.T, src string) []Warning {
	t.Helper()
	program := parser.New(src).ParseProgram()
	return Check(program)
}

func TestUnusedVariableReported(t *testing.T) {
	warnings := checkSource(t, `var x = 1;`)
	require.Len(t, warnings, 1)
	assert.Equal(t, "x", warnings[0].Name)
	assert.False(t, warnings[0].IsFunction)
}

func TestUsedVariableNotReported(t *testing.T) {
	warnings := checkSource(t, `var x = 1; print x;`)
	assert.Empty(t, warnings)
}

func TestUnusedFunctionReported(t *testing.T) {
	warnings := checkSource(t, `fn f() { pass; }`)
	require.Len(t, warnings, 1)
	assert.Equal(t, "f", warnings[0].Name)
	assert.True(t, warnings[0].IsFunction)
}

func TestCalledFunctionNotReported(t *testing.T) {
	warnings := checkSource(t, `fn f() { pass; } f();`)
	assert.Empty(t, warnings)
}

func TestInnerScopeShadowsOuterWithoutMarkingOuterUsed(t *testing.T) {
	warnings := checkSource(t, `
		var x = 1;
		{
			var x = 2;
			print x;
		}
	`)
	require.Len(t, warnings, 1)
	assert.Equal(t, "x", warnings[0].Name)
}

func TestReferenceInNestedScopeMarksOuterUsed(t *testing.T) {
	warnings := checkSource(t, `
		var x = 1;
		{
			print x;
		}
	`)
	assert.Empty(t, warnings)
}

func TestFunctionParametersNeverReported(t *testing.T) {
	warnings := checkSource(t, `fn f(a, b) { pass; } f(1, 2);`)
	assert.Empty(t, warnings)
}

func TestForeachBindingsNeverReported(t *testing.T) {
	warnings := checkSource(t, `var d = [:]; foreach (k, v in d) { pass; }`)
	assert.Empty(t, warnings)
}

func TestAssignmentAloneDoesNotCountAsUse(t *testing.T) {
	warnings := checkSource(t, `var x = 1; x = 2;`)
	require.Len(t, warnings, 1)
	assert.Equal(t, "x", warnings[0].Name)
}

func TestUnusedInsideIfBranchReported(t *testing.T) {
	warnings := checkSource(t, `if (true) { var y = 1; }`)
	require.Len(t, warnings, 1)
	assert.Equal(t, "y", warnings[0].Name)
}
