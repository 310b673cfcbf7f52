package interp

import (
	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/value"
)

type arithOp int

const (
	arithAdd arithOp = iota
	arithSub
	arithMul
	arithDiv
	arithMod
)

// binaryArith implements ADDITION/SUBTRACTION/MULTIPLICATION/DIVISION/
// MODULO (spec.md §4.6): mixed int/float promotes to float, strings
// concatenate only on '+', division by zero and modulo-on-float are
// reported as frame errors rather than crashing the whole run.
func (in *Interpreter) binaryArith(lhs, rhs value.Value, op arithOp) value.Value {
	if op == arithAdd && lhs.Kind == value.KindString && rhs.Kind == value.KindString {
		out, err := value.NewString(lhs.Str() + rhs.Str())
		if err != nil {
			in.fail(err.Error())
			return value.Null
		}
		return out
	}
	if !lhs.Kind.IsNumeric() || !rhs.Kind.IsNumeric() {
		in.fail("operands must be numeric, got %s and %s", lhs.Kind, rhs.Kind)
		return value.Null
	}
	if lhs.Kind == value.KindFloat || rhs.Kind == value.KindFloat {
		a, b := lhs.AsFloat(), rhs.AsFloat()
		switch op {
		case arithAdd:
			return value.NewFloat(a + b)
		case arithSub:
			return value.NewFloat(a - b)
		case arithMul:
			return value.NewFloat(a * b)
		case arithDiv:
			if b == 0 {
				in.fail("division by zero")
				return value.Null
			}
			return value.NewFloat(a / b)
		case arithMod:
			in.fail("modulo is not supported on float operands")
			return value.Null
		}
	}
	a, b := lhs.Int(), rhs.Int()
	switch op {
	case arithAdd:
		return value.NewInt(a + b)
	case arithSub:
		return value.NewInt(a - b)
	case arithMul:
		return value.NewInt(a * b)
	case arithDiv:
		if b == 0 {
			in.fail("division by zero")
			return value.Null
		}
		return value.NewInt(a / b)
	case arithMod:
		if b == 0 {
			in.fail("division by zero")
			return value.Null
		}
		return value.NewInt(a % b)
	}
	return value.Null
}

// arith maps an INDEX_ASSIGN qualifier byte onto binaryArith, for compound
// indexed assignment ("a[i] += v").
func (in *Interpreter) arith(lhs, rhs value.Value, qualifier byte) value.Value {
	switch qualifier {
	case compiler.IndexAssignAdd:
		return in.binaryArith(lhs, rhs, arithAdd)
	case compiler.IndexAssignSub:
		return in.binaryArith(lhs, rhs, arithSub)
	case compiler.IndexAssignMul:
		return in.binaryArith(lhs, rhs, arithMul)
	case compiler.IndexAssignDiv:
		return in.binaryArith(lhs, rhs, arithDiv)
	case compiler.IndexAssignMod:
		return in.binaryArith(lhs, rhs, arithMod)
	default:
		return rhs
	}
}

// compare implements the six comparison opcodes. Equality allows
// cross-type numeric promotion and falls back to Value.Equal for
// non-numeric kinds; ordering requires both operands to be numeric.
func (in *Interpreter) compare(lhs, rhs value.Value, op compiler.Opcode) value.Value {
	if op == compiler.OP_COMPARE_EQUAL || op == compiler.OP_NOT_EQUAL {
		eq := valuesEqual(lhs, rhs)
		if op == compiler.OP_NOT_EQUAL {
			eq = !eq
		}
		return value.NewBool(eq)
	}
	if !lhs.Kind.IsNumeric() || !rhs.Kind.IsNumeric() {
		in.fail("ordering comparison requires numeric operands, got %s and %s", lhs.Kind, rhs.Kind)
		return value.Null
	}
	a, b := lhs.AsFloat(), rhs.AsFloat()
	switch op {
	case compiler.OP_LESS:
		return value.NewBool(a < b)
	case compiler.OP_LESS_EQUAL:
		return value.NewBool(a <= b)
	case compiler.OP_GREATER:
		return value.NewBool(a > b)
	case compiler.OP_GREATER_EQUAL:
		return value.NewBool(a >= b)
	}
	return value.Null
}

func valuesEqual(lhs, rhs value.Value) bool {
	if lhs.Kind.IsNumeric() && rhs.Kind.IsNumeric() {
		return lhs.AsFloat() == rhs.AsFloat()
	}
	if lhs.Kind != rhs.Kind {
		return false
	}
	return lhs.Equal(rhs)
}
