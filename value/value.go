// Package value implements the runtime value system shared by the parser,
// compiler and interpreter (spec.md §3): the tagged Value union, the
// reference-counted string type it wraps for String/Identifier variants,
// and the Array/Dictionary container types that compound values own.
package value

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xvr-lang/xvr/refstring"
)

// Value is a tagged union of every runtime value variant Xvr supports. It
// is deliberately a flat struct rather than an interface hierarchy: the
// reference implementation is a C tagged union with manual free, and
// spec.md §9 asks that the discriminant stay explicit so serializers can
// enumerate variants exhaustively. Container- and string-like payloads are
// carried by pointer/handle so that Value itself stays small and its copy
// semantics (spec.md §3 invariant 1) can be implemented explicitly in Copy.
type Value struct {
	Kind Kind

	i   int32
	f   float32
	b   bool
	str refstring.RefString
	// hash caches an Identifier's precomputed hash (spec.md §3 "Identifier").
	hash uint32

	arr    *ValueArray
	dict   *ValueDictionary
	fn     *Function
	native NativeFn
	hook   NativeHook
	typ    *Type
	opaque *Opaque
}

// Null is the zero Value, the default for uninitialized bindings.
var Null = Value{Kind: KindNull}

// Any is the wildcard value used by type checks.
var Any = Value{Kind: KindAny}

// IndexBlank is the placeholder pushed for an omitted slice component
// (`a[:3]`, `a[::2]`, spec.md §3).
var IndexBlank = Value{Kind: KindIndexBlank}

// RestArg marks the variadic tail of a function parameter list.
var RestArg = Value{Kind: KindRestArg}

func NewBool(b bool) Value { return Value{Kind: KindBoolean, b: b} }
func NewInt(i int32) Value { return Value{Kind: KindInteger, i: i} }
func NewFloat(f float32) Value { return Value{Kind: KindFloat, f: f} }

// NewString builds a String value from s, enforcing refstring.MaxLength.
func NewString(s string) (Value, error) {
	rs, err := refstring.New(s)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindString, str: rs}, nil
}

// NewIdentifier builds an Identifier value, caching its FNV-1a hash so
// dictionary lookups and scope bindings don't recompute it.
func NewIdentifier(s string) (Value, error) {
	rs, err := refstring.New(s)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindIdentifier, str: rs, hash: rs.FNV1a()}, nil
}

func NewArray(arr *ValueArray) Value           { return Value{Kind: KindArray, arr: arr} }
func NewIntermediateArray(arr *ValueArray) Value {
	return Value{Kind: KindIntermediateArray, arr: arr}
}
func NewDictionary(d *ValueDictionary) Value { return Value{Kind: KindDictionary, dict: d} }
func NewIntermediateDictionary(d *ValueDictionary) Value {
	return Value{Kind: KindIntermediateDictionary, dict: d}
}
func NewFunction(fn *Function) Value { return Value{Kind: KindFunction, fn: fn} }
func NewIntermediateFunction(fn *Function) Value {
	return Value{Kind: KindIntermediateFunction, fn: fn}
}
func NewNativeFn(fn NativeFn) Value   { return Value{Kind: KindFunctionNative, native: fn} }
func NewNativeHook(h NativeHook) Value { return Value{Kind: KindFunctionHook, hook: h} }
func NewType(t *Type) Value            { return Value{Kind: KindType, typ: t} }
func NewIntermediateType(t *Type) Value { return Value{Kind: KindIntermediateType, typ: t} }
func NewOpaque(o *Opaque) Value         { return Value{Kind: KindOpaque, opaque: o} }

func (v Value) IsNull() bool { return v.Kind == KindNull }
func (v Value) Int() int32   { return v.i }
func (v Value) Float() float32 { return v.f }
func (v Value) Bool() bool   { return v.b }

// AsFloat returns the numeric payload as a float32 regardless of whether
// the Value is Integer or Float, for use by arithmetic promotion.
func (v Value) AsFloat() float32 {
	if v.Kind == KindInteger {
		return float32(v.i)
	}
	return v.f
}

func (v Value) RefString() refstring.RefString { return v.str }
func (v Value) Str() string                    { return v.str.String() }
func (v Value) Hash() uint32                   { return v.hash }
func (v Value) Array() *ValueArray             { return v.arr }
func (v Value) Dictionary() *ValueDictionary   { return v.dict }
func (v Value) Function() *Function            { return v.fn }
func (v Value) NativeFn() NativeFn             { return v.native }
func (v Value) NativeHook() NativeHook         { return v.hook }
func (v Value) Type() *Type                    { return v.typ }
func (v Value) Opaque() *Opaque                { return v.opaque }

// IsHashable reports whether v may be used as a ValueDictionary key.
func (v Value) IsHashable() bool { return v.Kind.IsHashable() }

// Truthy implements Xvr's truthiness rule: null and false are falsy,
// everything else (including 0 and "") is truthy. This mirrors the
// teacher's tree-walk `isTrue` but is pinned down as an explicit rule here
// because the bytecode interpreter needs it for ASSERT/IF_FALSE_JUMP.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	default:
		return true
	}
}

// Copy performs the deep-copy-or-refcount-increment required by spec.md §3
// invariant 1: containers are deep copied, strings/identifiers share their
// backing buffer via an atomic refcount bump.
func (v Value) Copy() Value {
	switch v.Kind {
	case KindString, KindIdentifier:
		cp := v
		cp.str = v.str.Share()
		return cp
	case KindArray, KindIntermediateArray:
		cp := v
		cp.arr = v.arr.Copy()
		return cp
	case KindDictionary, KindIntermediateDictionary:
		cp := v
		cp.dict = v.dict.Copy()
		return cp
	case KindType, KindIntermediateType:
		cp := v
		cp.typ = v.typ.Copy()
		return cp
	default:
		return v
	}
}

// Release drops the Value's hold on any shared resource it owns: strings
// decrement their refcount, containers release their elements in turn.
func (v Value) Release() {
	switch v.Kind {
	case KindString, KindIdentifier:
		v.str.Release()
	case KindArray, KindIntermediateArray:
		if v.arr != nil {
			v.arr.Release()
		}
	case KindDictionary, KindIntermediateDictionary:
		if v.dict != nil {
			v.dict.Release()
		}
	}
}

// Equal compares two values for the dictionary-key / "==" notion of
// equality: same Kind, same payload. Numeric cross-Kind comparison (int vs
// float) is handled by the interpreter's COMPARE_EQUAL opcode, not here,
// since plain Equal backs hashable-key lookups where Xvr keeps Integer and
// Float distinct keys.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull, KindAny, KindIndexBlank, KindRestArg:
		return true
	case KindBoolean:
		return v.b == other.b
	case KindInteger:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString, KindIdentifier:
		return v.str.Equal(other.str)
	case KindOpaque:
		return v.opaque == other.opaque
	default:
		return false
	}
}

// TypeOf derives the runtime Type descriptor for a Value (used by the
// TYPE_OF opcode when the operand isn't a bound identifier with a
// declared type).
func (v Value) TypeOf() Type {
	t := Type{TypeOf: v.Kind}
	switch v.Kind {
	case KindArray, KindIntermediateArray:
		t.Subtypes = []Type{{TypeOf: KindAny}}
	case KindDictionary, KindIntermediateDictionary:
		t.Subtypes = []Type{{TypeOf: KindAny}, {TypeOf: KindAny}}
	}
	return t
}

// PrettyPrint renders v the way PRINT and string-casts do: no trailing
// newline, floats formatted with up to 6 significant digits ("%g"),
// strings unquoted, null as the literal "null".
func (v Value) PrettyPrint() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(int64(v.i), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.f), 'g', 6, 32)
	case KindString, KindIdentifier:
		return v.str.String()
	case KindArray, KindIntermediateArray:
		return v.arr.PrettyPrint()
	case KindDictionary, KindIntermediateDictionary:
		return v.dict.PrettyPrint()
	case KindFunction, KindIntermediateFunction:
		return "<function>"
	case KindFunctionNative:
		return "<native function>"
	case KindFunctionHook:
		return "<native hook>"
	case KindType, KindIntermediateType:
		return v.typ.PrettyPrint()
	case KindOpaque:
		return fmt.Sprintf("<opaque tag=%d>", v.opaque.Tag)
	case KindAny:
		return "any"
	case KindIndexBlank:
		return ""
	case KindRestArg:
		return "..."
	default:
		return "<unknown>"
	}
}

// ToBool implements the `astype bool` cast: truthiness per the Truthy
// rule.
func (v Value) ToBool() Value {
	return NewBool(v.Truthy())
}

// ToInt implements the `astype int` cast: from bool (0/1), from float
// (truncation), from string (numeric parse; a string that does not parse
// returns an error).
func (v Value) ToInt() (Value, error) {
	switch v.Kind {
	case KindInteger:
		return v, nil
	case KindFloat:
		return NewInt(int32(v.f)), nil
	case KindBoolean:
		if v.b {
			return NewInt(1), nil
		}
		return NewInt(0), nil
	case KindString:
		n, err := strconv.ParseInt(v.str.String(), 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("cannot cast %q to int", v.str.String())
		}
		return NewInt(int32(n)), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %s to int", v.Kind)
	}
}

// ToFloat implements the `astype float` cast, symmetric with ToInt.
func (v Value) ToFloat() (Value, error) {
	switch v.Kind {
	case KindFloat:
		return v, nil
	case KindInteger:
		return NewFloat(float32(v.i)), nil
	case KindBoolean:
		if v.b {
			return NewFloat(1), nil
		}
		return NewFloat(0), nil
	case KindString:
		n, err := strconv.ParseFloat(v.str.String(), 32)
		if err != nil {
			return Value{}, fmt.Errorf("cannot cast %q to float", v.str.String())
		}
		return NewFloat(float32(n)), nil
	default:
		return Value{}, fmt.Errorf("cannot cast %s to float", v.Kind)
	}
}

// ToStringValue implements the `astype string` cast (spec.md §4.6's "via
// print-to-buffer").
func (v Value) ToStringValue() (Value, error) {
	return NewString(v.PrettyPrint())
}

// IsNaNOrInf reports whether a float Value holds a non-finite payload, used
// to reject malformed numeric literals during compilation.
func (v Value) IsNaNOrInf() bool {
	return v.Kind == KindFloat && (math.IsNaN(float64(v.f)) || math.IsInf(float64(v.f), 0))
}
