package value

// Kind is the discriminant of a Value's tagged union (spec.md §3). Keeping
// it as an explicit, enumerable byte (rather than hiding the variant behind
// an interface) lets pretty-printers, the compiler's literal-pool encoder,
// and the interpreter's opcode handlers all switch on the same tag.
type Kind byte

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindArray
	KindDictionary
	KindFunction
	KindFunctionNative
	KindFunctionHook
	KindIdentifier
	KindType
	KindOpaque
	KindAny
	KindIndexBlank
	KindRestArg

	// Intermediate variants exist only inside the compiler, standing in for
	// a structure whose final layout isn't resolved until image collation
	// (spec.md §9 "Intermediate literal-pool variants").
	KindIntermediateArray
	KindIntermediateDictionary
	KindIntermediateType
	KindIntermediateFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "bool"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindFunction:
		return "function"
	case KindFunctionNative:
		return "native-function"
	case KindFunctionHook:
		return "native-hook"
	case KindIdentifier:
		return "identifier"
	case KindType:
		return "type"
	case KindOpaque:
		return "opaque"
	case KindAny:
		return "any"
	case KindIndexBlank:
		return "index-blank"
	case KindRestArg:
		return "rest-arg"
	case KindIntermediateArray:
		return "intermediate-array"
	case KindIntermediateDictionary:
		return "intermediate-dictionary"
	case KindIntermediateType:
		return "intermediate-type"
	case KindIntermediateFunction:
		return "intermediate-function"
	default:
		return "unknown"
	}
}

// IsHashable reports whether a Value of this Kind may be used as a
// ValueDictionary key (spec.md §3 invariant 2, §4 "ValueArray /
// ValueDictionary").
func (k Kind) IsHashable() bool {
	switch k {
	case KindNull, KindBoolean, KindInteger, KindFloat, KindString, KindIdentifier:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether a Value of this Kind participates in numeric
// promotion (Integer/Float mixing, spec.md §4.6).
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}
