package value

import "strings"

// Type is the parametric type descriptor carried by Value variant Type
// (spec.md §3). Array types carry one Subtype (the element type);
// Dictionary types carry two (key type, value type) per spec.md §3
// invariant 3.
type Type struct {
	TypeOf   Kind
	Constant bool
	Subtypes []Type
}

// Copy deep-copies a Type, matching Value.Copy's treatment of compound
// payloads.
func (t *Type) Copy() *Type {
	if t == nil {
		return nil
	}
	cp := &Type{TypeOf: t.TypeOf, Constant: t.Constant}
	if t.Subtypes != nil {
		cp.Subtypes = make([]Type, len(t.Subtypes))
		for i, s := range t.Subtypes {
			sub := s
			cp.Subtypes[i] = *sub.Copy()
		}
	}
	return cp
}

// Equal reports whether two Type descriptors describe the same shape
// (ignoring Constant, which governs assignability rather than identity).
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TypeOf != other.TypeOf || len(t.Subtypes) != len(other.Subtypes) {
		return false
	}
	for i := range t.Subtypes {
		a, b := t.Subtypes[i], t.Subtypes[i]
		_ = a
		if !t.Subtypes[i].Equal(&other.Subtypes[i]) {
			_ = b
			return false
		}
	}
	return true
}

// Accepts reports whether a value of Kind k may be stored in a binding
// declared with this Type. KindAny accepts everything; Integer may widen
// to Float per spec.md §4.6's VAR_DECL promotion rule, handled by the
// caller rather than here since it also needs to convert the payload.
func (t *Type) Accepts(k Kind) bool {
	if t == nil || t.TypeOf == KindAny {
		return true
	}
	return t.TypeOf == k
}

// PrettyPrint renders a Type descriptor the way `typeof` output and error
// messages do, e.g. "array<int>" or "dictionary<string, any>".
func (t *Type) PrettyPrint() string {
	if t == nil {
		return "any"
	}
	switch t.TypeOf {
	case KindArray, KindIntermediateArray:
		if len(t.Subtypes) == 1 {
			return "array<" + t.Subtypes[0].PrettyPrint() + ">"
		}
		return "array"
	case KindDictionary, KindIntermediateDictionary:
		if len(t.Subtypes) == 2 {
			parts := make([]string, 2)
			parts[0] = t.Subtypes[0].PrettyPrint()
			parts[1] = t.Subtypes[1].PrettyPrint()
			return "dictionary<" + strings.Join(parts, ", ") + ">"
		}
		return "dictionary"
	default:
		return t.TypeOf.String()
	}
}
