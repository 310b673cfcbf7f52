package interp

import "github.com/xvr-lang/xvr/value"

// castTo implements the TYPE_CAST opcode's supported conversions (spec.md
// §4.6): to bool via truthiness, to int/float via the numeric parse rules
// value.Value already implements, to string via pretty-print.
func castTo(v value.Value, target value.Kind) (value.Value, error) {
	switch target {
	case value.KindBoolean:
		return v.ToBool(), nil
	case value.KindInteger:
		return v.ToInt()
	case value.KindFloat:
		return v.ToFloat()
	case value.KindString:
		return v.ToStringValue()
	default:
		return value.Value{}, castError(target)
	}
}

func castError(target value.Kind) error {
	return &unsupportedCastError{target}
}

type unsupportedCastError struct{ target value.Kind }

func (e *unsupportedCastError) Error() string {
	return "unsupported cast target " + e.target.String()
}
