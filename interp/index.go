package interp

import (
	"github.com/xvr-lang/xvr/compiler"
	"github.com/xvr-lang/xvr/value"
)

// execIndex implements the read-only INDEX opcode (spec.md §4.6 "Indexing
// semantics"). compound, first, second and third have already been resolved
// off the stack by the caller.
func (in *Interpreter) execIndex(compound, first, second, third value.Value) {
	switch compound.Kind {
	case value.KindDictionary:
		if first.Kind == value.KindIndexBlank {
			in.fail("dictionary access requires a key")
			return
		}
		v, ok := compound.Dictionary().Get(first)
		if !ok {
			in.fail("key %s not found in dictionary", first.PrettyPrint())
			return
		}
		in.push(v.Copy())

	case value.KindArray:
		in.execArrayIndex(compound.Array().Len(), first, second, third, func(f, s, t int32) {
			if first.Kind != value.KindIndexBlank && second.Kind == value.KindIndexBlank && third.Kind == value.KindIndexBlank {
				v, ok := compound.Array().Get(int(f))
				if !ok {
					in.fail("array index %d out of range", f)
					return
				}
				in.push(v.Copy())
				return
			}
			sliced := compound.Array().Slice(int(f), int(s), int(t))
			in.push(value.NewArray(sliced))
		})

	case value.KindString:
		runes := []byte(compound.Str())
		in.execArrayIndex(int32(len(runes)), first, second, third, func(f, s, t int32) {
			if first.Kind != value.KindIndexBlank && second.Kind == value.KindIndexBlank && third.Kind == value.KindIndexBlank {
				if f < 0 || int(f) >= len(runes) {
					in.fail("string index %d out of range", f)
					return
				}
				sv, err := value.NewString(string(runes[f]))
				if err != nil {
					in.fail(err.Error())
					return
				}
				in.push(sv)
				return
			}
			out := sliceBytes(runes, int(f), int(s), int(t))
			sv, err := value.NewString(string(out))
			if err != nil {
				in.fail(err.Error())
				return
			}
			in.push(sv)
		})

	default:
		in.fail("cannot index a %s value", compound.Kind)
	}
}

// execArrayIndex resolves first/second/third against a collection of the
// given length per spec.md's default rules and invokes do with the resolved
// triple. It rejects a zero step and a negative single index itself;
// out-of-range single-index access is reported by the caller's do.
func (in *Interpreter) execArrayIndex(length int32, first, second, third value.Value, do func(f, s, t int32)) {
	f := int32(0)
	if first.Kind != value.KindIndexBlank {
		f = first.Int()
	}
	s := length
	if second.Kind != value.KindIndexBlank {
		s = second.Int()
	} else if third.Kind == value.KindIndexBlank {
		if first.Kind == value.KindIndexBlank {
			// bare "a[:]" with every component blank: full-range copy.
			s = length
		} else {
			// "a[i]": single-element access, not a slice; s is unused by
			// do in this branch but still computed for completeness.
			s = f
		}
	} else if third.Int() < 0 {
		// second omitted with an explicit negative step defaults to
		// one-before-the-start rather than length, so "a[length-1::-1]"
		// walks all the way down to index 0 inclusive (spec.md §8
		// "a[length-1::-1] equals a reversed").
		s = -1
	}
	t := int32(1)
	if third.Kind != value.KindIndexBlank {
		t = third.Int()
		if t == 0 {
			in.fail("slice step cannot be zero")
			return
		}
	}
	if second.Kind == value.KindIndexBlank && third.Kind == value.KindIndexBlank && f < 0 {
		in.fail("negative index %d is not allowed here", f)
		return
	}
	do(f, s, t)
}

func sliceBytes(b []byte, first, second, third int) []byte {
	var out []byte
	if third > 0 {
		for i := first; i < second; i += third {
			if i < 0 || i >= len(b) {
				continue
			}
			out = append(out, b[i])
		}
	} else if third < 0 {
		for i := first; i > second; i += third {
			if i < 0 || i >= len(b) {
				continue
			}
			out = append(out, b[i])
		}
	}
	return out
}

// execIndexAssign implements INDEX_ASSIGN: container is the live value
// fetched by INDEX_ASSIGN_INTERMEDIATE via scope.Peek, so Array/Dictionary
// mutation below lands directly on the binding the script sees.
func (in *Interpreter) execIndexAssign(container, first, second, third, rhs value.Value, qualifier byte) {
	switch container.Kind {
	case value.KindDictionary:
		if first.Kind == value.KindIndexBlank {
			in.fail("dictionary assignment requires a key")
			return
		}
		newVal := rhs
		if qualifier != compiler.IndexAssignPlain {
			old, ok := container.Dictionary().Get(first)
			if !ok {
				in.fail("key %s not found in dictionary", first.PrettyPrint())
				return
			}
			newVal = in.arith(old, rhs, qualifier)
		}
		if err := container.Dictionary().Set(first.Copy(), newVal.Copy()); err != nil {
			in.fail(err.Error())
		}

	case value.KindArray:
		arr := container.Array()
		f := int32(0)
		if first.Kind != value.KindIndexBlank {
			f = first.Int()
		}
		if second.Kind == value.KindIndexBlank {
			// single-element assignment: missing second defaults to first.
			old, ok := arr.Get(int(f))
			newVal := rhs
			if qualifier != compiler.IndexAssignPlain {
				if !ok {
					in.fail("array index %d out of range", f)
					return
				}
				newVal = in.arith(old, rhs, qualifier)
			}
			if !arr.Set(int(f), newVal.Copy()) {
				in.fail("array index %d out of range", f)
			}
			return
		}

		s := second.Int()
		t := int32(1)
		if third.Kind != value.KindIndexBlank {
			t = third.Int()
		}
		if t == 0 {
			in.fail("slice step cannot be zero")
			return
		}
		if qualifier != compiler.IndexAssignPlain {
			in.fail("compound assignment is not supported on a sliced range")
			return
		}
		if rhs.Kind != value.KindArray {
			in.fail("assigning to a sliced range requires an array value")
			return
		}
		positions := stepPositions(f, s, t)
		src := rhs.Array()
		for i, pos := range positions {
			v, ok := src.Get(i)
			if !ok {
				break
			}
			arr.Set(int(pos), v.Copy())
		}

	default:
		in.fail("cannot assign into a %s value", container.Kind)
	}
}

func stepPositions(first, second, third int32) []int32 {
	var out []int32
	if third > 0 {
		for i := first; i < second; i += third {
			out = append(out, i)
		}
	} else if third < 0 {
		for i := first; i > second; i += third {
			out = append(out, i)
		}
	}
	return out
}
