package interp

import (
	"fmt"

	"github.com/xvr-lang/xvr/value"
)

// installBuiltinNatives registers the fixed set of natives spec.md §6 says
// are "automatically installed at reset": _set, _get, _push, _pop,
// _length, _clear. Each is reachable from script only through dot-call
// syntax ("a.push(v)"), which the compiler desugars to a plain call with
// the receiver appended as the LAST argument — not the first, as spec.md's
// prose literally says, since dot-call is the only realistic path to a
// native under this grammar.
//
// Every argument, including the receiver, arrives already resolved to a
// value (Scope.Get's deep copy runs at OP_LITERAL_RAW time, before the
// call even happens): there is no raw-identifier passthrough in this
// calling convention, so a native cannot reach back into the caller's
// binding to mutate it in place. These natives mutate the copy they were
// handed and return it, so the idiom a script uses to keep the result is
// reassignment ("a = a.push(v)"), not a bare statement call.
func (in *Interpreter) installBuiltinNatives() {
	in.natives["_set"] = nativeSet
	in.natives["_get"] = nativeGet
	in.natives["_push"] = nativePush
	in.natives["_pop"] = nativePop
	in.natives["_length"] = nativeLength
	in.natives["_clear"] = nativeClear
}

func receiverOf(args *value.ValueArray) (value.Value, bool) {
	return args.Get(args.Len() - 1)
}

// nativeSet implements `compound.set(key, v)`: args are (key, v, receiver).
func nativeSet(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 3 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	key, _ := args.Get(0)
	val, _ := args.Get(1)
	switch container.Kind {
	case value.KindArray:
		if key.Kind != value.KindInteger {
			return 0, fmt.Errorf("_set on an array requires an integer index")
		}
		if !container.Array().Set(int(key.Int()), val.Copy()) {
			return 0, fmt.Errorf("negative array index")
		}
	case value.KindDictionary:
		if err := container.Dictionary().Set(key.Copy(), val.Copy()); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("_set target must be an array or dictionary, got %s", container.Kind)
	}
	host.Push(container)
	return 1, nil
}

// nativeGet implements `compound.get(key)`: args are (key, receiver).
func nativeGet(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 2 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	key, _ := args.Get(0)
	switch container.Kind {
	case value.KindArray:
		if key.Kind != value.KindInteger {
			return 0, fmt.Errorf("_get on an array requires an integer index")
		}
		v, ok := container.Array().Get(int(key.Int()))
		if !ok {
			host.Push(value.Null)
		} else {
			host.Push(v.Copy())
		}
	case value.KindDictionary:
		v, ok := container.Dictionary().Get(key)
		if !ok {
			host.Push(value.Null)
		} else {
			host.Push(v.Copy())
		}
	default:
		return 0, fmt.Errorf("_get target must be an array or dictionary, got %s", container.Kind)
	}
	return 1, nil
}

// nativePush implements `arr.push(v)`: args are (v, receiver). Returns the
// mutated array so "a = a.push(v)" keeps the change.
func nativePush(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 2 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	if container.Kind != value.KindArray {
		return 0, fmt.Errorf("_push target must be an array, got %s", container.Kind)
	}
	v, _ := args.Get(0)
	container.Array().Push(v.Copy())
	host.Push(container)
	return 1, nil
}

// nativePop implements `arr.pop()`: args are (receiver). Returns the
// popped element.
func nativePop(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 1 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	if container.Kind != value.KindArray {
		return 0, fmt.Errorf("_pop target must be an array, got %s", container.Kind)
	}
	v, ok := container.Array().Pop()
	if !ok {
		host.Push(value.Null)
	} else {
		host.Push(v)
	}
	return 1, nil
}

// nativeLength implements `compound.length()`: args are (receiver). Works
// on arrays, dictionaries, and strings.
func nativeLength(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 1 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	switch container.Kind {
	case value.KindArray:
		host.Push(value.NewInt(int32(container.Array().Len())))
	case value.KindDictionary:
		host.Push(value.NewInt(int32(container.Dictionary().Count())))
	case value.KindString:
		host.Push(value.NewInt(int32(len(container.Str()))))
	default:
		return 0, fmt.Errorf("_length target must be an array, dictionary, or string, got %s", container.Kind)
	}
	return 1, nil
}

// nativeClear implements `compound.clear()`: args are (receiver). Returns
// the (now empty) container.
func nativeClear(host value.Host, args *value.ValueArray) (int, error) {
	if args.Len() != 1 {
		return -1, nil
	}
	container, _ := receiverOf(args)
	switch container.Kind {
	case value.KindArray:
		container.Array().Clear()
	case value.KindDictionary:
		container.Dictionary().Clear()
	default:
		return 0, fmt.Errorf("_clear target must be an array or dictionary, got %s", container.Kind)
	}
	host.Push(container)
	return 1, nil
}
