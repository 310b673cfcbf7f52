package value

import "strings"

// ValueArray is a growable sequence of Value. It doubles as a call's
// argument list and as the backing storage for array values (spec.md §2
// "ValueArray"); the interpreter's value stack is a separate type.
type ValueArray struct {
	items []Value
}

// NewValueArray returns an empty ValueArray ready for use.
func NewValueArray() *ValueArray {
	return &ValueArray{}
}

// NewValueArrayCap returns an empty ValueArray pre-sized for n elements,
// used where the final size is known up front (ARRAY_BUILD, call
// arguments, Copy) to avoid early reallocation.
func NewValueArrayCap(n int) *ValueArray {
	return &ValueArray{items: make([]Value, 0, n)}
}

// Len returns the number of elements.
func (a *ValueArray) Len() int { return len(a.items) }

// Push appends v to the end of the array.
func (a *ValueArray) Push(v Value) { a.items = append(a.items, v) }

// Pop removes and returns the last element.
func (a *ValueArray) Pop() (Value, bool) {
	if len(a.items) == 0 {
		return Value{}, false
	}
	idx := len(a.items) - 1
	v := a.items[idx]
	a.items = a.items[:idx]
	return v, true
}

// Peek returns the last element without removing it.
func (a *ValueArray) Peek() (Value, bool) {
	if len(a.items) == 0 {
		return Value{}, false
	}
	return a.items[len(a.items)-1], true
}

// Get returns the element at i, or false if i is out of bounds.
func (a *ValueArray) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.items) {
		return Value{}, false
	}
	return a.items[i], true
}

// Set overwrites the element at i, growing the array with Null padding if
// necessary. Returns false if i is negative.
func (a *ValueArray) Set(i int, v Value) bool {
	if i < 0 {
		return false
	}
	for i >= len(a.items) {
		a.items = append(a.items, Null)
	}
	a.items[i] = v
	return true
}

// Insert inserts v at position i, shifting later elements up by one.
func (a *ValueArray) Insert(i int, v Value) bool {
	if i < 0 || i > len(a.items) {
		return false
	}
	a.items = append(a.items, Null)
	copy(a.items[i+1:], a.items[i:])
	a.items[i] = v
	return true
}

// RemoveAt deletes the element at i, shifting later elements down by one.
func (a *ValueArray) RemoveAt(i int) (Value, bool) {
	if i < 0 || i >= len(a.items) {
		return Value{}, false
	}
	v := a.items[i]
	a.items = append(a.items[:i], a.items[i+1:]...)
	return v, true
}

// Clear empties the array, releasing every element's shared resources.
func (a *ValueArray) Clear() {
	for _, v := range a.items {
		v.Release()
	}
	a.items = a.items[:0]
}

// Slice returns a new *ValueArray holding [first:second) stepping by
// third, deep-copying the selected elements. Bounds and step validation is
// the interpreter's responsibility (spec.md §4.6 "Indexing semantics");
// this method assumes a well-formed request.
func (a *ValueArray) Slice(first, second, third int) *ValueArray {
	out := NewValueArray()
	if third > 0 {
		for i := first; i < second; i += third {
			if i < 0 || i >= len(a.items) {
				continue
			}
			out.Push(a.items[i].Copy())
		}
	} else if third < 0 {
		for i := first; i > second; i += third {
			if i < 0 || i >= len(a.items) {
				continue
			}
			out.Push(a.items[i].Copy())
		}
	}
	return out
}

// Copy deep-copies the array and every element it holds.
func (a *ValueArray) Copy() *ValueArray {
	if a == nil {
		return nil
	}
	out := NewValueArrayCap(len(a.items))
	for _, v := range a.items {
		out.Push(v.Copy())
	}
	return out
}

// Release drops this array's hold on every element's shared resources.
func (a *ValueArray) Release() {
	if a == nil {
		return
	}
	for _, v := range a.items {
		v.Release()
	}
}

// Items exposes the backing slice for iteration. Callers must not retain
// or mutate it beyond the current operation.
func (a *ValueArray) Items() []Value { return a.items }

// PrettyPrint renders the array the way PRINT does: `[1, 2, 3]`.
func (a *ValueArray) PrettyPrint() string {
	parts := make([]string, len(a.items))
	for i, v := range a.items {
		if v.Kind == KindString || v.Kind == KindIdentifier {
			parts[i] = "\"" + v.PrettyPrint() + "\""
		} else {
			parts[i] = v.PrettyPrint()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
