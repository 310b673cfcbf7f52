package interp

import "github.com/xvr-lang/xvr/value"

// valueStack is the interpreter's single value stack (spec.md §4.6
// "Execution model"), adapted from the teacher's Stack []any into a typed
// value.Value slice.
type valueStack struct {
	items []value.Value
}

func newValueStack() *valueStack {
	return &valueStack{items: make([]value.Value, 0, 64)}
}

func (s *valueStack) IsEmpty() bool { return len(s.items) == 0 }

func (s *valueStack) Push(v value.Value) { s.items = append(s.items, v) }

func (s *valueStack) Pop() (value.Value, bool) {
	if len(s.items) == 0 {
		return value.Value{}, false
	}
	idx := len(s.items) - 1
	v := s.items[idx]
	s.items = s.items[:idx]
	return v, true
}

func (s *valueStack) Peek() (value.Value, bool) {
	if len(s.items) == 0 {
		return value.Value{}, false
	}
	return s.items[len(s.items)-1], true
}

func (s *valueStack) Len() int { return len(s.items) }

// Drop discards every value down to floor, releasing each one.
func (s *valueStack) Drop(floor int) {
	for len(s.items) > floor {
		v, _ := s.Pop()
		v.Release()
	}
}
