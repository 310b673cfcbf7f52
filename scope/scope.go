// Package scope implements the lexical environment chain the interpreter
// runs against (spec.md §4.4): a linked list of binding tables — each
// binding holding a variable's value, declared type and const flag — with
// a reference count
// that lets function values share a scope chain as a closure without
// the interpreter needing to know who else is holding it.
package scope

import (
	"fmt"

	"github.com/xvr-lang/xvr/value"
)

// binding pairs a variable's current value with whether it was declared
// const, so Set can reject writes to it.
type binding struct {
	val   value.Value
	typ   value.Type
	konst bool
}

// Scope is one frame of the lexical environment, chained to an optional
// parent ("ancestor" in spec.md's terms). Declarations land only in the
// innermost scope; lookups walk the ancestor chain.
type Scope struct {
	variables map[string]binding
	parent    *Scope
	refs      int32
}

// New creates a fresh scope linked to parent (nil for the root scope).
func New(parent *Scope) *Scope {
	return &Scope{variables: make(map[string]binding), parent: parent, refs: 1}
}

// Pop decrements s's reference count and returns its parent. The scope
// itself is only actually discarded once nothing (no closure, no caller)
// still holds a Copy of it; since Go's GC reclaims the backing map
// regardless, Pop's refcount bookkeeping exists to mirror spec.md's
// contract and to let callers assert a scope isn't leaking references.
func Pop(s *Scope) *Scope {
	if s == nil {
		return nil
	}
	s.refs--
	return s.parent
}

// Copy is the shallow, chain-sharing copy used when a function value
// captures its lexical scope: it shares the same underlying frame and
// bumps its reference count rather than cloning bindings.
func Copy(s *Scope) *Scope {
	if s == nil {
		return nil
	}
	s.refs++
	return s
}

// RefCount reports s's current reference count.
func (s *Scope) RefCount() int32 { return s.refs }

// Parent returns s's ancestor scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare inserts a new binding for name in s (never in an ancestor). It
// returns false if name is already declared in this exact scope —
// shadowing an outer scope's binding is allowed, redeclaring in the same
// scope is not.
func (s *Scope) Declare(name string, v value.Value, typ value.Type, konst bool) bool {
	if _, exists := s.variables[name]; exists {
		return false
	}
	s.variables[name] = binding{val: v, typ: typ, konst: konst}
	return true
}

// IsDeclared reports whether name is bound anywhere in s's ancestor
// chain.
func (s *Scope) IsDeclared(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.variables[name]; ok {
			return true
		}
	}
	return false
}

func (s *Scope) find(name string) (*Scope, binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.variables[name]; ok {
			return cur, b, true
		}
	}
	return nil, binding{}, false
}

// Set walks the ancestor chain for name and updates its bound value. It
// returns an error if name is undeclared, if owner is const, or if v's
// Kind isn't compatible with the declared type (Integer widening to a
// Float-typed binding is allowed, matching VAR_DECL's own promotion
// rule).
func (s *Scope) Set(name string, v value.Value) error {
	owner, b, ok := s.find(name)
	if !ok {
		return fmt.Errorf("undeclared variable %q", name)
	}
	if b.konst {
		return fmt.Errorf("cannot assign to const %q", name)
	}
	if b.typ.TypeOf == value.KindFloat && v.Kind == value.KindInteger {
		promoted, err := v.ToFloat()
		if err != nil {
			return err
		}
		v = promoted
	}
	if !b.typ.Accepts(v.Kind) {
		return fmt.Errorf("cannot assign %s to %q declared as %s", v.Kind, name, b.typ.PrettyPrint())
	}
	old := owner.variables[name]
	old.val.Release()
	owner.variables[name] = binding{val: v, typ: b.typ, konst: b.konst}
	return nil
}

// Get returns a copy of name's bound value, searching the ancestor
// chain.
func (s *Scope) Get(name string) (value.Value, bool) {
	_, b, ok := s.find(name)
	if !ok {
		return value.Value{}, false
	}
	return b.val.Copy(), true
}

// Peek returns name's bound value without the defensive deep-copy Get
// performs on containers, so a caller can mutate the array/dictionary a
// binding actually owns (index-assignment, the `_push`/`_set` natives).
// The declared type and const flag are never exposed through this path;
// callers needing those still go through Set.
func (s *Scope) Peek(name string) (value.Value, bool) {
	_, b, ok := s.find(name)
	if !ok {
		return value.Value{}, false
	}
	return b.val, true
}

// GetType returns name's declared type descriptor.
func (s *Scope) GetType(name string) (value.Type, bool) {
	_, b, ok := s.find(name)
	if !ok {
		return value.Type{}, false
	}
	return b.typ, true
}

// Release drops every binding this scope directly owns. Ancestors are
// untouched; callers walk the chain with Pop to release each frame.
func (s *Scope) Release() {
	if s == nil {
		return
	}
	for _, b := range s.variables {
		b.val.Release()
	}
	s.variables = nil
}
