package value

import (
	"fmt"
	"math"
	"strings"
)

// slotState tracks whether a bucket in ValueDictionary's table is unused,
// holds a live entry, or holds a tombstone left by a deletion. spec.md §3
// describes tombstones as "a null key with non-null value"; we track the
// same three-way state explicitly so probe-chain logic reads directly
// instead of relying on sentinel payloads.
type slotState byte

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

type dictEntry struct {
	key   Value
	val   Value
	state slotState
}

// ValueDictionary is an open-addressing hash table keyed by Value, the
// storage behind dictionary values (spec.md §2, §3). Scope keeps its
// bindings in a Go map, not in a ValueDictionary.
// Linear probing is used with a maximum load factor of 0.75; deletions
// leave a tombstone rather than shift-deleting so that probe chains for
// still-live keys remain intact (spec.md §4 "Dictionary uses linear
// probing ... tombstone marker ... for deletions").
type ValueDictionary struct {
	entries []dictEntry
	count   int // live entries
	tombs   int
}

const initialDictCapacity = 8
const maxLoadFactor = 0.75

// NewValueDictionary returns an empty dictionary.
func NewValueDictionary() *ValueDictionary {
	return &ValueDictionary{entries: make([]dictEntry, initialDictCapacity)}
}

// Count returns the number of live (non-tombstoned) entries.
func (d *ValueDictionary) Count() int { return d.count }

// hashValue computes the probe-table hash for a hashable Value. Strings
// and identifiers use FNV-1a over their bytes (identifiers reuse their
// precomputed hash); integers, floats and booleans use a value-dependent
// hash; anything else is unhashable per spec.md §3.
func hashValue(v Value) (uint32, error) {
	switch v.Kind {
	case KindNull:
		return 0, nil
	case KindBoolean:
		if v.b {
			return 1, nil
		}
		return 2, nil
	case KindInteger:
		return uint32(v.i) * 2654435761, nil
	case KindFloat:
		bits := math.Float32bits(v.f)
		return bits * 2654435761, nil
	case KindString:
		return v.str.FNV1a(), nil
	case KindIdentifier:
		return v.hash, nil
	default:
		return 0, fmt.Errorf("value of kind %s is not hashable", v.Kind)
	}
}

func (d *ValueDictionary) grow() {
	old := d.entries
	newCap := len(old) * 2
	if newCap == 0 {
		newCap = initialDictCapacity
	}
	d.entries = make([]dictEntry, newCap)
	d.count = 0
	d.tombs = 0
	for _, e := range old {
		if e.state == slotOccupied {
			d.insert(e.key, e.val)
		}
	}
}

func (d *ValueDictionary) maybeGrow() {
	if len(d.entries) == 0 {
		d.entries = make([]dictEntry, initialDictCapacity)
		return
	}
	if float64(d.count+d.tombs+1) > maxLoadFactor*float64(len(d.entries)) {
		d.grow()
	}
}

// findSlot locates the slot index for key: either the slot already holding
// it, or the first empty/tombstone slot on its probe chain where it could
// be inserted. ok reports whether the key was found live.
func (d *ValueDictionary) findSlot(key Value) (idx int, ok bool, err error) {
	h, err := hashValue(key)
	if err != nil {
		return 0, false, err
	}
	n := len(d.entries)
	if n == 0 {
		return 0, false, nil
	}
	start := int(h) % n
	firstTomb := -1
	for i := 0; i < n; i++ {
		pos := (start + i) % n
		e := &d.entries[pos]
		switch e.state {
		case slotEmpty:
			if firstTomb != -1 {
				return firstTomb, false, nil
			}
			return pos, false, nil
		case slotTombstone:
			if firstTomb == -1 {
				firstTomb = pos
			}
		case slotOccupied:
			if e.key.Equal(key) {
				return pos, true, nil
			}
		}
	}
	if firstTomb != -1 {
		return firstTomb, false, nil
	}
	return -1, false, nil
}

func (d *ValueDictionary) insert(key, val Value) {
	idx, found, err := d.findSlot(key)
	if err != nil || idx == -1 {
		return
	}
	if !found {
		if d.entries[idx].state == slotTombstone {
			d.tombs--
		}
		d.count++
	}
	d.entries[idx] = dictEntry{key: key, val: val, state: slotOccupied}
}

// Set inserts or overwrites the binding for key. Returns an error if key's
// Kind is not hashable.
func (d *ValueDictionary) Set(key, val Value) error {
	if !key.IsHashable() {
		return fmt.Errorf("value of kind %s cannot be used as a dictionary key", key.Kind)
	}
	d.maybeGrow()
	d.insert(key, val)
	return nil
}

// Get retrieves the value bound to key. ok is false if key is absent or
// unhashable.
func (d *ValueDictionary) Get(key Value) (Value, bool) {
	if !key.IsHashable() {
		return Value{}, false
	}
	idx, found, err := d.findSlot(key)
	if err != nil || !found {
		return Value{}, false
	}
	return d.entries[idx].val, true
}

// Has reports whether key is bound.
func (d *ValueDictionary) Has(key Value) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete removes key's binding, leaving a tombstone so other keys' probe
// chains stay intact. Returns true if a binding was removed.
func (d *ValueDictionary) Delete(key Value) bool {
	if !key.IsHashable() {
		return false
	}
	idx, found, err := d.findSlot(key)
	if err != nil || !found {
		return false
	}
	d.entries[idx].key.Release()
	d.entries[idx].val.Release()
	d.entries[idx] = dictEntry{state: slotTombstone}
	d.count--
	d.tombs++
	return true
}

// Clear removes every entry, releasing shared resources as it goes.
func (d *ValueDictionary) Clear() {
	for i := range d.entries {
		if d.entries[i].state == slotOccupied {
			d.entries[i].key.Release()
			d.entries[i].val.Release()
		}
		d.entries[i] = dictEntry{}
	}
	d.count = 0
	d.tombs = 0
}

// Keys returns every live key. Order is the table's bucket order, not
// insertion order.
func (d *ValueDictionary) Keys() []Value {
	keys := make([]Value, 0, d.count)
	for _, e := range d.entries {
		if e.state == slotOccupied {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Each iterates over every live key/value pair in bucket order, stopping
// early if fn returns false.
func (d *ValueDictionary) Each(fn func(key, val Value) bool) {
	for _, e := range d.entries {
		if e.state == slotOccupied {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}

// Copy deep-copies the dictionary and every key/value it holds.
func (d *ValueDictionary) Copy() *ValueDictionary {
	if d == nil {
		return nil
	}
	out := NewValueDictionary()
	d.Each(func(k, v Value) bool {
		out.Set(k.Copy(), v.Copy())
		return true
	})
	return out
}

// Release drops this dictionary's hold on every entry's shared resources.
func (d *ValueDictionary) Release() {
	if d == nil {
		return
	}
	for _, e := range d.entries {
		if e.state == slotOccupied {
			e.key.Release()
			e.val.Release()
		}
	}
}

// PrettyPrint renders the dictionary the way PRINT does:
// `[k1: v1, k2: v2]`, matching the array literal's bracket family so an
// empty dictionary `[:]` reads distinctly from an empty array `[]`.
func (d *ValueDictionary) PrettyPrint() string {
	if d.count == 0 {
		return "[:]"
	}
	parts := make([]string, 0, d.count)
	d.Each(func(k, v Value) bool {
		key := k.PrettyPrint()
		if k.Kind == KindString || k.Kind == KindIdentifier {
			key = "\"" + key + "\""
		}
		val := v.PrettyPrint()
		if v.Kind == KindString || v.Kind == KindIdentifier {
			val = "\"" + val + "\""
		}
		parts = append(parts, key+": "+val)
		return true
	})
	return "[" + strings.Join(parts, ", ") + "]"
}
