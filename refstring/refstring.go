// Package refstring implements the shared, reference-counted byte string
// used for string and identifier values throughout Xvr (spec.md §3
// "RefString"). A RefString is created with a count of 1; sharing a copy
// increments the count, and releasing a copy decrements it, freeing the
// underlying buffer only once the count reaches zero.
package refstring

import (
	"fmt"
	"sync/atomic"
)

// MaxLength is the maximum number of bytes a RefString may hold.
const MaxLength = 4096

// RefString is a length-prefixed, heap-allocated byte buffer with an
// embedded atomic reference count. Copy semantics for string-like Values
// are "increment the count", never "copy the bytes" — the bytes are
// shared and immutable once constructed.
type RefString struct {
	bytes []byte
	refs  *int32
}

// New allocates a fresh RefString with reference count 1.
//
// Returns an error if s exceeds MaxLength bytes.
func New(s string) (RefString, error) {
	if len(s) > MaxLength {
		return RefString{}, fmt.Errorf("refstring: length %d exceeds maximum of %d bytes", len(s), MaxLength)
	}
	count := int32(1)
	return RefString{bytes: []byte(s), refs: &count}, nil
}

// MustNew is New but panics on overflow; used for compile-time literals
// already validated by the lexer/compiler.
func MustNew(s string) RefString {
	rs, err := New(s)
	if err != nil {
		panic(err)
	}
	return rs
}

// Share returns a copy of rs that refers to the same backing buffer,
// incrementing the shared reference count atomically.
func (rs RefString) Share() RefString {
	if rs.refs != nil {
		atomic.AddInt32(rs.refs, 1)
	}
	return rs
}

// Release decrements the shared reference count. The caller must not use
// rs (or any other Share of the same buffer) afterward unless it holds a
// separate Share. Go's garbage collector ultimately reclaims the backing
// array regardless, but Release lets callers detect use-after-free bugs
// during development by checking RefCount.
func (rs RefString) Release() {
	if rs.refs != nil {
		atomic.AddInt32(rs.refs, -1)
	}
}

// RefCount returns the current shared reference count.
func (rs RefString) RefCount() int32 {
	if rs.refs == nil {
		return 0
	}
	return atomic.LoadInt32(rs.refs)
}

// Len returns the length of the string in bytes.
func (rs RefString) Len() int {
	return len(rs.bytes)
}

// Bytes returns the underlying byte slice. Callers must not mutate it;
// RefStrings are immutable once constructed.
func (rs RefString) Bytes() []byte {
	return rs.bytes
}

// String returns the Go string view of the RefString's bytes.
func (rs RefString) String() string {
	return string(rs.bytes)
}

// Equal compares two RefStrings by length then byte content, per spec.md
// §3's RefString equality rule. It does not compare identity or refcount.
func (rs RefString) Equal(other RefString) bool {
	if len(rs.bytes) != len(other.bytes) {
		return false
	}
	for i := range rs.bytes {
		if rs.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// Concat produces a new RefString holding the concatenation of rs and
// other's bytes, enforcing MaxLength.
func Concat(a, b RefString) (RefString, error) {
	total := len(a.bytes) + len(b.bytes)
	if total > MaxLength {
		return RefString{}, fmt.Errorf("refstring: concatenation would exceed maximum length of %d bytes", MaxLength)
	}
	buf := make([]byte, 0, total)
	buf = append(buf, a.bytes...)
	buf = append(buf, b.bytes...)
	count := int32(1)
	return RefString{bytes: buf, refs: &count}, nil
}

// FNV1a computes the 32-bit FNV-1a hash of rs's bytes, used by
// ValueDictionary for string and identifier keys (spec.md §3).
func (rs RefString) FNV1a() uint32 {
	const (
		offsetBasis uint32 = 2166136261
		prime       uint32 = 16777619
	)
	hash := offsetBasis
	for _, b := range rs.bytes {
		hash ^= uint32(b)
		hash *= prime
	}
	return hash
}
