package refstring

import (
	"strings"
	"testing"
)

func TestNewAndShare(t *testing.T) {
	rs, err := New("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.RefCount() != 1 {
		t.Fatalf("expected refcount 1, got %d", rs.RefCount())
	}

	shared := rs.Share()
	if rs.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after Share, got %d", rs.RefCount())
	}
	if shared.String() != "hello" {
		t.Fatalf("shared copy diverged: got %q", shared.String())
	}

	shared.Release()
	if rs.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after Release, got %d", rs.RefCount())
	}
}

func TestMaxLength(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxLength+1))
	if err == nil {
		t.Fatal("expected an error for a string exceeding MaxLength")
	}
}

func TestEqual(t *testing.T) {
	a := MustNew("foo")
	b := MustNew("foo")
	c := MustNew("bar")

	if !a.Equal(b) {
		t.Error("expected equal RefStrings built from the same content")
	}
	if a.Equal(c) {
		t.Error("did not expect distinct content to compare equal")
	}
}

func TestConcat(t *testing.T) {
	a := MustNew("foo")
	b := MustNew("bar")
	result, err := Concat(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.String() != "foobar" {
		t.Errorf("got %q, want %q", result.String(), "foobar")
	}

	long := MustNew(strings.Repeat("x", MaxLength))
	if _, err := Concat(long, MustNew("y")); err == nil {
		t.Fatal("expected concatenation beyond MaxLength to fail")
	}
}

func TestFNV1aDeterministic(t *testing.T) {
	a := MustNew("identifier")
	b := MustNew("identifier")
	if a.FNV1a() != b.FNV1a() {
		t.Error("expected identical content to hash identically")
	}
}
