package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScalarValues(t *testing.T) {
	assert.Equal(t, int32(42), NewInt(42).Int())
	assert.Equal(t, float32(3.5), NewFloat(3.5).Float())
	assert.True(t, NewBool(true).Bool())
	assert.True(t, Null.IsNull())
}

func TestNewStringAndIdentifier(t *testing.T) {
	s, err := NewString("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", s.Str())

	id, err := NewIdentifier("x")
	require.NoError(t, err)
	assert.NotZero(t, id.Hash())
}

func TestTruthy(t *testing.T) {
	assert.False(t, Null.Truthy())
	assert.False(t, NewBool(false).Truthy())
	assert.True(t, NewBool(true).Truthy())
	assert.True(t, NewInt(0).Truthy())
	s, _ := NewString("")
	assert.True(t, s.Truthy())
}

func TestCopySharesStringsDeepCopiesContainers(t *testing.T) {
	s, _ := NewString("shared")
	cp := s.Copy()
	assert.True(t, s.Equal(cp))
	assert.EqualValues(t, 2, s.RefString().RefCount())

	arr := NewValueArray()
	arr.Push(NewInt(1))
	av := NewArray(arr)
	avCopy := av.Copy()
	avCopy.Array().Push(NewInt(2))
	assert.Equal(t, 1, av.Array().Len())
	assert.Equal(t, 2, avCopy.Array().Len())
}

func TestEqual(t *testing.T) {
	assert.True(t, NewInt(1).Equal(NewInt(1)))
	assert.False(t, NewInt(1).Equal(NewFloat(1)))
	a, _ := NewString("a")
	b, _ := NewString("a")
	assert.True(t, a.Equal(b))
}

func TestTypeOf(t *testing.T) {
	ty := NewInt(1).TypeOf()
	assert.Equal(t, KindInteger, ty.TypeOf)

	arrTy := NewArray(NewValueArray()).TypeOf()
	assert.Equal(t, KindArray, arrTy.TypeOf)
	require.Len(t, arrTy.Subtypes, 1)
}

func TestPrettyPrint(t *testing.T) {
	assert.Equal(t, "null", Null.PrettyPrint())
	assert.Equal(t, "true", NewBool(true).PrettyPrint())
	assert.Equal(t, "42", NewInt(42).PrettyPrint())

	arr := NewValueArray()
	arr.Push(NewInt(1))
	arr.Push(NewInt(2))
	assert.Equal(t, "[1, 2]", NewArray(arr).PrettyPrint())
}

func TestCastConversions(t *testing.T) {
	i, err := NewFloat(3.9).ToInt()
	require.NoError(t, err)
	assert.Equal(t, int32(3), i.Int())

	f, err := NewInt(2).ToFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(2), f.Float())

	sv, err := NewInt(7).ToStringValue()
	require.NoError(t, err)
	assert.Equal(t, "7", sv.Str())

	badStr, _ := NewString("not a number")
	_, err = badStr.ToInt()
	assert.Error(t, err)
}

func TestIsHashable(t *testing.T) {
	assert.True(t, NewInt(1).IsHashable())
	assert.True(t, Null.IsHashable())
	assert.False(t, NewArray(NewValueArray()).IsHashable())
}
