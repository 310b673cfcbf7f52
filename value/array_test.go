package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueArrayPushPop(t *testing.T) {
	arr := NewValueArray()
	arr.Push(NewInt(1))
	arr.Push(NewInt(2))
	assert.Equal(t, 2, arr.Len())

	v, ok := arr.Pop()
	assert.True(t, ok)
	assert.Equal(t, int32(2), v.Int())
	assert.Equal(t, 1, arr.Len())

	_, ok = NewValueArray().Pop()
	assert.False(t, ok)
}

func TestValueArraySetPads(t *testing.T) {
	arr := NewValueArray()
	ok := arr.Set(3, NewInt(9))
	assert.True(t, ok)
	assert.Equal(t, 4, arr.Len())
	v, _ := arr.Get(3)
	assert.Equal(t, int32(9), v.Int())
	v0, _ := arr.Get(0)
	assert.True(t, v0.IsNull())
}

func TestValueArrayInsertRemove(t *testing.T) {
	arr := NewValueArray()
	arr.Push(NewInt(1))
	arr.Push(NewInt(3))
	ok := arr.Insert(1, NewInt(2))
	assert.True(t, ok)

	want := []int32{1, 2, 3}
	for i, w := range want {
		v, _ := arr.Get(i)
		assert.Equal(t, w, v.Int())
	}

	removed, ok := arr.RemoveAt(1)
	assert.True(t, ok)
	assert.Equal(t, int32(2), removed.Int())
	assert.Equal(t, 2, arr.Len())
}

func TestValueArraySliceForwardAndBackward(t *testing.T) {
	arr := NewValueArray()
	for i := int32(0); i < 5; i++ {
		arr.Push(NewInt(i))
	}

	fwd := arr.Slice(0, 5, 2)
	var got []int32
	for _, v := range fwd.Items() {
		got = append(got, v.Int())
	}
	assert.Equal(t, []int32{0, 2, 4}, got)

	bwd := arr.Slice(4, -1, -1)
	got = nil
	for _, v := range bwd.Items() {
		got = append(got, v.Int())
	}
	assert.Equal(t, []int32{4, 3, 2, 1, 0}, got)
}

func TestValueArrayCopyIsDeep(t *testing.T) {
	arr := NewValueArray()
	arr.Push(NewInt(1))
	cp := arr.Copy()
	cp.Push(NewInt(2))
	assert.Equal(t, 1, arr.Len())
	assert.Equal(t, 2, cp.Len())
}

func TestValueArrayPrettyPrint(t *testing.T) {
	arr := NewValueArray()
	s, _ := NewString("hi")
	arr.Push(s)
	arr.Push(NewInt(1))
	assert.Equal(t, `["hi", 1]`, arr.PrettyPrint())
}
