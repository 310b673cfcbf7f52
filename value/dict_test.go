package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDictionarySetGet(t *testing.T) {
	d := NewValueDictionary()
	k, _ := NewIdentifier("x")
	err := d.Set(k, NewInt(1))
	require.NoError(t, err)

	got, ok := d.Get(k)
	assert.True(t, ok)
	assert.Equal(t, int32(1), got.Int())
	assert.Equal(t, 1, d.Count())
}

func TestValueDictionaryOverwrite(t *testing.T) {
	d := NewValueDictionary()
	k, _ := NewIdentifier("x")
	require.NoError(t, d.Set(k, NewInt(1)))
	require.NoError(t, d.Set(k, NewInt(2)))
	assert.Equal(t, 1, d.Count())
	got, _ := d.Get(k)
	assert.Equal(t, int32(2), got.Int())
}

func TestValueDictionaryUnhashableKeyErrors(t *testing.T) {
	d := NewValueDictionary()
	arrKey := NewArray(NewValueArray())
	err := d.Set(arrKey, NewInt(1))
	assert.Error(t, err)
}

func TestValueDictionaryDeleteLeavesTombstoneProbeChainIntact(t *testing.T) {
	d := NewValueDictionary()
	a, _ := NewIdentifier("a")
	b, _ := NewIdentifier("b")
	require.NoError(t, d.Set(a, NewInt(1)))
	require.NoError(t, d.Set(b, NewInt(2)))

	assert.True(t, d.Delete(a))
	assert.False(t, d.Has(a))

	// b must still be reachable even though a tombstone now sits on its
	// probe chain.
	got, ok := d.Get(b)
	assert.True(t, ok)
	assert.Equal(t, int32(2), got.Int())
}

func TestValueDictionaryGrowsPastLoadFactor(t *testing.T) {
	d := NewValueDictionary()
	for i := int32(0); i < 100; i++ {
		k := NewInt(i)
		require.NoError(t, d.Set(k, k))
	}
	assert.Equal(t, 100, d.Count())
	for i := int32(0); i < 100; i++ {
		v, ok := d.Get(NewInt(i))
		require.True(t, ok)
		assert.Equal(t, i, v.Int())
	}
}

func TestValueDictionaryEachAndKeys(t *testing.T) {
	d := NewValueDictionary()
	a, _ := NewIdentifier("a")
	b, _ := NewIdentifier("b")
	require.NoError(t, d.Set(a, NewInt(1)))
	require.NoError(t, d.Set(b, NewInt(2)))

	seen := map[string]int32{}
	d.Each(func(k, v Value) bool {
		seen[k.Str()] = v.Int()
		return true
	})
	assert.Equal(t, map[string]int32{"a": 1, "b": 2}, seen)
	assert.Len(t, d.Keys(), 2)
}

func TestValueDictionaryCopyIsDeep(t *testing.T) {
	d := NewValueDictionary()
	k, _ := NewIdentifier("x")
	require.NoError(t, d.Set(k, NewInt(1)))

	cp := d.Copy()
	k2, _ := NewIdentifier("y")
	require.NoError(t, cp.Set(k2, NewInt(2)))

	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 2, cp.Count())
}

func TestValueDictionaryPrettyPrint(t *testing.T) {
	d := NewValueDictionary()
	assert.Equal(t, "[:]", d.PrettyPrint())

	k, _ := NewIdentifier("x")
	require.NoError(t, d.Set(k, NewInt(1)))
	assert.Equal(t, `["x": 1]`, d.PrettyPrint())
}
