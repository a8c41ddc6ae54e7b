package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTableInsertOrder verifies insertion order is preserved and that
// replacing an existing key keeps its original position.
func TestTableInsertOrder(t *testing.T) {
	tab := NewTable()
	tab.Insert("c", Integer(3))
	tab.Insert("a", Integer(1))
	tab.Insert("b", Integer(2))
	assert.Equal(t, []string{"c", "a", "b"}, tab.Keys())

	// Replacement updates in place, the slot does not move.
	tab.Insert("a", Integer(100))
	assert.Equal(t, []string{"c", "a", "b"}, tab.Keys())
	i, _ := tab.Get("a").AsInteger()
	assert.Equal(t, int64(100), i)
}

// TestTableGet covers hits, misses and pointer aliasing.
func TestTableGet(t *testing.T) {
	tab := NewTable()
	tab.Insert("k", String("v"))

	got := tab.Get("k")
	require.NotNil(t, got)
	s, _ := got.AsString()
	assert.Equal(t, "v", s)

	assert.Nil(t, tab.Get("missing"))
	assert.True(t, tab.Has("k"))
	assert.False(t, tab.Has("missing"))

	*got = *Integer(9)
	i, _ := tab.Get("k").AsInteger()
	assert.Equal(t, int64(9), i)
}

// TestTableInsertIfAbsent verifies the conditional insert leaves
// existing entries alone.
func TestTableInsertIfAbsent(t *testing.T) {
	tab := NewTable()
	assert.True(t, tab.InsertIfAbsent("k", Integer(1)))
	assert.False(t, tab.InsertIfAbsent("k", Integer(2)))
	i, _ := tab.Get("k").AsInteger()
	assert.Equal(t, int64(1), i)
}

// TestTableRemove verifies removal returns the old value, closes the
// gap and keeps later lookups consistent.
func TestTableRemove(t *testing.T) {
	tab := NewTable()
	tab.Insert("a", Integer(1))
	tab.Insert("b", Integer(2))
	tab.Insert("c", Integer(3))

	old := tab.Remove("b")
	require.NotNil(t, old)
	i, _ := old.AsInteger()
	assert.Equal(t, int64(2), i)

	assert.Equal(t, []string{"a", "c"}, tab.Keys())
	assert.Equal(t, 2, tab.Len())

	// Index stays consistent after the splice.
	i, _ = tab.Get("c").AsInteger()
	assert.Equal(t, int64(3), i)

	assert.Nil(t, tab.Remove("b"))
}

// TestTableRange verifies ordered iteration and early stop.
func TestTableRange(t *testing.T) {
	tab := NewTable()
	tab.Insert("x", Integer(1))
	tab.Insert("y", Integer(2))
	tab.Insert("z", Integer(3))

	var seen []string
	tab.Range(func(key string, v *Value) bool {
		seen = append(seen, key)
		return key != "y"
	})
	assert.Equal(t, []string{"x", "y"}, seen)
}

// TestTableOf builds from a literal entry list.
func TestTableOf(t *testing.T) {
	tab := TableOf(
		Entry{Key: "one", Value: Integer(1)},
		Entry{Key: "two", Value: Integer(2)},
	)
	assert.Equal(t, []string{"one", "two"}, tab.Keys())
	assert.False(t, tab.IsEmpty())
	assert.True(t, NewTable().IsEmpty())
}

// TestTableZeroValue verifies a literal &Table{} is usable.
func TestTableZeroValue(t *testing.T) {
	tab := &Table{}
	tab.Insert("k", Integer(1))
	assert.True(t, tab.Has("k"))
}
