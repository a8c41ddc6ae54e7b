package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-toml/datetime"
)

// TestValueKinds verifies constructors tag values with the right kind
// and the accessor pairs agree with TypeStr.
func TestValueKinds(t *testing.T) {
	dt, err := datetime.Parse("1979-05-27T07:32:00Z")
	require.NoError(t, err)

	cases := []struct {
		name    string
		v       *Value
		kind    Kind
		typeStr string
	}{
		{"string", String("hello"), KindString, "string"},
		{"integer", Integer(42), KindInteger, "integer"},
		{"float", Float(3.14), KindFloat, "float"},
		{"boolean", Boolean(true), KindBoolean, "boolean"},
		{"datetime", Datetime(dt), KindDatetime, "datetime"},
		{"array", Array(Integer(1), Integer(2)), KindArray, "array"},
		{"table", TableValue(NewTable()), KindTable, "table"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.v.Kind())
			assert.Equal(t, tc.typeStr, tc.v.TypeStr())
		})
	}
}

// TestValueAccessors verifies As* returns the payload only for the
// matching variant.
func TestValueAccessors(t *testing.T) {
	v := Integer(7)

	i, ok := v.AsInteger()
	require.True(t, ok)
	assert.Equal(t, int64(7), i)

	_, ok = v.AsString()
	assert.False(t, ok)
	_, ok = v.AsFloat()
	assert.False(t, ok)
	assert.True(t, v.IsInteger())
	assert.False(t, v.IsBoolean())

	s, ok := String("x").AsString()
	require.True(t, ok)
	assert.Equal(t, "x", s)

	f, ok := Float(1.5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := Boolean(true).AsBoolean()
	require.True(t, ok)
	assert.True(t, b)

	arr, ok := Array(Integer(1)).AsArray()
	require.True(t, ok)
	assert.Len(t, arr, 1)

	tab := NewTable()
	tab.Insert("k", Integer(1))
	got, ok := TableValue(tab).AsTable()
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())
}

// TestValueSameType checks the variant comparison, which ignores
// payloads.
func TestValueSameType(t *testing.T) {
	assert.True(t, Integer(1).SameType(Integer(2)))
	assert.True(t, Array().SameType(Array(Integer(1))))
	assert.False(t, Integer(1).SameType(Float(1.0)))
	assert.False(t, String("1").SameType(Integer(1)))
}

// TestValueGet covers total indexing: wrong-variant and out-of-range
// lookups return nil instead of failing.
func TestValueGet(t *testing.T) {
	tab := NewTable()
	tab.Insert("name", String("janus"))
	tab.Insert("ports", Array(Integer(8001), Integer(8002)))
	v := TableValue(tab)

	t.Run("key hit", func(t *testing.T) {
		got := v.Get(Key("name"))
		require.NotNil(t, got)
		s, _ := got.AsString()
		assert.Equal(t, "janus", s)
	})

	t.Run("key miss", func(t *testing.T) {
		assert.Nil(t, v.Get(Key("missing")))
	})

	t.Run("position into array", func(t *testing.T) {
		arr := v.Get(Key("ports"))
		require.NotNil(t, arr)
		got := arr.Get(Pos(1))
		require.NotNil(t, got)
		i, _ := got.AsInteger()
		assert.Equal(t, int64(8002), i)
	})

	t.Run("position out of range", func(t *testing.T) {
		arr := v.Get(Key("ports"))
		assert.Nil(t, arr.Get(Pos(2)))
		assert.Nil(t, arr.Get(Pos(-1)))
	})

	t.Run("index kind mismatch", func(t *testing.T) {
		assert.Nil(t, v.Get(Pos(0)))
		assert.Nil(t, Integer(1).Get(Key("x")))
	})

	t.Run("aliasing mutation", func(t *testing.T) {
		*v.Get(Key("name")) = *String("changed")
		s, _ := v.Get(Key("name")).AsString()
		assert.Equal(t, "changed", s)
	})
}

// TestValueAtPanics verifies the panicking form fails loudly, with the
// same message for every failure shape.
func TestValueAtPanics(t *testing.T) {
	v := Array(Integer(1))

	got := v.At(Pos(0))
	i, _ := got.AsInteger()
	assert.Equal(t, int64(1), i)

	assert.PanicsWithValue(t, "index not found", func() {
		v.At(Pos(5))
	})
	assert.PanicsWithValue(t, "index not found", func() {
		v.At(Key("nope"))
	})
	assert.PanicsWithValue(t, "index not found", func() {
		Integer(3).At(Pos(0))
	})
}

// TestValueEqual exercises deep equality across all variants.
func TestValueEqual(t *testing.T) {
	dt1, _ := datetime.Parse("2024-01-01T00:00:00Z")
	dt2, _ := datetime.Parse("2024-01-01 00:00:00Z")

	t.Run("scalars", func(t *testing.T) {
		assert.True(t, Integer(1).Equal(Integer(1)))
		assert.False(t, Integer(1).Equal(Integer(2)))
		assert.False(t, Integer(1).Equal(Float(1.0)))
		assert.True(t, String("a").Equal(String("a")))
		assert.True(t, Datetime(dt1).Equal(Datetime(dt2)))
	})

	t.Run("arrays", func(t *testing.T) {
		assert.True(t, Array(Integer(1), Integer(2)).Equal(Array(Integer(1), Integer(2))))
		assert.False(t, Array(Integer(1), Integer(2)).Equal(Array(Integer(2), Integer(1))))
		assert.False(t, Array(Integer(1)).Equal(Array(Integer(1), Integer(2))))
	})

	t.Run("tables ignore order", func(t *testing.T) {
		a := NewTable()
		a.Insert("x", Integer(1))
		a.Insert("y", Integer(2))
		b := NewTable()
		b.Insert("y", Integer(2))
		b.Insert("x", Integer(1))
		assert.True(t, TableValue(a).Equal(TableValue(b)))

		b.Insert("y", Integer(3))
		assert.False(t, TableValue(a).Equal(TableValue(b)))
	})
}

// TestValueDebugString spot-checks the diagnostic renderer.
func TestValueDebugString(t *testing.T) {
	tab := NewTable()
	tab.Insert("a", Integer(1))
	tab.Insert("b", Array(String("x"), Boolean(false)))
	v := TableValue(tab)

	assert.Equal(t, `{a = 1, b = ["x", false]}`, v.String())
}
