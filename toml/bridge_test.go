package toml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-toml/datetime"
)

// TestToGo verifies the lowering to plain Go data.
func TestToGo(t *testing.T) {
	dt, _ := datetime.Parse("1979-05-27T07:32:00Z")
	tab := NewTable()
	tab.Insert("n", Integer(1))
	tab.Insert("when", Datetime(dt))
	tab.Insert("list", Array(String("a"), Boolean(false)))
	v := TableValue(tab)

	got := v.ToGo()
	assert.Equal(t, map[string]interface{}{
		"n":    int64(1),
		"when": "1979-05-27T07:32:00Z",
		"list": []interface{}{"a", false},
	}, got)
}

// TestFromGo verifies lifting dynamic Go data back into a tree.
func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]interface{}{
		"b": true,
		"a": int64(2),
		"c": []interface{}{"x", 1.5},
	})
	require.NoError(t, err)

	tab, ok := v.AsTable()
	require.True(t, ok)
	// Go maps are unordered, so keys come back sorted.
	assert.Equal(t, []string{"a", "b", "c"}, tab.Keys())
	assert.True(t, tab.Get("c").Equal(Array(String("x"), Float(1.5))))

	_, err = FromGo(nil)
	require.Error(t, err)

	// Struct values fall through to the reflective encoder.
	v, err = FromGo(struct {
		Name string `toml:"name"`
	}{Name: "x"})
	require.NoError(t, err)
	s, _ := v.Get(Key("name")).AsString()
	assert.Equal(t, "x", s)
}

// TestJSONMarshal verifies JSON output preserves table entry order and
// renders datetimes as strings.
func TestJSONMarshal(t *testing.T) {
	dt, _ := datetime.Parse("2024-01-02")
	tab := NewTable()
	tab.Insert("z", Integer(1))
	tab.Insert("a", String("two"))
	tab.Insert("d", Datetime(dt))
	tab.Insert("nested", Array(Boolean(true), Float(0.5)))
	v := TableValue(tab)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","d":"2024-01-02","nested":[true,0.5]}`, string(out))
}

// TestJSONUnmarshal verifies numbers without a fraction become
// integers and everything round-trips structurally.
func TestJSONUnmarshal(t *testing.T) {
	var v Value
	err := v.UnmarshalJSON([]byte(`{"n":42,"f":1.5,"s":"x","arr":[1,2],"t":{"k":true}}`))
	require.NoError(t, err)

	tab, ok := v.AsTable()
	require.True(t, ok)

	assert.True(t, tab.Get("n").IsInteger())
	assert.True(t, tab.Get("f").IsFloat())
	assert.True(t, tab.Get("s").IsString())
	assert.True(t, tab.Get("arr").Equal(Array(Integer(1), Integer(2))))

	inner, ok := tab.Get("t").AsTable()
	require.True(t, ok)
	b, _ := inner.Get("k").AsBoolean()
	assert.True(t, b)
}

// TestJSONRoundTrip verifies marshal then unmarshal reproduces an
// equal tree.
func TestJSONRoundTrip(t *testing.T) {
	tab := NewTable()
	tab.Insert("title", String("demo"))
	tab.Insert("count", Integer(3))
	tab.Insert("tags", Array(String("a"), String("b")))
	v := TableValue(tab)

	out, err := v.MarshalJSON()
	require.NoError(t, err)

	var got Value
	require.NoError(t, got.UnmarshalJSON(out))
	assert.True(t, v.Equal(&got))
}

// TestYAMLRoundTrip verifies YAML output parses back into an equal
// tree. Entry order survives marshalling but not unmarshalling, which
// equality ignores.
func TestYAMLRoundTrip(t *testing.T) {
	tab := NewTable()
	tab.Insert("name", String("janus"))
	tab.Insert("replicas", Integer(3))
	tab.Insert("labels", Array(String("a"), String("b")))
	v := TableValue(tab)

	out, err := v.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: janus")

	got, err := FromYAML(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}
