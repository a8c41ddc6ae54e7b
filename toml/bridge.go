package toml

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/wbrown/janus-toml/datetime"
)

// ToGo lowers the tree to plain Go data: bool, int64, float64, string,
// []interface{} and map[string]interface{}. A datetime degrades to its
// canonical string, and table ordering is lost in the Go map.
func (v *Value) ToGo() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindDatetime:
		return v.dt.String()
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToGo()
		}
		return out
	case KindTable:
		out := make(map[string]interface{}, v.tab.Len())
		for _, e := range v.tab.Entries() {
			out[e.Key] = e.Value.ToGo()
		}
		return out
	}
	return nil
}

// FromGo lifts plain Go data into a tree. The dynamic shapes produced
// by the JSON and YAML decoders are handled directly; anything else
// falls through to the reflective Encode, so struct values and
// Marshaler implementations work here too. Map keys are sorted, the
// same as Encode.
func FromGo(x interface{}) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return nil, ErrNilValue
	case bool:
		return Boolean(t), nil
	case string:
		return String(t), nil
	case int:
		return Integer(int64(t)), nil
	case int64:
		return Integer(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, encodeErrorf("u64 value was too large")
		}
		return Integer(int64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return Integer(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, encodeErrorf("unsupported number %q", t.String())
		}
		return Float(f), nil
	case datetime.Datetime:
		return Datetime(t), nil
	case time.Time:
		return Datetime(datetime.FromTime(t)), nil
	case Value:
		return &t, nil
	case *Value:
		return t, nil
	case Table:
		return TableValue(&t), nil
	case *Table:
		return TableValue(t), nil
	case []interface{}:
		elems := make([]*Value, 0, len(t))
		for _, e := range t {
			v, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return Array(elems...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tab := NewTable()
		for _, k := range keys {
			v, err := FromGo(t[k])
			if err != nil {
				return nil, err
			}
			tab.Insert(k, v)
		}
		return TableValue(tab), nil
	}
	return Encode(x)
}

// MarshalJSON renders the tree as JSON, preserving table entry order.
// Datetimes become their canonical strings.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindString, KindDatetime, KindInteger, KindFloat, KindBoolean:
		b, err := json.Marshal(v.ToGo())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindTable:
		buf.WriteByte('{')
		for i, e := range v.tab.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON rebuilds the tree from JSON. Numbers without a
// fractional part become integers; object key order follows the sorted
// order FromGo imposes, since the generic decoder returns a Go map.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return err
	}
	out, err := FromGo(x)
	if err != nil {
		return err
	}
	*v = *out
	return nil
}

// ToYAML renders the tree as YAML. Table order is preserved via
// yaml.MapSlice.
func (v *Value) ToYAML() ([]byte, error) {
	return yaml.Marshal(v.yamlValue())
}

func (v *Value) yamlValue() interface{} {
	switch v.kind {
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.yamlValue()
		}
		return out
	case KindTable:
		out := make(yaml.MapSlice, 0, v.tab.Len())
		for _, e := range v.tab.Entries() {
			out = append(out, yaml.MapItem{Key: e.Key, Value: e.Value.yamlValue()})
		}
		return out
	}
	return v.ToGo()
}

// FromYAML rebuilds a tree from YAML text.
func FromYAML(data []byte) (*Value, error) {
	var x interface{}
	if err := yaml.Unmarshal(data, &x); err != nil {
		return nil, err
	}
	return FromGo(x)
}
