// Package toml provides a dynamically-typed value tree for TOML documents
// together with a bidirectional codec bridge: arbitrary Go values convert
// to and from the tree through a generic, visitor-based serialization
// protocol. The textual grammar itself is not handled here; parsers and
// emitters are external collaborators that drive the same protocol.
package toml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wbrown/janus-toml/datetime"
)

// Kind identifies the variant a Value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindDatetime
	KindArray
	KindTable
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindDatetime:
		return "datetime"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "unknown"
	}
}

// Value is a TOML value: one of string, integer, float, boolean,
// datetime, array, or table. A Value owns its array elements and table
// entries; the tree is acyclic by construction. The zero Value is the
// empty string.
type Value struct {
	kind Kind

	// Scalar payloads; only the one matching kind is meaningful.
	str string
	i   int64
	f   float64
	b   bool
	dt  datetime.Datetime

	// Container payloads.
	arr []*Value
	tab *Table
}

// String creates a string value.
func String(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// Integer creates an integer value.
func Integer(i int64) *Value {
	return &Value{kind: KindInteger, i: i}
}

// Float creates a float value.
func Float(f float64) *Value {
	return &Value{kind: KindFloat, f: f}
}

// Boolean creates a boolean value.
func Boolean(b bool) *Value {
	return &Value{kind: KindBoolean, b: b}
}

// Datetime creates a datetime value.
func Datetime(dt datetime.Datetime) *Value {
	return &Value{kind: KindDatetime, dt: dt}
}

// Array creates an array value from elems.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, arr: elems}
}

// TableValue creates a table value. A nil table becomes an empty one.
func TableValue(t *Table) *Value {
	if t == nil {
		t = NewTable()
	}
	return &Value{kind: KindTable, tab: t}
}

// Kind returns the variant this value holds.
func (v *Value) Kind() Kind {
	return v.kind
}

// TypeStr returns the human-readable name of this value's type, for
// diagnostics.
func (v *Value) TypeStr() string {
	return v.kind.String()
}

// SameType reports whether v and other hold the same variant, ignoring
// the payload.
func (v *Value) SameType(other *Value) bool {
	return v.kind == other.kind
}

// AsString extracts the string payload if this is a string.
func (v *Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.str, true
	}
	return "", false
}

// IsString reports whether this is a string.
func (v *Value) IsString() bool {
	return v.kind == KindString
}

// AsInteger extracts the integer payload if this is an integer.
func (v *Value) AsInteger() (int64, bool) {
	if v.kind == KindInteger {
		return v.i, true
	}
	return 0, false
}

// IsInteger reports whether this is an integer.
func (v *Value) IsInteger() bool {
	return v.kind == KindInteger
}

// AsFloat extracts the float payload if this is a float.
func (v *Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	return 0, false
}

// IsFloat reports whether this is a float.
func (v *Value) IsFloat() bool {
	return v.kind == KindFloat
}

// AsBoolean extracts the boolean payload if this is a boolean.
func (v *Value) AsBoolean() (bool, bool) {
	if v.kind == KindBoolean {
		return v.b, true
	}
	return false, false
}

// IsBoolean reports whether this is a boolean.
func (v *Value) IsBoolean() bool {
	return v.kind == KindBoolean
}

// AsDatetime extracts the datetime payload if this is a datetime.
func (v *Value) AsDatetime() (datetime.Datetime, bool) {
	if v.kind == KindDatetime {
		return v.dt, true
	}
	return datetime.Datetime{}, false
}

// IsDatetime reports whether this is a datetime.
func (v *Value) IsDatetime() bool {
	return v.kind == KindDatetime
}

// AsArray extracts the elements if this is an array. The slice is shared
// with the value.
func (v *Value) AsArray() ([]*Value, bool) {
	if v.kind == KindArray {
		return v.arr, true
	}
	return nil, false
}

// IsArray reports whether this is an array.
func (v *Value) IsArray() bool {
	return v.kind == KindArray
}

// AsTable extracts the table if this is a table.
func (v *Value) AsTable() (*Table, bool) {
	if v.kind == KindTable {
		return v.tab, true
	}
	return nil, false
}

// IsTable reports whether this is a table.
func (v *Value) IsTable() bool {
	return v.kind == KindTable
}

// Get indexes into an array by position or a table by key. It returns
// nil whenever the value's variant does not match the index kind, the
// position is out of range, or the key is absent. The returned pointer
// aliases the tree, so mutating through it updates the value in place.
func (v *Value) Get(i Index) *Value {
	return i.index(v)
}

// At is the operator form of Get: it panics with "index not found" when
// the lookup fails. Callers wanting recoverable behavior use Get.
func (v *Value) At(i Index) *Value {
	found := v.Get(i)
	if found == nil {
		panic("index not found")
	}
	return found
}

// String renders a compact debug form for diagnostics and test output.
func (v *Value) String() string {
	var sb strings.Builder
	v.debug(&sb)
	return sb.String()
}

func (v *Value) debug(sb *strings.Builder) {
	switch v.kind {
	case KindString:
		sb.WriteString(strconv.Quote(v.str))
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindDatetime:
		sb.WriteString(v.dt.String())
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.debug(sb)
		}
		sb.WriteByte(']')
	case KindTable:
		sb.WriteByte('{')
		for i, e := range v.tab.Entries() {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s = ", e.Key)
			e.Value.debug(sb)
		}
		sb.WriteByte('}')
	}
}
