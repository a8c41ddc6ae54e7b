package toml

import (
	"errors"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wbrown/janus-toml/datetime"
)

// Encode converts an arbitrary Go value into a Value. Types implementing
// Marshaler encode themselves; everything else is walked by reflection:
// booleans, all integer widths (unsigned values above the signed 64-bit
// maximum fail), floats, strings, byte slices (as integer arrays), other
// slices and arrays, string-keyed maps, structs, pointers, interfaces,
// datetime.Datetime and time.Time.
//
// Encoding fails on a nil at the top level or inside an array; a nil
// map or struct field value is silently omitted from its table instead.
func Encode(v interface{}) (*Value, error) {
	var out *Value
	s := &valueSerializer{set: func(val *Value) { out = val }}
	if err := marshal(v, s); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTable converts a Go value whose outermost shape is map- or
// struct-like directly into a Table. Scalars, sequences, and unit
// variants at the top level are encoding errors here; a newtype variant
// is accepted and yields its one-entry table.
func EncodeTable(v interface{}) (*Table, error) {
	s := &tableSerializer{}
	if err := marshal(v, s); err != nil {
		return nil, err
	}
	return s.out, nil
}

// marshal routes one value to the serializer, dispatching Marshaler
// implementations before falling back to reflection.
func marshal(v interface{}, s Serializer) error {
	switch x := v.(type) {
	case nil:
		return s.Nil()
	case Marshaler:
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return s.Nil()
		}
		return x.MarshalValue(s)
	case datetime.Datetime:
		return s.Datetime(x)
	case time.Time:
		return s.Datetime(datetime.FromTime(x))
	}
	return marshalReflect(reflect.ValueOf(v), s)
}

func marshalReflect(rv reflect.Value, s Serializer) error {
	switch rv.Kind() {
	case reflect.Bool:
		return s.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.Integer(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.Unsigned(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return s.Float(rv.Float())
	case reflect.String:
		return s.Str(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return s.Bytes(rv.Bytes())
		}
		return marshalSeq(rv, s)
	case reflect.Array:
		return marshalSeq(rv, s)
	case reflect.Map:
		return marshalMap(rv, s)
	case reflect.Struct:
		return marshalStruct(rv, s)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return s.Nil()
		}
		return marshal(rv.Elem().Interface(), s)
	default:
		return encodeErrorf("unsupported value type: %s", rv.Type())
	}
}

func marshalSeq(rv reflect.Value, s Serializer) error {
	seq, err := s.BeginSeq(rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := seq.Element(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return seq.EndSeq()
}

func marshalMap(rv reflect.Value, s Serializer) error {
	ms, err := s.BeginMap(rv.Len())
	if err != nil {
		return err
	}
	keys := rv.MapKeys()
	// Go map iteration order is random; sort so encoding is
	// deterministic and reproducible across runs.
	sort.Slice(keys, func(i, j int) bool {
		return mapKeyLess(keys[i], keys[j])
	})
	for _, k := range keys {
		if err := ms.Entry(k.Interface(), rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return ms.EndMap()
}

func mapKeyLess(a, b reflect.Value) bool {
	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		return a.String() < b.String()
	}
	return false
}

func marshalStruct(rv reflect.Value, s Serializer) error {
	fields := cachedFields(rv.Type())
	ms, err := s.BeginMap(len(fields))
	if err != nil {
		return err
	}
	for _, f := range fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		if err := ms.Entry(f.name, fv.Interface()); err != nil {
			return err
		}
	}
	return ms.EndMap()
}

// structField describes one encodable struct field.
type structField struct {
	name      string
	index     []int
	omitEmpty bool
}

var fieldCache sync.Map // reflect.Type -> []structField

func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	fields := collectFields(t, nil, nil)
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int, fields []structField) []structField {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("toml") == "" {
			// Embedded struct fields flatten into the parent table.
			fields = collectFields(sf.Type, index, fields)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		var omitEmpty bool
		if tag := sf.Tag.Get("toml"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omitEmpty = true
				}
			}
		}
		fields = append(fields, structField{name: name, index: index, omitEmpty: omitEmpty})
	}
	return fields
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// valueSerializer accumulates protocol events into a Value committed
// through set.
type valueSerializer struct {
	set func(*Value)
}

func (s *valueSerializer) Bool(v bool) error {
	s.set(Boolean(v))
	return nil
}

func (s *valueSerializer) Integer(v int64) error {
	s.set(Integer(v))
	return nil
}

func (s *valueSerializer) Unsigned(v uint64) error {
	if v > math.MaxInt64 {
		return encodeErrorf("u64 value was too large")
	}
	s.set(Integer(int64(v)))
	return nil
}

func (s *valueSerializer) Float(v float64) error {
	s.set(Float(v))
	return nil
}

func (s *valueSerializer) Str(v string) error {
	s.set(String(v))
	return nil
}

func (s *valueSerializer) Bytes(v []byte) error {
	elems := make([]*Value, len(v))
	for i, b := range v {
		elems[i] = Integer(int64(b))
	}
	s.set(Array(elems...))
	return nil
}

func (s *valueSerializer) Datetime(v datetime.Datetime) error {
	s.set(Datetime(v))
	return nil
}

func (s *valueSerializer) Nil() error {
	return ErrNilValue
}

func (s *valueSerializer) UnitVariant(tag string) error {
	return s.Str(tag)
}

func (s *valueSerializer) NewtypeVariant(tag string, payload interface{}) error {
	inner, err := Encode(payload)
	if err != nil {
		return err
	}
	t := NewTable()
	t.Insert(tag, inner)
	s.set(TableValue(t))
	return nil
}

func (s *valueSerializer) BeginSeq(size int) (SeqSerializer, error) {
	return &seqSerializer{
		elems: make([]*Value, 0, size),
		commit: func(elems []*Value) {
			s.set(Array(elems...))
		},
	}, nil
}

func (s *valueSerializer) BeginTupleVariant(tag string, size int) (SeqSerializer, error) {
	return &seqSerializer{
		elems: make([]*Value, 0, size),
		commit: func(elems []*Value) {
			t := NewTable()
			t.Insert(tag, Array(elems...))
			s.set(TableValue(t))
		},
	}, nil
}

func (s *valueSerializer) BeginMap(size int) (MapSerializer, error) {
	return &mapSerializer{
		tab: NewTable(),
		commit: func(t *Table) {
			s.set(TableValue(t))
		},
	}, nil
}

func (s *valueSerializer) BeginStructVariant(tag string, size int) (MapSerializer, error) {
	return nil, encodeErrorf("unsupported value type: struct variant `%s`", tag)
}

// seqSerializer is the growing ordered buffer behind sequences and
// tuple-variant payloads.
type seqSerializer struct {
	elems  []*Value
	commit func([]*Value)
}

func (q *seqSerializer) Element(v interface{}) error {
	var out *Value
	sub := &valueSerializer{set: func(val *Value) { out = val }}
	if err := marshal(v, sub); err != nil {
		return err
	}
	q.elems = append(q.elems, out)
	return nil
}

func (q *seqSerializer) EndSeq() error {
	q.commit(q.elems)
	return nil
}

// mapSerializer is the growing table behind maps and structs.
type mapSerializer struct {
	tab    *Table
	commit func(*Table)
}

func (m *mapSerializer) Entry(key, v interface{}) error {
	k, err := encodeKey(key)
	if err != nil {
		return err
	}
	var out *Value
	sub := &valueSerializer{set: func(val *Value) { out = val }}
	err = marshal(v, sub)
	if errors.Is(err, ErrNilValue) {
		// An absent optional field vanishes from the table.
		return nil
	}
	if err != nil {
		return err
	}
	m.tab.Insert(k, out)
	return nil
}

func (m *mapSerializer) EndMap() error {
	m.commit(m.tab)
	return nil
}

// encodeKey runs the full encoder over a map key and requires the result
// to be a string.
func encodeKey(key interface{}) (string, error) {
	var out *Value
	sub := &valueSerializer{set: func(val *Value) { out = val }}
	if err := marshal(key, sub); err != nil {
		return "", err
	}
	s, ok := out.AsString()
	if !ok {
		return "", encodeErrorf("cannot encode map key: expected string, found %s", out.TypeStr())
	}
	return s, nil
}

// tableSerializer accepts only map- and struct-like outer shapes and
// produces a Table directly.
type tableSerializer struct {
	out *Table
}

func (s *tableSerializer) notTable(kind string) error {
	return encodeErrorf("unsupported value type: cannot encode %s as a table", kind)
}

func (s *tableSerializer) Bool(bool) error                  { return s.notTable("boolean") }
func (s *tableSerializer) Integer(int64) error              { return s.notTable("integer") }
func (s *tableSerializer) Unsigned(uint64) error            { return s.notTable("integer") }
func (s *tableSerializer) Float(float64) error              { return s.notTable("float") }
func (s *tableSerializer) Str(string) error                 { return s.notTable("string") }
func (s *tableSerializer) Bytes([]byte) error               { return s.notTable("byte array") }
func (s *tableSerializer) Datetime(datetime.Datetime) error { return s.notTable("datetime") }

func (s *tableSerializer) Nil() error {
	return ErrNilValue
}

func (s *tableSerializer) UnitVariant(tag string) error {
	return s.notTable("unit variant")
}

func (s *tableSerializer) NewtypeVariant(tag string, payload interface{}) error {
	inner, err := Encode(payload)
	if err != nil {
		return err
	}
	t := NewTable()
	t.Insert(tag, inner)
	s.out = t
	return nil
}

func (s *tableSerializer) BeginSeq(int) (SeqSerializer, error) {
	return nil, s.notTable("array")
}

func (s *tableSerializer) BeginTupleVariant(tag string, size int) (SeqSerializer, error) {
	return nil, s.notTable("tuple variant")
}

func (s *tableSerializer) BeginMap(size int) (MapSerializer, error) {
	return &mapSerializer{
		tab: NewTable(),
		commit: func(t *Table) {
			s.out = t
		},
	}, nil
}

func (s *tableSerializer) BeginStructVariant(tag string, size int) (MapSerializer, error) {
	return nil, encodeErrorf("unsupported value type: struct variant `%s`", tag)
}

// MarshalValue re-emits this value through the protocol, which is how a
// tree reaches a downstream consumer such as a text emitter. Scalars and
// arrays replay in stored order. A table's entries are regrouped into
// three passes, each preserving relative insertion order: flat entries
// (scalars and arrays containing no table), then arrays containing
// tables, then direct sub-tables. The TOML grammar needs a table's flat
// key/value lines to precede its [table] and [[array-of-tables]]
// headers; the regrouping happens only at emission and never mutates the
// stored table.
func (v *Value) MarshalValue(s Serializer) error {
	switch v.kind {
	case KindString:
		return s.Str(v.str)
	case KindInteger:
		return s.Integer(v.i)
	case KindFloat:
		return s.Float(v.f)
	case KindBoolean:
		return s.Bool(v.b)
	case KindDatetime:
		return s.Datetime(v.dt)
	case KindArray:
		seq, err := s.BeginSeq(len(v.arr))
		if err != nil {
			return err
		}
		for _, e := range v.arr {
			if err := seq.Element(e); err != nil {
				return err
			}
		}
		return seq.EndSeq()
	case KindTable:
		ms, err := s.BeginMap(v.tab.Len())
		if err != nil {
			return err
		}
		for pass := 0; pass < 3; pass++ {
			for _, e := range v.tab.Entries() {
				if emissionPass(e.Value) != pass {
					continue
				}
				if err := ms.Entry(e.Key, e.Value); err != nil {
					return err
				}
			}
		}
		return ms.EndMap()
	}
	return encodeErrorf("unsupported value type: %s", v.TypeStr())
}

// emissionPass classifies a table entry for the three-pass emission
// ordering.
func emissionPass(v *Value) int {
	switch v.kind {
	case KindTable:
		return 2
	case KindArray:
		for _, e := range v.arr {
			if e.IsTable() {
				return 1
			}
		}
		return 0
	default:
		return 0
	}
}
