package toml

import (
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/wbrown/janus-toml/datetime"
)

// A Value is its own Deserializer: decoding is a synchronous recursive
// walk over the already-materialized tree. There is no I/O, no partial
// decode, and no cancellation; cost is proportional to tree size.

// Any dispatches on the value's own shape. Scalars invoke the matching
// visitor callback directly; a datetime degrades to its canonical string
// on this generic path. Arrays and tables drive the sequence and map
// adapters, and any elements or entries the visitor leaves unconsumed
// are a hard error.
func (v *Value) Any(vis Visitor) error {
	switch v.kind {
	case KindBoolean:
		return vis.VisitBool(v.b)
	case KindInteger:
		return vis.VisitInteger(v.i)
	case KindFloat:
		return vis.VisitFloat(v.f)
	case KindString:
		return vis.VisitString(v.str)
	case KindDatetime:
		return vis.VisitString(v.dt.String())
	case KindArray:
		sa := &seqAccess{elems: v.arr}
		if err := vis.VisitSeq(sa); err != nil {
			return err
		}
		if sa.pos != len(v.arr) {
			return decodeErrorf("invalid length %d, expected fewer elements in array", len(v.arr))
		}
		return nil
	case KindTable:
		ma := &mapAccess{entries: v.tab.Entries()}
		if err := vis.VisitMap(ma); err != nil {
			return err
		}
		if ma.pos != len(ma.entries) {
			return decodeErrorf("invalid length %d, expected fewer elements in map", v.tab.Len())
		}
		return nil
	}
	return invalidType(v.TypeStr(), vis)
}

// Option always reports presence: the tree has no absent variant, so an
// optional target can never observe absence while decoding from a Value.
func (v *Value) Option(vis Visitor) error {
	return vis.VisitSome(v)
}

// Enum resolves an externally-tagged variant. A bare string names a
// unit variant; a table must hold exactly one entry whose key names the
// variant and whose value is the payload.
func (v *Value) Enum(vis Visitor) error {
	switch v.kind {
	case KindString:
		return vis.VisitEnum(stringEnumAccess{tag: v.str})
	case KindTable:
		switch v.tab.Len() {
		case 0:
			return decodeErrorf("wanted exactly 1 element, found 0 elements")
		case 1:
			e := v.tab.Entries()[0]
			return vis.VisitEnum(tableEnumAccess{tag: e.Key, payload: e.Value})
		default:
			return decodeErrorf("wanted exactly 1 element, more than 1 element")
		}
	}
	return invalidType(v.TypeStr(), vis)
}

// seqAccess walks an array's elements in order.
type seqAccess struct {
	elems []*Value
	pos   int
}

func (a *seqAccess) NextElement() (Deserializer, bool) {
	if a.pos >= len(a.elems) {
		return nil, false
	}
	e := a.elems[a.pos]
	a.pos++
	return e, true
}

func (a *seqAccess) Size() int {
	return len(a.elems)
}

// mapAccess walks a table's entries in table order, offering each key
// and then its value.
type mapAccess struct {
	entries []Entry
	pos     int
	pending *Entry
}

func (m *mapAccess) NextKey() (string, bool) {
	if m.pos >= len(m.entries) {
		return "", false
	}
	e := &m.entries[m.pos]
	m.pos++
	m.pending = e
	return e.Key, true
}

func (m *mapAccess) NextValue() (Deserializer, error) {
	if m.pending == nil {
		return nil, decodeErrorf("value is missing")
	}
	e := m.pending
	m.pending = nil
	return &keyed{key: e.Key, val: e.Value}, nil
}

func (m *mapAccess) Size() int {
	return len(m.entries)
}

// keyed wraps a table entry's value so decode errors carry the key they
// occurred under, building a path as they propagate outward.
type keyed struct {
	key string
	val *Value
}

func (k *keyed) Any(vis Visitor) error {
	return annotate(k.val.Any(vis), k.key)
}

func (k *keyed) Option(vis Visitor) error {
	return annotate(k.val.Option(vis), k.key)
}

func (k *keyed) Enum(vis Visitor) error {
	return annotate(k.val.Enum(vis), k.key)
}

// stringEnumAccess resolves a bare string tag: a unit variant with no
// payload.
type stringEnumAccess struct {
	tag string
}

func (e stringEnumAccess) Variant() (string, VariantAccess, error) {
	return e.tag, bareVariant{}, nil
}

type bareVariant struct{}

func (bareVariant) UnitVariant() error {
	return nil
}

func (bareVariant) NewtypeVariant() (Deserializer, error) {
	return nil, decodeErrorf("invalid type: unit variant, expected newtype variant")
}

func (bareVariant) TupleVariant(int, Visitor) error {
	return decodeErrorf("invalid type: unit variant, expected tuple variant")
}

func (bareVariant) StructVariant(Visitor) error {
	return decodeErrorf("invalid type: unit variant, expected struct variant")
}

// tableEnumAccess resolves a single-entry table: the key names the
// variant, the value is its payload.
type tableEnumAccess struct {
	tag     string
	payload *Value
}

func (e tableEnumAccess) Variant() (string, VariantAccess, error) {
	return e.tag, payloadVariant{value: e.payload}, nil
}

type payloadVariant struct {
	value *Value
}

func (p payloadVariant) UnitVariant() error {
	t, ok := p.value.AsTable()
	if !ok {
		return decodeErrorf("expected table, found %s", p.value.TypeStr())
	}
	if !t.IsEmpty() {
		return decodeErrorf("expected empty table")
	}
	return nil
}

func (p payloadVariant) NewtypeVariant() (Deserializer, error) {
	return p.value, nil
}

// TupleVariant requires the payload table to be keyed "0".."size-1"
// with each numeric key in its own position, then decodes the values as
// a fixed-size sequence.
func (p payloadVariant) TupleVariant(size int, vis Visitor) error {
	t, ok := p.value.AsTable()
	if !ok {
		return decodeErrorf("expected table, found %s", p.value.TypeStr())
	}
	elems := make([]*Value, 0, size)
	for i, e := range t.Entries() {
		idx, err := strconv.Atoi(e.Key)
		if err != nil || idx != i {
			return decodeErrorf("expected table key `%d`, but was `%s`", i, e.Key)
		}
		elems = append(elems, e.Value)
	}
	if len(elems) != size {
		return decodeErrorf("expected tuple with length %d", size)
	}
	sa := &seqAccess{elems: elems}
	if err := vis.VisitSeq(sa); err != nil {
		return err
	}
	if sa.pos != len(elems) {
		return decodeErrorf("invalid length %d, expected fewer elements in array", len(elems))
	}
	return nil
}

func (p payloadVariant) StructVariant(vis Visitor) error {
	t, ok := p.value.AsTable()
	if !ok {
		return decodeErrorf("expected table, found %s", p.value.TypeStr())
	}
	ma := &mapAccess{entries: t.Entries()}
	if err := vis.VisitMap(ma); err != nil {
		return err
	}
	if ma.pos != len(ma.entries) {
		return decodeErrorf("invalid length %d, expected fewer elements in map", t.Len())
	}
	return nil
}

// ValueFrom materializes a Value from any Deserializer. An external
// text parser implements Deserializer over its token stream and calls
// this to build the tree; decoding a *Value target routes through it
// too.
//
// This is the one path that recovers a native datetime: a map whose
// first key equals datetime.SentinelKey is not a table at all but one
// embedded datetime, carried as its canonical string under that key.
// Ordinary maps become tables, and a key repeating an earlier key is
// rejected rather than silently overwritten.
func ValueFrom(d Deserializer) (*Value, error) {
	vv := newValueVisitor()
	if err := d.Any(vv); err != nil {
		return nil, err
	}
	return vv.out, nil
}

type valueVisitor struct {
	BaseVisitor
	out *Value
}

func newValueVisitor() *valueVisitor {
	return &valueVisitor{BaseVisitor: BaseVisitor{Desc: "any valid TOML value"}}
}

func (vv *valueVisitor) VisitBool(b bool) error {
	vv.out = Boolean(b)
	return nil
}

func (vv *valueVisitor) VisitInteger(i int64) error {
	vv.out = Integer(i)
	return nil
}

func (vv *valueVisitor) VisitUnsigned(u uint64) error {
	if u > math.MaxInt64 {
		return decodeErrorf("u64 value was too large")
	}
	vv.out = Integer(int64(u))
	return nil
}

func (vv *valueVisitor) VisitFloat(f float64) error {
	vv.out = Float(f)
	return nil
}

func (vv *valueVisitor) VisitString(s string) error {
	vv.out = String(s)
	return nil
}

func (vv *valueVisitor) VisitSome(d Deserializer) error {
	v, err := ValueFrom(d)
	if err != nil {
		return err
	}
	vv.out = v
	return nil
}

func (vv *valueVisitor) VisitSeq(sa SeqAccess) error {
	elems := make([]*Value, 0, sa.Size())
	for {
		d, ok := sa.NextElement()
		if !ok {
			break
		}
		v, err := ValueFrom(d)
		if err != nil {
			return err
		}
		elems = append(elems, v)
	}
	vv.out = Array(elems...)
	return nil
}

func (vv *valueVisitor) VisitMap(ma MapAccess) error {
	key, ok := ma.NextKey()
	if !ok {
		vv.out = TableValue(NewTable())
		return nil
	}
	if key == datetime.SentinelKey {
		// Not a table: one embedded datetime in canonical text form.
		vd, err := ma.NextValue()
		if err != nil {
			return err
		}
		sv := &stringVisitor{BaseVisitor: BaseVisitor{Desc: "a datetime string"}}
		if err := vd.Any(sv); err != nil {
			return err
		}
		dt, err := datetime.Parse(sv.s)
		if err != nil {
			return decodeErrorf("%s", err)
		}
		vv.out = Datetime(dt)
		return nil
	}
	tab := NewTable()
	vd, err := ma.NextValue()
	if err != nil {
		return err
	}
	v, err := ValueFrom(vd)
	if err != nil {
		return err
	}
	tab.Insert(key, v)
	for {
		key, ok := ma.NextKey()
		if !ok {
			break
		}
		if tab.Has(key) {
			return decodeErrorf("duplicate key: `%s`", key)
		}
		vd, err := ma.NextValue()
		if err != nil {
			return err
		}
		v, err := ValueFrom(vd)
		if err != nil {
			return err
		}
		tab.Insert(key, v)
	}
	vv.out = TableValue(tab)
	return nil
}

// stringVisitor accepts exactly one string.
type stringVisitor struct {
	BaseVisitor
	s string
}

func (v *stringVisitor) VisitString(s string) error {
	v.s = s
	return nil
}

// Decode reconstructs target from the value tree. The target must be a
// non-nil pointer: to a scalar, slice, array, string-keyed map, struct
// (honoring `toml:"name"`, `toml:"-"` and omitempty tags the same way
// Encode does), interface{}, *Value, *Table, datetime.Datetime,
// time.Time, or any type implementing Unmarshaler.
//
// Unknown table keys are skipped when decoding into a struct; absent
// keys leave the corresponding field at its zero value.
func (v *Value) Decode(target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErrorf("decode target must be a non-nil pointer, got %T", target)
	}
	return decodeValue(v, rv.Elem())
}

var (
	datetimeType = reflect.TypeOf(datetime.Datetime{})
	timeType     = reflect.TypeOf(time.Time{})
	valueType    = reflect.TypeOf(Value{})
	tableType    = reflect.TypeOf(Table{})
)

// decodeValue decodes whatever d holds into the settable dst.
func decodeValue(d Deserializer, dst reflect.Value) error {
	if dst.CanAddr() {
		if u, ok := dst.Addr().Interface().(Unmarshaler); ok {
			return u.UnmarshalValue(d)
		}
	}
	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return decodeValue(d, dst.Elem())
	}
	switch dst.Type() {
	case datetimeType:
		dt, err := decodeDatetime(d)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(dt))
		return nil
	case timeType:
		dt, err := decodeDatetime(d)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(dt.AsTime(time.Local)))
		return nil
	case valueType:
		v, err := ValueFrom(d)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(*v))
		return nil
	case tableType:
		v, err := ValueFrom(d)
		if err != nil {
			return err
		}
		t, ok := v.AsTable()
		if !ok {
			return decodeErrorf("invalid type: %s, expected table", v.TypeStr())
		}
		dst.Set(reflect.ValueOf(*t))
		return nil
	}
	return d.Any(&anyVisitor{dst: dst})
}

// decodeDatetime reads a datetime through the generic path, where it
// arrives as its canonical string, and parses it back.
func decodeDatetime(d Deserializer) (datetime.Datetime, error) {
	sv := &stringVisitor{BaseVisitor: BaseVisitor{Desc: "a datetime string"}}
	if err := d.Any(sv); err != nil {
		return datetime.Datetime{}, err
	}
	dt, err := datetime.Parse(sv.s)
	if err != nil {
		return datetime.Datetime{}, decodeErrorf("%s", err)
	}
	return dt, nil
}

// anyVisitor decodes into an arbitrary reflect destination.
type anyVisitor struct {
	dst reflect.Value
}

func (a *anyVisitor) Expecting() string {
	if a.dst.Kind() == reflect.Interface {
		return "any valid TOML value"
	}
	return a.dst.Type().String()
}

func (a *anyVisitor) reject(got string) error {
	return decodeErrorf("invalid type: %s, expected %s", got, a.Expecting())
}

// emptyInterface reports whether dst can hold any boxed value.
func (a *anyVisitor) emptyInterface() bool {
	return a.dst.Kind() == reflect.Interface && a.dst.NumMethod() == 0
}

func (a *anyVisitor) VisitBool(b bool) error {
	switch {
	case a.dst.Kind() == reflect.Bool:
		a.dst.SetBool(b)
	case a.emptyInterface():
		a.dst.Set(reflect.ValueOf(b))
	default:
		return a.reject("boolean")
	}
	return nil
}

func (a *anyVisitor) VisitInteger(i int64) error {
	switch a.dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if a.dst.OverflowInt(i) {
			return decodeErrorf("integer %d does not fit in %s", i, a.dst.Type())
		}
		a.dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || a.dst.OverflowUint(uint64(i)) {
			return decodeErrorf("integer %d does not fit in %s", i, a.dst.Type())
		}
		a.dst.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		a.dst.SetFloat(float64(i))
	default:
		if a.emptyInterface() {
			a.dst.Set(reflect.ValueOf(i))
			return nil
		}
		return a.reject("integer")
	}
	return nil
}

func (a *anyVisitor) VisitUnsigned(u uint64) error {
	if u > math.MaxInt64 {
		switch a.dst.Kind() {
		case reflect.Uint64, reflect.Uint, reflect.Uintptr:
			a.dst.SetUint(u)
			return nil
		}
		return decodeErrorf("u64 value was too large")
	}
	return a.VisitInteger(int64(u))
}

func (a *anyVisitor) VisitFloat(f float64) error {
	switch a.dst.Kind() {
	case reflect.Float32, reflect.Float64:
		a.dst.SetFloat(f)
	default:
		if a.emptyInterface() {
			a.dst.Set(reflect.ValueOf(f))
			return nil
		}
		return a.reject("float")
	}
	return nil
}

func (a *anyVisitor) VisitString(s string) error {
	switch {
	case a.dst.Kind() == reflect.String:
		a.dst.SetString(s)
	case a.emptyInterface():
		a.dst.Set(reflect.ValueOf(s))
	default:
		return a.reject("string")
	}
	return nil
}

func (a *anyVisitor) VisitSome(d Deserializer) error {
	return decodeValue(d, a.dst)
}

func (a *anyVisitor) VisitSeq(sa SeqAccess) error {
	switch a.dst.Kind() {
	case reflect.Slice:
		elemType := a.dst.Type().Elem()
		out := reflect.MakeSlice(a.dst.Type(), 0, sa.Size())
		for {
			d, ok := sa.NextElement()
			if !ok {
				break
			}
			elem := reflect.New(elemType).Elem()
			if err := decodeValue(d, elem); err != nil {
				return err
			}
			out = reflect.Append(out, elem)
		}
		a.dst.Set(out)
	case reflect.Array:
		for i := 0; i < a.dst.Len(); i++ {
			d, ok := sa.NextElement()
			if !ok {
				return decodeErrorf("invalid length %d, expected an array of length %d", i, a.dst.Len())
			}
			if err := decodeValue(d, a.dst.Index(i)); err != nil {
				return err
			}
		}
	default:
		if !a.emptyInterface() {
			return a.reject("array")
		}
		out := make([]interface{}, 0, sa.Size())
		for {
			d, ok := sa.NextElement()
			if !ok {
				break
			}
			var elem interface{}
			if err := decodeValue(d, reflect.ValueOf(&elem).Elem()); err != nil {
				return err
			}
			out = append(out, elem)
		}
		a.dst.Set(reflect.ValueOf(out))
	}
	return nil
}

func (a *anyVisitor) VisitMap(ma MapAccess) error {
	switch a.dst.Kind() {
	case reflect.Map:
		keyType := a.dst.Type().Key()
		if keyType.Kind() != reflect.String {
			return decodeErrorf("cannot decode table into map with %s keys", keyType)
		}
		elemType := a.dst.Type().Elem()
		out := reflect.MakeMapWithSize(a.dst.Type(), ma.Size())
		for {
			key, ok := ma.NextKey()
			if !ok {
				break
			}
			d, err := ma.NextValue()
			if err != nil {
				return err
			}
			elem := reflect.New(elemType).Elem()
			if err := decodeValue(d, elem); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(keyType), elem)
		}
		a.dst.Set(out)
	case reflect.Struct:
		byName := make(map[string]structField)
		for _, f := range cachedFields(a.dst.Type()) {
			byName[f.name] = f
		}
		for {
			key, ok := ma.NextKey()
			if !ok {
				break
			}
			d, err := ma.NextValue()
			if err != nil {
				return err
			}
			f, known := byName[key]
			if !known {
				// Unknown keys are skipped, but must still be consumed.
				if err := d.Any(ignoredVisitor{}); err != nil {
					return err
				}
				continue
			}
			if err := decodeValue(d, a.dst.FieldByIndex(f.index)); err != nil {
				return err
			}
		}
	default:
		if !a.emptyInterface() {
			return a.reject("table")
		}
		out := make(map[string]interface{}, ma.Size())
		for {
			key, ok := ma.NextKey()
			if !ok {
				break
			}
			d, err := ma.NextValue()
			if err != nil {
				return err
			}
			var elem interface{}
			if err := decodeValue(d, reflect.ValueOf(&elem).Elem()); err != nil {
				return err
			}
			out[key] = elem
		}
		a.dst.Set(reflect.ValueOf(out))
	}
	return nil
}

func (a *anyVisitor) VisitEnum(EnumAccess) error {
	return a.reject("enum")
}

// ignoredVisitor consumes and discards any value.
type ignoredVisitor struct{}

func (ignoredVisitor) Expecting() string          { return "ignored value" }
func (ignoredVisitor) VisitBool(bool) error       { return nil }
func (ignoredVisitor) VisitInteger(int64) error   { return nil }
func (ignoredVisitor) VisitUnsigned(uint64) error { return nil }
func (ignoredVisitor) VisitFloat(float64) error   { return nil }
func (ignoredVisitor) VisitString(string) error   { return nil }

func (ig ignoredVisitor) VisitSome(d Deserializer) error {
	return d.Any(ig)
}

func (ig ignoredVisitor) VisitSeq(sa SeqAccess) error {
	for {
		d, ok := sa.NextElement()
		if !ok {
			return nil
		}
		if err := d.Any(ig); err != nil {
			return err
		}
	}
}

func (ig ignoredVisitor) VisitMap(ma MapAccess) error {
	for {
		_, ok := ma.NextKey()
		if !ok {
			return nil
		}
		d, err := ma.NextValue()
		if err != nil {
			return err
		}
		if err := d.Any(ig); err != nil {
			return err
		}
	}
}

func (ignoredVisitor) VisitEnum(EnumAccess) error {
	return nil
}
