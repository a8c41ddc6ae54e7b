package toml

import (
	"github.com/wbrown/janus-toml/datetime"
)

// This file defines the generic object-serialization protocol the value
// tree speaks on both sides of the codec bridge.
//
// Encoding: a typed value (or the reflection driver acting for it) emits
// events into a Serializer. The two serializers in encode.go accumulate
// those events into a Value or a Table.
//
// Decoding: a Deserializer drives a Visitor with the events describing
// one value. A *Value is itself a Deserializer, which is how typed values
// are rebuilt from a tree; an external text parser can implement
// Deserializer over its token stream and materialize a tree through
// ValueFrom with the very same Visitor contract.

// Marshaler is implemented by types that encode themselves by emitting
// protocol events. This is also the hook for Go sum types: a variant
// encodes itself through UnitVariant, NewtypeVariant, BeginTupleVariant,
// or BeginStructVariant.
type Marshaler interface {
	MarshalValue(s Serializer) error
}

// Serializer receives the events a typed value emits while encoding.
// Scalar events carry the value directly; sequences and maps open
// accumulator sub-serializers that must be closed with their End call.
type Serializer interface {
	Bool(v bool) error
	Integer(v int64) error
	// Unsigned reports an error when v exceeds the signed 64-bit range.
	Unsigned(v uint64) error
	Float(v float64) error
	Str(v string) error
	// Bytes encodes a byte string as an array of integers, one element
	// per byte. Deliberately lossy-but-reversible: there is no native
	// byte-string variant.
	Bytes(v []byte) error
	Datetime(v datetime.Datetime) error
	// Nil marks the absence of a value. It always reports ErrNilValue;
	// only a map accumulator's Entry turns that into a silent omission.
	Nil() error

	// UnitVariant encodes a payload-less variant as the plain string tag.
	UnitVariant(tag string) error
	// NewtypeVariant encodes a single-payload variant as the one-entry
	// table {tag: payload}.
	NewtypeVariant(tag string, payload interface{}) error
	// BeginTupleVariant encodes a multi-payload variant as the one-entry
	// table {tag: [payloads...]}.
	BeginTupleVariant(tag string, size int) (SeqSerializer, error)
	// BeginStructVariant has no chosen encoding; both encoders report
	// an error. Struct variants are still decodable (VariantAccess).
	BeginStructVariant(tag string, size int) (MapSerializer, error)

	BeginSeq(size int) (SeqSerializer, error)
	BeginMap(size int) (MapSerializer, error)
}

// SeqSerializer accumulates sequence elements in order.
type SeqSerializer interface {
	// Element encodes one element through the full encoder.
	Element(v interface{}) error
	// EndSeq finishes the sequence and commits it to the parent.
	EndSeq() error
}

// MapSerializer accumulates key/value entries in order.
type MapSerializer interface {
	// Entry encodes one entry. The key must itself encode to a string.
	// A value whose encoding reports ErrNilValue is silently omitted.
	Entry(key, v interface{}) error
	// EndMap finishes the table and commits it to the parent.
	EndMap() error
}

// Unmarshaler is implemented by types that rebuild themselves by driving
// a Deserializer. This is the hook for decoding Go sum types through
// Deserializer.Enum.
type Unmarshaler interface {
	UnmarshalValue(d Deserializer) error
}

// Deserializer is the source side of a decode: it knows one value and
// feeds the matching Visitor callback. A *Value implements it by walking
// the tree.
type Deserializer interface {
	// Any dispatches on the source's own shape.
	Any(v Visitor) error
	// Option decodes an optional value. A Value source always reports
	// presence via VisitSome, because the tree has no absent variant.
	Option(v Visitor) error
	// Enum decodes an externally-tagged variant: a plain string names a
	// unit variant, a single-entry table maps the tag to its payload.
	Enum(v Visitor) error
}

// Visitor receives the events of one decoded value and builds the typed
// result. Implementations embed BaseVisitor and override the callbacks
// for the shapes they accept; everything else reports a type mismatch
// naming Expecting.
//
// There is no datetime callback: the generic decode path degrades a
// datetime to its canonical string, delivered through VisitString. Only
// ValueFrom rebuilds a native datetime, via the sentinel key probe.
type Visitor interface {
	// Expecting describes the shape this visitor accepts, for error
	// messages.
	Expecting() string

	VisitBool(v bool) error
	VisitInteger(v int64) error
	VisitUnsigned(v uint64) error
	VisitFloat(v float64) error
	VisitString(v string) error
	VisitSome(d Deserializer) error
	VisitSeq(s SeqAccess) error
	VisitMap(m MapAccess) error
	VisitEnum(e EnumAccess) error
}

// SeqAccess hands out sequence elements one at a time. Elements left
// unconsumed when the visitor returns are a hard error in the caller.
type SeqAccess interface {
	// NextElement returns the next element's deserializer, or false
	// when the sequence is exhausted.
	NextElement() (Deserializer, bool)
	// Size returns the total number of elements.
	Size() int
}

// MapAccess hands out entries as a key followed by its value. Entries
// left unconsumed when the visitor returns are a hard error in the
// caller.
type MapAccess interface {
	// NextKey advances to the next entry and offers its key, or reports
	// false when the map is exhausted. The entry's value is then pending
	// until NextValue is called.
	NextKey() (string, bool)
	// NextValue returns the pending value's deserializer. Calling it
	// without a preceding successful NextKey is an error. Decode errors
	// produced through the returned deserializer carry the entry's key.
	NextValue() (Deserializer, error)
	// Size returns the total number of entries.
	Size() int
}

// EnumAccess resolves the variant tag of an externally-tagged value.
type EnumAccess interface {
	Variant() (tag string, va VariantAccess, err error)
}

// VariantAccess decodes a resolved variant's payload in the shape the
// target declares.
type VariantAccess interface {
	// UnitVariant requires an empty payload (an empty table, or a bare
	// string tag which has no payload at all).
	UnitVariant() error
	// NewtypeVariant returns the payload for direct decoding.
	NewtypeVariant() (Deserializer, error)
	// TupleVariant requires the payload to be a table keyed "0".."n-1"
	// in positional order and decodes the values as a fixed-size
	// sequence through v.
	TupleVariant(size int, v Visitor) error
	// StructVariant forwards the payload table into the named-field
	// decoding path through v.
	StructVariant(v Visitor) error
}

// BaseVisitor rejects every event with a type-mismatch error naming
// Desc. Concrete visitors embed it and override what they accept.
type BaseVisitor struct {
	Desc string
}

// Expecting returns the embedded description.
func (b BaseVisitor) Expecting() string { return b.Desc }

func (b BaseVisitor) reject(got string) error {
	return decodeErrorf("invalid type: %s, expected %s", got, b.Desc)
}

func (b BaseVisitor) VisitBool(bool) error         { return b.reject("boolean") }
func (b BaseVisitor) VisitInteger(int64) error     { return b.reject("integer") }
func (b BaseVisitor) VisitUnsigned(uint64) error   { return b.reject("integer") }
func (b BaseVisitor) VisitFloat(float64) error     { return b.reject("float") }
func (b BaseVisitor) VisitString(string) error     { return b.reject("string") }
func (b BaseVisitor) VisitSome(Deserializer) error { return b.reject("optional value") }
func (b BaseVisitor) VisitSeq(SeqAccess) error     { return b.reject("array") }
func (b BaseVisitor) VisitMap(MapAccess) error     { return b.reject("table") }
func (b BaseVisitor) VisitEnum(EnumAccess) error   { return b.reject("enum") }
