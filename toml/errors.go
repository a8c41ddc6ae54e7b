package toml

import (
	"fmt"
	"strings"
)

// EncodeError reports why a Go value could not be converted into a Value.
type EncodeError struct {
	msg string
}

func (e *EncodeError) Error() string {
	return e.msg
}

// ErrNilValue is reported when a value with no representation (a nil
// pointer, nil interface, or an explicit Nil event) is encoded anywhere
// except a table entry position. The map accumulator recognizes exactly
// this error and omits the entry instead of failing, which is how absent
// optional fields vanish from the encoded tree.
var ErrNilValue = &EncodeError{msg: "unsupported nil value"}

func encodeErrorf(format string, args ...interface{}) *EncodeError {
	return &EncodeError{msg: fmt.Sprintf(format, args...)}
}

// DecodeError reports why a Value could not be converted into the
// requested target shape. As the error propagates out of nested tables it
// accumulates the keys it passed through, so callers get a locatable
// diagnostic without source positions.
type DecodeError struct {
	msg  string
	keys []string // outermost key first
}

func (e *DecodeError) Error() string {
	if len(e.keys) == 0 {
		return e.msg
	}
	return e.msg + " for key `" + strings.Join(e.keys, ".") + "`"
}

// Keys returns the table-key path at which the error occurred, outermost
// key first. Empty for top-level errors.
func (e *DecodeError) Keys() []string {
	return e.keys
}

func decodeErrorf(format string, args ...interface{}) *DecodeError {
	return &DecodeError{msg: fmt.Sprintf(format, args...)}
}

func (e *DecodeError) addKey(key string) {
	e.keys = append([]string{key}, e.keys...)
}

// annotate attaches a table key to a decode error as it propagates
// outward. Foreign errors are converted so the path survives.
func annotate(err error, key string) error {
	if err == nil {
		return nil
	}
	de, ok := err.(*DecodeError)
	if !ok {
		de = &DecodeError{msg: err.Error()}
	}
	de.addKey(key)
	return de
}

// invalidType builds the standard type-mismatch decode error.
func invalidType(got string, v Visitor) *DecodeError {
	return decodeErrorf("invalid type: %s, expected %s", got, v.Expecting())
}
