package toml

// Index selects an element of a Value: a Key selects a table entry and a
// Pos selects an array element. The interface is sealed; these two are
// the only index kinds.
type Index interface {
	index(v *Value) *Value
}

// Key indexes a table by entry key. Applied to any non-table value, or
// for an absent key, the lookup yields nil.
type Key string

func (k Key) index(v *Value) *Value {
	if t, ok := v.AsTable(); ok {
		return t.Get(string(k))
	}
	return nil
}

// Pos indexes an array by position. Applied to any non-array value, or
// out of range (including negative), the lookup yields nil.
type Pos int

func (p Pos) index(v *Value) *Value {
	if arr, ok := v.AsArray(); ok {
		if p >= 0 && int(p) < len(arr) {
			return arr[p]
		}
	}
	return nil
}
