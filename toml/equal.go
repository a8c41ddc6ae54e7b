package toml

// Equal reports deep equality: the variant tags must match and the
// payloads must be deeply equal. Arrays compare element-wise in order;
// tables compare entry-wise by key. Floats compare with ==, so NaN is
// never equal to anything, including itself.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInteger:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBoolean:
		return v.b == other.b
	case KindDatetime:
		return v.dt.Equal(other.dt)
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i, e := range v.arr {
			if !e.Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindTable:
		return v.tab.Equal(other.tab)
	}
	return false
}
