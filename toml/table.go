package toml

// Entry is one key/value pair of a Table.
type Entry struct {
	Key   string
	Value *Value
}

// Table is an insertion-ordered mapping from unique string keys to values.
// Iteration order always equals insertion order; replacing a key's value
// keeps its original position.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// TableOf builds a table from entries in order. A repeated key replaces
// the earlier value in place.
func TableOf(entries ...Entry) *Table {
	t := NewTable()
	for _, e := range entries {
		t.Insert(e.Key, e.Value)
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// IsEmpty reports whether the table has no entries.
func (t *Table) IsEmpty() bool {
	return len(t.entries) == 0
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Get returns the value stored under key, or nil if absent. The returned
// pointer aliases the table entry, so mutating through it updates the
// table.
func (t *Table) Get(key string) *Value {
	if i, ok := t.index[key]; ok {
		return t.entries[i].Value
	}
	return nil
}

// Insert stores v under key. An existing key keeps its position and has
// its value replaced; a new key is appended.
func (t *Table) Insert(key string, v *Value) {
	if i, ok := t.index[key]; ok {
		t.entries[i].Value = v
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: key, Value: v})
}

// InsertIfAbsent stores v under key only when the key is vacant and
// reports whether it inserted.
func (t *Table) InsertIfAbsent(key string, v *Value) bool {
	if _, ok := t.index[key]; ok {
		return false
	}
	t.Insert(key, v)
	return true
}

// Remove deletes key and returns its value, or nil if the key was absent.
// Later entries shift down, preserving their relative order.
func (t *Table) Remove(key string) *Value {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	v := t.entries[i].Value
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, key)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Key] = j
	}
	return v
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns the entries in insertion order. The slice is shared
// with the table; callers must not grow it.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Range calls fn for each entry in insertion order until fn returns
// false.
func (t *Table) Range(fn func(key string, v *Value) bool) {
	for _, e := range t.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Equal reports deep equality: the same keys bound to deeply-equal
// values. Entry order does not participate in equality.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.entries) != len(other.entries) {
		return false
	}
	for _, e := range t.entries {
		ov := other.Get(e.Key)
		if ov == nil || !e.Value.Equal(ov) {
			return false
		}
	}
	return true
}
