package runtime

import "fmt"

// DictVal represents a dictionary with insertion-ordered keys. Keys must be
// Int, Real, Bool, String or None; numerically equal keys (1, 1.0, True)
// address the same entry.
type DictVal struct {
	keys  []Value
	vals  []Value
	index map[Value]int
}

// NewDict creates an empty dictionary.
func NewDict() *DictVal {
	return &DictVal{index: make(map[Value]int)}
}

func (d *DictVal) TypeName() string { return "Dictionary" }
func (d *DictVal) String() string   { return formatDict(d, hostRepr) }

// Len returns the number of entries.
func (d *DictVal) Len() int { return len(d.keys) }

// Keys returns a copy of the keys in insertion order.
func (d *DictVal) Keys() []Value { return append([]Value(nil), d.keys...) }

// Values returns a copy of the values in insertion order.
func (d *DictVal) Values() []Value { return append([]Value(nil), d.vals...) }

// Get looks up a key.
func (d *DictVal) Get(key Value) (Value, bool) {
	k, err := hashKey(key)
	if err != nil {
		return nil, false
	}
	idx, ok := d.index[k]
	if !ok {
		return nil, false
	}
	return d.vals[idx], true
}

// Set inserts or replaces an entry. The first inserted form of a key is kept.
func (d *DictVal) Set(key, val Value) error {
	k, err := hashKey(key)
	if err != nil {
		return err
	}
	if idx, ok := d.index[k]; ok {
		d.vals[idx] = val
		return nil
	}
	d.index[k] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, val)
	return nil
}

// Delete removes a key and reports whether it was present.
func (d *DictVal) Delete(key Value) bool {
	k, err := hashKey(key)
	if err != nil {
		return false
	}
	idx, ok := d.index[k]
	if !ok {
		return false
	}
	d.keys = append(d.keys[:idx], d.keys[idx+1:]...)
	d.vals = append(d.vals[:idx], d.vals[idx+1:]...)
	delete(d.index, k)
	for i := idx; i < len(d.keys); i++ {
		hk, _ := hashKey(d.keys[i])
		d.index[hk] = i
	}
	return true
}

func (d *DictVal) clone() *DictVal {
	c := &DictVal{
		keys:  append([]Value(nil), d.keys...),
		vals:  make([]Value, len(d.vals)),
		index: make(map[Value]int, len(d.index)),
	}
	for i, v := range d.vals {
		c.vals[i] = Clone(v)
	}
	for k, i := range d.index {
		c.index[k] = i
	}
	return c
}

// hashKey normalizes a key so that numerically equal keys collide.
func hashKey(key Value) (Value, error) {
	switch k := key.(type) {
	case IntVal, StringVal, NoneVal:
		return k, nil
	case BoolVal:
		if k {
			return IntVal(1), nil
		}
		return IntVal(0), nil
	case FloatVal:
		if i, ok := ToInt64(k); ok {
			return IntVal(i), nil
		}
		return k, nil
	default:
		return nil, fmt.Errorf("unhashable type: '%s'", key.TypeName())
	}
}
