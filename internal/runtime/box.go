package runtime

import (
	"fmt"
	"math"
	"sort"
)

// Box converts a Go value returned by native code into a Value.
func Box(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return None, nil
	case Value:
		return v, nil
	case bool:
		return BoolVal(v), nil
	case int:
		return IntVal(v), nil
	case int8:
		return IntVal(v), nil
	case int16:
		return IntVal(v), nil
	case int32:
		return IntVal(v), nil
	case int64:
		return IntVal(v), nil
	case uint:
		return boxUint(uint64(v))
	case uint8:
		return IntVal(v), nil
	case uint16:
		return IntVal(v), nil
	case uint32:
		return IntVal(v), nil
	case uint64:
		return boxUint(v)
	case float32:
		return FloatVal(v), nil
	case float64:
		return FloatVal(v), nil
	case string:
		return StringVal(v), nil
	case []Value:
		return &ArrayVal{Elements: v}, nil
	case []string:
		elems := make([]Value, len(v))
		for i, s := range v {
			elems[i] = StringVal(s)
		}
		return &ArrayVal{Elements: elems}, nil
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			bv, err := Box(e)
			if err != nil {
				return nil, err
			}
			elems[i] = bv
		}
		return &ArrayVal{Elements: elems}, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := NewDict()
		for _, k := range keys {
			bv, err := Box(v[k])
			if err != nil {
				return nil, err
			}
			d.Set(StringVal(k), bv)
		}
		return d, nil
	case map[Value]Value:
		return boxDict(len(v), func(add func(k Value, e any) error) error {
			for k, e := range v {
				if err := add(k, e); err != nil {
					return err
				}
			}
			return nil
		})
	case map[Value]any:
		return boxDict(len(v), func(add func(k Value, e any) error) error {
			for k, e := range v {
				if err := add(k, e); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return nil, fmt.Errorf("cannot convert Go value of type %T", x)
	}
}

func boxUint(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("cannot convert %d: out of Int range", v)
	}
	return IntVal(v), nil
}

// boxDict builds a Dictionary from Value-keyed Go maps. Entries are inserted
// in the order of their key's repr so the result does not depend on map
// iteration.
func boxDict(n int, each func(add func(k Value, e any) error) error) (Value, error) {
	type entry struct {
		key  Value
		repr string
		val  Value
	}
	entries := make([]entry, 0, n)
	err := each(func(k Value, e any) error {
		bv, err := Box(e)
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, repr: hostRepr(k), val: bv})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].repr < entries[b].repr })
	d := NewDict()
	for _, en := range entries {
		if err := d.Set(en.key, en.val); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Unbox converts a Value into plain Go data: int64, float64, string, bool,
// nil, []any and map[string]any. Other values are returned unchanged.
func Unbox(v Value) any {
	switch val := v.(type) {
	case IntVal:
		return int64(val)
	case FloatVal:
		return float64(val)
	case StringVal:
		return string(val)
	case BoolVal:
		return bool(val)
	case NoneVal:
		return nil
	case *ArrayVal:
		out := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = Unbox(e)
		}
		return out
	case *DictVal:
		out := make(map[string]any, val.Len())
		for idx, k := range val.keys {
			out[k.String()] = Unbox(val.vals[idx])
		}
		return out
	default:
		return v
	}
}
