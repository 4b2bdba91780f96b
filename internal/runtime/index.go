package runtime

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ecp/internal/ast"
)

func indexErrorf(format string, args ...interface{}) error {
	return &opError{code: CodeIndex, msg: fmt.Sprintf(format, args...)}
}

// ============================================================
// Reading through an indexing chain
// ============================================================

// walkChain applies each [expr] or .name step to v. Each step yields the
// stored element itself, so later mutation acts in place.
func (i *Interpreter) walkChain(v Value, chain []ast.Index) (Value, error) {
	for _, step := range chain {
		var err error
		v, err = i.step(v, step)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (i *Interpreter) step(v Value, step ast.Index) (Value, error) {
	switch idx := step.(type) {
	case *ast.ValueIndex:
		key, err := i.evalExpr(idx.Expr)
		if err != nil {
			return nil, err
		}
		res, err := getItem(v, key)
		if err != nil {
			return nil, i.at(idx.Span, err)
		}
		return res, nil
	case *ast.PropertyIndex:
		res, err := getProperty(v, idx.Name)
		if err != nil {
			return nil, i.at(idx.Span, err)
		}
		return res, nil
	default:
		return nil, i.errorf(CodeType, step.GetSpan(), "unhandled index type: %T", step)
	}
}

// position converts an index into a slice position, counting negative
// indexes from the end.
func position(key Value, length int, what string) (int, error) {
	p, ok := ToInt64(key)
	if _, isFloat := key.(FloatVal); !ok || isFloat {
		return 0, TypeErrorf("%s indices must be integers, not '%s'", what, key.TypeName())
	}
	if p < 0 {
		p += int64(length)
	}
	if p < 0 || p >= int64(length) {
		return 0, indexErrorf("%s index out of range", what)
	}
	return int(p), nil
}

func getItem(v, key Value) (Value, error) {
	switch c := v.(type) {
	case *ArrayVal:
		p, err := position(key, len(c.Elements), "array")
		if err != nil {
			return nil, err
		}
		return c.Elements[p], nil
	case StringVal:
		runes := []rune(string(c))
		p, err := position(key, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return StringVal(string(runes[p])), nil
	case *DictVal:
		if _, err := hashKey(key); err != nil {
			return nil, TypeErrorf("%s", err)
		}
		res, ok := c.Get(key)
		if !ok {
			return nil, indexErrorf("key not found: %s", hostRepr(key))
		}
		return res, nil
	default:
		return nil, TypeErrorf("'%s' object is not subscriptable", v.TypeName())
	}
}

func getProperty(v Value, name string) (Value, error) {
	switch c := v.(type) {
	case *InstanceVal, *ClassVal:
		table, _, _ := props(c)
		if res, ok := table[name]; ok {
			return res, nil
		}
	case *RecordInstance:
		if res, ok := c.Fields[name]; ok {
			return res, nil
		}
	case *ModuleVal:
		if res, ok := c.Scope.Get(name); ok {
			return res, nil
		}
		return nil, indexErrorf("module '%s' has no attribute '%s'", c.Name, name)
	case *BuiltinModule:
		if res, ok := c.Get(name); ok {
			return res, nil
		}
		return nil, indexErrorf("module '%s' has no attribute '%s'", c.Name, name)
	case *ArrayVal:
		if m := arrayMethod(c, name); m != nil {
			return m, nil
		}
	case *DictVal:
		if m := dictMethod(c, name); m != nil {
			return m, nil
		}
	case StringVal:
		if m := stringMethod(c, name); m != nil {
			return m, nil
		}
	}
	return nil, indexErrorf("'%s' object has no property '%s'", v.TypeName(), name)
}

// ============================================================
// Indexed assignment
// ============================================================

// assignIndexed mutates the container reached by target's chain. The base
// name is resolved through the whole scope chain.
func (i *Interpreter) assignIndexed(target *ast.Var, val Value) error {
	owner := i.scope.Lookup(target.Name)
	if owner == nil {
		return i.nameError(target)
	}
	base, _ := owner.Get(target.Name)
	container, err := i.walkChain(base, target.Chain[:len(target.Chain)-1])
	if err != nil {
		return err
	}

	last := target.Chain[len(target.Chain)-1]
	switch idx := last.(type) {
	case *ast.ValueIndex:
		key, err := i.evalExpr(idx.Expr)
		if err != nil {
			return err
		}
		if err := setItem(container, key, Clone(val)); err != nil {
			return i.at(idx.Span, err)
		}
	case *ast.PropertyIndex:
		if err := setProperty(container, idx.Name, Clone(val)); err != nil {
			return i.at(idx.Span, err)
		}
	}
	owner.Touch(target.Name)
	return nil
}

func setItem(container, key, val Value) error {
	switch c := container.(type) {
	case *ArrayVal:
		p, err := position(key, len(c.Elements), "array")
		if err != nil {
			return err
		}
		c.Elements[p] = val
		return nil
	case *DictVal:
		if err := c.Set(key, val); err != nil {
			return TypeErrorf("%s", err)
		}
		return nil
	default:
		return TypeErrorf("'%s' object does not support item assignment", container.TypeName())
	}
}

func setProperty(container Value, name string, val Value) error {
	switch c := container.(type) {
	case *InstanceVal, *ClassVal:
		table, order, _ := props(c)
		if _, exists := table[name]; !exists {
			*order = append(*order, name)
		}
		table[name] = val
		return nil
	case *RecordInstance:
		if !c.Record.HasField(name) {
			return indexErrorf("record '%s' has no field '%s'", c.Record.Name, name)
		}
		c.Fields[name] = val
		return nil
	case *ModuleVal:
		if err := c.Scope.Set(name, val); err != nil {
			return &opError{code: CodeConstant, msg: err.Error()}
		}
		return nil
	default:
		return TypeErrorf("cannot set property '%s' on '%s'", name, container.TypeName())
	}
}

// ============================================================
// Member methods of builtin types
// ============================================================

func method(name string, fn NativeFunc) *BuiltinVal {
	return &BuiltinVal{Name: name, Fn: fn}
}

func arrayMethod(a *ArrayVal, name string) Value {
	switch name {
	case "append":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			a.Elements = append(a.Elements, Clone(args[0]))
			return nil, nil
		})
	case "pop":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 0, 1); err != nil {
				return nil, err
			}
			if len(a.Elements) == 0 {
				return nil, indexErrorf("pop from empty array")
			}
			var key Value = IntVal(-1)
			if len(args) == 1 {
				key = args[0]
			}
			p, err := position(key, len(a.Elements), "pop")
			if err != nil {
				return nil, err
			}
			v := a.Elements[p]
			a.Elements = append(a.Elements[:p], a.Elements[p+1:]...)
			return v, nil
		})
	case "insert":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 2, 2); err != nil {
				return nil, err
			}
			n, ok := ToInt64(args[0])
			if _, isFloat := args[0].(FloatVal); !ok || isFloat {
				return nil, TypeErrorf("insert() index must be an integer, not '%s'", args[0].TypeName())
			}
			size := int64(len(a.Elements))
			if n < 0 {
				n += size
			}
			n = min(max(n, 0), size)
			a.Elements = append(a.Elements, nil)
			copy(a.Elements[n+1:], a.Elements[n:])
			a.Elements[n] = Clone(args[1])
			return nil, nil
		})
	case "length":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 0, 0); err != nil {
				return nil, err
			}
			return len(a.Elements), nil
		})
	}
	return nil
}

func dictMethod(d *DictVal, name string) Value {
	switch name {
	case "keys":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 0, 0); err != nil {
				return nil, err
			}
			return d.Keys(), nil
		})
	case "values":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 0, 0); err != nil {
				return nil, err
			}
			vals := d.Values()
			for idx, v := range vals {
				vals[idx] = Clone(v)
			}
			return vals, nil
		})
	case "has":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			_, ok := d.Get(args[0])
			return ok, nil
		})
	case "remove":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 1, 1); err != nil {
				return nil, err
			}
			v, ok := d.Get(args[0])
			if !ok {
				return nil, indexErrorf("key not found: %s", hostRepr(args[0]))
			}
			d.Delete(args[0])
			return v, nil
		})
	case "length":
		return method(name, func(args []Value) (any, error) {
			if err := CheckArgs(name, args, 0, 0); err != nil {
				return nil, err
			}
			return d.Len(), nil
		})
	}
	return nil
}

func stringMethod(s StringVal, name string) Value {
	var fn func(string) any
	switch name {
	case "length":
		fn = func(s string) any { return utf8.RuneCountInString(s) }
	case "upper":
		fn = func(s string) any { return strings.ToUpper(s) }
	case "lower":
		fn = func(s string) any { return strings.ToLower(s) }
	default:
		return nil
	}
	return method(name, func(args []Value) (any, error) {
		if err := CheckArgs(name, args, 0, 0); err != nil {
			return nil, err
		}
		return fn(string(s)), nil
	})
}
