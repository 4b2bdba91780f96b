// Package runtime implements the interpreter and runtime value system for ECP.
package runtime

import (
	"fmt"
	"sort"
	"strconv"

	"ecp/internal/ast"
)

// Value is the interface for all runtime values. String is the host-side
// display form; user-defined STR/REPR methods are applied by the
// interpreter's Str and Repr instead.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) TypeName() string { return "Int" }
func (v IntVal) String() string   { return strconv.FormatInt(int64(v), 10) }

// FloatVal represents a real value.
type FloatVal float64

func (v FloatVal) TypeName() string { return "Real" }
func (v FloatVal) String() string   { return formatFloat(float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "String" }
func (v StringVal) String() string   { return string(v) }

// BoolVal represents True or False.
type BoolVal bool

func (v BoolVal) TypeName() string { return "Bool" }
func (v BoolVal) String() string {
	if v {
		return "True"
	}
	return "False"
}

// NoneVal represents None.
type NoneVal struct{}

func (v NoneVal) TypeName() string { return "None" }
func (v NoneVal) String() string   { return "None" }

// None is the shared None value.
var None Value = NoneVal{}

// ---- Containers ----

// ArrayVal represents an array. Arrays are owned by the binding or
// container holding them: storing one stores a copy (see Clone).
type ArrayVal struct {
	Elements []Value
}

// NewArray creates an array holding elems.
func NewArray(elems ...Value) *ArrayVal {
	return &ArrayVal{Elements: elems}
}

func (v *ArrayVal) TypeName() string { return "Array" }
func (v *ArrayVal) String() string   { return formatArray(v, hostRepr) }

// ---- Record values ----

// RecordVal is a record definition. Calling it builds a RecordInstance.
type RecordVal struct {
	Name   string
	Fields []string
}

func (v *RecordVal) TypeName() string { return "Record" }
func (v *RecordVal) String() string   { return fmt.Sprintf("<record definition %s>", v.Name) }

// HasField reports whether name is one of the declared fields.
func (v *RecordVal) HasField(name string) bool {
	for _, f := range v.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// RecordInstance is a value built from a record definition.
type RecordInstance struct {
	Record *RecordVal
	Fields map[string]Value
}

func (v *RecordInstance) TypeName() string { return v.Record.Name }
func (v *RecordInstance) String() string {
	return fmt.Sprintf("<record object %s>", v.Record.Name)
}

// ---- OOP values ----

// ClassVal is a class definition. Props holds the static values and the
// methods; Order keeps them in definition order.
type ClassVal struct {
	Name  string
	Props map[string]Value
	Order []string
}

func (v *ClassVal) TypeName() string { return "Class" }
func (v *ClassVal) String() string   { return fmt.Sprintf("<class definition %s>", v.Name) }

// InstanceVal is an instance of a class. Its properties start as a
// structural copy of the class properties.
type InstanceVal struct {
	Class *ClassVal
	Props map[string]Value
	Order []string
}

func (v *InstanceVal) TypeName() string { return v.Class.Name }
func (v *InstanceVal) String() string {
	return fmt.Sprintf("<class instance %s>", v.Class.Name)
}

// props returns the property table of a class or instance.
func props(v Value) (map[string]Value, *[]string, bool) {
	switch o := v.(type) {
	case *ClassVal:
		return o.Props, &o.Order, true
	case *InstanceVal:
		return o.Props, &o.Order, true
	}
	return nil, nil, false
}

// ---- Callable values ----

// SubroutineVal is a user-defined subroutine together with the scope that
// was current when its definition ran. This is the owning class or
// instance for methods and nil otherwise.
type SubroutineVal struct {
	Name   string
	Params []string
	Body   *ast.Compound
	Scope  *Scope
	This   Value

	origin origin
}

func (v *SubroutineVal) TypeName() string { return "Subroutine" }
func (v *SubroutineVal) String() string   { return fmt.Sprintf("<subroutine %s>", v.Name) }

// bind returns a copy of the subroutine whose this is owner.
func (v *SubroutineVal) bind(owner Value) *SubroutineVal {
	c := *v
	c.This = owner
	return &c
}

// NativeFunc is the Go signature of builtin and extension functions. The
// result is converted with Box.
type NativeFunc func(args []Value) (any, error)

// BuiltinVal represents a native function.
type BuiltinVal struct {
	Name string
	Fn   NativeFunc
}

func (v *BuiltinVal) TypeName() string { return "Builtin" }
func (v *BuiltinVal) String() string   { return fmt.Sprintf("<builtin %s>", v.Name) }

// BuiltinModule is a namespace of native members, produced by an extension
// or the builtin table.
type BuiltinModule struct {
	Name    string
	members map[string]Value
	order   []string
}

// NewBuiltinModule creates an empty module.
func NewBuiltinModule(name string) *BuiltinModule {
	return &BuiltinModule{Name: name, members: make(map[string]Value)}
}

func (m *BuiltinModule) TypeName() string { return "BuiltinModule" }
func (m *BuiltinModule) String() string   { return fmt.Sprintf("<BuiltinModule '%s'>", m.Name) }

// Func adds a native function member and returns the module for chaining.
func (m *BuiltinModule) Func(name string, fn NativeFunc) *BuiltinModule {
	return m.Const(name, &BuiltinVal{Name: name, Fn: fn})
}

// Const adds a value member and returns the module for chaining.
func (m *BuiltinModule) Const(name string, v Value) *BuiltinModule {
	if _, exists := m.members[name]; !exists {
		m.order = append(m.order, name)
	}
	m.members[name] = v
	return m
}

// Get returns a member.
func (m *BuiltinModule) Get(name string) (Value, bool) {
	v, ok := m.members[name]
	return v, ok
}

// Names returns the member names in registration order.
func (m *BuiltinModule) Names() []string {
	return append([]string(nil), m.order...)
}

// ModuleVal is an imported ECP module: the root scope it ran in.
type ModuleVal struct {
	Name  string
	Scope *Scope
}

func (v *ModuleVal) TypeName() string { return "Module" }
func (v *ModuleVal) String() string   { return fmt.Sprintf("<module '%s'>", v.Name) }

// ============================================================
// Structural helpers
// ============================================================

// Clone returns a structural copy of arrays and dictionaries, recursively.
// Every other value is returned as is.
func Clone(v Value) Value {
	switch o := v.(type) {
	case *ArrayVal:
		elems := make([]Value, len(o.Elements))
		for i, e := range o.Elements {
			elems[i] = Clone(e)
		}
		return &ArrayVal{Elements: elems}
	case *DictVal:
		return o.clone()
	default:
		return v
	}
}

// cloneProps copies a property table, cloning the values.
func cloneProps(src map[string]Value) map[string]Value {
	dst := make(map[string]Value, len(src))
	for k, v := range src {
		dst[k] = Clone(v)
	}
	return dst
}

// IsTruthy reports the truthiness of a value. False, None, zero numbers,
// empty strings and empty containers are false.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NoneVal:
		return false
	case BoolVal:
		return bool(val)
	case IntVal:
		return val != 0
	case FloatVal:
		return val != 0
	case StringVal:
		return val != ""
	case *ArrayVal:
		return len(val.Elements) > 0
	case *DictVal:
		return val.Len() > 0
	default:
		return true
	}
}

// Equal reports structural equality. Numbers compare across Int and Real,
// exactly when both sides are Int or Bool. Cyclic containers and instances
// compare equal when no difference is found before a pair repeats.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

// valuePair is a pair of containers under comparison.
type valuePair [2]Value

func equal(a, b Value, seen map[valuePair]bool) bool {
	if af, ok := number(a); ok {
		bf, ok := number(b)
		if !ok {
			return false
		}
		if isIntegral(a) && isIntegral(b) {
			ai, _ := ToInt64(a)
			bi, _ := ToInt64(b)
			return ai == bi
		}
		return af == bf
	}
	switch a.(type) {
	case *ArrayVal, *DictVal, *RecordInstance, *InstanceVal:
		if a == b {
			return true
		}
		if seen[valuePair{a, b}] {
			return true
		}
		if seen == nil {
			seen = make(map[valuePair]bool)
		}
		seen[valuePair{a, b}] = true
	}

	switch x := a.(type) {
	case StringVal:
		y, ok := b.(StringVal)
		return ok && x == y
	case NoneVal:
		_, ok := b.(NoneVal)
		return ok
	case *ArrayVal:
		y, ok := b.(*ArrayVal)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !equal(x.Elements[i], y.Elements[i], seen) {
				return false
			}
		}
		return true
	case *DictVal:
		y, ok := b.(*DictVal)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for idx, k := range x.keys {
			other, found := y.Get(k)
			if !found || !equal(x.vals[idx], other, seen) {
				return false
			}
		}
		return true
	case *RecordInstance:
		y, ok := b.(*RecordInstance)
		if !ok || x.Record != y.Record {
			return false
		}
		for _, f := range x.Record.Fields {
			if !equal(x.Fields[f], y.Fields[f], seen) {
				return false
			}
		}
		return true
	case *InstanceVal:
		y, ok := b.(*InstanceVal)
		if !ok || x.Class != y.Class {
			return false
		}
		return equalProps(x.Props, y.Props, seen)
	case *SubroutineVal:
		y, ok := b.(*SubroutineVal)
		return ok && x.Body == y.Body && x.Scope == y.Scope && x.This == y.This
	default:
		return a == b
	}
}

// equalProps compares the non-method properties of two instances.
func equalProps(a, b map[string]Value, seen map[valuePair]bool) bool {
	data := func(m map[string]Value) []string {
		var names []string
		for k, v := range m {
			if _, isMethod := v.(*SubroutineVal); !isMethod {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		return names
	}
	an, bn := data(a), data(b)
	if len(an) != len(bn) {
		return false
	}
	for i, name := range an {
		if bn[i] != name || !equal(a[name], b[name], seen) {
			return false
		}
	}
	return true
}

// number returns the numeric value of Int, Real and Bool.
func number(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntVal:
		return float64(val), true
	case FloatVal:
		return float64(val), true
	case BoolVal:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ToFloat64 converts a numeric value to float64.
func ToFloat64(v Value) (float64, bool) {
	return number(v)
}

// ToInt64 converts an Int or Bool to int64. Integral reals are accepted too.
func ToInt64(v Value) (int64, bool) {
	switch val := v.(type) {
	case IntVal:
		return int64(val), true
	case BoolVal:
		if val {
			return 1, true
		}
		return 0, true
	case FloatVal:
		f := float64(val)
		if f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}
