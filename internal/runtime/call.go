package runtime

import (
	"ecp/internal/span"
)

// ============================================================
// Calls
// ============================================================

func (i *Interpreter) callValue(callee Value, args []Value, s span.Span) (Value, error) {
	switch fn := callee.(type) {
	case *SubroutineVal:
		return i.callSubroutine(fn, args, s)
	case *BuiltinVal:
		return i.callBuiltin(fn, args, s)
	case *RecordVal:
		if len(args) != len(fn.Fields) {
			return nil, i.errorf(CodeArity, s, "record %s expects %d values, got %d", fn.Name, len(fn.Fields), len(args))
		}
		inst := &RecordInstance{Record: fn, Fields: make(map[string]Value, len(args))}
		for idx, f := range fn.Fields {
			inst.Fields[f] = Clone(args[idx])
		}
		return inst, nil
	case *ClassVal:
		return i.instantiate(fn, args, s)
	case NoneVal:
		return nil, i.errorf(CodeNotCallable, s, "subroutine is null")
	default:
		return nil, i.errorf(CodeNotCallable, s, "'%s' object is not callable", callee.TypeName())
	}
}

// callSubroutine runs fn in a fresh scope whose parent is the scope fn was
// defined in. BREAK and CONTINUE do not cross the call boundary.
func (i *Interpreter) callSubroutine(fn *SubroutineVal, args []Value, s span.Span) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, i.errorf(CodeArity, s, "mismatched function parameters: %s expects %d, got %d", fn.Name, len(fn.Params), len(args))
	}
	if i.depth >= i.maxDepth {
		return nil, i.errorf(CodeRecursion, s, "maximum recursion depth exceeded in %s", fn.Name)
	}

	frame := NewScope(fn.Name, fn.Scope)
	if fn.This != nil {
		frame.Define("this", fn.This, false)
	}
	for idx, param := range fn.Params {
		frame.Define(param, Clone(args[idx]), false)
	}

	prevScope, prevOrigin := i.scope, i.origin
	i.scope, i.origin = frame, fn.origin
	i.depth++
	defer func() {
		i.scope, i.origin = prevScope, prevOrigin
		i.depth--
	}()

	flow, err := i.execBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	if flow.Signal == SigReturn {
		return flow.Value, nil
	}
	return None, nil
}

func (i *Interpreter) callBuiltin(fn *BuiltinVal, args []Value, s span.Span) (Value, error) {
	res, err := fn.Fn(args)
	if err != nil {
		return nil, i.at(s, err)
	}
	v, err := Box(res)
	if err != nil {
		return nil, i.at(s, err)
	}
	return v, nil
}

// instantiate builds an instance: the class properties are copied, methods
// are rebound to the instance and INIT runs with the constructor arguments.
func (i *Interpreter) instantiate(cls *ClassVal, args []Value, s span.Span) (Value, error) {
	inst := &InstanceVal{
		Class: cls,
		Props: cloneProps(cls.Props),
		Order: append([]string(nil), cls.Order...),
	}
	for name, v := range inst.Props {
		if m, ok := v.(*SubroutineVal); ok && m.This == Value(cls) {
			inst.Props[name] = m.bind(inst)
		}
	}

	ctor, ok := inst.Props["INIT"]
	if !ok {
		if len(args) > 0 {
			return nil, i.errorf(CodeArity, s, "%s() takes no arguments", cls.Name)
		}
		return inst, nil
	}
	if _, err := i.callValue(ctor, args, s); err != nil {
		return nil, err
	}
	return inst, nil
}
