package runtime

import (
	"errors"
	"math"

	"ecp/internal/ast"
)

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execNode(node ast.Node) (ControlFlow, error) {
	switch n := node.(type) {
	case *ast.Compound:
		return i.execBlock(n)
	case *ast.NoOp:
		return flowNormal, nil
	case *ast.Assign:
		return flowNormal, i.execAssign(n)
	case *ast.SubroutineDefinition:
		return flowNormal, i.define(n.Name, i.newSubroutine(n, nil), n)
	case *ast.IfStatement:
		return i.execIf(n)
	case *ast.WhileStatement:
		return i.execWhile(n)
	case *ast.RepeatUntilStatement:
		return i.execRepeat(n)
	case *ast.ForLoop:
		if n.IsRange() {
			return i.execForRange(n)
		}
		return i.execForEach(n)
	case *ast.RecordDefinition:
		return flowNormal, i.define(n.Name, &RecordVal{Name: n.Name, Fields: n.Fields}, n)
	case *ast.ClassDefinition:
		return flowNormal, i.execClass(n)
	case *ast.TryCatch:
		return i.execTry(n)
	case *ast.Import:
		return flowNormal, i.execImport(n)
	case *ast.Magic:
		return i.execMagic(n)
	case ast.Expr:
		_, err := i.evalExpr(n)
		return flowNormal, err
	default:
		return flowNormal, i.errorf(CodeType, node.GetSpan(), "unhandled statement type: %T", node)
	}
}

// execBlock runs statements in the current scope and stops at the first
// signal.
func (i *Interpreter) execBlock(block *ast.Compound) (ControlFlow, error) {
	if block == nil {
		return flowNormal, nil
	}
	for _, node := range block.Body {
		flow, err := i.execNode(node)
		if err != nil {
			return flowNormal, err
		}
		if flow.Signal != SigNormal {
			return flow, nil
		}
	}
	return flowNormal, nil
}

func (i *Interpreter) execAssign(s *ast.Assign) error {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return err
	}
	target := s.Target
	if len(target.Chain) > 0 {
		return i.assignIndexed(target, val)
	}
	if s.Constant {
		if i.scope.IsConstant(target.Name) {
			return i.errorf(CodeConstant, s.Span, "cannot assign to constant '%s'", target.Name)
		}
		i.scope.Define(target.Name, Clone(val), true)
		return nil
	}
	return i.bind(target.Name, val, s)
}

// bind stores a copy of v under name in the current scope.
func (i *Interpreter) bind(name string, v Value, at ast.Node) error {
	if err := i.scope.Set(name, Clone(v)); err != nil {
		return i.errorf(CodeConstant, at.GetSpan(), "%s", err)
	}
	return nil
}

// define binds a subroutine, record or class without copying it.
func (i *Interpreter) define(name string, v Value, at ast.Node) error {
	if err := i.scope.Set(name, v); err != nil {
		return i.errorf(CodeConstant, at.GetSpan(), "%s", err)
	}
	return nil
}

func (i *Interpreter) execIf(s *ast.IfStatement) (ControlFlow, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return flowNormal, err
	}
	if IsTruthy(cond) {
		return i.execBlock(s.Consequence)
	}
	if s.Else != nil {
		return i.execNode(s.Else)
	}
	return flowNormal, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStatement) (ControlFlow, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return flowNormal, err
		}
		if !IsTruthy(cond) {
			return flowNormal, nil
		}
		flow, err := i.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		switch flow.Signal {
		case SigBreak:
			return flowNormal, nil
		case SigReturn:
			return flow, nil
		}
	}
}

func (i *Interpreter) execRepeat(s *ast.RepeatUntilStatement) (ControlFlow, error) {
	for {
		flow, err := i.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		switch flow.Signal {
		case SigBreak:
			return flowNormal, nil
		case SigReturn:
			return flow, nil
		}
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return flowNormal, err
		}
		if IsTruthy(cond) {
			return flowNormal, nil
		}
	}
}

// execForRange runs FOR v ← start TO end [STEP step]. Bounds are evaluated
// once and the end value is included.
func (i *Interpreter) execForRange(s *ast.ForLoop) (ControlFlow, error) {
	bound := func(e ast.Expr, what string) (int64, error) {
		v, err := i.evalExpr(e)
		if err != nil {
			return 0, err
		}
		n, ok := v.(IntVal)
		if !ok {
			return 0, i.errorf(CodeType, e.GetSpan(), "FOR %s must be an Int, got '%s'", what, v.TypeName())
		}
		return int64(n), nil
	}
	start, err := bound(s.Start, "start")
	if err != nil {
		return flowNormal, err
	}
	end, err := bound(s.End, "end")
	if err != nil {
		return flowNormal, err
	}
	step := int64(1)
	if s.Step != nil {
		if step, err = bound(s.Step, "step"); err != nil {
			return flowNormal, err
		}
		if step == 0 {
			return flowNormal, i.errorf(CodeValue, s.Step.GetSpan(), "FOR step must not be zero")
		}
	}

	for v := start; (step > 0 && v <= end) || (step < 0 && v >= end); v += step {
		if err := i.bind(s.Variable, IntVal(v), s); err != nil {
			return flowNormal, err
		}
		flow, err := i.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		switch flow.Signal {
		case SigBreak:
			return flowNormal, nil
		case SigReturn:
			return flow, nil
		}
		// Stop before the counter wraps past the Int range.
		if (step > 0 && v > math.MaxInt64-step) || (step < 0 && v < math.MinInt64-step) {
			break
		}
	}
	return flowNormal, nil
}

// execForEach runs FOR v IN expr over a snapshot of the iterable.
func (i *Interpreter) execForEach(s *ast.ForLoop) (ControlFlow, error) {
	iterable, err := i.evalExpr(s.Iterable)
	if err != nil {
		return flowNormal, err
	}
	var items []Value
	switch it := iterable.(type) {
	case *ArrayVal:
		items = append(items, it.Elements...)
	case *DictVal:
		items = it.Keys()
	case StringVal:
		for _, r := range string(it) {
			items = append(items, StringVal(string(r)))
		}
	default:
		return flowNormal, i.errorf(CodeType, s.Iterable.GetSpan(), "'%s' object is not iterable", iterable.TypeName())
	}

	for _, item := range items {
		if err := i.bind(s.Variable, item, s); err != nil {
			return flowNormal, err
		}
		flow, err := i.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		switch flow.Signal {
		case SigBreak:
			return flowNormal, nil
		case SigReturn:
			return flow, nil
		}
	}
	return flowNormal, nil
}

// execTry runs the body and, if it fails with a runtime error, the CATCH
// block. Errors raised inside CATCH propagate.
func (i *Interpreter) execTry(s *ast.TryCatch) (ControlFlow, error) {
	flow, err := i.execBlock(s.Body)
	if err == nil {
		return flow, nil
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		return flowNormal, err
	}
	return i.execBlock(s.Catch)
}

func (i *Interpreter) execClass(s *ast.ClassDefinition) error {
	cls := &ClassVal{Name: s.Name, Props: make(map[string]Value)}
	set := func(name string, v Value) {
		if _, exists := cls.Props[name]; !exists {
			cls.Order = append(cls.Order, name)
		}
		cls.Props[name] = v
	}
	for _, st := range s.Statics {
		v, err := i.evalExpr(st.Value)
		if err != nil {
			return err
		}
		set(st.Target.Name, Clone(v))
	}
	for _, m := range s.Methods {
		set(m.Name, i.newSubroutine(m, cls))
	}
	return i.define(s.Name, cls, s)
}

// newSubroutine closes a definition over the current scope.
func (i *Interpreter) newSubroutine(def *ast.SubroutineDefinition, this Value) *SubroutineVal {
	params := make([]string, len(def.Params))
	for idx, p := range def.Params {
		params[idx] = p.Name
	}
	return &SubroutineVal{
		Name:   def.Name,
		Params: params,
		Body:   def.Body,
		Scope:  i.scope,
		This:   this,
		origin: i.origin,
	}
}
