package runtime

import (
	"strings"

	"ecp/internal/ast"
	"ecp/internal/token"
)

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.FloatLiteral:
		return FloatVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.NoneLiteral:
		return None, nil
	case *ast.Var:
		return i.evalVar(e)
	case *ast.IndexedItem:
		base, err := i.evalExpr(e.Base)
		if err != nil {
			return nil, err
		}
		return i.walkChain(base, e.Chain)
	case *ast.SubroutineCall:
		return i.evalCall(e)
	case *ast.BinOp:
		return i.evalBinary(e)
	case *ast.UnaryOp:
		operand, err := i.evalExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		v, err := unaryOp(e.Op, operand)
		if err != nil {
			return nil, i.at(e.Span, err)
		}
		return v, nil
	case *ast.Magic:
		return i.evalMagic(e)
	case *ast.ArrayLiteral:
		elems := make([]Value, len(e.Elements))
		for idx, el := range e.Elements {
			v, err := i.evalExpr(el)
			if err != nil {
				return nil, err
			}
			elems[idx] = Clone(v)
		}
		return &ArrayVal{Elements: elems}, nil
	case *ast.DictLiteral:
		d := NewDict()
		for _, entry := range e.Entries {
			k, err := i.evalExpr(entry.Key)
			if err != nil {
				return nil, err
			}
			v, err := i.evalExpr(entry.Value)
			if err != nil {
				return nil, err
			}
			if err := d.Set(k, Clone(v)); err != nil {
				return nil, i.errorf(CodeType, entry.Key.GetSpan(), "%s", err)
			}
		}
		return d, nil
	default:
		return nil, i.errorf(CodeType, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalVar(e *ast.Var) (Value, error) {
	val, ok := i.scope.Get(e.Name)
	if !ok {
		return nil, i.nameError(e)
	}
	if len(e.Chain) == 0 {
		return val, nil
	}
	return i.walkChain(val, e.Chain)
}

func (i *Interpreter) nameError(e *ast.Var) error {
	err := i.errorf(CodeName, e.Span, "name '%s' is not defined", e.Name)
	err.Hint = suggest(e.Name, i.scope.Names())
	return err
}

func (i *Interpreter) evalBinary(e *ast.BinOp) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.AND:
		if !IsTruthy(left) {
			return left, nil
		}
		return i.evalExpr(e.Right)
	case token.OR:
		if IsTruthy(left) {
			return left, nil
		}
		return i.evalExpr(e.Right)
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	v, err := binaryOp(e.Op, left, right)
	if err != nil {
		return nil, i.at(e.Span, err)
	}
	return v, nil
}

func (i *Interpreter) evalArgs(exprs []ast.Expr) ([]Value, error) {
	args := make([]Value, len(exprs))
	for idx, a := range exprs {
		v, err := i.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

func (i *Interpreter) evalCall(e *ast.SubroutineCall) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}
	args, err := i.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	return i.callValue(callee, args, e.Span)
}

// ============================================================
// Magic functions
// ============================================================

// execMagic runs a magic function in statement position, where RETURN,
// BREAK and CONTINUE turn into signals.
func (i *Interpreter) execMagic(m *ast.Magic) (ControlFlow, error) {
	switch m.Kind {
	case token.MAGIC_RETURN:
		args, err := i.evalArgs(m.Args)
		if err != nil {
			return flowNormal, err
		}
		var v Value = None
		switch len(args) {
		case 0:
		case 1:
			v = args[0]
		default:
			v = &ArrayVal{Elements: args}
		}
		return ControlFlow{Signal: SigReturn, Value: v}, nil
	case token.MAGIC_BREAK:
		return ControlFlow{Signal: SigBreak}, nil
	case token.MAGIC_CONTINUE:
		return ControlFlow{Signal: SigContinue}, nil
	}
	_, err := i.evalMagic(m)
	return flowNormal, err
}

// evalMagic evaluates OUTPUT and USERINPUT as expressions.
func (i *Interpreter) evalMagic(m *ast.Magic) (Value, error) {
	switch m.Kind {
	case token.MAGIC_OUTPUT:
		args, err := i.evalArgs(m.Args)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(args))
		for idx, a := range args {
			s, err := i.Str(a)
			if err != nil {
				return nil, err
			}
			parts[idx] = s
		}
		if _, err := i.out.Write([]byte(strings.Join(parts, " ") + "\n")); err != nil {
			return nil, i.errorf(CodeNative, m.Span, "writing output: %s", err)
		}
		return None, nil
	case token.MAGIC_USERINPUT:
		if len(m.Args) > 0 {
			return nil, i.errorf(CodeArity, m.Span, "USERINPUT takes no arguments")
		}
		return i.readLine(m.Span)
	default:
		return nil, i.errorf(CodeValue, m.Span, "%s cannot be used as a value", m.Kind)
	}
}
