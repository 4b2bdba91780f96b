package runtime

import (
	"math"
	"math/bits"
	"strings"

	"ecp/internal/token"
)

var opSymbols = map[token.Kind]string{
	token.ADD:     "+",
	token.SUB:     "-",
	token.MUL:     "*",
	token.DIV:     "/",
	token.INT_DIV: "DIV",
	token.MOD:     "MOD",
	token.POW:     "**",
	token.EQ:      "=",
	token.NE:      "!=",
	token.LT:      "<",
	token.LE:      "<=",
	token.GT:      ">",
	token.GE:      ">=",
	token.NOT:     "NOT",
}

func unsupported(op token.Kind, l, r Value) error {
	return TypeErrorf("unsupported operand type(s) for %s: '%s' and '%s'", opSymbols[op], l.TypeName(), r.TypeName())
}

func zeroDivision(msg string) error {
	return &opError{code: CodeZeroDivision, msg: msg}
}

// isIntegral reports whether v takes part in integer arithmetic.
func isIntegral(v Value) bool {
	switch v.(type) {
	case IntVal, BoolVal:
		return true
	}
	return false
}

// binaryOp applies a non-logical binary operator. AND and OR short-circuit
// and are handled by the interpreter.
func binaryOp(op token.Kind, l, r Value) (Value, error) {
	switch op {
	case token.EQ:
		return BoolVal(Equal(l, r)), nil
	case token.NE:
		return BoolVal(!Equal(l, r)), nil
	case token.LT, token.LE, token.GT, token.GE:
		return compare(op, l, r)
	}

	switch lv := l.(type) {
	case StringVal:
		switch op {
		case token.ADD:
			if rv, ok := r.(StringVal); ok {
				return lv + rv, nil
			}
		case token.MUL:
			if n, ok := r.(IntVal); ok {
				return repeatString(string(lv), int64(n))
			}
		}
		return nil, unsupported(op, l, r)
	case *ArrayVal:
		switch op {
		case token.ADD:
			if rv, ok := r.(*ArrayVal); ok {
				elems := make([]Value, 0, len(lv.Elements)+len(rv.Elements))
				for _, e := range lv.Elements {
					elems = append(elems, Clone(e))
				}
				for _, e := range rv.Elements {
					elems = append(elems, Clone(e))
				}
				return &ArrayVal{Elements: elems}, nil
			}
		case token.MUL:
			if n, ok := r.(IntVal); ok {
				return repeatArray(lv, int64(n))
			}
		}
		return nil, unsupported(op, l, r)
	}

	if op == token.MUL {
		if n, ok := l.(IntVal); ok {
			switch rv := r.(type) {
			case StringVal:
				return repeatString(string(rv), int64(n))
			case *ArrayVal:
				return repeatArray(rv, int64(n))
			}
		}
	}

	lf, lok := number(l)
	rf, rok := number(r)
	if !lok || !rok {
		return nil, unsupported(op, l, r)
	}
	if isIntegral(l) && isIntegral(r) {
		li, _ := ToInt64(l)
		ri, _ := ToInt64(r)
		return intOp(op, li, ri, lf, rf)
	}
	return floatOp(op, lf, rf)
}

func intOp(op token.Kind, l, r int64, lf, rf float64) (Value, error) {
	switch op {
	case token.ADD:
		sum := l + r
		if (l >= 0) == (r >= 0) && (sum >= 0) != (l >= 0) {
			return nil, overflow(op)
		}
		return IntVal(sum), nil
	case token.SUB:
		diff := l - r
		if (l >= 0) != (r >= 0) && (diff >= 0) != (l >= 0) {
			return nil, overflow(op)
		}
		return IntVal(diff), nil
	case token.MUL:
		p, ok := mulInt(l, r)
		if !ok {
			return nil, overflow(op)
		}
		return IntVal(p), nil
	case token.DIV:
		if r == 0 {
			return nil, zeroDivision("division by zero")
		}
		return FloatVal(lf / rf), nil
	case token.INT_DIV:
		if r == 0 {
			return nil, zeroDivision("integer division or modulo by zero")
		}
		if l == math.MinInt64 && r == -1 {
			return nil, overflow(op)
		}
		q := l / r
		if (l%r != 0) && ((l < 0) != (r < 0)) {
			q--
		}
		return IntVal(q), nil
	case token.MOD:
		if r == 0 {
			return nil, zeroDivision("integer division or modulo by zero")
		}
		m := l % r
		if m != 0 && ((m < 0) != (r < 0)) {
			m += r
		}
		return IntVal(m), nil
	case token.POW:
		if r >= 0 {
			p, ok := ipow(l, r)
			if !ok {
				return nil, overflow(op)
			}
			return IntVal(p), nil
		}
		return floatOp(op, lf, rf)
	}
	return nil, TypeErrorf("unknown operator %s", op)
}

func floatOp(op token.Kind, l, r float64) (Value, error) {
	switch op {
	case token.ADD:
		return FloatVal(l + r), nil
	case token.SUB:
		return FloatVal(l - r), nil
	case token.MUL:
		return FloatVal(l * r), nil
	case token.DIV:
		if r == 0 {
			return nil, zeroDivision("division by zero")
		}
		return FloatVal(l / r), nil
	case token.INT_DIV:
		if r == 0 {
			return nil, zeroDivision("float floor division by zero")
		}
		return FloatVal(math.Floor(l / r)), nil
	case token.MOD:
		if r == 0 {
			return nil, zeroDivision("float modulo")
		}
		m := math.Mod(l, r)
		if m != 0 && ((m < 0) != (r < 0)) {
			m += r
		}
		return FloatVal(m), nil
	case token.POW:
		if l == 0 && r < 0 {
			return nil, zeroDivision("0.0 cannot be raised to a negative power")
		}
		res := math.Pow(l, r)
		if math.IsNaN(res) && !math.IsNaN(l) && !math.IsNaN(r) {
			return nil, ValueErrorf("math domain error")
		}
		return FloatVal(res), nil
	}
	return nil, TypeErrorf("unknown operator %s", op)
}

// overflow reports an Int result that does not fit in 64 bits.
func overflow(op token.Kind) error {
	return ValueErrorf("integer overflow in '%s'", opSymbols[op])
}

// mulInt multiplies two Ints, reporting false when the product overflows.
func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(absInt(a), absInt(b))
	neg := (a < 0) != (b < 0)
	if hi != 0 || lo > math.MaxInt64+1 || (lo == math.MaxInt64+1 && !neg) {
		return 0, false
	}
	if neg {
		return int64(-lo), true
	}
	return int64(lo), true
}

func absInt(a int64) uint64 {
	if a < 0 {
		return uint64(-a)
	}
	return uint64(a)
}

// ipow computes base**exp for exp >= 0 by repeated squaring, reporting
// false on overflow.
func ipow(base, exp int64) (int64, bool) {
	result := int64(1)
	for {
		if exp&1 == 1 {
			var ok bool
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp == 0 {
			return result, true
		}
		var ok bool
		if base, ok = mulInt(base, base); !ok {
			return 0, false
		}
	}
}

// compare handles < <= > >= on numbers and on strings.
func compare(op token.Kind, l, r Value) (Value, error) {
	var c int
	if ls, ok := l.(StringVal); ok {
		rs, ok := r.(StringVal)
		if !ok {
			return nil, notComparable(op, l, r)
		}
		c = strings.Compare(string(ls), string(rs))
	} else {
		lf, lok := number(l)
		rf, rok := number(r)
		if !lok || !rok {
			return nil, notComparable(op, l, r)
		}
		if isIntegral(l) && isIntegral(r) {
			li, _ := ToInt64(l)
			ri, _ := ToInt64(r)
			c = cmpInt(li, ri)
		} else {
			switch {
			case lf < rf:
				c = -1
			case lf > rf:
				c = 1
			case lf != rf: // NaN
				return BoolVal(false), nil
			}
		}
	}
	switch op {
	case token.LT:
		return BoolVal(c < 0), nil
	case token.LE:
		return BoolVal(c <= 0), nil
	case token.GT:
		return BoolVal(c > 0), nil
	default:
		return BoolVal(c >= 0), nil
	}
}

func notComparable(op token.Kind, l, r Value) error {
	return TypeErrorf("'%s' not supported between instances of '%s' and '%s'", opSymbols[op], l.TypeName(), r.TypeName())
}

// unaryOp applies + - or NOT.
func unaryOp(op token.Kind, v Value) (Value, error) {
	switch op {
	case token.NOT:
		return BoolVal(!IsTruthy(v)), nil
	case token.SUB:
		switch n := v.(type) {
		case IntVal:
			if n == math.MinInt64 {
				return nil, overflow(op)
			}
			return -n, nil
		case FloatVal:
			return -n, nil
		case BoolVal:
			i, _ := ToInt64(n)
			return IntVal(-i), nil
		}
	case token.ADD:
		switch n := v.(type) {
		case IntVal, FloatVal:
			return n, nil
		case BoolVal:
			i, _ := ToInt64(n)
			return IntVal(i), nil
		}
	}
	return nil, TypeErrorf("bad operand type for unary %s: '%s'", opSymbols[op], v.TypeName())
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// maxRepeatLen bounds the bytes of a repeated String and the elements of a
// repeated Array.
const maxRepeatLen = 1 << 28

// repeatLen returns size*n, or an error when the result would exceed
// maxRepeatLen. A non-positive n yields 0.
func repeatLen(kind string, size int, n int64) (int, error) {
	if n <= 0 || size == 0 {
		return 0, nil
	}
	if n > int64(maxRepeatLen/size) {
		return 0, ValueErrorf("repeated %s would be too long (%d x %d)", kind, size, n)
	}
	return size * int(n), nil
}

func repeatString(s string, n int64) (Value, error) {
	total, err := repeatLen("String", len(s), n)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return StringVal(""), nil
	}
	return StringVal(strings.Repeat(s, int(n))), nil
}

func repeatArray(a *ArrayVal, n int64) (Value, error) {
	total, err := repeatLen("Array", len(a.Elements), n)
	if err != nil {
		return nil, err
	}
	elems := make([]Value, 0, total)
	for k := 0; k < total/max(len(a.Elements), 1); k++ {
		for _, e := range a.Elements {
			elems = append(elems, Clone(e))
		}
	}
	return &ArrayVal{Elements: elems}, nil
}
