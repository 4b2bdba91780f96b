// Package math provides the "math" extension module: the usual constants
// and floating point functions, plus gcd and factorial on integers.
package math

import (
	gomath "math"

	"ecp/internal/runtime"
)

func init() {
	runtime.RegisterExtension("math", New)
}

var unary = []struct {
	name string
	fn   func(float64) float64
	// domain reports whether x is a valid argument; nil accepts everything.
	domain func(x float64) bool
}{
	{"sqrt", gomath.Sqrt, func(x float64) bool { return x >= 0 }},
	{"fabs", gomath.Abs, nil},
	{"exp", gomath.Exp, nil},
	{"log2", gomath.Log2, positive},
	{"log10", gomath.Log10, positive},
	{"sin", gomath.Sin, finite},
	{"cos", gomath.Cos, finite},
	{"tan", gomath.Tan, finite},
	{"asin", gomath.Asin, unit},
	{"acos", gomath.Acos, unit},
	{"atan", gomath.Atan, nil},
	{"degrees", func(x float64) float64 { return x * 180 / gomath.Pi }, nil},
	{"radians", func(x float64) float64 { return x * gomath.Pi / 180 }, nil},
}

func positive(x float64) bool { return x > 0 }
func finite(x float64) bool   { return !gomath.IsInf(x, 0) }
func unit(x float64) bool     { return x >= -1 && x <= 1 }

// New builds the math module.
func New(*runtime.Interpreter) (*runtime.BuiltinModule, error) {
	m := runtime.NewBuiltinModule("math").
		Const("e", runtime.FloatVal(gomath.E)).
		Const("pi", runtime.FloatVal(gomath.Pi)).
		Const("tau", runtime.FloatVal(2*gomath.Pi)).
		Const("nan", runtime.FloatVal(gomath.NaN())).
		Const("inf", runtime.FloatVal(gomath.Inf(1)))

	for _, u := range unary {
		m.Func(u.name, unaryFunc(u.name, u.fn, u.domain))
	}
	return m.
		Func("floor", rounding("floor", gomath.Floor)).
		Func("ceil", rounding("ceil", gomath.Ceil)).
		Func("pow", binaryFunc("pow", gomath.Pow)).
		Func("atan2", binaryFunc("atan2", gomath.Atan2)).
		Func("hypot", binaryFunc("hypot", gomath.Hypot)).
		Func("log", logFunc).
		Func("gcd", gcd).
		Func("factorial", factorial).
		Func("isnan", predicate("isnan", gomath.IsNaN)).
		Func("isinf", predicate("isinf", func(x float64) bool { return gomath.IsInf(x, 0) })), nil
}

func floatArg(fn string, v runtime.Value) (float64, error) {
	f, ok := runtime.ToFloat64(v)
	if !ok {
		return 0, runtime.TypeErrorf("%s() must be real number, not '%s'", fn, v.TypeName())
	}
	return f, nil
}

func intArg(fn string, v runtime.Value) (int64, error) {
	if _, isFloat := v.(runtime.FloatVal); isFloat {
		return 0, runtime.TypeErrorf("%s() argument must be an integer, not 'Real'", fn)
	}
	n, ok := runtime.ToInt64(v)
	if !ok {
		return 0, runtime.TypeErrorf("%s() argument must be an integer, not '%s'", fn, v.TypeName())
	}
	return n, nil
}

func domainError() error {
	return runtime.ValueErrorf("math domain error")
}

func unaryFunc(name string, fn func(float64) float64, domain func(float64) bool) runtime.NativeFunc {
	return func(args []runtime.Value) (any, error) {
		if err := runtime.CheckArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		if domain != nil && !gomath.IsNaN(x) && !domain(x) {
			return nil, domainError()
		}
		return fn(x), nil
	}
}

func binaryFunc(name string, fn func(float64, float64) float64) runtime.NativeFunc {
	return func(args []runtime.Value) (any, error) {
		if err := runtime.CheckArgs(name, args, 2, 2); err != nil {
			return nil, err
		}
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		y, err := floatArg(name, args[1])
		if err != nil {
			return nil, err
		}
		res := fn(x, y)
		if gomath.IsNaN(res) && !gomath.IsNaN(x) && !gomath.IsNaN(y) {
			return nil, domainError()
		}
		return res, nil
	}
}

// rounding returns Int results, like floor and ceil on reals.
func rounding(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(args []runtime.Value) (any, error) {
		if err := runtime.CheckArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		if n, ok := args[0].(runtime.IntVal); ok {
			return n, nil
		}
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		r := fn(x)
		switch {
		case gomath.IsNaN(r):
			return nil, runtime.ValueErrorf("cannot convert float NaN to integer")
		case gomath.IsInf(r, 0) || r >= 1<<63 || r < -(1<<63):
			return nil, runtime.ValueErrorf("cannot convert float infinity to integer")
		}
		return int64(r), nil
	}
}

func predicate(name string, fn func(float64) bool) runtime.NativeFunc {
	return func(args []runtime.Value) (any, error) {
		if err := runtime.CheckArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

// logFunc is log(x) or log(x, base).
func logFunc(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("log", args, 1, 2); err != nil {
		return nil, err
	}
	x, err := floatArg("log", args[0])
	if err != nil {
		return nil, err
	}
	if x <= 0 {
		return nil, domainError()
	}
	if len(args) == 1 {
		return gomath.Log(x), nil
	}
	base, err := floatArg("log", args[1])
	if err != nil {
		return nil, err
	}
	if base <= 0 || base == 1 {
		return nil, domainError()
	}
	return gomath.Log(x) / gomath.Log(base), nil
}

func gcd(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("gcd", args, 2, 2); err != nil {
		return nil, err
	}
	a, err := intArg("gcd", args[0])
	if err != nil {
		return nil, err
	}
	b, err := intArg("gcd", args[1])
	if err != nil {
		return nil, err
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		a = -a
	}
	return a, nil
}

func factorial(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("factorial", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := intArg("factorial", args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, runtime.ValueErrorf("factorial() not defined for negative values")
	}
	if n > 20 {
		return nil, runtime.ValueErrorf("factorial() result does not fit in an Int")
	}
	res := int64(1)
	for k := int64(2); k <= n; k++ {
		res *= k
	}
	return res, nil
}
