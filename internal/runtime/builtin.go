package runtime

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"ecp/internal/span"
)

// installBuiltins binds the builtin subroutines, the conversion functions
// and the BUILTINS module into a root scope. Builtins are ordinary bindings
// and may be shadowed.
func (i *Interpreter) installBuiltins(scope *Scope) {
	mod := NewBuiltinModule("BUILTINS").
		Func("INPUT", i.builtinInput).
		Func("LEN", builtinLen).
		Func("POSITION", builtinPosition).
		Func("SUBSTRING", builtinSubstring).
		Func("STRING_TO_INT", convertFunc("STRING_TO_INT", toInt)).
		Func("STRING_TO_REAL", convertFunc("STRING_TO_REAL", toReal)).
		Func("INT_TO_STRING", convertFunc("INT_TO_STRING", hostString)).
		Func("REAL_TO_STRING", convertFunc("REAL_TO_STRING", hostString)).
		Func("CHAR_TO_CODE", builtinCharToCode).
		Func("CODE_TO_CHAR", builtinCodeToChar).
		Func("RANDOM_INT", i.builtinRandomInt).
		Func("SQRT", builtinSqrt)
	for _, name := range mod.Names() {
		fn, _ := mod.Get(name)
		scope.Define(name, fn, false)
	}
	scope.Define(mod.Name, mod, false)

	types := []struct {
		name string
		fn   NativeFunc
	}{
		{"Integer", optionalConvert("Integer", IntVal(0), toInt)},
		{"Int", optionalConvert("Int", IntVal(0), toInt)},
		{"Real", optionalConvert("Real", FloatVal(0), toReal)},
		{"Bool", optionalConvert("Bool", BoolVal(false), func(v Value) (Value, error) {
			return BoolVal(IsTruthy(v)), nil
		})},
		{"String", optionalConvert("String", StringVal(""), func(v Value) (Value, error) {
			s, err := i.Str(v)
			return StringVal(s), err
		})},
		{"Array", optionalConvert("Array", nil, toArray)},
		{"Dictionary", optionalConvert("Dictionary", nil, toDict)},
	}
	for _, t := range types {
		scope.Define(t.name, &BuiltinVal{Name: t.name, Fn: t.fn}, false)
	}
}

// ============================================================
// Builtin subroutines
// ============================================================

func (i *Interpreter) builtinInput(args []Value) (any, error) {
	if err := CheckArgs("INPUT", args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 1 {
		prompt, err := i.Str(args[0])
		if err != nil {
			return nil, err
		}
		if _, err := i.out.Write([]byte(prompt)); err != nil {
			return nil, err
		}
	}
	return i.readLine(span.Span{})
}

func builtinLen(args []Value) (any, error) {
	if err := CheckArgs("LEN", args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case StringVal:
		return utf8.RuneCountInString(string(v)), nil
	case *ArrayVal:
		return len(v.Elements), nil
	case *DictVal:
		return v.Len(), nil
	default:
		return nil, TypeErrorf("object of type '%s' has no len()", v.TypeName())
	}
}

// builtinPosition returns the character index of the first occurrence of
// sub in s, or -1.
func builtinPosition(args []Value) (any, error) {
	if err := CheckArgs("POSITION", args, 2, 2); err != nil {
		return nil, err
	}
	s, err := stringArg("POSITION", args[0])
	if err != nil {
		return nil, err
	}
	sub, err := stringArg("POSITION", args[1])
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return -1, nil
	}
	return utf8.RuneCountInString(s[:idx]), nil
}

// builtinSubstring returns the characters of s from start to end inclusive.
func builtinSubstring(args []Value) (any, error) {
	if err := CheckArgs("SUBSTRING", args, 3, 3); err != nil {
		return nil, err
	}
	start, ok1 := args[0].(IntVal)
	end, ok2 := args[1].(IntVal)
	if !ok1 || !ok2 {
		return nil, TypeErrorf("SUBSTRING() positions must be integers")
	}
	s, err := stringArg("SUBSTRING", args[2])
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	from, to := sliceBounds(len(runes), int64(start), int64(end)+1)
	return string(runes[from:to]), nil
}

// sliceBounds resolves start:stop against a sequence of length n, counting
// negative values from the end and clamping to the sequence.
func sliceBounds(n int, start, stop int64) (int, int) {
	clamp := func(v int64) int {
		if v < 0 {
			v += int64(n)
		}
		return int(min(max(v, 0), int64(n)))
	}
	from, to := clamp(start), clamp(stop)
	if to < from {
		to = from
	}
	return from, to
}

func builtinCharToCode(args []Value) (any, error) {
	if err := CheckArgs("CHAR_TO_CODE", args, 1, 1); err != nil {
		return nil, err
	}
	s, err := stringArg("CHAR_TO_CODE", args[0])
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(s); n != 1 {
		return nil, TypeErrorf("CHAR_TO_CODE() expected a character, but string of length %d found", n)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return int64(r), nil
}

func builtinCodeToChar(args []Value) (any, error) {
	if err := CheckArgs("CODE_TO_CHAR", args, 1, 1); err != nil {
		return nil, err
	}
	code, ok := args[0].(IntVal)
	if !ok {
		return nil, TypeErrorf("CODE_TO_CHAR() argument must be an integer, not '%s'", args[0].TypeName())
	}
	if code < 0 || code > utf8.MaxRune {
		return nil, ValueErrorf("CODE_TO_CHAR() arg not in range(0x110000)")
	}
	return string(rune(code)), nil
}

func (i *Interpreter) builtinRandomInt(args []Value) (any, error) {
	if err := CheckArgs("RANDOM_INT", args, 2, 2); err != nil {
		return nil, err
	}
	lo, ok1 := args[0].(IntVal)
	hi, ok2 := args[1].(IntVal)
	if !ok1 || !ok2 {
		return nil, TypeErrorf("RANDOM_INT() bounds must be integers")
	}
	if lo > hi {
		return nil, ValueErrorf("empty range for RANDOM_INT(%d, %d)", lo, hi)
	}
	// The width is unsigned; it wraps to 0 only for the full Int range.
	width := uint64(hi) - uint64(lo) + 1
	if width == 0 {
		return int64(i.rng.Uint64()), nil
	}
	return int64(uint64(lo) + i.rng.Uint64N(width)), nil
}

func builtinSqrt(args []Value) (any, error) {
	if err := CheckArgs("SQRT", args, 1, 1); err != nil {
		return nil, err
	}
	f, ok := number(args[0])
	if !ok {
		return nil, TypeErrorf("must be real number, not '%s'", args[0].TypeName())
	}
	if f < 0 {
		return nil, ValueErrorf("math domain error")
	}
	return math.Sqrt(f), nil
}

// ============================================================
// Conversions
// ============================================================

func stringArg(fn string, v Value) (string, error) {
	s, ok := v.(StringVal)
	if !ok {
		return "", TypeErrorf("%s() argument must be a String, not '%s'", fn, v.TypeName())
	}
	return string(s), nil
}

// convertFunc wraps a one-argument conversion as a builtin.
func convertFunc(name string, conv func(Value) (Value, error)) NativeFunc {
	return func(args []Value) (any, error) {
		if err := CheckArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		return conv(args[0])
	}
}

// optionalConvert is convertFunc for the type conversions, which return
// zero when called without an argument. A nil zero means conv(nil).
func optionalConvert(name string, zero Value, conv func(Value) (Value, error)) NativeFunc {
	return func(args []Value) (any, error) {
		if err := CheckArgs(name, args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			if zero != nil {
				return zero, nil
			}
			return conv(nil)
		}
		return conv(args[0])
	}
}

func hostString(v Value) (Value, error) {
	return StringVal(v.String()), nil
}

func toInt(v Value) (Value, error) {
	switch val := v.(type) {
	case IntVal:
		return val, nil
	case BoolVal:
		n, _ := ToInt64(val)
		return IntVal(n), nil
	case FloatVal:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ValueErrorf("cannot convert float %s to integer", val)
		}
		return IntVal(int64(f)), nil
	case StringVal:
		s := strings.ReplaceAll(strings.TrimSpace(string(val)), "_", "")
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || s == "" {
			return nil, ValueErrorf("invalid literal for int() with base 10: %s", quote(string(val)))
		}
		return IntVal(n), nil
	default:
		return nil, TypeErrorf("int() argument must be a string or a number, not '%s'", v.TypeName())
	}
}

func toReal(v Value) (Value, error) {
	switch val := v.(type) {
	case FloatVal:
		return val, nil
	case IntVal, BoolVal:
		f, _ := number(val)
		return FloatVal(f), nil
	case StringVal:
		s := strings.TrimSpace(string(val))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeErr(err) {
			return nil, ValueErrorf("could not convert string to float: %s", quote(string(val)))
		}
		return FloatVal(f), nil
	default:
		return nil, TypeErrorf("float() argument must be a string or a number, not '%s'", v.TypeName())
	}
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func toArray(v Value) (Value, error) {
	switch val := v.(type) {
	case nil:
		return &ArrayVal{}, nil
	case *ArrayVal:
		return Clone(val), nil
	case *DictVal:
		return &ArrayVal{Elements: val.Keys()}, nil
	case StringVal:
		var elems []Value
		for _, r := range string(val) {
			elems = append(elems, StringVal(string(r)))
		}
		return &ArrayVal{Elements: elems}, nil
	default:
		return nil, TypeErrorf("'%s' object is not iterable", v.TypeName())
	}
}

// toDict copies a dictionary or builds one from an array of [key, value]
// pairs.
func toDict(v Value) (Value, error) {
	switch val := v.(type) {
	case nil:
		return NewDict(), nil
	case *DictVal:
		return Clone(val), nil
	case *ArrayVal:
		d := NewDict()
		for idx, e := range val.Elements {
			pair, ok := e.(*ArrayVal)
			if !ok || len(pair.Elements) != 2 {
				return nil, ValueErrorf("dictionary update sequence element #%d is not a [key, value] pair", idx)
			}
			if err := d.Set(pair.Elements[0], Clone(pair.Elements[1])); err != nil {
				return nil, TypeErrorf("%s", err)
			}
		}
		return d, nil
	default:
		return nil, TypeErrorf("cannot convert '%s' to Dictionary", v.TypeName())
	}
}
