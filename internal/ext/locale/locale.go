// Package locale provides the "locale" extension module, which formats
// numbers by language tag.
package locale

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"ecp/internal/runtime"
)

func init() {
	runtime.RegisterExtension("locale", New)
}

// DefaultLocale is used when a call names no locale.
const DefaultLocale = "en"

// New builds the locale module.
func New(*runtime.Interpreter) (*runtime.BuiltinModule, error) {
	return runtime.NewBuiltinModule("locale").
		Const("DEFAULT", runtime.StringVal(DefaultLocale)).
		Func("format_number", formatter("format_number", func(p *message.Printer, v float64) string {
			return p.Sprintf("%v", number.Decimal(v))
		})).
		Func("format_percent", formatter("format_percent", func(p *message.Printer, v float64) string {
			return p.Sprintf("%v", number.Percent(v))
		})).
		Func("format_int", formatInt).
		Func("format_currency", formatCurrency), nil
}

// printer resolves the optional locale argument at args[idx].
func printer(fn string, args []runtime.Value, idx int) (*message.Printer, error) {
	loc := DefaultLocale
	if len(args) > idx {
		s, ok := args[idx].(runtime.StringVal)
		if !ok {
			return nil, runtime.TypeErrorf("%s() locale must be a String, not '%s'", fn, args[idx].TypeName())
		}
		loc = string(s)
	}
	tag, err := language.Parse(loc)
	if err != nil {
		return nil, runtime.ValueErrorf("%s() unknown locale '%s'", fn, loc)
	}
	return message.NewPrinter(tag), nil
}

func numberArg(fn string, v runtime.Value) (float64, error) {
	switch v.(type) {
	case runtime.IntVal, runtime.FloatVal:
		f, _ := runtime.ToFloat64(v)
		return f, nil
	}
	return 0, runtime.TypeErrorf("%s() expects an Int or Real, not '%s'", fn, v.TypeName())
}

func formatter(name string, format func(*message.Printer, float64) string) runtime.NativeFunc {
	return func(args []runtime.Value) (any, error) {
		if err := runtime.CheckArgs(name, args, 1, 2); err != nil {
			return nil, err
		}
		v, err := numberArg(name, args[0])
		if err != nil {
			return nil, err
		}
		p, err := printer(name, args, 1)
		if err != nil {
			return nil, err
		}
		return format(p, v), nil
	}
}

// formatInt groups the digits of an Int.
func formatInt(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("format_int", args, 1, 2); err != nil {
		return nil, err
	}
	n, ok := args[0].(runtime.IntVal)
	if !ok {
		return nil, runtime.TypeErrorf("format_int() expects an Int, not '%s'", args[0].TypeName())
	}
	p, err := printer("format_int", args, 1)
	if err != nil {
		return nil, err
	}
	return p.Sprintf("%d", int64(n)), nil
}

// formatCurrency is format_currency(amount, code[, locale]).
func formatCurrency(args []runtime.Value) (any, error) {
	if err := runtime.CheckArgs("format_currency", args, 2, 3); err != nil {
		return nil, err
	}
	v, err := numberArg("format_currency", args[0])
	if err != nil {
		return nil, err
	}
	code, ok := args[1].(runtime.StringVal)
	if !ok {
		return nil, runtime.TypeErrorf("format_currency() currency code must be a String, not '%s'", args[1].TypeName())
	}
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return nil, runtime.ValueErrorf("format_currency() invalid currency code '%s'", code)
	}
	p, err := printer("format_currency", args, 2)
	if err != nil {
		return nil, err
	}
	return p.Sprintf("%v", currency.Symbol(unit.Amount(v))), nil
}
