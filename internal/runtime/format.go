package runtime

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders a real the way ECP programs expect: 3.0, 0.1, 1e-05,
// 1e+16, inf, nan.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// quote renders a string literal the way repr does: single quotes unless the
// text contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r == rune(q) {
				b.WriteByte('\\')
			}
			if r < 0x20 || r == 0x7f {
				b.WriteString(`\x`)
				b.WriteString(strconv.FormatInt(int64(r)|0x100, 16)[1:])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// formatArray renders [a, b] applying elem to every element.
func formatArray(a *ArrayVal, elem func(Value) string) string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = elem(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatDict renders {k: v} applying repr to keys and values.
func formatDict(d *DictVal, repr func(Value) string) string {
	parts := make([]string, len(d.keys))
	for i, k := range d.keys {
		parts[i] = repr(k) + ": " + repr(d.vals[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Repr returns the quoted display form of v, as shown inside containers.
// User-defined REPR methods are not consulted.
func Repr(v Value) string { return hostRepr(v) }

// hostRepr is the repr form without user methods.
func hostRepr(v Value) string {
	switch val := v.(type) {
	case StringVal:
		return quote(string(val))
	case *ArrayVal:
		return formatArray(val, hostRepr)
	case *DictVal:
		return formatDict(val, hostRepr)
	default:
		return v.String()
	}
}

// ============================================================
// Interpreter-aware formatting
// ============================================================

// Str returns the display form of v, calling STR on classes and instances
// that define it.
func (i *Interpreter) Str(v Value) (string, error) {
	switch val := v.(type) {
	case *ArrayVal:
		return i.formatElems(val.Elements)
	case *DictVal:
		return i.formatEntries(val)
	case *ClassVal, *InstanceVal:
		if s, ok, err := i.callFormatter(v, "STR"); ok || err != nil {
			return s, err
		}
	}
	return v.String(), nil
}

// Repr returns the repr form of v: quoted strings, and REPR (falling back
// to STR) for classes and instances.
func (i *Interpreter) Repr(v Value) (string, error) {
	switch val := v.(type) {
	case StringVal:
		return quote(string(val)), nil
	case *ArrayVal:
		return i.formatElems(val.Elements)
	case *DictVal:
		return i.formatEntries(val)
	case *ClassVal, *InstanceVal:
		if s, ok, err := i.callFormatter(v, "REPR"); ok || err != nil {
			return s, err
		}
		return i.Str(v)
	}
	return v.String(), nil
}

func (i *Interpreter) formatElems(elems []Value) (string, error) {
	parts := make([]string, len(elems))
	for idx, e := range elems {
		s, err := i.Repr(e)
		if err != nil {
			return "", err
		}
		parts[idx] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func (i *Interpreter) formatEntries(d *DictVal) (string, error) {
	parts := make([]string, len(d.keys))
	for idx, k := range d.keys {
		ks, err := i.Repr(k)
		if err != nil {
			return "", err
		}
		vs, err := i.Repr(d.vals[idx])
		if err != nil {
			return "", err
		}
		parts[idx] = ks + ": " + vs
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// callFormatter calls the named zero-argument method when v defines it and
// converts the result with Str.
func (i *Interpreter) callFormatter(v Value, method string) (string, bool, error) {
	table, _, _ := props(v)
	fn, ok := table[method]
	if !ok {
		return "", false, nil
	}
	res, err := i.Call(fn)
	if err != nil {
		return "", true, err
	}
	if s, isStr := res.(StringVal); isStr {
		return string(s), true, nil
	}
	s, err := i.Str(res)
	return s, true, err
}
