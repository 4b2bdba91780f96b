package runtime

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"ecp/internal/diag"
	"ecp/internal/span"
)

// Runtime error codes.
const (
	CodeName          = "E3001"
	CodeArity         = "E3002"
	CodeNotCallable   = "E3003"
	CodeType          = "E3004"
	CodeIndex         = "E3005"
	CodeZeroDivision  = "E3006"
	CodeModuleMissing = "E3007"
	CodeImport        = "E3008"
	CodeCircular      = "E3009"
	CodeConstant      = "E3010"
	CodeRecursion     = "E3011"
	CodeValue         = "E3012"
	CodeNative        = "E3013"
	CodeEOF           = "E3014"
)

// RuntimeError represents an error during interpretation. Cause holds the
// underlying error for failed imports and native calls.
type RuntimeError struct {
	diag.Diagnostic
	Cause error
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic.String()
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// ModuleNotFoundError reports an IMPORT whose target exists neither as a
// source file nor as a registered extension.
type ModuleNotFoundError struct {
	RuntimeError
	Name     string
	Searched []string
}

func (e *ModuleNotFoundError) Unwrap() error { return &e.RuntimeError }

// errorf builds a RuntimeError at s, attaching the current source line.
func (i *Interpreter) errorf(code string, s span.Span, format string, args ...interface{}) *RuntimeError {
	d := diag.Errorf(code, s, format, args...)
	d.Filename = i.origin.name
	if i.origin.text != "" {
		d = d.WithSource(i.origin.text)
	}
	return &RuntimeError{Diagnostic: d}
}

// at converts err into a RuntimeError at s. Errors that already are
// RuntimeErrors are returned untouched; span-less ones get s.
func (i *Interpreter) at(s span.Span, err error) error {
	var re *RuntimeError
	if errors.As(err, &re) {
		if re.Span.IsZero() {
			re.Span = s
			re.Filename = i.origin.name
			if i.origin.text != "" {
				re.Diagnostic = re.Diagnostic.WithSource(i.origin.text)
			}
		}
		return err
	}
	var oe *opError
	if errors.As(err, &oe) {
		return i.errorf(oe.code, s, "%s", oe.msg)
	}
	re = i.errorf(CodeNative, s, "%s", err)
	re.Cause = err
	return re
}

// opError is returned by the operator and conversion helpers, which have no
// span of their own.
type opError struct {
	code string
	msg  string
}

func (e *opError) Error() string { return e.msg }

// ============================================================
// Errors for native code
// ============================================================

// TypeErrorf returns a catchable type error for use in native functions.
// The interpreter fills in the position of the call.
func TypeErrorf(format string, args ...interface{}) error {
	return &opError{code: CodeType, msg: fmt.Sprintf(format, args...)}
}

// ValueErrorf returns a catchable value error for use in native functions.
func ValueErrorf(format string, args ...interface{}) error {
	return &opError{code: CodeValue, msg: fmt.Sprintf(format, args...)}
}

// ArityError reports a native call with the wrong number of arguments.
// want is a human readable count such as "1" or "1 or 2".
func ArityError(name, want string, got int) error {
	plural := "s"
	if want == "1" {
		plural = ""
	}
	return &opError{code: CodeArity, msg: fmt.Sprintf("%s() expects %s argument%s, got %d", name, want, plural, got)}
}

// CheckArgs verifies a native call received between min and max arguments.
// A negative max means no upper bound.
func CheckArgs(name string, args []Value, min, max int) error {
	n := len(args)
	if n >= min && (max < 0 || n <= max) {
		return nil
	}
	var want string
	switch {
	case min == max:
		want = fmt.Sprint(min)
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	case max == min+1:
		want = fmt.Sprintf("%d or %d", min, max)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	return ArityError(name, want, n)
}

// suggest returns a "did you mean" hint for an unknown name. Names that
// contain the typed text as a subsequence win; otherwise the nearest name by
// edit distance is offered when it is close enough.
func suggest(name string, candidates []string) string {
	if ranks := fuzzy.RankFindFold(name, candidates); len(ranks) > 0 {
		sort.Sort(ranks)
		if ranks[0].Distance <= 2 {
			return fmt.Sprintf("did you mean '%s'?", ranks[0].Target)
		}
	}
	best, bestDist := "", len(name)/3+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", best)
}
