// Package diag provides the diagnostic type shared by every stage of the interpreter.
package diag

import (
	"fmt"
	"strings"

	"ecp/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText lets diagnostics serialize the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic represents a lexer, parser or runtime message tied to a source location.
type Diagnostic struct {
	Code     string    `json:"code"`               // stable error code, e.g. "E2001"
	Severity Severity  `json:"severity"`           // error or warning
	Message  string    `json:"message"`            // human-readable description
	Span     span.Span `json:"span"`               // source location
	Hint     string    `json:"hint,omitempty"`     // optional hint
	Source   string    `json:"source,omitempty"`   // text of the offending source line
	Filename string    `json:"filename,omitempty"` // file the diagnostic belongs to, if any
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	prefix := d.Severity.String()
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	if d.Filename != "" {
		loc = d.Filename + ":" + loc
	}
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, prefix, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// Render returns String followed by the offending source line and a caret
// under the reported column. Without source text it is the same as String.
func (d Diagnostic) Render() string {
	if d.Source == "" {
		return d.String()
	}
	var b strings.Builder
	b.WriteString(d.String())
	b.WriteString("\n    ")
	b.WriteString(d.Source)
	b.WriteString("\n    ")
	col := 1
	for _, r := range d.Source {
		if col >= d.Span.Start.Column {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		col++
	}
	b.WriteByte('^')
	return b.String()
}

// WithSource attaches the text of the reported line, taken from the full source.
func (d Diagnostic) WithSource(source string) Diagnostic {
	d.Source = span.LineText(source, d.Span.Start.Line)
	return d
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}
