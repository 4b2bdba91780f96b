// Package span provides source position and span types shared by the lexer, parser and interpreter.
package span

import "fmt"

// Position represents a position in source code.
type Position struct {
	Offset int `json:"offset"` // byte offset from beginning of source
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column number, counted in runes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// IsZero reports whether the span carries no position at all.
func (s Span) IsZero() bool {
	return s.Start.Line == 0
}

// LineText returns the text of the given 1-based line of source, without its newline.
func LineText(source string, line int) string {
	if line < 1 {
		return ""
	}
	cur := 1
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] != '\n' {
			continue
		}
		if cur == line {
			return trimCR(source[start:i])
		}
		cur++
		start = i + 1
	}
	if cur == line {
		return trimCR(source[start:])
	}
	return ""
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
