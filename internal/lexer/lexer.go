// Package lexer implements the lexical analysis (tokenization) for ECP source.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ecp/internal/diag"
	"ecp/internal/span"
	"ecp/internal/token"
)

// Error is the only fatal lexing failure: an unterminated string literal.
type Error struct {
	diag.Diagnostic
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based, in runes)

	diags []diag.Diagnostic // non-fatal warnings
}

// New creates a new Lexer for the given source text.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Lex tokenizes source in one call.
func Lex(source string) ([]token.Token, error) {
	return New(source, "").Tokenize()
}

// Tokenize scans the entire source and returns all tokens, ending with EOF.
// On an unterminated string it returns the tokens read so far and an *Error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// Warnings returns the non-fatal diagnostics collected while tokenizing.
func (l *Lexer) Warnings() []diag.Diagnostic {
	return l.diags
}

// ---- internal helpers ----

// peek returns the current rune without advancing, or 0 if at end.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

// peekNext returns the rune after the current one, or 0 if at end.
func (l *Lexer) peekNext() rune {
	if l.pos >= len(l.source) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if l.pos+size >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos+size:])
	return r
}

// advance consumes the current rune and returns it.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) makeToken(kind token.Kind, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

// skipWhitespace skips spaces, tabs and carriage returns (not newlines).
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' {
			l.advance()
		} else {
			break
		}
	}
}

// skipLineComment skips from # to end of line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) fail(code string, s span.Span, msg string) *Error {
	d := diag.Errorf(code, s, "%s", msg).WithSource(l.source)
	d.Filename = l.filename
	return &Error{Diagnostic: d}
}

func (l *Lexer) warn(code string, s span.Span, msg string) {
	d := diag.Warningf(code, s, "%s", msg)
	d.Filename = l.filename
	l.diags = append(l.diags, d)
}

// ---- token reading ----

func (l *Lexer) nextToken() (token.Token, error) {
	for {
		l.skipWhitespace()
		if l.pos < len(l.source) && l.source[l.pos] == '#' {
			l.skipLineComment()
			continue
		}
		break
	}

	start := l.curPos()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(start)}, nil
	}

	ch := l.peek()
	switch {
	case ch == '\n':
		l.advance()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\\n", Span: l.makeSpan(start)}, nil
	case ch == '"' || ch == '\'':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start), nil
	case isIdentStart(ch):
		return l.readIdentifier(start), nil
	}
	return l.readOperator(start), nil
}

// readString reads a string literal delimited by ' or ".
func (l *Lexer) readString(start span.Position) (token.Token, error) {
	quote := l.advance()
	var value strings.Builder

	for l.pos < len(l.source) {
		ch := l.peek()
		if ch == quote {
			l.advance()
			return token.Token{Kind: token.STRING, Lexeme: value.String(), Span: l.makeSpan(start)}, nil
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' {
			escPos := l.curPos()
			l.advance()
			if l.pos >= len(l.source) || l.peek() == '\n' {
				break
			}
			esc := l.advance()
			switch esc {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '0':
				value.WriteByte(0)
			case '\\', '"', '\'':
				value.WriteRune(esc)
			default:
				l.warn("E1002", l.makeSpan(escPos), fmt.Sprintf("unknown escape sequence: \\%c", esc))
				value.WriteByte('\\')
				value.WriteRune(esc)
			}
			continue
		}
		value.WriteRune(l.advance())
	}

	return token.Token{}, l.fail("E1001", l.makeSpan(start), "unterminated string literal")
}

// readNumber reads a run of digits and dots. One dot makes a FLOAT, none an
// INT, anything else is INVALID and left for the parser to reject.
func (l *Lexer) readNumber(start span.Position) token.Token {
	dots := 0
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch == '.' {
			dots++
		} else if !isDigit(rune(ch)) {
			break
		}
		l.advance()
	}

	switch dots {
	case 0:
		return l.makeToken(token.INT, start)
	case 1:
		return l.makeToken(token.FLOAT, start)
	default:
		return l.makeToken(token.INVALID, start)
	}
}

// readIdentifier reads an identifier or reserved word.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[start.Offset:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start span.Position) token.Token {
	ch := l.advance()

	switch ch {
	case '(':
		return l.makeToken(token.LPAREN, start)
	case ')':
		return l.makeToken(token.RPAREN, start)
	case '[':
		return l.makeToken(token.LBRACKET, start)
	case ']':
		return l.makeToken(token.RBRACKET, start)
	case '{':
		return l.makeToken(token.LBRACE, start)
	case '}':
		return l.makeToken(token.RBRACE, start)
	case ',':
		return l.makeToken(token.COMMA, start)
	case '.':
		return l.makeToken(token.DOT, start)
	case '←':
		return l.makeToken(token.ASSIGN, start)
	case ':':
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(token.ASSIGN, start)
		}
		return l.makeToken(token.COLON, start)
	case '=':
		return l.makeToken(token.EQ, start)
	case '≠':
		return l.makeToken(token.NE, start)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(token.NE, start)
		}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(token.LE, start)
		}
		return l.makeToken(token.LT, start)
	case '≤':
		return l.makeToken(token.LE, start)
	case '>':
		if l.peek() == '=' {
			l.advance()
			return l.makeToken(token.GE, start)
		}
		return l.makeToken(token.GT, start)
	case '≥':
		return l.makeToken(token.GE, start)
	case '+':
		return l.makeToken(token.ADD, start)
	case '-', '–':
		return l.makeToken(token.SUB, start)
	case '*':
		if l.peek() == '*' {
			l.advance()
			return l.makeToken(token.POW, start)
		}
		return l.makeToken(token.MUL, start)
	case '/':
		return l.makeToken(token.DIV, start)
	case '%':
		return l.makeToken(token.MOD, start)
	}
	return l.makeToken(token.ILLEGAL, start)
}

// ---- character classification ----

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
