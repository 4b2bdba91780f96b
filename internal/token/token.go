// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"

	"ecp/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF
	NEWLINE
	INVALID // malformed numeric literal: 1.2.3

	// Literals
	ID      // identifiers: x, total, Point
	INT     // integer literals: 123
	FLOAT   // float literals: 3.14
	STRING  // string literals: "hello", 'hello'
	BOOLEAN // True, False
	NONE    // None

	// Operators
	ASSIGN  // ← :=
	EQ      // =
	NE      // != ≠
	LT      // <
	LE      // <= ≤
	GT      // >
	GE      // >= ≥
	ADD     // +
	SUB     // - –
	MUL     // *
	DIV     // /
	INT_DIV // DIV
	MOD     // % MOD
	POW     // ** POW
	NOT     // NOT
	AND     // AND
	OR      // OR

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }
	COMMA    // ,
	COLON    // :
	DOT      // .

	// Keywords
	KW_SUBROUTINE
	KW_IF
	KW_THEN
	KW_ELSE
	KW_WHILE
	KW_REPEAT
	KW_UNTIL
	KW_FOR
	KW_TO
	KW_IN
	KW_STEP
	KW_RECORD
	KW_CONSTANT
	KW_TRY
	KW_CATCH
	KW_CLASS
	KW_IMPORT
	KW_AS

	// Block terminators
	KW_END
	KW_ENDSUBROUTINE
	KW_ENDIF
	KW_ENDWHILE
	KW_ENDFOR
	KW_ENDRECORD
	KW_ENDTRY
	KW_ENDCLASS

	// Magic functions
	MAGIC_OUTPUT
	MAGIC_RETURN
	MAGIC_CONTINUE
	MAGIC_BREAK
	MAGIC_USERINPUT
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INVALID: "INVALID",

	ID:      "ID",
	INT:     "INT",
	FLOAT:   "FLOAT",
	STRING:  "STRING",
	BOOLEAN: "BOOLEAN",
	NONE:    "NONE",

	ASSIGN:  "ASSIGN",
	EQ:      "EQ",
	NE:      "NE",
	LT:      "LT",
	LE:      "LE",
	GT:      "GT",
	GE:      "GE",
	ADD:     "ADD",
	SUB:     "SUB",
	MUL:     "MUL",
	DIV:     "DIV",
	INT_DIV: "INT_DIV",
	MOD:     "MOD",
	POW:     "POW",
	NOT:     "NOT",
	AND:     "AND",
	OR:      "OR",

	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",
	COLON:    ":",
	DOT:      ".",

	KW_SUBROUTINE: "SUBROUTINE",
	KW_IF:         "IF",
	KW_THEN:       "THEN",
	KW_ELSE:       "ELSE",
	KW_WHILE:      "WHILE",
	KW_REPEAT:     "REPEAT",
	KW_UNTIL:      "UNTIL",
	KW_FOR:        "FOR",
	KW_TO:         "TO",
	KW_IN:         "IN",
	KW_STEP:       "STEP",
	KW_RECORD:     "RECORD",
	KW_CONSTANT:   "CONSTANT",
	KW_TRY:        "TRY",
	KW_CATCH:      "CATCH",
	KW_CLASS:      "CLASS",
	KW_IMPORT:     "IMPORT",
	KW_AS:         "AS",

	KW_END:           "END",
	KW_ENDSUBROUTINE: "ENDSUBROUTINE",
	KW_ENDIF:         "ENDIF",
	KW_ENDWHILE:      "ENDWHILE",
	KW_ENDFOR:        "ENDFOR",
	KW_ENDRECORD:     "ENDRECORD",
	KW_ENDTRY:        "ENDTRY",
	KW_ENDCLASS:      "ENDCLASS",

	MAGIC_OUTPUT:    "OUTPUT",
	MAGIC_RETURN:    "RETURN",
	MAGIC_CONTINUE:  "CONTINUE",
	MAGIC_BREAK:     "BREAK",
	MAGIC_USERINPUT: "USERINPUT",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText makes token kinds print by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsKeyword returns true if the kind is a keyword, block terminator or magic function.
func (k Kind) IsKeyword() bool {
	return k >= KW_SUBROUTINE && k <= MAGIC_USERINPUT
}

// IsTerminator returns true for the END family.
func (k Kind) IsTerminator() bool {
	return k >= KW_END && k <= KW_ENDCLASS
}

// IsMagic returns true for OUTPUT, RETURN, CONTINUE, BREAK and USERINPUT.
func (k Kind) IsMagic() bool {
	return k >= MAGIC_OUTPUT && k <= MAGIC_USERINPUT
}

// IsComparison returns true for the comparison operators.
func (k Kind) IsComparison() bool {
	return k >= EQ && k <= GE
}

// words maps reserved words to their kinds. Identifiers are read whole
// before lookup, so ORDER stays an identifier while OR is an operator.
var words = map[string]Kind{
	"True":  BOOLEAN,
	"False": BOOLEAN,
	"None":  NONE,

	"DIV": INT_DIV,
	"MOD": MOD,
	"POW": POW,
	"NOT": NOT,
	"AND": AND,
	"OR":  OR,

	"SUBROUTINE": KW_SUBROUTINE,
	"IF":         KW_IF,
	"THEN":       KW_THEN,
	"ELSE":       KW_ELSE,
	"WHILE":      KW_WHILE,
	"REPEAT":     KW_REPEAT,
	"UNTIL":      KW_UNTIL,
	"FOR":        KW_FOR,
	"TO":         KW_TO,
	"IN":         KW_IN,
	"STEP":       KW_STEP,
	"RECORD":     KW_RECORD,
	"CONSTANT":   KW_CONSTANT,
	"TRY":        KW_TRY,
	"CATCH":      KW_CATCH,
	"CLASS":      KW_CLASS,
	"IMPORT":     KW_IMPORT,
	"AS":         KW_AS,

	"END":           KW_END,
	"ENDSUBROUTINE": KW_ENDSUBROUTINE,
	"ENDIF":         KW_ENDIF,
	"ENDWHILE":      KW_ENDWHILE,
	"ENDFOR":        KW_ENDFOR,
	"ENDRECORD":     KW_ENDRECORD,
	"ENDTRY":        KW_ENDTRY,
	"ENDCLASS":      KW_ENDCLASS,

	"OUTPUT":    MAGIC_OUTPUT,
	"RETURN":    MAGIC_RETURN,
	"CONTINUE":  MAGIC_CONTINUE,
	"BREAK":     MAGIC_BREAK,
	"USERINPUT": MAGIC_USERINPUT,
}

// LookupIdent returns the reserved Kind for word, or ID if it is not reserved.
func LookupIdent(word string) Kind {
	if kind, ok := words[word]; ok {
		return kind
	}
	return ID
}

// Token represents a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// Line returns the 1-based line the token starts on.
func (t Token) Line() int { return t.Span.Start.Line }

// Column returns the 1-based column the token starts at.
func (t Token) Column() int { return t.Span.Start.Column }

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
