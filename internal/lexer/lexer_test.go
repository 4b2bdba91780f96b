package lexer

import (
	"errors"
	"testing"

	"ecp/internal/token"
)

func expectKinds(t *testing.T, source string, expected []token.Kind) []token.Token {
	t.Helper()
	tokens, err := New(source, "test.ecp").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `x ← 1 + 2`, []token.Kind{
		token.ID, token.ASSIGN, token.INT, token.ADD, token.INT, token.EOF,
	})
}

func TestTokenizeAssignAliases(t *testing.T) {
	tokens := expectKinds(t, "a := 1\nb ← 2", []token.Kind{
		token.ID, token.ASSIGN, token.INT, token.NEWLINE,
		token.ID, token.ASSIGN, token.INT, token.EOF,
	})
	if tokens[1].Lexeme != ":=" || tokens[5].Lexeme != "←" {
		t.Errorf("unexpected assign lexemes %q %q", tokens[1].Lexeme, tokens[5].Lexeme)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	source := `SUBROUTINE IF THEN ELSE WHILE REPEAT UNTIL FOR TO IN STEP RECORD CONSTANT TRY CATCH CLASS IMPORT AS`
	expectKinds(t, source, []token.Kind{
		token.KW_SUBROUTINE, token.KW_IF, token.KW_THEN, token.KW_ELSE,
		token.KW_WHILE, token.KW_REPEAT, token.KW_UNTIL, token.KW_FOR,
		token.KW_TO, token.KW_IN, token.KW_STEP, token.KW_RECORD,
		token.KW_CONSTANT, token.KW_TRY, token.KW_CATCH, token.KW_CLASS,
		token.KW_IMPORT, token.KW_AS,
		token.EOF,
	})
}

func TestTokenizeTerminatorsAndMagic(t *testing.T) {
	source := `ENDSUBROUTINE ENDIF ENDWHILE ENDFOR ENDRECORD ENDTRY ENDCLASS END OUTPUT RETURN CONTINUE BREAK USERINPUT`
	tokens := expectKinds(t, source, []token.Kind{
		token.KW_ENDSUBROUTINE, token.KW_ENDIF, token.KW_ENDWHILE, token.KW_ENDFOR,
		token.KW_ENDRECORD, token.KW_ENDTRY, token.KW_ENDCLASS, token.KW_END,
		token.MAGIC_OUTPUT, token.MAGIC_RETURN, token.MAGIC_CONTINUE,
		token.MAGIC_BREAK, token.MAGIC_USERINPUT,
		token.EOF,
	})
	for _, tok := range tokens[:8] {
		if !tok.Kind.IsTerminator() {
			t.Errorf("%s should be a terminator", tok.Kind)
		}
	}
	for _, tok := range tokens[8:13] {
		if !tok.Kind.IsMagic() {
			t.Errorf("%s should be magic", tok.Kind)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	source := `= != ≠ < <= ≤ > >= ≥ + - – * / DIV % MOD ** POW NOT AND OR`
	expectKinds(t, source, []token.Kind{
		token.EQ, token.NE, token.NE,
		token.LT, token.LE, token.LE, token.GT, token.GE, token.GE,
		token.ADD, token.SUB, token.SUB, token.MUL, token.DIV, token.INT_DIV,
		token.MOD, token.MOD, token.POW, token.POW,
		token.NOT, token.AND, token.OR,
		token.EOF,
	})
}

func TestTokenizeDelimiters(t *testing.T) {
	expectKinds(t, `( ) { } [ ] , . :`, []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.LBRACKET, token.RBRACKET, token.COMMA, token.DOT, token.COLON,
		token.EOF,
	})
}

func TestTokenizeWordsNeedWholeMatch(t *testing.T) {
	tokens := expectKinds(t, `ORDER ANDROID DIVIDE NOTE IFFY OR`, []token.Kind{
		token.ID, token.ID, token.ID, token.ID, token.ID, token.OR, token.EOF,
	})
	if tokens[0].Lexeme != "ORDER" {
		t.Errorf("expected ORDER, got %q", tokens[0].Lexeme)
	}
}

func TestTokenizeLiterals(t *testing.T) {
	expectKinds(t, `True False None`, []token.Kind{
		token.BOOLEAN, token.BOOLEAN, token.NONE, token.EOF,
	})
}

func TestTokenizeString(t *testing.T) {
	tokens := expectKinds(t, `"hello" 'it\'s' "line1\nline2\t\"q\""`, []token.Kind{
		token.STRING, token.STRING, token.STRING, token.EOF,
	})
	if tokens[0].Lexeme != "hello" {
		t.Errorf("expected 'hello', got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "it's" {
		t.Errorf("expected \"it's\", got %q", tokens[1].Lexeme)
	}
	if tokens[2].Lexeme != "line1\nline2\t\"q\"" {
		t.Errorf("unexpected escapes: %q", tokens[2].Lexeme)
	}
}

func TestTokenizeUnknownEscapeWarns(t *testing.T) {
	l := New(`"a\qb"`, "test.ecp")
	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Lexeme != `a\qb` {
		t.Errorf("expected backslash kept, got %q", tokens[0].Lexeme)
	}
	if len(l.Warnings()) != 1 || l.Warnings()[0].Code != "E1002" {
		t.Errorf("expected one E1002 warning, got %v", l.Warnings())
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	for _, source := range []string{`x ← "abc`, "x ← 'abc\ny ← 1"} {
		_, err := Lex(source)
		var lexErr *Error
		if !errors.As(err, &lexErr) {
			t.Fatalf("%q: expected *Error, got %v", source, err)
		}
		if lexErr.Code != "E1001" {
			t.Errorf("expected E1001, got %s", lexErr.Code)
		}
		if lexErr.Span.Start.Line != 1 || lexErr.Span.Start.Column != 5 {
			t.Errorf("expected error at 1:5, got %s", lexErr.Span.Start)
		}
		if lexErr.Source == "" {
			t.Error("expected source line on the diagnostic")
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens := expectKinds(t, `123 3.14 0 1.2.3 7.`, []token.Kind{
		token.INT, token.FLOAT, token.INT, token.INVALID, token.FLOAT, token.EOF,
	})
	if tokens[0].Lexeme != "123" || tokens[1].Lexeme != "3.14" || tokens[3].Lexeme != "1.2.3" {
		t.Errorf("unexpected lexemes: %v", tokens)
	}
}

func TestTokenizeIndexChain(t *testing.T) {
	expectKinds(t, `a.b[0].c`, []token.Kind{
		token.ID, token.DOT, token.ID, token.LBRACKET, token.INT,
		token.RBRACKET, token.DOT, token.ID, token.EOF,
	})
}

func TestTokenizeNewlines(t *testing.T) {
	expectKinds(t, "a\r\nb\n", []token.Kind{
		token.ID, token.NEWLINE, token.ID, token.NEWLINE, token.EOF,
	})
}

func TestTokenizeComment(t *testing.T) {
	expectKinds(t, "x # this is a comment\n# whole line\ny", []token.Kind{
		token.ID, token.NEWLINE, token.NEWLINE, token.ID, token.EOF,
	})
}

func TestTokenizeIllegal(t *testing.T) {
	expectKinds(t, `a ! b ?`, []token.Kind{
		token.ID, token.ILLEGAL, token.ID, token.ILLEGAL, token.EOF,
	})
}

func TestTokenizePositions(t *testing.T) {
	tokens, _ := Lex("x ← 1\n  OUTPUT x")

	if tokens[0].Line() != 1 || tokens[0].Column() != 1 {
		t.Errorf("'x' position: expected 1:1, got %d:%d", tokens[0].Line(), tokens[0].Column())
	}
	// ← is one column wide even though it is three bytes
	if tokens[2].Line() != 1 || tokens[2].Column() != 5 {
		t.Errorf("'1' position: expected 1:5, got %d:%d", tokens[2].Line(), tokens[2].Column())
	}
	if tokens[4].Line() != 2 || tokens[4].Column() != 3 {
		t.Errorf("'OUTPUT' position: expected 2:3, got %d:%d", tokens[4].Line(), tokens[4].Column())
	}
}
