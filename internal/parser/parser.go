// Package parser implements the syntax analysis for ECP.
// It uses Pratt parsing for expressions and recursive descent for statements.
package parser

import (
	"fmt"
	"strconv"

	"ecp/internal/ast"
	"ecp/internal/diag"
	"ecp/internal/lexer"
	"ecp/internal/span"
	"ecp/internal/token"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpLogic      = 10 // AND OR
	bpComparison = 20 // = != < <= > >=
	bpAdditive   = 30 // + -
	bpMultiply   = 40 // * / DIV MOD
	bpPower      = 50 // ** (right-associative)
	bpPrefix     = 60 // + - NOT
	bpPostfix    = 70 // () [] .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.AND, token.OR:
		return bpLogic
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE:
		return bpComparison
	case token.ADD, token.SUB:
		return bpAdditive
	case token.MUL, token.DIV, token.INT_DIV, token.MOD:
		return bpMultiply
	case token.POW:
		return bpPower
	case token.LPAREN, token.LBRACKET, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Error is a parse failure. Parsing stops at the first one.
type Error struct {
	diag.Diagnostic
	Token token.Token // the offending token
}

func (e *Error) Error() string {
	return e.Diagnostic.String()
}

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens   []token.Token
	source   string
	filename string
	pos      int
	err      *Error
}

// New creates a new parser from a token slice. source is only used to
// attach the offending line to errors and may be empty.
func New(tokens []token.Token, source string) *Parser {
	return &Parser{tokens: tokens, source: source, pos: 0}
}

// SetFilename names the file reported in error diagnostics.
func (p *Parser) SetFilename(name string) {
	p.filename = name
}

// Parse lexes and parses source in one call.
func Parse(source, filename string) (*ast.Compound, error) {
	tokens, err := lexer.New(source, filename).Tokenize()
	if err != nil {
		return nil, err
	}
	p := New(tokens, source)
	p.SetFilename(filename)
	return p.ParseProgram()
}

// ParseProgram parses the whole token stream into a Compound.
func (p *Parser) ParseProgram() (*ast.Compound, error) {
	prog := p.parseBlock()
	if p.err == nil && !p.isAtEnd() {
		p.unexpected("expected a statement")
	}
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// ---- navigation helpers ----

// peek returns the current token. Once an error is recorded it reports EOF
// so every production unwinds without consuming more input.
func (p *Parser) peek() token.Token {
	if p.err != nil || p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	if p.err != nil || p.pos+offset >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) eof() token.Token {
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		return token.Token{Kind: token.EOF, Span: span.Span{Start: last.Span.End, End: last.Span.End}}
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.err == nil && p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.unexpected(fmt.Sprintf("expected %s", describeKind(kind)))
	return p.peek(), false
}

// expectEnd consumes the named terminator or the generic END.
func (p *Parser) expectEnd(kind token.Kind) {
	if p.match(kind, token.KW_END) {
		p.advance()
		return
	}
	p.unexpected(fmt.Sprintf("expected %s", describeKind(kind)))
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// skipAnnotation drops an optional ": Type" after a declared name.
func (p *Parser) skipAnnotation() {
	if p.check(token.COLON) && p.peekAt(1).Kind == token.ID {
		p.advance()
		p.advance()
	}
}

func (p *Parser) fail(code string, tok token.Token, msg string) {
	if p.err != nil {
		return
	}
	d := diag.Errorf(code, tok.Span, "%s", msg)
	if p.source != "" {
		d = d.WithSource(p.source)
	}
	d.Filename = p.filename
	p.err = &Error{Diagnostic: d, Token: tok}
}

// unexpected reports the current token as out of place.
func (p *Parser) unexpected(expected string) {
	tok := p.peek()
	switch tok.Kind {
	case token.INVALID:
		p.fail("E2002", tok, fmt.Sprintf("invalid number literal %q", tok.Lexeme))
	case token.ILLEGAL:
		p.fail("E2003", tok, fmt.Sprintf("illegal character %q", tok.Lexeme))
	default:
		p.fail("E2001", tok, fmt.Sprintf("unexpected %s, %s", describe(tok), expected))
	}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	case token.ID:
		return fmt.Sprintf("identifier %q", tok.Lexeme)
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
}

func describeKind(kind token.Kind) string {
	switch kind {
	case token.ID:
		return "a name"
	case token.NEWLINE:
		return "end of line"
	default:
		return fmt.Sprintf("'%s'", kind)
	}
}

// ============================================================
// Blocks
// ============================================================

// parseBlock parses statements until EOF or one of terminators. The generic
// END also closes any nested block.
func (p *Parser) parseBlock(terminators ...token.Kind) *ast.Compound {
	start := p.peek().Span.Start
	block := &ast.Compound{}
	for {
		p.skipNewlines()
		if p.isAtEnd() || p.atBlockEnd(terminators) {
			break
		}
		stmt := p.parseStatement()
		if p.err != nil {
			break
		}
		block.Body = append(block.Body, stmt)
		if !p.check(token.NEWLINE) && !p.isAtEnd() && !p.atBlockEnd(terminators) {
			p.unexpected("expected end of line after statement")
			break
		}
	}
	block.StmtBase = makeStmtBase(start, p.prevEnd())
	return block
}

func (p *Parser) atBlockEnd(terminators []token.Kind) bool {
	if len(terminators) == 0 {
		return false
	}
	return p.check(token.KW_END) || p.match(terminators...)
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStatement() ast.Node {
	switch p.peekKind() {
	case token.ID, token.KW_CONSTANT:
		return p.parseVariableStatement()
	case token.KW_IF:
		return p.parseIfStatement()
	case token.KW_WHILE:
		return p.parseWhileStatement()
	case token.KW_REPEAT:
		return p.parseRepeatStatement()
	case token.KW_FOR:
		return p.parseForLoop()
	case token.KW_RECORD:
		return p.parseRecordDefinition()
	case token.KW_TRY:
		return p.parseTryCatch()
	case token.KW_SUBROUTINE:
		return p.parseSubroutineDefinition()
	case token.KW_CLASS:
		return p.parseClassDefinition()
	case token.KW_IMPORT:
		return p.parseImport()
	default:
		return p.parseExpr(bpNone)
	}
}

// parseVariableStatement handles statements that start with a name: an
// assignment when an arrow follows the target, otherwise an expression.
func (p *Parser) parseVariableStatement() ast.Node {
	startTok := p.peek()
	constant := false
	if p.check(token.KW_CONSTANT) {
		p.advance()
		constant = true
	}

	save := p.pos
	target := p.parseVar()
	p.skipAnnotation()

	if p.check(token.ASSIGN) {
		p.advance()
		p.skipNewlines()
		value := p.parseExpr(bpNone)
		if constant && len(target.Chain) > 0 {
			p.fail("E2001", startTok, "CONSTANT needs a plain name")
		}
		return &ast.Assign{
			StmtBase: makeStmtBase(startTok.Span.Start, p.prevEnd()),
			Target:   target,
			Value:    value,
			Constant: constant,
		}
	}
	if constant {
		p.unexpected("expected '←' after CONSTANT name")
		return &ast.NoOp{}
	}

	p.pos = save
	return p.parseExpr(bpNone)
}

// parseVar parses a name followed by a greedy .name / [expr] chain.
func (p *Parser) parseVar() *ast.Var {
	nameTok, _ := p.expect(token.ID)
	v := &ast.Var{Name: nameTok.Lexeme}
	v.Chain = p.parseChain()
	v.ExprBase = makeExprBase(nameTok.Span.Start, p.prevEnd())
	return v
}

func (p *Parser) parseChain() []ast.Index {
	var chain []ast.Index
	for p.err == nil {
		tok := p.peek()
		switch tok.Kind {
		case token.DOT:
			p.advance()
			nameTok, _ := p.expect(token.ID)
			chain = append(chain, &ast.PropertyIndex{
				NodeBase: ast.NodeBase{Span: p.makeSpan(tok.Span.Start)},
				Name:     nameTok.Lexeme,
			})
		case token.LBRACKET:
			p.advance()
			p.skipNewlines()
			index := p.parseExpr(bpNone)
			p.skipNewlines()
			p.expect(token.RBRACKET)
			chain = append(chain, &ast.ValueIndex{
				NodeBase: ast.NodeBase{Span: p.makeSpan(tok.Span.Start)},
				Expr:     index,
			})
		default:
			return chain
		}
	}
	return chain
}

// parseIfStatement parses a whole IF chain and its single ENDIF.
func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := p.parseIfChain()
	p.expectEnd(token.KW_ENDIF)
	stmt.Span.End = p.prevEnd()
	return stmt
}

// parseIfChain parses IF cond THEN body [ELSE IF ... | ELSE body] without the
// closing ENDIF, which belongs to the outermost IF.
func (p *Parser) parseIfChain() *ast.IfStatement {
	start := p.advance() // IF
	cond := p.parseExpr(bpNone)
	p.skipNewlines()
	p.expect(token.KW_THEN)
	cons := p.parseBlock(token.KW_ENDIF, token.KW_ELSE)

	stmt := &ast.IfStatement{Condition: cond, Consequence: cons}
	if p.check(token.KW_ELSE) {
		p.advance()
		if p.check(token.KW_IF) {
			stmt.Else = p.parseIfChain()
		} else {
			stmt.Else = p.parseBlock(token.KW_ENDIF)
		}
	}
	stmt.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	start := p.advance() // WHILE
	cond := p.parseExpr(bpNone)
	body := p.parseBlock(token.KW_ENDWHILE)
	p.expectEnd(token.KW_ENDWHILE)
	return &ast.WhileStatement{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}
}

func (p *Parser) parseRepeatStatement() *ast.RepeatUntilStatement {
	start := p.advance() // REPEAT
	body := p.parseBlock(token.KW_UNTIL)
	p.expect(token.KW_UNTIL)
	cond := p.parseExpr(bpNone)
	return &ast.RepeatUntilStatement{
		StmtBase:  makeStmtBase(start.Span.Start, p.prevEnd()),
		Condition: cond,
		Body:      body,
	}
}

func (p *Parser) parseForLoop() *ast.ForLoop {
	start := p.advance() // FOR
	nameTok, _ := p.expect(token.ID)
	loop := &ast.ForLoop{Variable: nameTok.Lexeme}

	switch p.peekKind() {
	case token.ASSIGN:
		p.advance()
		loop.Start = p.parseExpr(bpNone)
		p.expect(token.KW_TO)
		loop.End = p.parseExpr(bpNone)
		if p.check(token.KW_STEP) {
			p.advance()
			loop.Step = p.parseExpr(bpNone)
		}
	case token.KW_IN:
		p.advance()
		loop.Iterable = p.parseExpr(bpNone)
	default:
		p.unexpected("expected '←' or IN after the loop variable")
		return loop
	}

	loop.Body = p.parseBlock(token.KW_ENDFOR)
	p.expectEnd(token.KW_ENDFOR)
	loop.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return loop
}

// parseRecordDefinition parses RECORD Name, then one field per line (or
// comma separated), each with an optional ": Type".
func (p *Parser) parseRecordDefinition() *ast.RecordDefinition {
	start := p.advance() // RECORD
	nameTok, _ := p.expect(token.ID)
	rec := &ast.RecordDefinition{Name: nameTok.Lexeme}

	p.skipNewlines()
	for p.err == nil && !p.match(token.KW_ENDRECORD, token.KW_END, token.EOF) {
		fieldTok, _ := p.expect(token.ID)
		rec.Fields = append(rec.Fields, fieldTok.Lexeme)
		p.skipAnnotation()
		if p.check(token.COMMA) {
			p.advance()
		} else if !p.match(token.NEWLINE, token.KW_ENDRECORD, token.KW_END) {
			p.unexpected("expected end of line after record field")
		}
		p.skipNewlines()
	}
	p.expectEnd(token.KW_ENDRECORD)
	rec.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return rec
}

func (p *Parser) parseTryCatch() *ast.TryCatch {
	start := p.advance() // TRY
	body := p.parseBlock(token.KW_CATCH)
	p.expect(token.KW_CATCH)
	catch := p.parseBlock(token.KW_ENDTRY)
	p.expectEnd(token.KW_ENDTRY)
	return &ast.TryCatch{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Body:     body,
		Catch:    catch,
	}
}

func (p *Parser) parseSubroutineDefinition() *ast.SubroutineDefinition {
	start := p.advance() // SUBROUTINE
	nameTok, _ := p.expect(token.ID)
	def := &ast.SubroutineDefinition{Name: nameTok.Lexeme}
	def.Params = p.parseParamList()
	def.Body = p.parseBlock(token.KW_ENDSUBROUTINE)
	p.expectEnd(token.KW_ENDSUBROUTINE)
	def.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return def
}

// parseParamList parses ( name[: Type], ... ).
func (p *Parser) parseParamList() []*ast.DeclaredParam {
	var params []*ast.DeclaredParam
	p.expect(token.LPAREN)
	p.skipNewlines()
	for p.err == nil && !p.check(token.RPAREN) {
		tok, _ := p.expect(token.ID)
		params = append(params, &ast.DeclaredParam{
			NodeBase: ast.NodeBase{Span: tok.Span},
			Name:     tok.Lexeme,
		})
		p.skipAnnotation()
		p.skipNewlines()
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
		p.skipNewlines()
	}
	p.expect(token.RPAREN)
	return params
}

// parseClassDefinition parses CLASS Name, then methods and static fields.
func (p *Parser) parseClassDefinition() *ast.ClassDefinition {
	start := p.advance() // CLASS
	nameTok, _ := p.expect(token.ID)
	class := &ast.ClassDefinition{Name: nameTok.Lexeme}

	for p.err == nil {
		p.skipNewlines()
		if p.match(token.KW_ENDCLASS, token.KW_END, token.EOF) {
			break
		}
		switch p.peekKind() {
		case token.KW_SUBROUTINE:
			class.Methods = append(class.Methods, p.parseSubroutineDefinition())
		case token.ID:
			fieldTok := p.advance()
			p.skipAnnotation()
			p.expect(token.ASSIGN)
			value := p.parseExpr(bpNone)
			class.Statics = append(class.Statics, &ast.Assign{
				StmtBase: makeStmtBase(fieldTok.Span.Start, p.prevEnd()),
				Target: &ast.Var{
					ExprBase: makeExprBase(fieldTok.Span.Start, fieldTok.Span.End),
					Name:     fieldTok.Lexeme,
				},
				Value: value,
			})
		default:
			p.unexpected("expected SUBROUTINE or a field in CLASS body")
		}
		if !p.match(token.NEWLINE, token.KW_ENDCLASS, token.KW_END) {
			p.unexpected("expected end of line after class member")
		}
	}
	p.expectEnd(token.KW_ENDCLASS)
	class.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return class
}

// parseImport parses IMPORT location [AS alias]. The alias may be written as
// a bare name or a string.
func (p *Parser) parseImport() *ast.Import {
	start := p.advance() // IMPORT
	imp := &ast.Import{Location: p.parseExpr(bpNone)}
	if p.check(token.KW_AS) {
		p.advance()
		if p.match(token.ID, token.STRING) {
			imp.Alias = p.advance().Lexeme
		} else {
			p.unexpected("expected a module alias after AS")
		}
	}
	imp.StmtBase = makeStmtBase(start.Span.Start, p.prevEnd())
	return imp
}

// ============================================================
// Expressions (Pratt parser)
// ============================================================

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()

	for p.err == nil {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
	}

	return left
}

// nud handles prefix positions. On error it returns a placeholder so callers
// never see a nil expression.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT:
		p.advance()
		val, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.fail("E2002", tok, fmt.Sprintf("integer literal %s out of range", tok.Lexeme))
		}
		return &ast.IntLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.FLOAT:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.fail("E2002", tok, fmt.Sprintf("invalid number literal %q", tok.Lexeme))
		}
		return &ast.FloatLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.BOOLEAN:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme == "True",
		}

	case token.NONE:
		p.advance()
		return &ast.NoneLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
		}

	case token.ID:
		return p.parseVar()

	case token.LPAREN:
		// Grouped expression: ( expr )
		p.advance()
		p.skipNewlines()
		expr := p.parseExpr(bpNone)
		p.skipNewlines()
		p.expect(token.RPAREN)
		return expr

	case token.ADD, token.SUB, token.NOT:
		p.advance()
		operand := p.parseExpr(bpPrefix)
		return &ast.UnaryOp{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Op:       tok.Kind,
			Operand:  operand,
		}

	case token.LBRACKET:
		return p.parseArrayLiteral()

	case token.LBRACE:
		return p.parseDictLiteral()

	case token.MAGIC_OUTPUT, token.MAGIC_RETURN, token.MAGIC_CONTINUE,
		token.MAGIC_BREAK, token.MAGIC_USERINPUT:
		return p.parseMagic()

	default:
		p.unexpected("expected an expression")
		return &ast.NoneLiteral{ExprBase: makeExprBase(tok.Span.Start, tok.Span.End)}
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.LPAREN:
		return p.parseCall(left)

	case token.LBRACKET, token.DOT:
		// Index steps after a call or a literal fold into one IndexedItem.
		chain := p.parseChain()
		if item, ok := left.(*ast.IndexedItem); ok {
			item.Chain = append(item.Chain, chain...)
			item.Span.End = p.prevEnd()
			return item
		}
		return &ast.IndexedItem{
			ExprBase: makeExprBase(left.GetSpan().Start, p.prevEnd()),
			Base:     left,
			Chain:    chain,
		}

	case token.POW:
		p.advance()
		p.skipNewlines()
		right := p.parseExpr(bpPower - 1)
		return &ast.BinOp{
			ExprBase: makeExprBase(left.GetSpan().Start, p.prevEnd()),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}

	default:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		p.skipNewlines() // allow continuation on next line after operator
		right := p.parseExpr(bp)
		return &ast.BinOp{
			ExprBase: makeExprBase(left.GetSpan().Start, p.prevEnd()),
			Op:       tok.Kind,
			Left:     left,
			Right:    right,
		}
	}
}

// parseCall parses: callee ( args )
func (p *Parser) parseCall(callee ast.Expr) *ast.SubroutineCall {
	p.advance() // consume '('
	args := p.parseExprList(token.RPAREN)
	p.expect(token.RPAREN)
	return &ast.SubroutineCall{
		ExprBase: makeExprBase(callee.GetSpan().Start, p.prevEnd()),
		Callee:   callee,
		Args:     args,
	}
}

// parseExprList parses comma separated expressions up to (not including)
// closer, allowing line breaks between them.
func (p *Parser) parseExprList(closer token.Kind) []ast.Expr {
	var exprs []ast.Expr
	p.skipNewlines()
	for p.err == nil && !p.check(closer) {
		exprs = append(exprs, p.parseExpr(bpNone))
		p.skipNewlines()
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
		p.skipNewlines()
	}
	return exprs
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	start := p.advance() // [
	elems := p.parseExprList(token.RBRACKET)
	p.expect(token.RBRACKET)
	return &ast.ArrayLiteral{
		ExprBase: makeExprBase(start.Span.Start, p.prevEnd()),
		Elements: elems,
	}
}

func (p *Parser) parseDictLiteral() *ast.DictLiteral {
	start := p.advance() // {
	dict := &ast.DictLiteral{}
	p.skipNewlines()
	for p.err == nil && !p.check(token.RBRACE) {
		key := p.parseExpr(bpNone)
		p.skipNewlines()
		p.expect(token.COLON)
		p.skipNewlines()
		value := p.parseExpr(bpNone)
		dict.Entries = append(dict.Entries, ast.DictEntry{Key: key, Value: value})
		p.skipNewlines()
		if !p.check(token.COMMA) {
			break
		}
		p.advance()
		p.skipNewlines()
	}
	p.expect(token.RBRACE)
	dict.ExprBase = makeExprBase(start.Span.Start, p.prevEnd())
	return dict
}

// parseMagic parses a magic function and its unparenthesised argument list.
// The list is empty when the statement ends right after the keyword.
func (p *Parser) parseMagic() *ast.Magic {
	tok := p.advance()
	magic := &ast.Magic{Kind: tok.Kind}
	if !p.atArgsEnd() {
		magic.Args = append(magic.Args, p.parseExpr(bpNone))
		for p.check(token.COMMA) {
			p.advance()
			magic.Args = append(magic.Args, p.parseExpr(bpNone))
		}
	}
	magic.ExprBase = makeExprBase(tok.Span.Start, p.prevEnd())
	return magic
}

func (p *Parser) atArgsEnd() bool {
	kind := p.peekKind()
	if kind.IsTerminator() {
		return true
	}
	switch kind {
	case token.EOF, token.NEWLINE, token.RPAREN, token.RBRACKET, token.RBRACE,
		token.COMMA, token.KW_ELSE, token.KW_CATCH, token.KW_UNTIL, token.KW_THEN:
		return true
	}
	return false
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
