package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ecp/internal/ast"
	"ecp/internal/lexer"
	"ecp/internal/token"
)

// helper: parse source and return AST + check for no errors
func parseOK(t *testing.T, source string) *ast.Compound {
	t.Helper()
	tokens, err := lexer.New(source, "test.ecp").Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := New(tokens, source).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

// helper: parse source expecting a failure and return it
func parseErr(t *testing.T, source string) *Error {
	t.Helper()
	_, err := Parse(source, "test.ecp")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	return perr
}

// helper: parse and return JSON string (for golden-test style checks)
func parseToJSON(t *testing.T, source string) string {
	t.Helper()
	prog := parseOK(t, source)
	data, err := json.MarshalIndent(ast.NodeToMap(prog), "", "  ")
	if err != nil {
		t.Fatalf("json error: %v", err)
	}
	return string(data)
}

func onlyExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := parseOK(t, "x ← "+source)
	assign, ok := prog.Body[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected Assign, got %T", prog.Body[0])
	}
	return assign.Value
}

func TestParseAssign(t *testing.T) {
	prog := parseOK(t, `x ← 42`)
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 node, got %d", len(prog.Body))
	}
	assign, ok := prog.Body[0].(*ast.Assign)
	if !ok {
		t.Fatalf("expected Assign, got %T", prog.Body[0])
	}
	if assign.Target.Name != "x" || len(assign.Target.Chain) != 0 {
		t.Errorf("unexpected target %+v", assign.Target)
	}
	if lit, ok := assign.Value.(*ast.IntLiteral); !ok || lit.Value != 42 {
		t.Errorf("expected IntLiteral 42, got %T", assign.Value)
	}
}

func TestParseConstantAndAnnotation(t *testing.T) {
	prog := parseOK(t, "CONSTANT PI ← 3.14\ncount: Int := 0")
	first := prog.Body[0].(*ast.Assign)
	if !first.Constant || first.Target.Name != "PI" {
		t.Errorf("expected constant PI, got %+v", first)
	}
	second := prog.Body[1].(*ast.Assign)
	if second.Constant || second.Target.Name != "count" {
		t.Errorf("expected plain count, got %+v", second)
	}
}

func TestParseIndexedAssign(t *testing.T) {
	prog := parseOK(t, `grid[1].cells[2] ← "x"`)
	assign := prog.Body[0].(*ast.Assign)
	chain := assign.Target.Chain
	if len(chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(chain))
	}
	if _, ok := chain[0].(*ast.ValueIndex); !ok {
		t.Errorf("chain[0]: expected ValueIndex, got %T", chain[0])
	}
	if prop, ok := chain[1].(*ast.PropertyIndex); !ok || prop.Name != "cells" {
		t.Errorf("chain[1]: expected PropertyIndex cells, got %T", chain[1])
	}
}

func TestParsePrecedence(t *testing.T) {
	expr := onlyExpr(t, `2 + 3 * 4`)
	bin := expr.(*ast.BinOp)
	if bin.Op != token.ADD {
		t.Fatalf("expected ADD at root, got %s", bin.Op)
	}
	if right, ok := bin.Right.(*ast.BinOp); !ok || right.Op != token.MUL {
		t.Errorf("expected MUL on the right, got %T", bin.Right)
	}
}

func TestParsePowerRightAssociative(t *testing.T) {
	bin := onlyExpr(t, `2 ** 3 ** 2`).(*ast.BinOp)
	if _, ok := bin.Left.(*ast.IntLiteral); !ok {
		t.Errorf("expected literal on the left, got %T", bin.Left)
	}
	if right, ok := bin.Right.(*ast.BinOp); !ok || right.Op != token.POW {
		t.Errorf("expected POW on the right, got %T", bin.Right)
	}
}

func TestParseComparisonDoesNotChain(t *testing.T) {
	bin := onlyExpr(t, `1 < 2 < 3`).(*ast.BinOp)
	left, ok := bin.Left.(*ast.BinOp)
	if !ok || left.Op != token.LT {
		t.Fatalf("expected (1 < 2) on the left, got %T", bin.Left)
	}
	if lit, ok := bin.Right.(*ast.IntLiteral); !ok || lit.Value != 3 {
		t.Errorf("expected 3 on the right, got %T", bin.Right)
	}
}

func TestParseLogicSharesLevel(t *testing.T) {
	bin := onlyExpr(t, `a OR b AND c`).(*ast.BinOp)
	if bin.Op != token.AND {
		t.Fatalf("expected left-to-right AND at root, got %s", bin.Op)
	}
	if left := bin.Left.(*ast.BinOp); left.Op != token.OR {
		t.Errorf("expected OR on the left, got %s", left.Op)
	}
}

func TestParseUnaryBindsTighterThanPower(t *testing.T) {
	bin := onlyExpr(t, `-2 ** 2`).(*ast.BinOp)
	if un, ok := bin.Left.(*ast.UnaryOp); !ok || un.Op != token.SUB {
		t.Errorf("expected unary minus on the left, got %T", bin.Left)
	}
}

func TestParsePostfixChain(t *testing.T) {
	prog := parseOK(t, `a.b[0](x).c`)
	item, ok := prog.Body[0].(*ast.IndexedItem)
	if !ok {
		t.Fatalf("expected IndexedItem, got %T", prog.Body[0])
	}
	call, ok := item.Base.(*ast.SubroutineCall)
	if !ok {
		t.Fatalf("expected call base, got %T", item.Base)
	}
	callee := call.Callee.(*ast.Var)
	if callee.Name != "a" || len(callee.Chain) != 2 {
		t.Errorf("unexpected callee %+v", callee)
	}
	if len(call.Args) != 1 || len(item.Chain) != 1 {
		t.Errorf("unexpected call args %d / chain %d", len(call.Args), len(item.Chain))
	}
}

func TestParseLiterals(t *testing.T) {
	arr := onlyExpr(t, "[1, 2.5,\n 'x', True, None]").(*ast.ArrayLiteral)
	if len(arr.Elements) != 5 {
		t.Errorf("expected 5 elements, got %d", len(arr.Elements))
	}
	dict := onlyExpr(t, "{\n  'a': 1,\n  'b': [2]\n}").(*ast.DictLiteral)
	if len(dict.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(dict.Entries))
	}
}

func TestParseMagic(t *testing.T) {
	prog := parseOK(t, "OUTPUT 'a', b + 1\nname ← USERINPUT\nRETURN")
	out := prog.Body[0].(*ast.Magic)
	if out.Kind != token.MAGIC_OUTPUT || len(out.Args) != 2 {
		t.Errorf("unexpected OUTPUT %+v", out)
	}
	in := prog.Body[1].(*ast.Assign).Value.(*ast.Magic)
	if in.Kind != token.MAGIC_USERINPUT || len(in.Args) != 0 {
		t.Errorf("unexpected USERINPUT %+v", in)
	}
	ret := prog.Body[2].(*ast.Magic)
	if ret.Kind != token.MAGIC_RETURN || len(ret.Args) != 0 {
		t.Errorf("unexpected RETURN %+v", ret)
	}
}

func TestParseIfElseIfChain(t *testing.T) {
	source := `IF x < 0 THEN
  OUTPUT "neg"
ELSE IF x = 0 THEN
  OUTPUT "zero"
ELSE
  OUTPUT "pos"
ENDIF`
	stmt := parseOK(t, source).Body[0].(*ast.IfStatement)
	nested, ok := stmt.Else.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected nested IfStatement, got %T", stmt.Else)
	}
	if _, ok := nested.Else.(*ast.Compound); !ok {
		t.Errorf("expected final ELSE compound, got %T", nested.Else)
	}
}

func TestParseIfThenOnNextLine(t *testing.T) {
	stmt := parseOK(t, "IF a\nTHEN\n  b ← 1\nENDIF").Body[0].(*ast.IfStatement)
	if len(stmt.Consequence.Body) != 1 || stmt.Else != nil {
		t.Errorf("unexpected if %+v", stmt)
	}
}

func TestParseLoops(t *testing.T) {
	source := `WHILE i < 3
  i ← i + 1
ENDWHILE
REPEAT
  i ← i - 1
UNTIL i = 0
FOR j ← 1 TO 10 STEP 2
  OUTPUT j
ENDFOR
FOR c IN "abc"
  OUTPUT c
END`
	prog := parseOK(t, source)
	if _, ok := prog.Body[0].(*ast.WhileStatement); !ok {
		t.Errorf("expected WhileStatement, got %T", prog.Body[0])
	}
	if _, ok := prog.Body[1].(*ast.RepeatUntilStatement); !ok {
		t.Errorf("expected RepeatUntilStatement, got %T", prog.Body[1])
	}
	rangeLoop := prog.Body[2].(*ast.ForLoop)
	if !rangeLoop.IsRange() || rangeLoop.Step == nil || rangeLoop.Variable != "j" {
		t.Errorf("unexpected range loop %+v", rangeLoop)
	}
	iterLoop := prog.Body[3].(*ast.ForLoop)
	if iterLoop.IsRange() {
		t.Error("expected iterator form")
	}
}

func TestParseSubroutine(t *testing.T) {
	source := `SUBROUTINE add(a: Int, b: Int)
  RETURN a + b
ENDSUBROUTINE`
	def := parseOK(t, source).Body[0].(*ast.SubroutineDefinition)
	if def.Name != "add" || len(def.Params) != 2 || def.Params[1].Name != "b" {
		t.Errorf("unexpected definition %+v", def)
	}
	if len(def.Body.Body) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(def.Body.Body))
	}
}

func TestParseRecordAndClass(t *testing.T) {
	source := `RECORD Point
  x: Int
  y
ENDRECORD
CLASS Counter
  count ← 0
  SUBROUTINE INIT(start)
    this.count ← start
  ENDSUBROUTINE
  SUBROUTINE inc()
    this.count ← this.count + 1
  ENDSUBROUTINE
ENDCLASS`
	prog := parseOK(t, source)
	rec := prog.Body[0].(*ast.RecordDefinition)
	if rec.Name != "Point" || strings.Join(rec.Fields, ",") != "x,y" {
		t.Errorf("unexpected record %+v", rec)
	}
	class := prog.Body[1].(*ast.ClassDefinition)
	if class.Name != "Counter" || len(class.Statics) != 1 || len(class.Methods) != 2 {
		t.Errorf("unexpected class %+v", class)
	}
}

func TestParseTryAndImport(t *testing.T) {
	source := `IMPORT "math"
IMPORT "lib/util" AS u
TRY
  boom()
CATCH
  OUTPUT "caught"
ENDTRY`
	prog := parseOK(t, source)
	first := prog.Body[0].(*ast.Import)
	if first.Alias != "" {
		t.Errorf("expected empty alias, got %q", first.Alias)
	}
	second := prog.Body[1].(*ast.Import)
	if second.Alias != "u" {
		t.Errorf("expected alias u, got %q", second.Alias)
	}
	if _, ok := prog.Body[2].(*ast.TryCatch); !ok {
		t.Errorf("expected TryCatch, got %T", prog.Body[2])
	}
}

func TestParseDeterministic(t *testing.T) {
	source := `SUBROUTINE f(n)
  IF n <= 1 THEN
    RETURN 1
  ENDIF
  RETURN n * f(n - 1)
ENDSUBROUTINE
OUTPUT f(5), [1, {"k": 2}][1].k`
	first := parseToJSON(t, source)
	second := parseToJSON(t, source)
	if first != second {
		t.Error("parsing the same program twice produced different trees")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(first), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["kind"] != "Compound" {
		t.Errorf("expected kind 'Compound', got %v", m["kind"])
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	perr := parseErr(t, "x ← add(1, 2\ny ← 3")
	if perr.Code != "E2001" {
		t.Errorf("expected E2001, got %s", perr.Code)
	}
	if perr.Token.Line() != 2 || perr.Token.Column() != 1 {
		t.Errorf("expected error at 2:1, got %d:%d", perr.Token.Line(), perr.Token.Column())
	}
	if perr.Source != "y ← 3" {
		t.Errorf("expected offending line text, got %q", perr.Source)
	}
	if !strings.Contains(perr.Render(), "^") {
		t.Errorf("expected caret in rendering: %s", perr.Render())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"x ← 1.2.3", "E2002"},
		{"x ← 1 ? 2", "E2003"},
		{"IF x THEN\n  y ← 1\n", "E2001"},
		{"WHILE x\n  y ← 1\nENDIF", "E2001"},
		{"x ← 1 2", "E2001"},
		{"ENDWHILE", "E2001"},
		{"CONSTANT x", "E2001"},
		{"SUBROUTINE f(a b)\nENDSUBROUTINE", "E2001"},
	}
	for _, tt := range tests {
		perr := parseErr(t, tt.source)
		if perr.Code != tt.code {
			t.Errorf("%q: expected %s, got %s (%s)", tt.source, tt.code, perr.Code, perr.Message)
		}
	}
}
