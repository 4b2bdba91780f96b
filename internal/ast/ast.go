// Package ast defines the abstract syntax tree for ECP programs.
package ast

import (
	"ecp/internal/span"
	"ecp/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes. Expressions may also appear
// directly in a statement list.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Index is one step of an indexing chain: [expr] or .name.
type Index interface {
	Node
	indexNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Indexing
// ============================================================

// ValueIndex is a subscript: a[expr].
type ValueIndex struct {
	NodeBase
	Expr Expr
}

func (*ValueIndex) indexNode() {}

// PropertyIndex is a property access: a.name.
type PropertyIndex struct {
	NodeBase
	Name string
}

func (*PropertyIndex) indexNode() {}

// ============================================================
// Expressions
// ============================================================

// Var is a name with an optional indexing chain: x, a[0].b.
type Var struct {
	ExprBase
	Name  string
	Chain []Index
}

// IndexedItem applies an indexing chain to an arbitrary expression,
// typically the result of a call: f(x).y[0].
type IndexedItem struct {
	ExprBase
	Base  Expr
	Chain []Index
}

// SubroutineCall calls whatever Callee evaluates to.
type SubroutineCall struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// BinOp represents a binary operation: a + b, x = y.
type BinOp struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// UnaryOp represents a unary operation: -x, NOT x.
type UnaryOp struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// Magic is one of OUTPUT, RETURN, CONTINUE, BREAK or USERINPUT.
type Magic struct {
	ExprBase
	Kind token.Kind
	Args []Expr
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents True or False.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NoneLiteral represents None.
type NoneLiteral struct {
	ExprBase
}

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	ExprBase
	Elements []Expr
}

// DictEntry is one key: value pair of a dictionary literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictLiteral represents {k: v, ...}.
type DictLiteral struct {
	ExprBase
	Entries []DictEntry
}

// ============================================================
// Statements
// ============================================================

// Compound is an ordered list of statements. A whole program is a Compound.
type Compound struct {
	StmtBase
	Body []Node
}

// NoOp is an empty statement.
type NoOp struct {
	StmtBase
}

// Assign binds or mutates: x ← 1, a[0].b ← 2, CONSTANT PI ← 3.14.
type Assign struct {
	StmtBase
	Target   *Var
	Value    Expr
	Constant bool
}

// DeclaredParam is a subroutine parameter. Type annotations are dropped.
type DeclaredParam struct {
	NodeBase
	Name string
}

// SubroutineDefinition is SUBROUTINE name(params) ... ENDSUBROUTINE.
type SubroutineDefinition struct {
	StmtBase
	Name   string
	Params []*DeclaredParam
	Body   *Compound
}

// IfStatement is IF ... THEN ... [ELSE ...] ENDIF. Else is nil, a nested
// *IfStatement for ELSE IF, or a *Compound.
type IfStatement struct {
	StmtBase
	Condition   Expr
	Consequence *Compound
	Else        Node
}

// WhileStatement is WHILE cond ... ENDWHILE.
type WhileStatement struct {
	StmtBase
	Condition Expr
	Body      *Compound
}

// RepeatUntilStatement is REPEAT ... UNTIL cond.
type RepeatUntilStatement struct {
	StmtBase
	Condition Expr
	Body      *Compound
}

// ForLoop is either FOR v ← start TO end [STEP step] or FOR v IN iterable.
type ForLoop struct {
	StmtBase
	Variable string
	Start    Expr
	End      Expr
	Step     Expr // nil means 1
	Iterable Expr // non-nil for the iterator form
	Body     *Compound
}

// IsRange reports whether the loop uses the TO form.
func (f *ForLoop) IsRange() bool { return f.Iterable == nil }

// RecordDefinition is RECORD Name fields ENDRECORD.
type RecordDefinition struct {
	StmtBase
	Name   string
	Fields []string
}

// ClassDefinition is CLASS Name ... ENDCLASS.
type ClassDefinition struct {
	StmtBase
	Name    string
	Statics []*Assign
	Methods []*SubroutineDefinition
}

// TryCatch is TRY ... CATCH ... ENDTRY.
type TryCatch struct {
	StmtBase
	Body  *Compound
	Catch *Compound
}

// Import is IMPORT location [AS alias]. Alias is empty when omitted.
type Import struct {
	StmtBase
	Location Expr
	Alias    string
}
