package ast

import (
	"ecp/internal/span"
	"ecp/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *Var:
		return m("Var", n.Span, "name", n.Name, "chain", indexSlice(n.Chain))
	case *IndexedItem:
		return m("IndexedItem", n.Span, "base", NodeToMap(n.Base), "chain", indexSlice(n.Chain))
	case *SubroutineCall:
		return m("SubroutineCall", n.Span,
			"callee", NodeToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *BinOp:
		return m("BinOp", n.Span,
			"op", opStr(n.Op),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *UnaryOp:
		return m("UnaryOp", n.Span, "op", opStr(n.Op), "operand", NodeToMap(n.Operand))
	case *Magic:
		return m("Magic", n.Span, "magic", opStr(n.Kind), "args", exprSlice(n.Args))
	case *IntLiteral:
		return m("IntLiteral", n.Span, "value", n.Value)
	case *FloatLiteral:
		return m("FloatLiteral", n.Span, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Span, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Span, "value", n.Value)
	case *NoneLiteral:
		return m("NoneLiteral", n.Span)
	case *ArrayLiteral:
		return m("ArrayLiteral", n.Span, "elements", exprSlice(n.Elements))
	case *DictLiteral:
		entries := make([]interface{}, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]interface{}{
				"key":   NodeToMap(e.Key),
				"value": NodeToMap(e.Value),
			}
		}
		return m("DictLiteral", n.Span, "entries", entries)

	// ---- Indexing ----
	case *ValueIndex:
		return m("ValueIndex", n.Span, "expr", NodeToMap(n.Expr))
	case *PropertyIndex:
		return m("PropertyIndex", n.Span, "name", n.Name)

	// ---- Statements ----
	case *Compound:
		return m("Compound", n.Span, "body", nodeSlice(n.Body))
	case *NoOp:
		return m("NoOp", n.Span)
	case *Assign:
		return m("Assign", n.Span,
			"target", NodeToMap(n.Target),
			"value", NodeToMap(n.Value),
			"constant", n.Constant)
	case *DeclaredParam:
		return m("DeclaredParam", n.Span, "name", n.Name)
	case *SubroutineDefinition:
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = NodeToMap(p)
		}
		return m("SubroutineDefinition", n.Span,
			"name", n.Name,
			"params", params,
			"body", NodeToMap(n.Body))
	case *IfStatement:
		result := m("IfStatement", n.Span,
			"condition", NodeToMap(n.Condition),
			"consequence", NodeToMap(n.Consequence))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStatement:
		return m("WhileStatement", n.Span, "condition", NodeToMap(n.Condition), "body", NodeToMap(n.Body))
	case *RepeatUntilStatement:
		return m("RepeatUntilStatement", n.Span, "condition", NodeToMap(n.Condition), "body", NodeToMap(n.Body))
	case *ForLoop:
		result := m("ForLoop", n.Span, "variable", n.Variable, "body", NodeToMap(n.Body))
		if n.IsRange() {
			result["start"] = NodeToMap(n.Start)
			result["end"] = NodeToMap(n.End)
			if n.Step != nil {
				result["step"] = NodeToMap(n.Step)
			}
		} else {
			result["iterable"] = NodeToMap(n.Iterable)
		}
		return result
	case *RecordDefinition:
		return m("RecordDefinition", n.Span, "name", n.Name, "fields", n.Fields)
	case *ClassDefinition:
		statics := make([]interface{}, len(n.Statics))
		for i, s := range n.Statics {
			statics[i] = NodeToMap(s)
		}
		methods := make([]interface{}, len(n.Methods))
		for i, md := range n.Methods {
			methods[i] = NodeToMap(md)
		}
		return m("ClassDefinition", n.Span, "name", n.Name, "statics", statics, "methods", methods)
	case *TryCatch:
		return m("TryCatch", n.Span, "body", NodeToMap(n.Body), "catch", NodeToMap(n.Catch))
	case *Import:
		return m("Import", n.Span, "location", NodeToMap(n.Location), "alias", n.Alias)

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func nodeSlice(nodes []Node) []interface{} {
	result := make([]interface{}, len(nodes))
	for i, n := range nodes {
		result[i] = NodeToMap(n)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func indexSlice(chain []Index) []interface{} {
	result := make([]interface{}, len(chain))
	for i, idx := range chain {
		result[i] = NodeToMap(idx)
	}
	return result
}

func opStr(kind token.Kind) string {
	return kind.String()
}
