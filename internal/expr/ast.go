// Package expr implements SAGE's embedded predicate language: the small,
// pandas-flavored DSL used by FieldRule, row_validation, catalog_validation,
// and CrossRule expressions (spec.md §4.2).
//
// Per the design note in spec.md §9, this is a typed expression AST with a
// hand-written evaluator, not an embedded general-purpose scripting runtime:
// the supported surface is exactly the operators and functions enumerated in
// §4.2, and new surface is an AST addition, not a new parser.
package expr

// Node is any expression-tree node.
type Node interface {
	node()
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

// BoolLit is True/False.
type BoolLit struct {
	Value bool
}

// ListLit is a bracketed literal list, e.g. ["A", "B"], used as the argument
// to isin(...).
type ListLit struct {
	Items []Node
}

// Identifier is a bare name: a column in the current scope, or one of the
// reserved frame-level names ("shape", "df") consumed by the parser into
// more specific nodes below.
type Identifier struct {
	Name string
}

// FrameColumnExpr is `df['logical_name']['column']` — package-scope access
// to another catalog's table.
type FrameColumnExpr struct {
	Logical string
	Column  string
}

// ShapeRowCount is `shape[0]` — the row count of the current table.
type ShapeRowCount struct{}

// UnaryExpr is a prefix operator: "-" (negate) or "not"/"!" (logical not).
type UnaryExpr struct {
	Op string
	X  Node
}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Op string
	L  Node
	R  Node
}

// Call is a function/method application. Receiver is nil for a bare call
// (e.g. all(expr)); set for a method call (e.g. col.notnull()).
type Call struct {
	Receiver Node
	Method   string
	Args     []Node
}

func (NumberLit) node()      {}
func (StringLit) node()      {}
func (BoolLit) node()        {}
func (ListLit) node()        {}
func (Identifier) node()     {}
func (FrameColumnExpr) node() {}
func (ShapeRowCount) node()  {}
func (UnaryExpr) node()      {}
func (BinaryExpr) node()     {}
func (Call) node()           {}
