package expr

import "fmt"

// Expr is a parsed, reusable predicate: SAGE compiles each FieldRule /
// RowCheck / CrossRule expression once when a Schema loads and evaluates it
// once per table/row thereafter (spec.md §4.2), rather than re-lexing and
// re-parsing on every row.
type Expr struct {
	src  string
	root Node
}

// Compile parses src under the given bitwise mode and returns a reusable Expr.
func Compile(src string, bitwise bool) (*Expr, error) {
	root, err := Parse(src, bitwise)
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// Source returns the original expression text, for error messages and
// Finding.RuleName fallbacks.
func (e *Expr) Source() string {
	return e.src
}

// Eval evaluates the compiled expression against ctx.
func (e *Expr) Eval(ctx *Context) (Value, error) {
	return Eval(e.root, ctx)
}

// EvalRowBool evaluates the expression and extracts the boolean result for
// a single 1-based row, treating a scalar result as applying to every row
// and a vector result as per-row. Returns an error if the expression did
// not produce a boolean-shaped result.
func (e *Expr) EvalRowBool(ctx *Context, row int) (bool, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, fmt.Errorf("expression %q did not evaluate to a boolean result", e.src)
	}
	if !v.Vector {
		return v.Bools[0], nil
	}
	idx := row - 1
	if idx < 0 || idx >= len(v.Bools) {
		return false, fmt.Errorf("expression %q: row %d out of range", e.src, row)
	}
	return v.Bools[idx], nil
}

// EvalScalarBool evaluates the expression and requires a scalar boolean
// result, the shape expected of catalog_validation and CrossRule
// expressions (e.g. shape[0] > 0, df['a']['id'].isin(df['b']['id']).all()).
func (e *Expr) EvalScalarBool(ctx *Context) (bool, error) {
	v, err := e.Eval(ctx)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, fmt.Errorf("expression %q did not evaluate to a scalar boolean", e.src)
	}
	return b, nil
}
