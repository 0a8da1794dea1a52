package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Eval walks node against ctx and returns its Value. Errors are returned for
// expressions that reference unknown columns/catalogs or call unsupported
// methods — the caller (Validator) turns these into ERROR Findings rather
// than panicking a run.
func Eval(node Node, ctx *Context) (Value, error) {
	switch n := node.(type) {
	case NumberLit:
		return scalarNumber(n.Value), nil
	case StringLit:
		return scalarString(n.Value), nil
	case BoolLit:
		return scalarBool(n.Value), nil
	case ListLit:
		return evalList(n, ctx)
	case Identifier:
		return evalIdentifier(n, ctx)
	case FrameColumnExpr:
		return evalFrameColumn(n, ctx)
	case ShapeRowCount:
		if ctx.Primary == nil {
			return Value{}, fmt.Errorf("shape[0]: no primary table in scope")
		}
		return scalarNumber(float64(ctx.Primary.RowCount())), nil
	case UnaryExpr:
		return evalUnary(n, ctx)
	case BinaryExpr:
		return evalBinary(n, ctx)
	case Call:
		return evalCall(n, ctx)
	default:
		return Value{}, fmt.Errorf("unsupported expression node %T", node)
	}
}

func evalList(n ListLit, ctx *Context) (Value, error) {
	strs := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		v, err := Eval(item, ctx)
		if err != nil {
			return Value{}, err
		}
		strs = append(strs, valueAsString(v, 0))
	}
	return vectorString(strs), nil
}

func evalIdentifier(n Identifier, ctx *Context) (Value, error) {
	if ctx.Primary == nil {
		return Value{}, fmt.Errorf("column %q: no primary table in scope", n.Name)
	}
	values, ok := ctx.Primary.ColumnValues(n.Name)
	if !ok {
		return Value{}, fmt.Errorf("unknown column %q", n.Name)
	}
	return vectorString(values), nil
}

func evalFrameColumn(n FrameColumnExpr, ctx *Context) (Value, error) {
	tbl, ok := ctx.Tables[n.Logical]
	if !ok {
		return Value{}, fmt.Errorf("unknown catalog %q referenced via df[...]", n.Logical)
	}
	values, ok := tbl.ColumnValues(n.Column)
	if !ok {
		return Value{}, fmt.Errorf("catalog %q has no column %q", n.Logical, n.Column)
	}
	return vectorString(values), nil
}

func evalUnary(n UnaryExpr, ctx *Context) (Value, error) {
	x, err := Eval(n.X, ctx)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case "-":
		out := make([]float64, x.Len())
		for i := range out {
			out[i] = -valueAsFloatOrNaN(x, i)
		}
		return withVectorFlag(vectorNumber(out), x.Vector), nil
	case "not":
		out := make([]bool, x.Len())
		for i := range out {
			out[i] = !valueAsBoolAt(x, i)
		}
		return withVectorFlag(vectorBool(out), x.Vector), nil
	default:
		return Value{}, fmt.Errorf("unsupported unary operator %q", n.Op)
	}
}

func withVectorFlag(v Value, vector bool) Value {
	v.Vector = vector
	return v
}

func evalBinary(n BinaryExpr, ctx *Context) (Value, error) {
	l, err := Eval(n.L, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := Eval(n.R, ctx)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case "and", "or":
		return evalLogical(n.Op, l, r), nil
	case "bitand", "bitor":
		// &/| between two booleans stay boolean, as in pandas
		if l.Kind == KindBool && r.Kind == KindBool {
			if n.Op == "bitand" {
				return evalLogical("and", l, r), nil
			}
			return evalLogical("or", l, r), nil
		}
		return evalArithmetic(n.Op, l, r), nil
	case "+", "-", "*", "/":
		return evalArithmetic(n.Op, l, r), nil
	case "==", "!=", "<", "<=", ">", ">=":
		return evalCompare(n.Op, l, r), nil
	default:
		return Value{}, fmt.Errorf("unsupported binary operator %q", n.Op)
	}
}

func broadcastLen(l, r Value) int {
	n := l.Len()
	if r.Len() > n {
		n = r.Len()
	}
	return n
}

func evalLogical(op string, l, r Value) Value {
	n := broadcastLen(l, r)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		lb := valueAsBoolAt(l, i)
		rb := valueAsBoolAt(r, i)
		if op == "and" {
			out[i] = lb && rb
		} else {
			out[i] = lb || rb
		}
	}
	return withVectorFlag(vectorBool(out), l.Vector || r.Vector)
}

func evalArithmetic(op string, l, r Value) Value {
	n := broadcastLen(l, r)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lf := valueAsFloatOrNaN(l, i)
		rf := valueAsFloatOrNaN(r, i)
		switch op {
		case "+":
			out[i] = lf + rf
		case "-":
			out[i] = lf - rf
		case "*":
			out[i] = lf * rf
		case "/":
			if rf == 0 {
				out[i] = math.NaN() // division by zero: non-finite, fails any inequality
			} else {
				out[i] = lf / rf
			}
		case "bitand":
			out[i] = float64(int64(lf) & int64(rf))
		case "bitor":
			out[i] = float64(int64(lf) | int64(rf))
		}
	}
	return withVectorFlag(vectorNumber(out), l.Vector || r.Vector)
}

func evalCompare(op string, l, r Value) Value {
	n := broadcastLen(l, r)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		if isNullAt(l, i) || isNullAt(r, i) {
			out[i] = false
			continue
		}
		lf, lok := tryFloat(l, i)
		rf, rok := tryFloat(r, i)
		if lok && rok {
			out[i] = compareNumbers(op, lf, rf)
			continue
		}
		ls := valueAsString(l, i)
		rs := valueAsString(r, i)
		out[i] = compareStrings(op, ls, rs)
	}
	return withVectorFlag(vectorBool(out), l.Vector || r.Vector)
}

func compareNumbers(op string, l, r float64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

func compareStrings(op string, l, r string) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	}
	return false
}

// tryFloat returns the element's numeric interpretation if it has one;
// bools coerce to 0/1, numbers pass through, strings parse if they look
// like a plain number (integers and decimals, optionally signed).
func tryFloat(v Value, i int) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		f := v.NumberAt(i)
		return f, !math.IsNaN(f)
	case KindBool:
		if v.BoolAt(i) {
			return 1, true
		}
		return 0, true
	case KindString:
		s := strings.TrimSpace(v.StringAt(i))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func valueAsFloatOrNaN(v Value, i int) float64 {
	f, ok := tryFloat(v, i)
	if !ok {
		return math.NaN()
	}
	return f
}

func valueAsBoolAt(v Value, i int) bool {
	switch v.Kind {
	case KindBool:
		return v.BoolAt(i)
	case KindNumber:
		return v.NumberAt(i) != 0
	case KindString:
		return v.StringAt(i) != ""
	}
	return false
}

func valueAsString(v Value, i int) string {
	switch v.Kind {
	case KindString:
		return v.StringAt(i)
	case KindNumber:
		f := v.NumberAt(i)
		if math.IsNaN(f) {
			return ""
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case KindBool:
		if v.BoolAt(i) {
			return "True"
		}
		return "False"
	}
	return ""
}

func isNullAt(v Value, i int) bool {
	idx := i
	if !v.Vector {
		idx = 0
	}
	if idx >= v.Len() {
		idx = v.Len() - 1
	}
	return v.IsNullAt(idx)
}
