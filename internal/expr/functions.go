package expr

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/sage-ingest/sage/internal/dateparse"
)

// evalCall dispatches both bare calls (all(expr), any(expr), isin(...)
// parsed with no receiver) and method calls (col.notnull(), col.isin([...]),
// col.str.contains(pattern)) to their implementation.
func evalCall(n Call, ctx *Context) (Value, error) {
	if n.Receiver == nil {
		return evalBareCall(n, ctx)
	}

	// __df_logical is a parser artifact from `df['logical']` awaiting a
	// second index; reaching evaluation means the expression never supplied
	// the column index (df['logical'] alone, with no ['column']).
	if n.Method == "__df_logical" {
		return Value{}, fmt.Errorf("df[%q] used without a column index", argString(n.Args, 0))
	}
	if n.Method == "__index" {
		return Value{}, fmt.Errorf("unsupported indexing expression")
	}

	recv, err := Eval(n.Receiver, ctx)
	if err != nil {
		return Value{}, err
	}

	switch n.Method {
	case "notnull", "notna":
		return methodNotNull(recv), nil
	case "isnull", "isna":
		return methodIsNull(recv), nil
	case "isin":
		return methodIsIn(recv, n.Args, ctx)
	case "duplicated":
		keepFirst := true
		if len(n.Args) > 0 {
			v, err := Eval(n.Args[0], ctx)
			if err == nil {
				keepFirst = valueAsBoolAt(v, 0)
			}
		}
		return methodDuplicated(recv, keepFirst), nil
	case "str.contains":
		return methodStrContains(recv, n.Args, ctx)
	case "str.match":
		return methodStrMatch(recv, n.Args, ctx)
	case "nunique":
		return scalarNumber(float64(countUnique(recv))), nil
	case "all":
		return scalarBool(recv.AllTrue()), nil
	case "any":
		return scalarBool(recv.AnyTrue()), nil
	case "min", "max", "sum", "mean":
		return aggregateNumeric(n.Method, recv), nil
	case "todate":
		return methodToDate(recv), nil
	default:
		return Value{}, fmt.Errorf("unsupported method %q", n.Method)
	}
}

func evalBareCall(n Call, ctx *Context) (Value, error) {
	switch n.Method {
	case "all", "any", "min", "max", "sum", "mean", "notnull", "notna", "nunique", "todate":
		if len(n.Args) != 1 {
			return Value{}, fmt.Errorf("%s(...) expects exactly one argument", n.Method)
		}
		arg, err := Eval(n.Args[0], ctx)
		if err != nil {
			return Value{}, err
		}
		switch n.Method {
		case "all":
			return scalarBool(arg.AllTrue()), nil
		case "any":
			return scalarBool(arg.AnyTrue()), nil
		case "notnull", "notna":
			return methodNotNull(arg), nil
		case "nunique":
			return scalarNumber(float64(countUnique(arg))), nil
		case "todate":
			return methodToDate(arg), nil
		default:
			return aggregateNumeric(n.Method, arg), nil
		}
	default:
		return Value{}, fmt.Errorf("unsupported function %q", n.Method)
	}
}

func argString(args []Node, i int) string {
	if i >= len(args) {
		return ""
	}
	if lit, ok := args[i].(StringLit); ok {
		return lit.Value
	}
	return ""
}

func methodNotNull(v Value) Value {
	out := make([]bool, v.Len())
	for i := range out {
		out[i] = !v.IsNullAt(i)
	}
	return withVectorFlag(vectorBool(out), v.Vector)
}

func methodIsNull(v Value) Value {
	out := make([]bool, v.Len())
	for i := range out {
		out[i] = v.IsNullAt(i)
	}
	return withVectorFlag(vectorBool(out), v.Vector)
}

func methodIsIn(v Value, args []Node, ctx *Context) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("isin(...) expects exactly one argument")
	}
	set, err := Eval(args[0], ctx)
	if err != nil {
		return Value{}, err
	}
	members := make(map[string]struct{}, set.Len())
	for i := 0; i < set.Len(); i++ {
		members[valueAsString(set, i)] = struct{}{}
	}
	out := make([]bool, v.Len())
	for i := range out {
		_, out[i] = members[valueAsString(v, i)]
	}
	return withVectorFlag(vectorBool(out), v.Vector), nil
}

// methodDuplicated mirrors pandas Series.duplicated(): every repeat occurrence
// of a value is flagged True; keepFirst controls whether the first
// occurrence of a repeated value is itself flagged (keep='first' semantics,
// the pandas default, vs keep=False which flags every occurrence including
// the first).
func methodDuplicated(v Value, keepFirst bool) Value {
	n := v.Len()
	out := make([]bool, n)
	seen := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := valueAsString(v, i)
		if v.IsNullAt(i) {
			continue
		}
		seen[key]++
	}
	firstSeen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		key := valueAsString(v, i)
		if v.IsNullAt(i) {
			continue
		}
		count := seen[key]
		if count <= 1 {
			continue
		}
		if keepFirst && !firstSeen[key] {
			firstSeen[key] = true
			continue
		}
		out[i] = true
	}
	return vectorBool(out)
}

func methodStrContains(v Value, args []Node, ctx *Context) (Value, error) {
	re, err := compilePattern(args, ctx)
	if err != nil {
		return Value{}, err
	}
	out := make([]bool, v.Len())
	for i := range out {
		out[i] = re.MatchString(valueAsString(v, i))
	}
	return withVectorFlag(vectorBool(out), v.Vector), nil
}

func methodStrMatch(v Value, args []Node, ctx *Context) (Value, error) {
	re, err := compilePattern(args, ctx)
	if err != nil {
		return Value{}, err
	}
	anchored := re
	if pattern := re.String(); !strings.HasPrefix(pattern, "^") {
		anchored, err = regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return Value{}, err
		}
	}
	out := make([]bool, v.Len())
	for i := range out {
		out[i] = anchored.MatchString(valueAsString(v, i))
	}
	return withVectorFlag(vectorBool(out), v.Vector), nil
}

func compilePattern(args []Node, ctx *Context) (*regexp.Regexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("str.contains/str.match expects exactly one argument")
	}
	patVal, err := Eval(args[0], ctx)
	if err != nil {
		return nil, err
	}
	pattern := valueAsString(patVal, 0)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	return re, nil
}

func countUnique(v Value) int {
	seen := make(map[string]struct{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		if v.IsNullAt(i) {
			continue
		}
		seen[valueAsString(v, i)] = struct{}{}
	}
	return len(seen)
}

func aggregateNumeric(method string, v Value) Value {
	var nums []float64
	for i := 0; i < v.Len(); i++ {
		if f, ok := tryFloat(v, i); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return scalarNumber(0)
	}
	switch method {
	case "min":
		m := nums[0]
		for _, f := range nums[1:] {
			if f < m {
				m = f
			}
		}
		return scalarNumber(m)
	case "max":
		m := nums[0]
		for _, f := range nums[1:] {
			if f > m {
				m = f
			}
		}
		return scalarNumber(m)
	case "sum":
		var s float64
		for _, f := range nums {
			s += f
		}
		return scalarNumber(s)
	case "mean":
		var s float64
		for _, f := range nums {
			s += f
		}
		return scalarNumber(s / float64(len(nums)))
	}
	return scalarNumber(0)
}

// methodToDate applies the tolerant date parser element-wise, producing a
// numeric vector of Unix-day values (errors='coerce': unparsable values
// become the null sentinel NaN rather than failing the expression).
func methodToDate(v Value) Value {
	out := make([]float64, v.Len())
	for i := range out {
		s := valueAsString(v, i)
		t, ok := dateparse.Parse(s)
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(t.Unix()) / 86400.0
	}
	return withVectorFlag(vectorNumber(out), v.Vector)
}
