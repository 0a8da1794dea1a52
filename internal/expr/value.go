package expr

import "math"

// ValueKind discriminates what a Value holds.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindNumber
	KindString
)

// Value is the runtime result of evaluating a Node. It is either a scalar
// (length 1 in its backing slice) or a vector aligned to the current
// table's row count, mirroring a pandas Series-or-scalar result.
//
// Null is represented in-band rather than with a parallel mask, matching
// how the source tables themselves represent "missing": NaN for numbers,
// "" for strings. Bool has no null representation — boolean vectors (the
// result of every comparison) are never null per-element.
type Value struct {
	Vector  bool
	Kind    ValueKind
	Bools   []bool
	Numbers []float64
	Strings []string
}

func scalarBool(b bool) Value    { return Value{Kind: KindBool, Bools: []bool{b}} }
func scalarNumber(n float64) Value { return Value{Kind: KindNumber, Numbers: []float64{n}} }
func scalarString(s string) Value  { return Value{Kind: KindString, Strings: []string{s}} }

func vectorBool(v []bool) Value    { return Value{Vector: true, Kind: KindBool, Bools: v} }
func vectorNumber(v []float64) Value { return Value{Vector: true, Kind: KindNumber, Numbers: v} }
func vectorString(v []string) Value  { return Value{Vector: true, Kind: KindString, Strings: v} }

// Len returns the number of elements (1 for a scalar).
func (v Value) Len() int {
	switch v.Kind {
	case KindBool:
		return len(v.Bools)
	case KindNumber:
		return len(v.Numbers)
	case KindString:
		return len(v.Strings)
	}
	return 0
}

// BoolAt, NumberAt, StringAt index an element, broadcasting a scalar across
// any index (i is ignored for a scalar Value).
func (v Value) BoolAt(i int) bool {
	if !v.Vector {
		return v.Bools[0]
	}
	return v.Bools[i]
}

func (v Value) NumberAt(i int) float64 {
	if !v.Vector {
		return v.Numbers[0]
	}
	return v.Numbers[i]
}

func (v Value) StringAt(i int) string {
	if !v.Vector {
		return v.Strings[0]
	}
	return v.Strings[i]
}

// IsNullAt reports whether the element at i is the in-band null sentinel
// for its kind (NaN for numbers, "" for strings; bools are never null).
func (v Value) IsNullAt(i int) bool {
	switch v.Kind {
	case KindNumber:
		return math.IsNaN(v.NumberAt(i))
	case KindString:
		return v.StringAt(i) == ""
	}
	return false
}

// AsBool coerces a scalar Value to a bool, the shape required of a
// FieldRule/RowCheck/CrossRule predicate's top-level result. A numeric or
// string non-vector value is never a valid predicate result; the caller
// treats that as an evaluation error.
func (v Value) AsBool() (bool, bool) {
	if v.Vector || v.Kind != KindBool || len(v.Bools) != 1 {
		return false, false
	}
	return v.Bools[0], true
}

// AllTrue reports whether every element of a boolean vector (or the single
// element of a boolean scalar) is true — used when a row-scope predicate
// evaluates to a per-row vector that must hold for the one row being
// checked, and by all()/any().
func (v Value) AllTrue() bool {
	n := v.Len()
	for i := 0; i < n; i++ {
		if !v.BoolAt(i) {
			return false
		}
	}
	return true
}

func (v Value) AnyTrue() bool {
	n := v.Len()
	for i := 0; i < n; i++ {
		if v.BoolAt(i) {
			return true
		}
	}
	return false
}
