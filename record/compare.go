package record

import (
	"cmp"
	"math"
	"strings"
)

// Equal reports whether two values are equal.
//
// Numbers compare numerically across int and float. Null and a missing
// attribute (zero Value) are equal. Nested mappings ignore field order.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}

	if a.IsNumber() && b.IsNumber() {
		// Prefer exact int compare when possible.
		switch {
		case a.Kind == KindInt && b.Kind == KindInt:
			return a.I64 == b.I64
		case a.Kind == KindFloat && b.Kind == KindFloat:
			// NaN equals NaN so that Equal agrees with Key.
			return a.F64 == b.F64 || (math.IsNaN(a.F64) && math.IsNaN(b.F64))
		case a.Kind == KindInt:
			i, ok := integral(b.F64)
			return ok && i == a.I64
		default:
			i, ok := integral(a.F64)
			return ok && i == b.I64
		}
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !Equal(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return a.Key() == b.Key()
	default:
		return false
	}
}

// rank orders kinds for Compare: null < bool < number < string < array < map.
func rank(v Value) int {
	switch v.Kind {
	case KindNull, KindInvalid:
		return 0
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	case KindArray:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or +1 using the natural ordering of values.
//
// Values of different kinds order by kind rank, so Compare is total and safe
// to use as a sort comparator over heterogeneous columns.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case 0:
		return 0
	case 1:
		switch {
		case a.B == b.B:
			return 0
		case !a.B:
			return -1
		default:
			return 1
		}
	case 2:
		switch {
		case a.Kind == KindInt && b.Kind == KindInt:
			return cmp.Compare(a.I64, b.I64)
		case a.Kind == KindFloat && b.Kind == KindFloat:
			return cmp.Compare(a.F64, b.F64)
		case a.Kind == KindInt:
			return compareIntFloat(a.I64, b.F64)
		default:
			return -compareIntFloat(b.I64, a.F64)
		}
	case 3:
		return strings.Compare(a.s.Value(), b.s.Value())
	case 4:
		n := min(len(a.A), len(b.A))
		for i := 0; i < n; i++ {
			if c := Compare(a.A[i], b.A[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.A), len(b.A))
	default:
		return strings.Compare(a.Key(), b.Key())
	}
}

// compareIntFloat orders an int against a float without rounding the int.
// NaN sorts below every number, as cmp.Compare does for floats.
func compareIntFloat(i int64, f float64) int {
	if math.IsNaN(f) {
		return 1
	}
	if n, ok := integral(f); ok {
		return cmp.Compare(i, n)
	}
	switch {
	case f >= math.MaxInt64:
		return -1
	case f < math.MinInt64:
		return 1
	}
	// f has a fractional part, so |f| < 2^52 and the sign of the
	// difference survives converting i.
	return cmp.Compare(float64(i), f)
}
