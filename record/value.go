package record

import (
	"math"
	"strconv"
	"strings"
	"unique"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindArray represents an array value.
	KindArray
	// KindMap represents a nested, ordered mapping.
	KindMap
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a small typed value used for record attributes and query criteria.
//
// Strings are interned: datasets loaded from static files repeat the same
// handful of strings across thousands of rows.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	s    unique.Handle[string]
	B    bool
	A    []Value
	M    *Attributes
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Array returns an array Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Map returns a nested mapping Value.
func Map(attrs Attributes) Value { return Value{Kind: KindMap, M: &attrs} }

// IsNull reports whether v is null. The zero Value counts as null so that
// missing attributes and explicit nulls compare the same way.
func (v Value) IsNull() bool {
	return v.Kind == KindNull || v.Kind == KindInvalid
}

// IsNumber reports whether v holds an int or a float.
func (v Value) IsNumber() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// StringValue returns the string value if Kind is KindString, otherwise empty string.
func (v Value) StringValue() string {
	if v.Kind == KindString {
		return v.s.Value()
	}
	return ""
}

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the float64 value if Kind is KindFloat.
func (v Value) AsFloat64() (float64, bool) {
	if v.Kind != KindFloat {
		return 0, false
	}
	return v.F64, true
}

// Number returns v as a float64 for either numeric kind.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I64), true
	case KindFloat:
		return v.F64, true
	default:
		return 0, false
	}
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.s.Value(), true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsArray returns the array value if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.A, true
}

// AsMap returns the nested attributes if Kind is KindMap.
func (v Value) AsMap() (Attributes, bool) {
	if v.Kind != KindMap || v.M == nil {
		return Attributes{}, false
	}
	return *v.M, true
}

// Key returns a stable string representation for use in maps.
//
// Numerically equal values share a key regardless of kind (116 and 116.0), and
// nested mappings are keyed independently of field order.
func (v Value) Key() string {
	var sb strings.Builder
	v.appendKey(&sb)
	return sb.String()
}

func (v Value) appendKey(sb *strings.Builder) {
	switch v.Kind {
	case KindNull, KindInvalid:
		sb.WriteString("null")
	case KindInt:
		sb.WriteString("n:")
		sb.WriteString(strconv.FormatInt(v.I64, 10))
	case KindFloat:
		if i, ok := integral(v.F64); ok {
			sb.WriteString("n:")
			sb.WriteString(strconv.FormatInt(i, 10))
			return
		}
		sb.WriteString("f:")
		sb.WriteString(strconv.FormatFloat(v.F64, 'g', -1, 64))
	case KindString:
		sb.WriteString("s:")
		sb.WriteString(strconv.Quote(v.s.Value()))
	case KindBool:
		if v.B {
			sb.WriteString("b:1")
		} else {
			sb.WriteString("b:0")
		}
	case KindArray:
		sb.WriteString("a:[")
		for i := range v.A {
			if i > 0 {
				sb.WriteByte(',')
			}
			v.A[i].appendKey(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteString("m:{")
		if v.M != nil {
			for i, name := range v.M.sortedNames() {
				if i > 0 {
					sb.WriteByte(',')
				}
				sb.WriteString(strconv.Quote(name))
				sb.WriteByte('=')
				v.M.Value(name).appendKey(sb)
			}
		}
		sb.WriteByte('}')
	}
}

// integral reports whether f has an exact int64 representation.
func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull, KindInvalid:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return v.s.Value()
	case KindBool:
		return strconv.FormatBool(v.B)
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return v.Kind.String()
		}
		return string(b)
	}
}

// clone creates a deep copy of a Value, including nested arrays and maps.
func (v Value) clone() Value {
	switch v.Kind {
	case KindArray:
		if len(v.A) == 0 {
			return v
		}
		arrayCopy := make([]Value, len(v.A))
		for i := range v.A {
			arrayCopy[i] = v.A[i].clone()
		}
		return Value{Kind: KindArray, A: arrayCopy}
	case KindMap:
		if v.M == nil {
			return v
		}
		return Map(v.M.Clone())
	default:
		return v
	}
}
