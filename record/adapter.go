package record

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
)

// FromAny converts a Go value into a typed Value.
//
// This exists as an adapter layer for query criteria and loader input.
// Plain maps are converted with their keys sorted, since Go maps carry no
// order; use Attributes to control field order.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case Attributes:
		return Map(x), nil
	case *Attributes:
		if x == nil {
			return Null(), nil
		}
		return Map(*x), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return fromUint(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("record: invalid number %q: %w", x, err)
		}
		return Float(f), nil
	case []Value:
		return Array(x), nil
	case []any:
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case []string:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = String(x[i])
		}
		return Array(arr), nil
	case []int:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Int(int64(x[i]))
		}
		return Array(arr), nil
	case []float64:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Float(x[i])
		}
		return Array(arr), nil
	case map[string]any:
		attrs, err := AttributesFromMap(x)
		if err != nil {
			return Value{}, err
		}
		return Map(attrs), nil
	default:
		return fromReflect(v)
	}
}

func fromUint(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		// Avoid silently wrapping large values.
		return Value{}, fmt.Errorf("record: uint64 out of range: %d", x)
	}
	return Int(int64(x)), nil
}

// fromReflect handles typed slices and named scalar types not covered above.
func fromReflect(v any) (Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return String(string(rv.Bytes())), nil
		}
		arr := make([]Value, rv.Len())
		for i := range arr {
			vv, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	default:
		return Value{}, fmt.Errorf("record: unsupported value type %T", v)
	}
}

// MustFromAny is FromAny for literals in tests and examples; it panics on error.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out
}

// AttributesFromMap converts a plain map into Attributes with sorted field order.
func AttributesFromMap(m map[string]any) (Attributes, error) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)

	attrs := Attributes{
		fields: make([]Field, 0, len(m)),
		index:  make(map[string]int, len(m)),
	}
	for _, name := range names {
		vv, err := FromAny(m[name])
		if err != nil {
			return Attributes{}, fmt.Errorf("field %q: %w", name, err)
		}
		attrs.set(name, vv)
	}
	return attrs, nil
}

// ToAny converts a Value back into plain Go values: nil, int64, float64,
// string, bool, []any or map[string]any.
func ToAny(v Value) any {
	switch v.Kind {
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.s.Value()
	case KindBool:
		return v.B
	case KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = ToAny(v.A[i])
		}
		return out
	case KindMap:
		if v.M == nil {
			return map[string]any{}
		}
		return v.M.ToMap()
	default:
		return nil
	}
}
