package record

import (
	"fmt"
)

// FieldType defines the declared type of an attribute.
type FieldType uint8

const (
	FieldTypeAny FieldType = iota
	FieldTypeInt
	FieldTypeFloat
	FieldTypeString
	FieldTypeBool
	FieldTypeArray
	FieldTypeMap
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeAny:
		return "Any"
	case FieldTypeInt:
		return "Int"
	case FieldTypeFloat:
		return "Float"
	case FieldTypeString:
		return "String"
	case FieldTypeBool:
		return "Bool"
	case FieldTypeArray:
		return "Array"
	case FieldTypeMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// SchemaError reports an attribute whose value does not match its declared type.
type SchemaError struct {
	Field    string
	Kind     Kind
	Expected FieldType
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("field %q has invalid type %s, expected %s", e.Field, e.Kind, e.Expected)
}

// Schema declares expected attribute types. Undeclared attributes are accepted.
type Schema map[string]FieldType

// Validate checks if the given attributes conform to the schema.
func (s Schema) Validate(attrs Attributes) error {
	if s == nil {
		return nil
	}
	for name, v := range attrs.All() {
		expected, ok := s[name]
		if !ok {
			continue
		}
		if !checkKind(v.Kind, expected) {
			return &SchemaError{Field: name, Kind: v.Kind, Expected: expected}
		}
	}
	return nil
}

func checkKind(k Kind, expected FieldType) bool {
	if k == KindNull {
		return true
	}
	switch expected {
	case FieldTypeAny:
		return true
	case FieldTypeInt:
		return k == KindInt
	case FieldTypeFloat:
		return k == KindFloat || k == KindInt // Allow upgrading Int to Float
	case FieldTypeString:
		return k == KindString
	case FieldTypeBool:
		return k == KindBool
	case FieldTypeArray:
		return k == KindArray
	case FieldTypeMap:
		return k == KindMap
	}
	return false
}
