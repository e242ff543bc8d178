// Package record provides the immutable row model used by frozen.
//
// A Record is an ordered attribute mapping (Attributes) plus its primary-key
// value. Attribute values are small typed Values:
//
//   - Null: record.Null()
//   - Int: record.Int(2)
//   - Float: record.Float(3.5)
//   - String: record.String("Canada")
//   - Bool: record.Bool(true)
//   - Array: record.Array([]record.Value{...})
//   - Map: record.Map(record.NewAttributes(...))
//
// Example:
//
//	attrs := record.NewAttributes(
//	    record.F("id", record.Int(1)),
//	    record.F("name", record.String("Canada")),
//	    record.F("density", record.Float(3.5)),
//	)
//	r, _ := record.New(record.DefaultKeyField, attrs)
//
// # Equality and ordering
//
// Equal compares numbers across int and float (116 == 116.0) and treats a
// missing attribute as null. Compare is a total order used for sorting:
// null < bool < number < string < array < map. Value.Key is a canonical
// string shared by equal values; indexes are keyed by it.
//
// # Encoding
//
// Attributes decode from JSON and YAML documents preserving field order, and
// encode back in the same order.
package record
