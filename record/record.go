package record

import "fmt"

// DefaultKeyField is the primary-key attribute used when none is configured.
const DefaultKeyField = "id"

// Record is one immutable row: an attribute mapping plus its primary key.
type Record struct {
	key   Value
	attrs Attributes
}

// New creates a record whose primary key is read from keyField.
// It returns false if the attribute is missing or null.
func New(keyField string, attrs Attributes) (*Record, bool) {
	key, ok := attrs.Get(keyField)
	if !ok || key.IsNull() {
		return nil, false
	}
	return &Record{key: key, attrs: attrs}, true
}

// Key returns the primary-key value.
func (r *Record) Key() Value { return r.key }

// Get returns the value of a field, or null if the record lacks it.
func (r *Record) Get(field string) Value { return r.attrs.Value(field) }

// Lookup returns the value of a field and whether the record declares it.
func (r *Record) Lookup(field string) (Value, bool) { return r.attrs.Get(field) }

// Attributes returns the record's attribute mapping.
func (r *Record) Attributes() Attributes { return r.attrs }

// Equal reports whether both records carry the same primary key.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return Equal(r.key, other.key)
}

// String implements fmt.Stringer.
func (r *Record) String() string {
	return fmt.Sprintf("Record(%s)", r.key)
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	return r.attrs.MarshalJSON()
}

// MarshalYAML implements yaml.Marshaler.
func (r *Record) MarshalYAML() (any, error) {
	return r.attrs.MarshalYAML()
}
