package record

import (
	"iter"
	"slices"
)

// Field is a single named attribute.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for Field{Name: name, Value: v}.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Attributes is an ordered, immutable mapping from field name to Value.
//
// The zero value is an empty mapping. Order is the order fields were first
// declared, which is the order they appear in the source document.
type Attributes struct {
	fields []Field
	index  map[string]int
}

// NewAttributes builds an ordered mapping. A repeated name keeps the position
// of its first occurrence and the value of its last.
func NewAttributes(fields ...Field) Attributes {
	a := Attributes{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		a.set(f.Name, f.Value)
	}
	return a
}

// set is only used while an Attributes value is being constructed.
func (a *Attributes) set(name string, v Value) {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	if i, ok := a.index[name]; ok {
		a.fields[i].Value = v
		return
	}
	a.index[name] = len(a.fields)
	a.fields = append(a.fields, Field{Name: name, Value: v})
}

// Len returns the number of fields.
func (a Attributes) Len() int { return len(a.fields) }

// Get returns the value of a field and whether it is present.
func (a Attributes) Get(name string) (Value, bool) {
	i, ok := a.index[name]
	if !ok {
		return Value{}, false
	}
	return a.fields[i].Value, true
}

// Value returns the value of a field, or null if absent.
func (a Attributes) Value(name string) Value {
	if v, ok := a.Get(name); ok {
		return v
	}
	return Null()
}

// Has reports whether the field is present.
func (a Attributes) Has(name string) bool {
	_, ok := a.index[name]
	return ok
}

// Names returns the field names in declaration order.
func (a Attributes) Names() []string {
	names := make([]string, len(a.fields))
	for i, f := range a.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the fields in declaration order.
func (a Attributes) Fields() []Field {
	return slices.Clone(a.fields)
}

// All iterates over fields in declaration order.
func (a Attributes) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, f := range a.fields {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// With returns a copy of a with the field set. The receiver is unchanged.
func (a Attributes) With(name string, v Value) Attributes {
	c := a.Clone()
	c.set(name, v)
	return c
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	c := Attributes{
		fields: make([]Field, len(a.fields)),
		index:  make(map[string]int, len(a.fields)),
	}
	for i, f := range a.fields {
		c.fields[i] = Field{Name: f.Name, Value: f.Value.clone()}
		c.index[f.Name] = i
	}
	return c
}

// Equal reports whether both mappings hold the same fields with equal values,
// ignoring order.
func (a Attributes) Equal(other Attributes) bool {
	if len(a.fields) != len(other.fields) {
		return false
	}
	for _, f := range a.fields {
		ov, ok := other.Get(f.Name)
		if !ok || !Equal(f.Value, ov) {
			return false
		}
	}
	return true
}

// ToMap converts the mapping into plain Go values (see ToAny).
func (a Attributes) ToMap() map[string]any {
	m := make(map[string]any, len(a.fields))
	for _, f := range a.fields {
		m[f.Name] = ToAny(f.Value)
	}
	return m
}

func (a Attributes) sortedNames() []string {
	names := a.Names()
	slices.Sort(names)
	return names
}
