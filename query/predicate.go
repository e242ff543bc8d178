package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/frozen/record"
)

// Criteria maps field names to expected values.
//
// A scalar means equality. A slice (or a Set built with In) means membership.
type Criteria map[string]any

// Set is an explicit membership list for Criteria.
type Set []any

// In returns a membership Set.
func In(values ...any) Set {
	return Set(values)
}

// Predicate is a single field test.
//
// An inclusion predicate holds when the field equals one of Values; an
// exclusion predicate (Negate) holds when it equals none of them. A record
// lacking the field is treated as holding null.
type Predicate struct {
	Field  string
	Values []record.Value
	Negate bool
}

// Matches reports whether r satisfies the predicate.
func (p Predicate) Matches(r *record.Record) bool {
	v := r.Get(p.Field)
	hit := slices.ContainsFunc(p.Values, func(want record.Value) bool {
		return record.Equal(v, want)
	})
	return hit != p.Negate
}

// String renders the predicate as "field in [a, b]" or "field not in [a, b]".
func (p Predicate) String() string {
	var sb strings.Builder
	sb.WriteString(p.Field)
	if p.Negate {
		sb.WriteString(" not")
	}
	sb.WriteString(" in [")
	for i, v := range p.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// appendKey writes a canonical form used to fingerprint scopes.
func (p Predicate) appendKey(sb *strings.Builder) {
	if p.Negate {
		sb.WriteByte('-')
	} else {
		sb.WriteByte('+')
	}
	sb.WriteString(strconv.Quote(p.Field))
	sb.WriteByte('=')

	keys := make([]string, len(p.Values))
	for i, v := range p.Values {
		keys[i] = v.Key()
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)
	sb.WriteString(strings.Join(keys, "|"))
	sb.WriteByte(';')
}

// MatchesAll reports whether r satisfies every predicate.
func MatchesAll(preds []Predicate, r *record.Record) bool {
	for _, p := range preds {
		if !p.Matches(r) {
			return false
		}
	}
	return true
}

// compile converts criteria into predicates ordered by field name.
func compile(c Criteria, negate bool) ([]Predicate, error) {
	fields := make([]string, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	preds := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		values, err := toValues(c[f])
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidArgument, f, err)
		}
		preds = append(preds, Predicate{Field: f, Values: values, Negate: negate})
	}
	return preds, nil
}

func toValues(v any) ([]record.Value, error) {
	if set, ok := v.(Set); ok {
		values := make([]record.Value, 0, len(set))
		for _, item := range set {
			rv, err := record.FromAny(item)
			if err != nil {
				return nil, err
			}
			values = append(values, rv)
		}
		return values, nil
	}

	rv, err := record.FromAny(v)
	if err != nil {
		return nil, err
	}
	if rv.Kind == record.KindArray {
		return rv.A, nil
	}
	return []record.Value{rv}, nil
}
