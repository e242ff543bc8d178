package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/frozen/dataset"
)

// Scope is an immutable, chainable query over one dataset snapshot.
//
// Every chaining method returns a new Scope and leaves the receiver untouched,
// so a base scope can be shared across goroutines and refined independently.
// Nothing is evaluated until a terminal method such as All, First, Pluck or
// Sum is called.
//
// A chaining step that receives invalid input records the error on the
// returned scope; every terminal method then reports it.
//
// Example:
//
//	names, err := engine.Scope().
//	    Where(query.Criteria{"nato": true}).
//	    WhereNot(query.Criteria{"id": 1}).
//	    Order("name desc").
//	    Limit(10).
//	    Pluck("name")
type Scope struct {
	e      *Engine
	preds  []Predicate
	order  []OrderTerm
	limit  int // -1 means unlimited
	offset int
	err    error
}

func (s Scope) with(fn func(*Scope)) Scope {
	if s.err != nil {
		return s
	}
	next := s
	next.preds = slices.Clip(s.preds)
	next.order = slices.Clip(s.order)
	fn(&next)
	return next
}

func (s Scope) fail(err error) Scope {
	if s.err != nil {
		return s
	}
	s.err = err
	return s
}

// Where narrows the scope to records whose fields equal the given values.
// Each field becomes one inclusion predicate; all predicates must hold.
func (s Scope) Where(c Criteria) Scope {
	preds, err := compile(c, false)
	if err != nil {
		return s.fail(err)
	}
	return s.Filter(preds...)
}

// WhereNot excludes records whose fields equal the given values.
func (s Scope) WhereNot(c Criteria) Scope {
	preds, err := compile(c, true)
	if err != nil {
		return s.fail(err)
	}
	return s.Filter(preds...)
}

// Filter appends predicates as they are.
func (s Scope) Filter(preds ...Predicate) Scope {
	if len(preds) == 0 {
		return s
	}
	return s.with(func(n *Scope) {
		n.preds = append(n.preds, preds...)
	})
}

// Order appends ascending sort keys. A field may carry an explicit direction:
// "name desc". Later calls break ties left by earlier ones.
func (s Scope) Order(fields ...string) Scope {
	terms := make([]OrderTerm, 0, len(fields))
	for _, f := range fields {
		t, err := ParseOrder(f)
		if err != nil {
			return s.fail(err)
		}
		terms = append(terms, t)
	}
	return s.OrderBy(terms...)
}

// OrderBy appends sort keys with explicit directions.
func (s Scope) OrderBy(terms ...OrderTerm) Scope {
	for _, t := range terms {
		if t.Field == "" {
			return s.fail(fmt.Errorf("%w: empty order field", ErrInvalidArgument))
		}
	}
	if len(terms) == 0 {
		return s
	}
	return s.with(func(n *Scope) {
		n.order = append(n.order, terms...)
	})
}

// Reorder replaces all sort keys.
func (s Scope) Reorder(fields ...string) Scope {
	return s.with(func(n *Scope) { n.order = nil }).Order(fields...)
}

// Unordered drops all sort keys, restoring load order.
func (s Scope) Unordered() Scope {
	return s.with(func(n *Scope) { n.order = nil })
}

// Limit caps the number of records. Limit(0) yields nothing.
func (s Scope) Limit(n int) Scope {
	if n < 0 {
		return s.fail(fmt.Errorf("%w: negative limit %d", ErrInvalidArgument, n))
	}
	return s.with(func(next *Scope) { next.limit = n })
}

// Offset skips the first n records of the ordered result.
func (s Scope) Offset(n int) Scope {
	if n < 0 {
		return s.fail(fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, n))
	}
	return s.with(func(next *Scope) { next.offset = n })
}

// Named applies a scope registered with WithNamedScope.
func (s Scope) Named(name string) Scope {
	if s.err != nil {
		return s
	}
	fn, ok := s.e.named[name]
	if !ok {
		return s.fail(fmt.Errorf("%w: %q", ErrUnknownScope, name))
	}
	return fn(s)
}

// Finders returns the dynamic finders bound to this scope.
func (s Scope) Finders() *Finders {
	return &Finders{scope: s}
}

// Err returns the error recorded while chaining, if any.
func (s Scope) Err() error { return s.err }

// Dataset returns the snapshot this scope queries.
func (s Scope) Dataset() *dataset.Dataset { return s.e.ds }

// Predicates returns a copy of the accumulated predicates.
func (s Scope) Predicates() []Predicate { return slices.Clone(s.preds) }

// OrderTerms returns a copy of the sort keys.
func (s Scope) OrderTerms() []OrderTerm { return slices.Clone(s.order) }

// String describes the scope, e.g. `where name in [France]; order name asc; limit 1`.
func (s Scope) String() string {
	var parts []string
	for _, p := range s.preds {
		parts = append(parts, "where "+p.String())
	}
	if len(s.order) > 0 {
		terms := make([]string, len(s.order))
		for i, t := range s.order {
			terms[i] = t.String()
		}
		parts = append(parts, "order "+strings.Join(terms, ", "))
	}
	if s.offset > 0 {
		parts = append(parts, "offset "+strconv.Itoa(s.offset))
	}
	if s.limit >= 0 {
		parts = append(parts, "limit "+strconv.Itoa(s.limit))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, "; ")
}
