package query

import (
	"fmt"
	"time"

	"github.com/hupe1980/frozen/record"
)

// Aggregates run over the filtered result before offset and limit. Null values
// are skipped.

// Sum adds up the numeric values of field. The sum of nothing is 0.
func (s Scope) Sum(field string) (float64, error) {
	start := time.Now()
	total, n, err := s.sum(field)
	s.observe("sum", start, n, err)
	return total, err
}

// Average returns the mean of the numeric values of field. It fails with
// ErrDivisionByZero when there is no value to average.
func (s Scope) Average(field string) (float64, error) {
	start := time.Now()
	total, n, err := s.sum(field)
	if err == nil && n == 0 {
		err = fmt.Errorf("%w: average of %q over no values", ErrDivisionByZero, field)
	}
	s.observe("average", start, n, err)
	if err != nil {
		return 0, err
	}
	return total / float64(n), nil
}

// Minimum returns the smallest value of field in natural order.
func (s Scope) Minimum(field string) (record.Value, error) {
	start := time.Now()
	v, err := s.extreme(field, -1)
	s.observe("minimum", start, valueRows(err), err)
	return v, err
}

// Maximum returns the largest value of field in natural order.
func (s Scope) Maximum(field string) (record.Value, error) {
	start := time.Now()
	v, err := s.extreme(field, 1)
	s.observe("maximum", start, valueRows(err), err)
	return v, err
}

// valueRows reports one row for a successful single-value aggregate.
func valueRows(err error) int {
	if err != nil {
		return 0
	}
	return 1
}

func (s Scope) sum(field string) (float64, int, error) {
	if err := s.checkAggregate(field); err != nil {
		return 0, 0, err
	}
	var (
		total float64
		n     int
	)
	for _, pos := range s.resolve(nil) {
		r := s.e.ds.At(pos)
		v := r.Get(field)
		if v.IsNull() {
			continue
		}
		f, ok := v.Number()
		if !ok {
			return 0, 0, &NonNumericError{Field: field, Key: r.Key(), Kind: v.Kind}
		}
		total += f
		n++
	}
	return total, n, nil
}

// extreme keeps the first value that wins under sign (-1 min, 1 max).
func (s Scope) extreme(field string, sign int) (record.Value, error) {
	if err := s.checkAggregate(field); err != nil {
		return record.Value{}, err
	}
	var (
		best  record.Value
		found bool
	)
	for _, pos := range s.resolve(nil) {
		v := s.e.ds.At(pos).Get(field)
		if v.IsNull() {
			continue
		}
		if !found || record.Compare(v, best)*sign > 0 {
			best, found = v, true
		}
	}
	if !found {
		return record.Value{}, fmt.Errorf("%w: no values for %q", ErrRecordNotFound, field)
	}
	return best, nil
}

func (s Scope) checkAggregate(field string) error {
	if s.err != nil {
		return s.err
	}
	if !s.e.declared(field) {
		return &UnsupportedFieldError{Field: field}
	}
	return nil
}
