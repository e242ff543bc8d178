package query

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/frozen/record"
)

// resolve returns the positions of matching rows ordered by terms. The
// returned slice may be shared through the cache and must not be modified.
func (s Scope) resolve(terms []OrderTerm) []int {
	var key string
	if s.e.cache != nil {
		var sb strings.Builder
		for _, p := range s.preds {
			p.appendKey(&sb)
		}
		sb.WriteByte('#')
		appendOrderKey(&sb, terms)
		key = sb.String()

		if positions, ok := s.e.cache.Get(key); ok {
			return positions
		}
	}

	positions := toPositions(s.filter())
	if len(terms) > 0 && len(positions) > 1 {
		ds := s.e.ds
		slices.SortStableFunc(positions, func(a, b int) int {
			return comparePositions(ds, terms, a, b)
		})
	}

	if s.e.cache != nil {
		s.e.cache.Add(key, positions)
	}
	return positions
}

// filter intersects the posting lists of every predicate.
func (s Scope) filter() *roaring.Bitmap {
	ds := s.e.ds
	bm := ds.Universe()
	for _, p := range s.preds {
		if bm.IsEmpty() {
			break
		}
		m := ds.Match(p.Field, p.Values)
		if p.Negate {
			bm.AndNot(m)
		} else {
			bm.And(m)
		}
	}
	return bm
}

func toPositions(bm *roaring.Bitmap) []int {
	positions := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		positions = append(positions, int(it.Next()))
	}
	return positions
}

// window applies offset and limit.
func (s Scope) window(positions []int) []int {
	start := min(s.offset, len(positions))
	end := len(positions)
	if s.limit >= 0 && s.limit < end-start {
		end = start + s.limit
	}
	return positions[start:end]
}

func (s Scope) materialize() []int {
	return s.window(s.resolve(s.order))
}

func (s Scope) records(positions []int) []*record.Record {
	out := make([]*record.Record, len(positions))
	for i, pos := range positions {
		out[i] = s.e.ds.At(pos)
	}
	return out
}

func (s Scope) observe(op string, start time.Time, rows int, err error) {
	if s.e.observer != nil {
		s.e.observer.ObserveQuery(op, rows, time.Since(start), err)
	}
}

// All returns the full result sequence.
func (s Scope) All() ([]*record.Record, error) {
	start := time.Now()
	if s.err != nil {
		s.observe("all", start, 0, s.err)
		return nil, s.err
	}
	out := s.records(s.materialize())
	s.observe("all", start, len(out), nil)
	return out, nil
}

// Records iterates over the result sequence. It yields nothing if the scope
// carries an error; check Err.
func (s Scope) Records() iter.Seq[*record.Record] {
	return func(yield func(*record.Record) bool) {
		if s.err != nil {
			return
		}
		for _, pos := range s.materialize() {
			if !yield(s.e.ds.At(pos)) {
				return
			}
		}
	}
}

// First returns the first record, or nil if the result is empty.
func (s Scope) First() (*record.Record, error) {
	start := time.Now()
	r, err := s.first()
	s.observe("first", start, countOne(r), err)
	return r, err
}

func (s Scope) first() (*record.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	positions := s.materialize()
	if len(positions) == 0 {
		return nil, nil
	}
	return s.e.ds.At(positions[0]), nil
}

// FirstN returns up to n records from the start of the result.
func (s Scope) FirstN(n int) ([]*record.Record, error) {
	start := time.Now()
	if n < 0 {
		s = s.fail(fmt.Errorf("%w: negative count %d", ErrInvalidArgument, n))
	}
	if s.err != nil {
		s.observe("first", start, 0, s.err)
		return nil, s.err
	}
	positions := s.materialize()
	out := s.records(positions[:min(n, len(positions))])
	s.observe("first", start, len(out), nil)
	return out, nil
}

// FirstOrError returns the first record or ErrRecordNotFound.
func (s Scope) FirstOrError() (*record.Record, error) {
	start := time.Now()
	r, err := s.first()
	if err == nil && r == nil {
		err = fmt.Errorf("%w: %s", ErrRecordNotFound, s)
	}
	s.observe("first", start, countOne(r), err)
	return r, err
}

// Last returns the last record, or nil if the result is empty.
func (s Scope) Last() (*record.Record, error) {
	start := time.Now()
	r, err := s.last()
	s.observe("last", start, countOne(r), err)
	return r, err
}

func (s Scope) last() (*record.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	positions := s.materialize()
	if len(positions) == 0 {
		return nil, nil
	}
	return s.e.ds.At(positions[len(positions)-1]), nil
}

// LastN returns up to n records from the end of the result, in result order.
func (s Scope) LastN(n int) ([]*record.Record, error) {
	start := time.Now()
	if n < 0 {
		s = s.fail(fmt.Errorf("%w: negative count %d", ErrInvalidArgument, n))
	}
	if s.err != nil {
		s.observe("last", start, 0, s.err)
		return nil, s.err
	}
	positions := s.materialize()
	out := s.records(positions[len(positions)-min(n, len(positions)):])
	s.observe("last", start, len(out), nil)
	return out, nil
}

// LastOrError returns the last record or ErrRecordNotFound.
func (s Scope) LastOrError() (*record.Record, error) {
	start := time.Now()
	r, err := s.last()
	if err == nil && r == nil {
		err = fmt.Errorf("%w: %s", ErrRecordNotFound, s)
	}
	s.observe("last", start, countOne(r), err)
	return r, err
}

// Find looks a record up by primary key and checks it against the scope's
// predicates. Limit and offset do not apply.
func (s Scope) Find(key any) (*record.Record, error) {
	start := time.Now()
	r, err := s.find(key)
	s.observe("find", start, countOne(r), err)
	return r, err
}

func (s Scope) find(key any) (*record.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	k, err := record.FromAny(key)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidArgument, err)
	}
	ds := s.e.ds
	pos, ok := ds.Position(k)
	if !ok {
		return nil, fmt.Errorf("%w: %s=%s", ErrRecordNotFound, ds.KeyField(), k)
	}
	r := ds.At(pos)
	if !MatchesAll(s.preds, r) {
		return nil, fmt.Errorf("%w: %s=%s excluded by %s", ErrRecordNotFound, ds.KeyField(), k, s)
	}
	return r, nil
}

// FindByID is Find without the not-found error: it returns nil for a key that
// is absent or excluded.
func (s Scope) FindByID(key any) (*record.Record, error) {
	start := time.Now()
	r, err := s.find(key)
	if errors.Is(err, ErrRecordNotFound) {
		err = nil
	}
	s.observe("find_by_id", start, countOne(r), err)
	return r, err
}

// Pluck projects every result record onto one field.
func (s Scope) Pluck(field string) ([]record.Value, error) {
	start := time.Now()
	if s.err == nil && !s.e.declared(field) {
		s = s.fail(&UnsupportedFieldError{Field: field})
	}
	if s.err != nil {
		s.observe("pluck", start, 0, s.err)
		return nil, s.err
	}
	positions := s.materialize()
	out := make([]record.Value, len(positions))
	for i, pos := range positions {
		out[i] = s.e.ds.At(pos).Get(field)
	}
	s.observe("pluck", start, len(out), nil)
	return out, nil
}

// PluckMany projects every result record onto a tuple of fields. Without
// arguments it uses every declared field in declaration order.
func (s Scope) PluckMany(fields ...string) ([][]record.Value, error) {
	start := time.Now()
	if s.err == nil {
		if len(fields) == 0 {
			fields = s.e.ds.Fields()
		}
		for _, f := range fields {
			if !s.e.declared(f) {
				s = s.fail(&UnsupportedFieldError{Field: f})
				break
			}
		}
	}
	if s.err != nil {
		s.observe("pluck", start, 0, s.err)
		return nil, s.err
	}
	positions := s.materialize()
	out := make([][]record.Value, len(positions))
	for i, pos := range positions {
		r := s.e.ds.At(pos)
		row := make([]record.Value, len(fields))
		for j, f := range fields {
			row[j] = r.Get(f)
		}
		out[i] = row
	}
	s.observe("pluck", start, len(out), nil)
	return out, nil
}

// Exists reports whether the result is non-empty.
func (s Scope) Exists() (bool, error) {
	n, err := s.count("exists")
	return n > 0, err
}

// Count returns the size of the result, after offset and limit.
func (s Scope) Count() (int, error) {
	return s.count("count")
}

func (s Scope) count(op string) (int, error) {
	start := time.Now()
	if s.err != nil {
		s.observe(op, start, 0, s.err)
		return 0, s.err
	}
	// Order does not change the size; skip the sort.
	n := len(s.window(s.resolve(nil)))
	s.observe(op, start, n, nil)
	return n, nil
}

func countOne(r *record.Record) int {
	if r == nil {
		return 0
	}
	return 1
}
