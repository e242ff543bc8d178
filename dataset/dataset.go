package dataset

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/frozen/pk"
	"github.com/hupe1980/frozen/record"
)

var (
	// ErrNotFound is returned when no record has the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrMissingKey is matched by every *MissingKeyError.
	ErrMissingKey = errors.New("missing primary key")

	// ErrTooLarge is returned when a dataset exceeds the posting-list row space.
	ErrTooLarge = errors.New("dataset too large")
)

// MissingKeyError reports a row without a usable primary key.
type MissingKeyError struct {
	Row      int
	KeyField string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("row %d: missing primary key %q", e.Row, e.KeyField)
}

// Is makes errors.Is(err, ErrMissingKey) hold.
func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

var generations atomic.Uint64

type options struct {
	name     string
	keyField string
}

// Option configures Build.
type Option func(*options)

// WithName names the dataset (used in logs and metrics).
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithKeyField sets the primary-key attribute. Defaults to record.DefaultKeyField.
func WithKeyField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.keyField = field
		}
	}
}

// Dataset is an immutable, ordered record set with a primary-key index.
type Dataset struct {
	name       string
	keyField   string
	generation uint64

	records  []*record.Record
	index    *pk.Index
	fields   []string
	fieldSet map[string]struct{}

	// field -> value key -> row positions
	postings map[string]map[string]*roaring.Bitmap
	universe *roaring.Bitmap
}

// Build creates a dataset from rows in load order.
//
// It fails with a *MissingKeyError if a row lacks the key attribute and with a
// *pk.DuplicateKeyError if two rows share a key.
func Build(rows []record.Attributes, optFns ...Option) (*Dataset, error) {
	o := options{keyField: record.DefaultKeyField}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if uint64(len(rows)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d rows", ErrTooLarge, len(rows))
	}

	ds := &Dataset{
		name:       o.name,
		keyField:   o.keyField,
		generation: generations.Add(1),
		records:    make([]*record.Record, len(rows)),
		fieldSet:   make(map[string]struct{}),
	}

	keys := make([]record.Value, len(rows))
	for i, row := range rows {
		r, ok := record.New(o.keyField, row)
		if !ok {
			return nil, &MissingKeyError{Row: i, KeyField: o.keyField}
		}
		ds.records[i] = r
		keys[i] = r.Key()

		for name := range row.All() {
			if _, seen := ds.fieldSet[name]; !seen {
				ds.fieldSet[name] = struct{}{}
				ds.fields = append(ds.fields, name)
			}
		}
	}

	index, err := pk.Build(keys)
	if err != nil {
		return nil, err
	}
	ds.index = index

	ds.buildPostings()
	return ds, nil
}

// buildPostings indexes every declared field; rows lacking a field are
// indexed under null.
func (ds *Dataset) buildPostings() {
	ds.universe = roaring.New()
	ds.universe.AddRange(0, uint64(len(ds.records)))

	ds.postings = make(map[string]map[string]*roaring.Bitmap, len(ds.fields))
	for _, field := range ds.fields {
		values := make(map[string]*roaring.Bitmap)
		for pos, r := range ds.records {
			k := r.Get(field).Key()
			bm, ok := values[k]
			if !ok {
				bm = roaring.New()
				values[k] = bm
			}
			bm.Add(uint32(pos))
		}
		for _, bm := range values {
			bm.RunOptimize()
		}
		ds.postings[field] = values
	}
}

// Name returns the dataset name.
func (ds *Dataset) Name() string { return ds.name }

// KeyField returns the primary-key attribute.
func (ds *Dataset) KeyField() string { return ds.keyField }

// Generation is unique per built dataset; it identifies a snapshot.
func (ds *Dataset) Generation() uint64 { return ds.generation }

// Len returns the number of records.
func (ds *Dataset) Len() int { return len(ds.records) }

// At returns the record at a load-order position.
func (ds *Dataset) At(pos int) *record.Record { return ds.records[pos] }

// All returns every record in load order.
func (ds *Dataset) All() []*record.Record {
	return slices.Clone(ds.records)
}

// Records iterates over records in load order.
func (ds *Dataset) Records() iter.Seq2[int, *record.Record] {
	return func(yield func(int, *record.Record) bool) {
		for i, r := range ds.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Fields returns the declared attribute names in first-seen order.
func (ds *Dataset) Fields() []string {
	return slices.Clone(ds.fields)
}

// HasField reports whether any record declares the attribute.
func (ds *Dataset) HasField(field string) bool {
	_, ok := ds.fieldSet[field]
	return ok
}

// Lookup returns the record with the given primary key.
func (ds *Dataset) Lookup(key any) (*record.Record, error) {
	v, err := record.FromAny(key)
	if err != nil {
		return nil, err
	}
	pos, ok := ds.Position(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s=%s", ErrNotFound, ds.keyField, v)
	}
	return ds.records[pos], nil
}

// Position returns the load-order position of the record with the given key.
func (ds *Dataset) Position(key record.Value) (int, bool) {
	return ds.index.Lookup(key)
}

// Universe returns a new bitmap holding every row position.
func (ds *Dataset) Universe() *roaring.Bitmap {
	return ds.universe.Clone()
}

// Match returns a new bitmap of the rows whose field equals any of values.
// Rows lacking the field match null; an undeclared field is null everywhere.
func (ds *Dataset) Match(field string, values []record.Value) *roaring.Bitmap {
	postings, ok := ds.postings[field]
	if !ok {
		for _, v := range values {
			if v.IsNull() {
				return ds.Universe()
			}
		}
		return roaring.New()
	}

	hits := make([]*roaring.Bitmap, 0, len(values))
	for _, v := range values {
		if bm, ok := postings[v.Key()]; ok {
			hits = append(hits, bm)
		}
	}
	switch len(hits) {
	case 0:
		return roaring.New()
	case 1:
		return hits[0].Clone()
	default:
		return roaring.FastOr(hits...)
	}
}
