package testutil

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/record"
)

// Countries returns the three-country fixture in load order.
func Countries() []record.Attributes {
	return []record.Attributes{
		record.NewAttributes(
			record.F("id", record.Int(1)),
			record.F("name", record.String("Canada")),
			record.F("density", record.Float(3.5)),
			record.F("population", record.Float(33.88)),
			record.F("king", record.String("Elizabeth II")),
			record.F("nato", record.Bool(true)),
			record.F("updated_at", record.String("2014-02-24T19:08:06-05:00")),
		),
		record.NewAttributes(
			record.F("id", record.Int(2)),
			record.F("name", record.String("France")),
			record.F("density", record.Int(116)),
			record.F("population", record.Float(65.7)),
			record.F("king", record.Null()),
			record.F("nato", record.Bool(true)),
			record.F("updated_at", record.String("2014-02-12T19:02:03-02:00")),
		),
		record.NewAttributes(
			record.F("id", record.Int(3)),
			record.F("name", record.String("Austria")),
			record.F("density", record.Float(100.3)),
			record.F("population", record.Float(8.462)),
			record.F("nato", record.Bool(false)),
			record.F("updated_at", record.String("2014-02-12T19:02:03-02:00")),
		),
	}
}

// CountriesDataset builds the country fixture, failing the test on error.
func CountriesDataset(tb testing.TB) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.Build(Countries(), dataset.WithName("countries"))
	if err != nil {
		tb.Fatalf("build countries: %v", err)
	}
	return ds
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Column describes how Rows fills one attribute.
type Column struct {
	Name string
	// Values is the domain to draw from. Small domains produce many ties,
	// which is what sort-stability tests need.
	Values []record.Value
	// Sparse leaves the attribute out of roughly a quarter of the rows.
	Sparse bool
}

// DefaultColumns is a mixed-kind schema with heavy duplication.
var DefaultColumns = []Column{
	{Name: "group", Values: []record.Value{record.String("a"), record.String("b"), record.String("c")}},
	{Name: "score", Values: []record.Value{record.Int(1), record.Int(2), record.Float(2.5), record.Int(3)}},
	{Name: "flag", Values: []record.Value{record.Bool(true), record.Bool(false)}},
	{Name: "note", Values: []record.Value{record.String("x"), record.Null()}, Sparse: true},
}

// Rows generates n rows keyed 1..n with attributes drawn from columns.
func (r *RNG) Rows(n int, columns []Column) []record.Attributes {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]record.Attributes, n)
	for i := range rows {
		fields := []record.Field{record.F(record.DefaultKeyField, record.Int(int64(i+1)))}
		for _, c := range columns {
			if c.Sparse && r.rand.Intn(4) == 0 {
				continue
			}
			fields = append(fields, record.F(c.Name, c.Values[r.rand.Intn(len(c.Values))]))
		}
		rows[i] = record.NewAttributes(fields...)
	}
	return rows
}

// Pick returns a random element of values.
func (r *RNG) Pick(values []record.Value) record.Value {
	return values[r.Intn(len(values))]
}
