package query

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hupe1980/frozen/record"
	"github.com/hupe1980/frozen/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countries(t *testing.T, optFns ...Option) *Engine {
	t.Helper()
	return NewEngine(testutil.CountriesDataset(t), optFns...)
}

func keys(t *testing.T, records []*record.Record) []int64 {
	t.Helper()
	out := make([]int64, len(records))
	for i, r := range records {
		k, ok := r.Key().AsInt64()
		require.True(t, ok)
		out[i] = k
	}
	return out
}

func TestCountryExamples(t *testing.T) {
	e := countries(t)
	s := e.Scope()

	r, err := s.Where(Criteria{"name": "France"}).First()
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), r.Key())

	_, err = s.WhereNot(Criteria{"id": 1}).Find(1)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	names, err := s.Order("name").Pluck("name")
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.String("Austria"), record.String("Canada"), record.String("France")}, names)

	all, err := s.Offset(1).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, keys(t, all))

	tuples, err := s.PluckMany("id", "name")
	require.NoError(t, err)
	assert.Equal(t, [][]record.Value{
		{record.Int(1), record.String("Canada")},
		{record.Int(2), record.String("France")},
		{record.Int(3), record.String("Austria")},
	}, tuples)

	avg, err := s.Average("density")
	require.NoError(t, err)
	assert.InDelta(t, 73.267, avg, 0.001)
}

func TestWhere(t *testing.T) {
	s := countries(t).Scope()

	tests := []struct {
		name  string
		scope Scope
		want  []int64
	}{
		{name: "all", scope: s, want: []int64{1, 2, 3}},
		{name: "scalar", scope: s.Where(Criteria{"nato": true}), want: []int64{1, 2}},
		{name: "set", scope: s.Where(Criteria{"name": []string{"Austria", "Canada"}}), want: []int64{1, 3}},
		{name: "in", scope: s.Where(Criteria{"id": In(3, 1)}), want: []int64{1, 3}},
		{name: "empty set", scope: s.Where(Criteria{"id": In()}), want: []int64{}},
		{name: "numeric across kinds", scope: s.Where(Criteria{"density": 116.0}), want: []int64{2}},
		{name: "conjunction", scope: s.Where(Criteria{"nato": true, "updated_at": "2014-02-12T19:02:03-02:00"}), want: []int64{2}},
		{name: "chained", scope: s.Where(Criteria{"nato": true}).Where(Criteria{"name": "Canada"}), want: []int64{1}},
		{name: "null matches missing", scope: s.Where(Criteria{"king": nil}), want: []int64{2, 3}},
		{name: "not null", scope: s.WhereNot(Criteria{"king": nil}), want: []int64{1}},
		{name: "not", scope: s.WhereNot(Criteria{"id": 1}), want: []int64{2, 3}},
		{name: "not set", scope: s.WhereNot(Criteria{"id": []int{1, 2}}), want: []int64{3}},
		{name: "not empty set", scope: s.WhereNot(Criteria{"id": In()}), want: []int64{1, 2, 3}},
		{name: "undeclared is null", scope: s.Where(Criteria{"capital": nil}), want: []int64{1, 2, 3}},
		{name: "undeclared value", scope: s.Where(Criteria{"capital": "Paris"}), want: []int64{}},
		{name: "where and not", scope: s.Where(Criteria{"nato": true}).WhereNot(Criteria{"name": "Canada"}), want: []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scope.All()
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(t, got))
		})
	}
}

func TestScopeImmutable(t *testing.T) {
	base := countries(t).Scope().Where(Criteria{"nato": true})

	a := base.Where(Criteria{"name": "Canada"})
	b := base.Where(Criteria{"name": "France"})

	ra, err := a.All()
	require.NoError(t, err)
	rb, err := b.All()
	require.NoError(t, err)
	rbase, err := base.All()
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, keys(t, ra))
	assert.Equal(t, []int64{2}, keys(t, rb))
	assert.Equal(t, []int64{1, 2}, keys(t, rbase))
	assert.Len(t, base.Predicates(), 1)

	ordered := base.Order("name desc")
	assert.Empty(t, base.OrderTerms())
	assert.Equal(t, []OrderTerm{Desc("name")}, ordered.OrderTerms())
}

func TestOrder(t *testing.T) {
	s := countries(t).Scope()

	tests := []struct {
		name  string
		scope Scope
		want  []int64
	}{
		{name: "single", scope: s.Order("name"), want: []int64{3, 1, 2}},
		{name: "desc suffix", scope: s.Order("name desc"), want: []int64{2, 1, 3}},
		{name: "stable desc", scope: s.Order("updated_at desc"), want: []int64{1, 2, 3}},
		{name: "multiple", scope: s.Order("updated_at", "name"), want: []int64{3, 2, 1}},
		{name: "mixed directions", scope: s.OrderBy(Desc("nato"), Asc("name")), want: []int64{1, 2, 3}},
		{name: "numeric across kinds", scope: s.Order("density"), want: []int64{1, 3, 2}},
		{name: "nulls first", scope: s.Order("king"), want: []int64{2, 3, 1}},
		{name: "appended terms break ties", scope: s.Order("nato").Order("name desc"), want: []int64{3, 2, 1}},
		{name: "reorder", scope: s.Order("name").Reorder("id desc"), want: []int64{3, 2, 1}},
		{name: "unordered", scope: s.Order("name").Unordered(), want: []int64{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scope.All()
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(t, got))
		})
	}

	_, err := s.Order("name sideways").All()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLimitOffset(t *testing.T) {
	s := countries(t).Scope()

	got, err := s.Limit(2).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, keys(t, got))

	got, err = s.Order("name").Offset(1).Limit(1).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, keys(t, got))

	got, err = s.Limit(0).All()
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Offset(10).All()
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := s.Offset(1).Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err = s.Offset(1).Limit(math.MaxInt).All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, keys(t, got))

	n, err = s.Offset(math.MaxInt).Limit(math.MaxInt).Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Limit(-1).All()
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Offset(-1).Count()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFirstLast(t *testing.T) {
	s := countries(t).Scope()

	r, err := s.First()
	require.NoError(t, err)
	assert.Equal(t, record.Int(1), r.Key())

	r, err = s.Last()
	require.NoError(t, err)
	assert.Equal(t, record.Int(3), r.Key())

	r, err = s.Order("name").Last()
	require.NoError(t, err)
	assert.Equal(t, record.String("France"), r.Get("name"))

	rs, err := s.FirstN(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, keys(t, rs))

	rs, err = s.LastN(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, keys(t, rs))

	rs, err = s.LastN(10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, keys(t, rs))

	_, err = s.FirstN(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	empty := s.Where(Criteria{"name": "Atlantis"})

	r, err = empty.First()
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = empty.Last()
	require.NoError(t, err)
	assert.Nil(t, r)

	_, err = empty.FirstOrError()
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = empty.LastOrError()
	assert.ErrorIs(t, err, ErrRecordNotFound)

	r, err = s.Where(Criteria{"nato": true}).LastOrError()
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), r.Key())
}

func TestFind(t *testing.T) {
	s := countries(t).Scope()

	r, err := s.Find(2)
	require.NoError(t, err)
	assert.Equal(t, record.String("France"), r.Get("name"))

	r, err = s.Find(2.0)
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), r.Key())

	_, err = s.Find(42)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// Limit and offset do not hide records from Find.
	r, err = s.Offset(100).Limit(0).Find(3)
	require.NoError(t, err)
	assert.Equal(t, record.Int(3), r.Key())

	// Predicates do.
	_, err = s.Where(Criteria{"nato": true}).Find(3)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	r, err = s.FindByID(42)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = s.WhereNot(Criteria{"id": 1}).FindByID(1)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = s.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, record.String("Canada"), r.Get("name"))
}

func TestPluck(t *testing.T) {
	s := countries(t).Scope()

	kings, err := s.Pluck("king")
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.String("Elizabeth II"), record.Null(), record.Null()}, kings)

	_, err = s.Pluck("capital")
	var ufe *UnsupportedFieldError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "capital", ufe.Field)

	_, err = s.PluckMany("name", "capital")
	assert.ErrorIs(t, err, ErrUnsupportedField)

	rows, err := s.Where(Criteria{"id": 3}).PluckMany()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []record.Value{
		record.Int(3),
		record.String("Austria"),
		record.Float(100.3),
		record.Float(8.462),
		record.Null(),
		record.Bool(false),
		record.String("2014-02-12T19:02:03-02:00"),
	}, rows[0])

	ids, err := s.Order("name").Limit(2).Pluck("id")
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.Int(3), record.Int(1)}, ids)
}

func TestExistsCount(t *testing.T) {
	s := countries(t).Scope()

	ok, err := s.Where(Criteria{"name": "France"}).Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Where(Criteria{"name": "Atlantis"}).Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.WhereNot(Criteria{"nato": false}).Order("name").Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Limit(1).Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecords(t *testing.T) {
	s := countries(t).Scope()

	var names []string
	for r := range s.Order("name desc").Records() {
		names = append(names, r.Get("name").StringValue())
		if len(names) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"France", "Canada"}, names)

	for range s.Limit(-1).Records() {
		t.Fatal("scope with an error must not yield")
	}
}

func TestStickyError(t *testing.T) {
	s := countries(t).Scope().Where(Criteria{"name": struct{}{}})
	require.Error(t, s.Err())
	assert.ErrorIs(t, s.Err(), ErrInvalidArgument)

	// Later steps keep the first error.
	s = s.Limit(-1).Where(Criteria{"name": "France"})
	assert.ErrorIs(t, s.Err(), ErrInvalidArgument)
	assert.Contains(t, s.Err().Error(), "name")

	_, err := s.All()
	assert.Equal(t, s.Err(), err)
	_, err = s.First()
	assert.Equal(t, s.Err(), err)
	_, err = s.Find(1)
	assert.Equal(t, s.Err(), err)
	_, err = s.FindByID(1)
	assert.Equal(t, s.Err(), err)
	_, err = s.Sum("density")
	assert.Equal(t, s.Err(), err)
	_, err = s.Pluck("name")
	assert.Equal(t, s.Err(), err)
	_, err = s.Exists()
	assert.Equal(t, s.Err(), err)
}

func TestNamedScopes(t *testing.T) {
	e := countries(t,
		WithNamedScope("nato", func(s Scope) Scope {
			return s.Where(Criteria{"nato": true})
		}),
		WithNamedScope("republics", func(s Scope) Scope {
			return s.Where(Criteria{"king": nil})
		}),
	)
	assert.Equal(t, []string{"nato", "republics"}, e.NamedScopes())

	got, err := e.Scope().Named("nato").Named("republics").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, keys(t, got))

	got, err = e.Scope().Where(Criteria{"name": "Austria"}).Named("republics").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, keys(t, got))

	_, err = e.Scope().Named("monarchies").All()
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestScopeString(t *testing.T) {
	s := countries(t).Scope()
	assert.Equal(t, "all", s.String())
	assert.Equal(t,
		"where name in [France]; where id not in [1, 2]; order name desc; offset 1; limit 2",
		s.Where(Criteria{"name": "France"}).WhereNot(Criteria{"id": In(1, 2)}).Order("name desc").Offset(1).Limit(2).String(),
	)
}

func TestObserver(t *testing.T) {
	type call struct {
		op   string
		rows int
		err  error
	}
	var calls []call
	e := countries(t, WithObserver(ObserverFunc(func(op string, rows int, _ time.Duration, err error) {
		calls = append(calls, call{op: op, rows: rows, err: err})
	})))

	_, _ = e.Scope().All()
	_, _ = e.Scope().Find(42)
	_, _ = e.Scope().Pluck("capital")
	_, _ = e.Scope().Maximum("density")
	_, _ = e.Scope().Where(Criteria{"id": 42}).Minimum("density")

	require.Len(t, calls, 5)
	assert.Equal(t, call{op: "all", rows: 3}, calls[0])
	assert.Equal(t, "find", calls[1].op)
	assert.True(t, errors.Is(calls[1].err, ErrRecordNotFound))
	assert.Equal(t, "pluck", calls[2].op)
	assert.ErrorIs(t, calls[2].err, ErrUnsupportedField)
	assert.Equal(t, call{op: "maximum", rows: 1}, calls[3])
	assert.Equal(t, "minimum", calls[4].op)
	assert.Zero(t, calls[4].rows)
	assert.ErrorIs(t, calls[4].err, ErrRecordNotFound)
}

func TestCache(t *testing.T) {
	e := countries(t, WithCacheSize(4))
	s := e.Scope().Where(Criteria{"nato": true}).Order("name desc")

	first, err := s.All()
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())

	// Same predicates and order, different window: one cache entry.
	second, err := s.Limit(1).All()
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.Len())
	assert.Equal(t, first[:1], second)

	// Value order inside a set does not matter.
	_, err = e.Scope().Where(Criteria{"id": In(1, 2)}).All()
	require.NoError(t, err)
	_, err = e.Scope().Where(Criteria{"id": In(2, 1)}).All()
	require.NoError(t, err)
	assert.Equal(t, 2, e.cache.Len())

	uncached := countries(t, WithCacheSize(0))
	assert.Nil(t, uncached.cache)
	got, err := uncached.Scope().Order("name").All()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, keys(t, got))
}
