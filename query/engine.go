package query

import (
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hupe1980/frozen/dataset"
)

// DefaultCacheSize is the number of materialized result orders kept per engine.
const DefaultCacheSize = 128

// Observer receives one call per terminal operation.
type Observer interface {
	ObserveQuery(op string, rows int, d time.Duration, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(op string, rows int, d time.Duration, err error)

// ObserveQuery calls f.
func (f ObserverFunc) ObserveQuery(op string, rows int, d time.Duration, err error) {
	f(op, rows, d, err)
}

// NamedScope refines a scope; registered with WithNamedScope and applied with
// Scope.Named.
type NamedScope func(Scope) Scope

type options struct {
	cacheSize int
	named     map[string]NamedScope
	observer  Observer
}

// Option configures an Engine.
type Option func(*options)

// WithCacheSize sets how many filtered and ordered position lists are cached.
// Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// WithNamedScope registers a reusable refinement under name.
//
// Example:
//
//	engine := query.NewEngine(ds, query.WithNamedScope("nato", func(s query.Scope) query.Scope {
//	    return s.Where(query.Criteria{"nato": true})
//	}))
//	members, _ := engine.Scope().Named("nato").Order("name").All()
func WithNamedScope(name string, fn NamedScope) Option {
	return func(o *options) {
		if o.named == nil {
			o.named = make(map[string]NamedScope)
		}
		o.named[name] = fn
	}
}

// WithObserver receives timing for every terminal operation.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Engine owns one dataset snapshot together with its result cache, finder
// registry and named scopes. It is safe for concurrent use.
type Engine struct {
	ds       *dataset.Dataset
	cache    *lru.Cache[string, []int]
	finders  *finderRegistry
	named    map[string]NamedScope
	observer Observer
}

// NewEngine creates an engine over ds.
func NewEngine(ds *dataset.Dataset, optFns ...Option) *Engine {
	o := options{cacheSize: DefaultCacheSize}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	e := &Engine{
		ds:       ds,
		finders:  newFinderRegistry(ds),
		named:    o.named,
		observer: o.observer,
	}
	if o.cacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		e.cache, _ = lru.New[string, []int](o.cacheSize)
	}
	return e
}

// Dataset returns the snapshot the engine queries.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// Scope returns the unfiltered, unordered scope over the whole dataset.
func (e *Engine) Scope() Scope {
	return Scope{e: e, limit: -1}
}

// NamedScopes returns the registered named scopes, sorted.
func (e *Engine) NamedScopes() []string {
	names := make([]string, 0, len(e.named))
	for name := range e.named {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// declared reports whether field can be projected, aggregated or used in a
// finder. The key field always qualifies.
func (e *Engine) declared(field string) bool {
	return field == e.ds.KeyField() || e.ds.HasField(field)
}
