package frozen

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/frozen/blobstore"
	"github.com/hupe1980/frozen/dataset"
	"github.com/hupe1980/frozen/loader"
	"github.com/hupe1980/frozen/query"
	"github.com/hupe1980/frozen/record"
	"golang.org/x/sync/singleflight"
)

// snapshot is one loaded version of a table.
type snapshot struct {
	engine   *query.Engine
	checksum uint32
	loadedAt time.Time
}

// Table is a handle to a read-only record set that can be reloaded from its
// source. Scopes obtained from a table keep querying the snapshot they were
// created from, even after a reload.
//
// Table is safe for concurrent use.
type Table struct {
	name string
	src  loader.Source
	opts options

	current atomic.Pointer[snapshot]
	swapMu  sync.Mutex
	group   singleflight.Group
}

// Open loads src and returns a table over it.
func Open(ctx context.Context, src loader.Source, optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)
	if o.name == "" {
		o.name = src.Name()
	}

	t := &Table{name: o.name, src: src, opts: o}

	start := time.Now()
	ds, sum, err := loader.Load(ctx, src, o.loaderConfig())
	if err != nil {
		err = &LoadError{Table: t.name, Source: src.Name(), cause: translateError(err)}
		o.metricsCollector.RecordLoad(t.name, 0, time.Since(start), err)
		o.logger.LogLoad(ctx, t.name, 0, 0, err)
		return nil, err
	}
	t.install(ds, sum)

	o.metricsCollector.RecordLoad(t.name, ds.Len(), time.Since(start), nil)
	o.logger.LogLoad(ctx, t.name, ds.Len(), sum, nil)
	return t, nil
}

// OpenFile opens a local record file (.json, .yaml or .yml, optionally
// compressed with .zst or .lz4). The file is memory-mapped while it is read.
func OpenFile(ctx context.Context, path string, optFns ...Option) (*Table, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return OpenBlob(ctx, store, filepath.Base(path), optFns...)
}

// OpenBlob opens a record file from a blob store.
func OpenBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)
	var srcOpts []loader.BlobOption
	if o.codec != nil {
		srcOpts = append(srcOpts, loader.WithCodec(o.codec))
	}
	return Open(ctx, loader.NewBlobSource(store, name, srcOpts...), optFns...)
}

// New wraps an already built dataset. The table has no source, so Reload
// and Watch fail with ErrNoSource.
func New(ds *dataset.Dataset, optFns ...Option) *Table {
	o := applyOptions(optFns)
	if o.name == "" {
		o.name = ds.Name()
	}
	t := &Table{name: o.name, opts: o}
	t.install(ds, 0)
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Dataset returns the current snapshot.
func (t *Table) Dataset() *dataset.Dataset { return t.current.Load().engine.Dataset() }

// Checksum returns the source checksum of the current snapshot.
func (t *Table) Checksum() uint32 { return t.current.Load().checksum }

// LoadedAt returns when the current snapshot was installed.
func (t *Table) LoadedAt() time.Time { return t.current.Load().loadedAt }

// Scope returns the base scope of the current snapshot.
func (t *Table) Scope() query.Scope { return t.current.Load().engine.Scope() }

// Where is shorthand for t.Scope().Where(c).
func (t *Table) Where(c query.Criteria) query.Scope { return t.Scope().Where(c) }

// WhereNot is shorthand for t.Scope().WhereNot(c).
func (t *Table) WhereNot(c query.Criteria) query.Scope { return t.Scope().WhereNot(c) }

// Order is shorthand for t.Scope().Order(fields...).
func (t *Table) Order(fields ...string) query.Scope { return t.Scope().Order(fields...) }

// OrderBy is shorthand for t.Scope().OrderBy(terms...).
func (t *Table) OrderBy(terms ...query.OrderTerm) query.Scope { return t.Scope().OrderBy(terms...) }

// Limit is shorthand for t.Scope().Limit(n).
func (t *Table) Limit(n int) query.Scope { return t.Scope().Limit(n) }

// Offset is shorthand for t.Scope().Offset(n).
func (t *Table) Offset(n int) query.Scope { return t.Scope().Offset(n) }

// Named is shorthand for t.Scope().Named(name).
func (t *Table) Named(name string) query.Scope { return t.Scope().Named(name) }

// Finders returns the finders of the base scope.
func (t *Table) Finders() *query.Finders { return t.Scope().Finders() }

// All returns every record in load order.
func (t *Table) All() ([]*record.Record, error) { return t.Scope().All() }

// First returns the first record, or nil if the table is empty.
func (t *Table) First() (*record.Record, error) { return t.Scope().First() }

// Last returns the last record, or nil if the table is empty.
func (t *Table) Last() (*record.Record, error) { return t.Scope().Last() }

// Find returns the record with the given key or ErrRecordNotFound.
func (t *Table) Find(key any) (*record.Record, error) { return t.Scope().Find(key) }

// FindByID returns the record with the given key, or nil.
func (t *Table) FindByID(key any) (*record.Record, error) { return t.Scope().FindByID(key) }

// Count returns the number of records.
func (t *Table) Count() (int, error) { return t.Scope().Count() }

// Reload re-reads the source and installs a new snapshot if its checksum
// changed. Concurrent calls share one read. A caller whose ctx ends returns
// early; the shared read keeps going for the others.
func (t *Table) Reload(ctx context.Context) (bool, error) {
	if t.src == nil {
		return false, ErrNoSource
	}

	ch := t.group.DoChan("reload", func() (any, error) {
		return t.reload(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (t *Table) reload(ctx context.Context) (bool, error) {
	start := time.Now()

	p, err := t.src.Read(ctx)
	if err != nil {
		err = translateError(err)
		t.observeReload(ctx, false, start, err)
		return false, err
	}

	changed, err := t.apply(p)
	t.observeReload(ctx, changed, start, err)
	return changed, err
}

// Watch polls the source every interval and installs new snapshots until ctx
// is done. Failed reads and broken files are logged; the table keeps serving
// the last good snapshot.
func (t *Table) Watch(ctx context.Context, interval time.Duration) error {
	if t.src == nil {
		return ErrNoSource
	}

	return loader.Watch(ctx, t.src, interval, t.Checksum(),
		func(ctx context.Context, p loader.Payload) error {
			start := time.Now()
			changed, err := t.apply(p)
			t.observeReload(ctx, changed, start, err)
			return nil
		},
		func(ctx context.Context, err error) error {
			t.observeReload(ctx, false, time.Now(), translateError(err))
			return nil
		},
	)
}

// apply builds and installs p unless it matches the current snapshot.
func (t *Table) apply(p loader.Payload) (bool, error) {
	t.swapMu.Lock()
	defer t.swapMu.Unlock()

	if t.current.Load().checksum == p.Checksum {
		return false, nil
	}

	ds, err := loader.Build(t.name, p, t.opts.loaderConfig())
	if err != nil {
		return false, err
	}
	t.install(ds, p.Checksum)
	return true, nil
}

func (t *Table) install(ds *dataset.Dataset, checksum uint32) {
	engineOpts := append([]query.Option{
		query.WithCacheSize(t.opts.cacheSize),
		query.WithObserver(query.ObserverFunc(t.observeQuery)),
	}, t.opts.namedScopes...)

	t.current.Store(&snapshot{
		engine:   query.NewEngine(ds, engineOpts...),
		checksum: checksum,
		loadedAt: time.Now(),
	})
}

func (t *Table) observeQuery(op string, rows int, d time.Duration, err error) {
	t.opts.metricsCollector.RecordQuery(t.name, op, rows, d, err)
	t.opts.logger.LogQuery(context.Background(), t.name, op, rows, d, err)
}

func (t *Table) observeReload(ctx context.Context, changed bool, start time.Time, err error) {
	t.opts.metricsCollector.RecordReload(t.name, changed, time.Since(start), err)
	t.opts.logger.LogReload(ctx, t.name, changed, t.Dataset().Len(), err)
}
