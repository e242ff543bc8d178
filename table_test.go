package frozen

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/frozen/blobstore"
	"github.com/hupe1980/frozen/codec"
	"github.com/hupe1980/frozen/loader"
	"github.com/hupe1980/frozen/query"
	"github.com/hupe1980/frozen/record"
	"github.com/hupe1980/frozen/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesYAML = `- id: 1
  name: Canada
  density: 3.5
  population: 33.88
  king: Elizabeth II
  nato: true
- id: 2
  name: France
  density: 116
  population: 65.7
  king:
  nato: true
- id: 3
  name: Austria
  density: 100.3
  population: 8.462
  nato: false
`

const spainYAML = `- id: 4
  name: Spain
  density: 94
  nato: true
`

func memoryTable(t *testing.T, opts ...Option) (*Table, *blobstore.MemoryStore) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "countries.yml", []byte(countriesYAML)))

	tbl, err := OpenBlob(context.Background(), store, "countries.yml", opts...)
	require.NoError(t, err)
	return tbl, store
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yml")
	require.NoError(t, os.WriteFile(path, []byte(countriesYAML), 0o644))

	tbl, err := OpenFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "countries.yml", tbl.Name())
	assert.NotZero(t, tbl.Checksum())
	assert.False(t, tbl.LoadedAt().IsZero())

	n, err := tbl.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	france, err := tbl.Where(query.Criteria{"name": "France"}).First()
	require.NoError(t, err)
	assert.Equal(t, record.Int(2), france.Key())

	austria, err := tbl.WhereNot(query.Criteria{"name": "France"}).Find(3)
	require.NoError(t, err)
	assert.Equal(t, record.String("Austria"), austria.Get("name"))

	_, err = tbl.WhereNot(query.Criteria{"name": "France"}).Find(2)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	names, err := tbl.Order("name").Pluck("name")
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.String("Austria"), record.String("Canada"), record.String("France")}, names)

	avg, err := tbl.Scope().Average("density")
	require.NoError(t, err)
	assert.InDelta(t, 73.266, avg, 0.001)

	canada, err := tbl.Finders().Call("find_by_name!", "Canada")
	require.NoError(t, err)
	assert.Equal(t, record.Int(1), canada.Key())
}

func TestOpenFile_JSON(t *testing.T) {
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)

	data, err := codec.Default.Marshal(testutil.Countries())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "countries.json", data))

	tbl, err := OpenFile(context.Background(), filepath.Join(dir, "countries.json"))
	require.NoError(t, err)

	last, err := tbl.Last()
	require.NoError(t, err)
	assert.Equal(t, record.String("Austria"), last.Get("name"))
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := OpenFile(ctx, filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "missing.yml", le.Table)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "dups.yml", []byte("- id: 1\n- id: 1.0\n")))
	_, err = OpenBlob(ctx, store, "dups.yml")
	assert.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, store.Put(ctx, "nokey.yml", []byte("- name: x\n")))
	_, err = OpenBlob(ctx, store, "nokey.yml")
	assert.ErrorIs(t, err, ErrMissingKey)

	tbl, err := OpenBlob(ctx, store, "nokey.yml", WithKeyGenerator(loader.SequentialKeys()))
	require.NoError(t, err)
	r, err := tbl.Find(1)
	require.NoError(t, err)
	assert.Equal(t, record.String("x"), r.Get("name"))
}

func TestOpen_Options(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	tbl, _ := memoryTable(t,
		WithName("countries"),
		WithMetricsCollector(metrics),
		WithResultCacheSize(0),
		WithSchema(record.Schema{"density": record.FieldTypeFloat}),
		WithNamedScope("republics", func(s query.Scope) query.Scope {
			return s.Where(query.Criteria{"king": nil})
		}),
	)
	assert.Equal(t, "countries", tbl.Name())

	names, err := tbl.Named("republics").Order("name").Pluck("name")
	require.NoError(t, err)
	assert.Equal(t, []record.Value{record.String("Austria"), record.String("France")}, names)

	_, err = tbl.Find(42)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(3), stats.LoadedRecords)
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(1), stats.QueryErrors)
}

func TestOpen_SchemaViolation(t *testing.T) {
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "countries.yml", []byte(countriesYAML)))

	_, err := OpenBlob(context.Background(), store, "countries.yml",
		WithSchema(record.Schema{"density": record.FieldTypeString}))
	var se *record.SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	tbl, store := memoryTable(t, WithMetricsCollector(metrics))

	changed, err := tbl.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	before := tbl.Scope()
	gen := tbl.Dataset().Generation()

	require.NoError(t, store.Put(ctx, "countries.yml", []byte(countriesYAML+spainYAML)))
	changed, err = tbl.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEqual(t, gen, tbl.Dataset().Generation())

	n, err := tbl.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = before.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "old scopes keep their snapshot")

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.ReloadCount)
	assert.Equal(t, int64(1), stats.ReloadChanged)
}

func TestReload_KeepsSnapshotOnError(t *testing.T) {
	ctx := context.Background()
	tbl, store := memoryTable(t)

	require.NoError(t, store.Put(ctx, "countries.yml", []byte("- id: 1\n- id: 1\n")))
	_, err := tbl.Reload(ctx)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	require.NoError(t, store.Delete(ctx, "countries.yml"))
	_, err = tbl.Reload(ctx)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	n, err := tbl.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// gatedSource blocks the first Read after started is set until release closes.
type gatedSource struct {
	loader.Source
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) Read(ctx context.Context) (loader.Payload, error) {
	if s.started != nil {
		close(s.started)
		s.started = nil
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		return loader.Payload{}, err
	}
	return s.Source.Read(ctx)
}

func TestReload_CallerCanceled(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "countries.yml", []byte(countriesYAML)))

	src := &gatedSource{Source: loader.NewBlobSource(store, "countries.yml")}
	tbl, err := Open(ctx, src)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "countries.yml", []byte(countriesYAML+spainYAML)))
	started := make(chan struct{})
	src.started, src.release = started, make(chan struct{})

	cctx, cancel := context.WithCancel(ctx)
	errc := make(chan error, 1)
	go func() {
		_, err := tbl.Reload(cctx)
		errc <- err
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	// The read started by the canceled caller still installs the snapshot.
	close(src.release)
	require.Eventually(t, func() bool {
		n, err := tbl.Count()
		return err == nil && n == 4
	}, time.Second, 5*time.Millisecond)
}

func TestReload_Concurrent(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	tbl, store := memoryTable(t, WithMetricsCollector(metrics))
	require.NoError(t, store.Put(ctx, "countries.yml", []byte(countriesYAML+spainYAML)))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tbl.Reload(ctx)
			assert.NoError(t, err)
			_, err = tbl.Where(query.Criteria{"nato": true}).All()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), metrics.GetStats().ReloadChanged)
	n, err := tbl.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tbl, store := memoryTable(t)

	done := make(chan error, 1)
	go func() { done <- tbl.Watch(ctx, 5*time.Millisecond) }()

	require.NoError(t, store.Put(ctx, "countries.yml", []byte("broken: [")))
	require.NoError(t, store.Put(ctx, "countries.yml", []byte(countriesYAML+spainYAML)))

	require.Eventually(t, func() bool {
		n, err := tbl.Count()
		return err == nil && n == 4
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestNew(t *testing.T) {
	ds := testutil.CountriesDataset(t)
	tbl := New(ds)

	assert.Equal(t, "countries", tbl.Name())
	assert.Same(t, ds, tbl.Dataset())

	first, err := tbl.First()
	require.NoError(t, err)
	assert.Equal(t, record.Int(1), first.Key())

	r, err := tbl.FindByID(99)
	require.NoError(t, err)
	assert.Nil(t, r)

	all, err := tbl.OrderBy(query.Desc("id")).Offset(1).Limit(1).All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, record.Int(2), all[0].Key())

	_, err = tbl.Reload(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
	assert.ErrorIs(t, tbl.Watch(context.Background(), time.Second), ErrNoSource)
}

func TestQueryLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tbl := New(testutil.CountriesDataset(t), WithLogger(logger))
	_, err := tbl.Where(query.Criteria{"nato": true}).Pluck("name")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"query completed"`)
	assert.Contains(t, buf.String(), `"op":"pluck"`)
	assert.Contains(t, buf.String(), `"rows":2`)
}
