package frozen

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/frozen/loader"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds how many sources a catalog reads at once.
const DefaultLoadConcurrency = 8

// Catalog is a set of named tables opened together.
type Catalog struct {
	tables map[string]*Table
}

// OpenCatalog loads every source in parallel. The map key becomes the table
// name. If any table fails to load, OpenCatalog returns the first error.
//
// Example:
//
//	store := blobstore.NewLocalStore("data")
//	cat, _ := frozen.OpenCatalog(ctx, map[string]loader.Source{
//	    "countries": loader.NewBlobSource(store, "countries.yml"),
//	    "cities":    loader.NewBlobSource(store, "cities.json.zst"),
//	})
//	countries, _ := cat.Table("countries")
func OpenCatalog(ctx context.Context, sources map[string]loader.Source, optFns ...Option) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]*Table, len(sources))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultLoadConcurrency)

	for name, src := range sources {
		g.Go(func() error {
			t, err := Open(gctx, src, append(slices.Clone(optFns), WithName(name))...)
			if err != nil {
				return err
			}
			mu.Lock()
			c.tables[name] = t
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// Table returns the named table.
func (c *Catalog) Table(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// Names returns the table names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reload reloads every table in parallel and returns the sorted names of the
// tables that changed.
func (c *Catalog) Reload(ctx context.Context) ([]string, error) {
	var (
		mu      sync.Mutex
		changed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultLoadConcurrency)

	for name, t := range c.tables {
		g.Go(func() error {
			ok, err := t.Reload(gctx)
			if err != nil {
				return fmt.Errorf("reload %q: %w", name, err)
			}
			if ok {
				mu.Lock()
				changed = append(changed, name)
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()
	slices.Sort(changed)
	return changed, err
}

// Watch watches every table until ctx is done.
func (c *Catalog) Watch(ctx context.Context, interval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range c.tables {
		g.Go(func() error {
			return t.Watch(gctx, interval)
		})
	}
	return g.Wait()
}
