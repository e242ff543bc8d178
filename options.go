package frozen

import (
	"log/slog"

	"github.com/hupe1980/frozen/codec"
	"github.com/hupe1980/frozen/loader"
	"github.com/hupe1980/frozen/query"
	"github.com/hupe1980/frozen/record"
)

type options struct {
	name             string
	codec            codec.Codec
	keyField         string
	keyGenerator     loader.KeyGenerator
	schema           record.Schema
	cacheSize        int
	namedScopes      []query.Option
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Open, New and OpenCatalog.
type Option func(*options)

// WithName names the table in logs and metrics. Defaults to the source name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithCodec configures the codec used to decode record files opened with
// OpenFile and OpenBlob. By default the codec follows the file extension.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithKeyField sets the primary-key attribute. Defaults to "id".
func WithKeyField(field string) Option {
	return func(o *options) {
		o.keyField = field
	}
}

// WithKeyGenerator assigns keys to records that have none.
//
// Example:
//
//	t, _ := frozen.OpenFile(ctx, "countries.yml", frozen.WithKeyGenerator(loader.SequentialKeys()))
func WithKeyGenerator(gen loader.KeyGenerator) Option {
	return func(o *options) {
		o.keyGenerator = gen
	}
}

// WithSchema validates attribute types while loading.
func WithSchema(schema record.Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithResultCacheSize sets how many filtered and ordered results each
// snapshot caches. Zero disables the cache.
func WithResultCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithNamedScope registers a reusable refinement, applied with Scope.Named.
//
// Example:
//
//	t, _ := frozen.OpenFile(ctx, "countries.yml",
//	    frozen.WithNamedScope("republics", func(s query.Scope) query.Scope {
//	        return s.Where(query.Criteria{"king": nil})
//	    }),
//	)
//	names, _ := t.Scope().Named("republics").Pluck("name")
func WithNamedScope(name string, fn query.NamedScope) Option {
	return func(o *options) {
		o.namedScopes = append(o.namedScopes, query.WithNamedScope(name, fn))
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &frozen.BasicMetricsCollector{}
//	t, _ := frozen.OpenFile(ctx, "countries.yml", frozen.WithMetricsCollector(metrics))
//	// ... use t ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := frozen.NewJSONLogger(slog.LevelInfo)
//	t, _ := frozen.OpenFile(ctx, "countries.yml", frozen.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		keyField:         record.DefaultKeyField,
		cacheSize:        query.DefaultCacheSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.keyField == "" {
		o.keyField = record.DefaultKeyField
	}
	return o
}

func (o options) loaderConfig() loader.Config {
	return loader.Config{
		KeyField:     o.keyField,
		KeyGenerator: o.keyGenerator,
		Schema:       o.schema,
	}
}
