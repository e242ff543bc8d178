package frozen

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the metric
// package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called after a table is opened.
	// records is the number of records loaded, err is nil if successful.
	RecordLoad(table string, records int, duration time.Duration, err error)

	// RecordReload is called after each reload attempt.
	// changed reports whether a new snapshot was installed.
	RecordReload(table string, changed bool, duration time.Duration, err error)

	// RecordQuery is called after each terminal query operation
	// (all, first, find, pluck, count, sum, ...).
	RecordQuery(table, op string, rows int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(string, int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordReload(string, bool, time.Duration, error)       {}
func (NoopMetricsCollector) RecordQuery(string, string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadedRecords    atomic.Int64
	ReloadCount      atomic.Int64
	ReloadChanged    atomic.Int64
	ReloadErrors     atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryRows        atomic.Int64
	QueryTotalNanos  atomic.Int64
	ReloadTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ string, records int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadedRecords.Add(int64(records))
}

// RecordReload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReload(_ string, changed bool, duration time.Duration, err error) {
	b.ReloadCount.Add(1)
	b.ReloadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReloadErrors.Add(1)
	}
	if changed {
		b.ReloadChanged.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_, _ string, rows int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.QueryRows.Add(int64(rows))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadedRecords:  b.LoadedRecords.Load(),
		ReloadCount:    b.ReloadCount.Load(),
		ReloadChanged:  b.ReloadChanged.Load(),
		ReloadErrors:   b.ReloadErrors.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryRows:      b.QueryRows.Load(),
		QueryAvgNanos:  avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		ReloadAvgNanos: avg(b.ReloadTotalNanos.Load(), b.ReloadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadedRecords  int64
	ReloadCount    int64
	ReloadChanged  int64
	ReloadErrors   int64
	QueryCount     int64
	QueryErrors    int64
	QueryRows      int64
	QueryAvgNanos  int64
	ReloadAvgNanos int64
}
