package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "frozen"

// PrometheusCollector implements frozen.MetricsCollector.
type PrometheusCollector struct {
	loads         *prometheus.CounterVec
	records       *prometheus.GaugeVec
	reloads       *prometheus.CounterVec
	reloadLatency *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryLatency  *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec
}

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Table loads by outcome",
		}, []string{"table", "status"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the loaded snapshot",
		}, []string{"table"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Reload attempts by outcome and whether the snapshot changed",
		}, []string{"table", "status", "changed"}),
		reloadLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Latency of reloads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Terminal query operations by outcome",
		}, []string{"table", "op", "status"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of terminal query operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"table", "op"}),
		queryRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned by terminal query operations",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"table", "op"}),
	}

	reg.MustRegister(c.loads, c.records, c.reloads, c.reloadLatency, c.queries, c.queryLatency, c.queryRows)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordLoad implements frozen.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(table string, records int, _ time.Duration, err error) {
	c.loads.WithLabelValues(table, status(err)).Inc()
	if err == nil {
		c.records.WithLabelValues(table).Set(float64(records))
	}
}

// RecordReload implements frozen.MetricsCollector.
func (c *PrometheusCollector) RecordReload(table string, changed bool, d time.Duration, err error) {
	c.reloads.WithLabelValues(table, status(err), strconv.FormatBool(changed)).Inc()
	c.reloadLatency.WithLabelValues(table).Observe(d.Seconds())
}

// RecordQuery implements frozen.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(table, op string, rows int, d time.Duration, err error) {
	c.queries.WithLabelValues(table, op, status(err)).Inc()
	c.queryLatency.WithLabelValues(table, op).Observe(d.Seconds())
	if err == nil {
		c.queryRows.WithLabelValues(table, op).Observe(float64(rows))
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
