// Package metric exports table metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	collector := metric.NewPrometheusCollector(reg)
//	t, _ := frozen.OpenFile(ctx, "countries.yml", frozen.WithMetricsCollector(collector))
//	http.Handle("/metrics", metric.Handler(reg))
package metric
