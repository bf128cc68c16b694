// Package metrics records build metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can
// be switched on without nil checks anywhere:
//
//	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
//	svc := build.NewService(build.WithRecorder(rec))
//
// PrometheusRecorder.WriteTextfile exports the collected series in the
// Prometheus text format, e.g. for the node_exporter textfile collector.
package metrics
