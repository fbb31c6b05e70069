// Package metrics records per-run merge metrics.
//
// Components receive a Recorder and default to NoopRecorder, so no call site
// needs a nil check. When a metrics textfile is configured the merge driver
// swaps in a PrometheusRecorder backed by its own registry and writes the
// registry out in Prometheus text format when the run ends, ready for a
// node_exporter textfile collector.
package metrics
