// Package prometheus provides Prometheus collectors for aajourney metrics.
//
// [NewPrometheusExporter] accepts an [aajourney.Journey] and exposes an [http.Handler]
// that renders all aajourney counters and histograms in Prometheus text exposition format.
// Counter names are prefixed aajourney_*_total; the single histogram is
// aajourney_operation_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate journey state.
package prometheus
