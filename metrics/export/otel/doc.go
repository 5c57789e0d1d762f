// Package otel provides OpenTelemetry metric exporter bindings for aajourney counters and
// histograms.
//
// [NewOTelExporter] registers Int64ObservableCounter instruments for each aajourney metric
// and Int64ObservableGauge per histogram bucket. A single callback reads
// [aajourney.Journey.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate journey state.
package otel
