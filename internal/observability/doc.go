// Package observability groups the logging, metrics and tracing helpers used by
// the summarizer.
//
// Subpackages:
//   - logging: slog logger construction and context propagation
//   - metrics: Prometheus collectors for document outcomes and summaries
//   - tracing: OpenTelemetry tracer for run and document spans
package observability
