// Package tracing provides the OpenTelemetry tracer of the summarizer.
//
// The pipeline opens a "summarize.run" span per run and a "summarize.document"
// span per file. No exporter is installed by default, so spans are dropped unless
// the embedding program registers a TracerProvider with otel.SetTracerProvider.
package tracing
