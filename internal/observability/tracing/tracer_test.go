package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGetTracer_UsesRegisteredProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())

	_, span := GetTracer().Start(context.Background(), "summarize.document")
	span.SetAttributes(AttrPath.String("/blog/a.markdown"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "summarize.document" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if spans[0].InstrumentationScope.Name != instrumentationName {
		t.Errorf("scope = %q, want %q", spans[0].InstrumentationScope.Name, instrumentationName)
	}

	found := false
	for _, attr := range spans[0].Attributes {
		if attr.Key == AttrPath && attr.Value.AsString() == "/blog/a.markdown" {
			found = true
		}
	}
	if !found {
		t.Error("document.path attribute missing")
	}
}
