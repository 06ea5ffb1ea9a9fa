package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "blog-summarizer"

// Attribute keys shared by pipeline spans.
const (
	AttrPath     = attribute.Key("document.path")
	AttrStatus   = attribute.Key("document.status")
	AttrProvider = attribute.Key("summarizer.provider")
	AttrModel    = attribute.Key("summarizer.model")
)

// GetTracer returns the tracer for creating spans.
// It resolves the global provider on every call so that providers registered
// after package initialization (tests, embedding programs) are honored.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summarize.document")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
