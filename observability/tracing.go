package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/huddle"

// Tracer provides OpenTelemetry spans for repository operations. A nil
// *Tracer starts no-op spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// StartOp starts a span for a repository operation.
func (t *Tracer) StartOp(ctx context.Context, op string, online bool, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	attrs = append(attrs,
		attribute.String("huddle.op", op),
		attribute.Bool("huddle.online", online),
	)
	return t.tracer.Start(ctx, "huddle."+op, trace.WithAttributes(attrs...))
}

// EndOp ends a span, recording where the result came from and any error.
func (t *Tracer) EndOp(span trace.Span, source string, count int, err error) {
	if t == nil {
		return
	}
	span.SetAttributes(
		attribute.String("huddle.source", source),
		attribute.Int("huddle.count", count),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
