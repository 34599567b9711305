package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingHook wraps each request in a client span.
type TracingHook struct {
	tracer trace.Tracer
}

// NewTracingHook creates a TracingHook. A nil tracer uses the global provider.
func NewTracingHook(tracer trace.Tracer) *TracingHook {
	return &TracingHook{tracer: tracer}
}

func (h *TracingHook) getTracer() trace.Tracer {
	if h.tracer != nil {
		return h.tracer
	}
	return Tracer(defaultTracerName)
}

// Before implements Hook.
func (h *TracingHook) Before(ctx context.Context, ev *Event) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, ev.Method),
		attribute.String(AttrServerAddress, ev.Host),
		attribute.String(AttrURLPath, ev.Path),
	}
	if ev.Client != "" {
		attrs = append(attrs, attribute.String(AttrClientName, ev.Client))
	}
	if ev.RequestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, ev.RequestID))
	}
	ctx, _ = h.getTracer().Start(ctx, ev.Method+" "+ev.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx
}

// After implements Hook.
func (h *TracingHook) After(ctx context.Context, ev *Event) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if ev.StatusCode != 0 {
		span.SetAttributes(attribute.Int(AttrStatusCode, ev.StatusCode))
	}
	switch {
	case ev.Err != nil:
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	case ev.StatusCode >= 500:
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", ev.StatusCode))
	}
	span.End()
}
