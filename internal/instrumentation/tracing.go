package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name used for all spans in this module.
const TracerName = "github.com/teemow/assistant-tools"

// Span attribute keys.
const (
	SpanAttrTool      = "mcp.tool"
	SpanAttrService   = "remote.service"
	SpanAttrOperation = "remote.operation"
	SpanAttrTarget    = "remote.target"
	SpanAttrCount     = "result.count"
)

// StartSpan starts a new span with the given name and attributes.
// The caller ends it with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartRemoteSpan starts a client span named <service>.<operation>.
func StartRemoteSpan(ctx context.Context, service, operation, target string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}
	if target != "" {
		attrs = append(attrs, attribute.String(SpanAttrTarget, target))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, service+"."+operation,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context, or "".
func GetSpanID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// RemoteOp is a started remote operation. It couples a client span with the
// remote_operations metrics so call sites only need Start and End.
type RemoteOp struct {
	metrics   *Metrics
	span      trace.Span
	service   string
	operation string
	target    string
	start     time.Time
}

// StartRemoteOp starts a span for a remote call. m may be nil.
func StartRemoteOp(ctx context.Context, m *Metrics, service, operation, target string) (context.Context, *RemoteOp) {
	ctx, span := StartRemoteSpan(ctx, service, operation, target)
	return ctx, &RemoteOp{
		metrics:   m,
		span:      span,
		service:   service,
		operation: operation,
		target:    target,
		start:     time.Now(),
	}
}

// End closes the span and records the operation outcome.
func (op *RemoteOp) End(ctx context.Context, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
		SetSpanError(op.span, err)
	} else {
		SetSpanSuccess(op.span)
	}
	op.span.End()
	op.metrics.RecordRemoteOperation(ctx, op.service, op.operation, op.target, status, time.Since(op.start))
}
