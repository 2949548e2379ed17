package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "billy-doc"

// Span attribute keys
const (
	SpanAttrDocumentID     = "document.id"
	SpanAttrDocumentNumber = "document.number"
	SpanAttrDocumentType   = "document.type"
	SpanAttrItemCount      = "document.item_count"
	SpanAttrTotal          = "document.total"
	SpanAttrTaxAmount      = "document.tax_amount"
	SpanAttrIdempotencyKey = "idempotency.key"
	SpanAttrFileKey        = "storage.key"
	SpanAttrFileSize       = "storage.size"
	SpanAttrEngine         = "render.engine"
)

// SpanOption configures StartSpan
type SpanOption func(*spanConfig)

type spanConfig struct {
	kind  trace.SpanKind
	attrs []attribute.KeyValue
}

// WithAttribute sets an attribute when the span starts
func WithAttribute(key string, value any) SpanOption {
	return func(c *spanConfig) {
		c.attrs = append(c.attrs, attr(key, value))
	}
}

// WithSpanKind overrides the default internal span kind
func WithSpanKind(kind trace.SpanKind) SpanOption {
	return func(c *spanConfig) {
		c.kind = kind
	}
}

// StartSpan starts a span on the global tracer provider. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "DocumentService.render")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	c := spanConfig{kind: trace.SpanKindInternal}
	for _, opt := range opts {
		opt(&c)
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(c.kind),
		trace.WithAttributes(c.attrs...),
	)
}

// StartServiceSpan starts a span named "{service}.{method}"
func StartServiceSpan(ctx context.Context, service, method string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+method, opts...)
}

// DocumentSpan carries the identifying fields of a generated document
type DocumentSpan struct {
	ID        string
	Number    string
	Type      string
	Total     string
	TaxAmount string
}

// AnnotateDocument records the generated document on span. Empty fields are skipped.
func AnnotateDocument(span trace.Span, d DocumentSpan) {
	if span == nil {
		return
	}
	pairs := [...]struct{ key, value string }{
		{SpanAttrDocumentID, d.ID},
		{SpanAttrDocumentNumber, d.Number},
		{SpanAttrDocumentType, d.Type},
		{SpanAttrTotal, d.Total},
		{SpanAttrTaxAmount, d.TaxAmount},
	}
	attrs := make([]attribute.KeyValue, 0, len(pairs))
	for _, p := range pairs {
		if p.value != "" {
			attrs = append(attrs, attribute.String(p.key, p.value))
		}
	}
	span.SetAttributes(attrs...)
}

// SetAttribute adds a single attribute to span
func SetAttribute(span trace.Span, key string, value any) {
	if span == nil {
		return
	}
	span.SetAttributes(attr(key, value))
}

// RecordError records err on span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event with alternating key/value attributes.
// Pairs whose key is not a string are dropped.
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attr(key, keyValues[i+1]))
		}
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func attr(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		// decimal.Decimal and uuid.UUID
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
