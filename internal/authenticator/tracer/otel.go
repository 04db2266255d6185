package tracer

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/akilalakshman/esignet/authenticator"

// OTelTracer adapts an OpenTelemetry tracer. Spans under the provider prefix
// are client spans; the rest are internal.
type OTelTracer struct {
	tracer trace.Tracer
}

type OTelOption func(*OTelTracer)

// WithOTelTracer injects a tracer instead of the global provider's.
func WithOTelTracer(t trace.Tracer) OTelOption {
	return func(o *OTelTracer) { o.tracer = t }
}

func NewOTel(opts ...OTelOption) *OTelTracer {
	t := &OTelTracer{tracer: otel.Tracer(instrumentationName)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(spanKind(name)),
		trace.WithAttributes(convert(attrs)...),
	)
	return ctx, otelSpan{span}
}

func spanKind(name string) trace.SpanKind {
	if strings.HasPrefix(name, providerSpanPrefix) {
		return trace.SpanKindClient
	}
	return trace.SpanKindInternal
}

// TraceID returns the hex trace id active in ctx, or "" outside a sampled
// span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

type otelSpan struct {
	trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.Span.RecordError(err)
		s.Span.SetStatus(codes.Error, err.Error())
	} else {
		s.Span.SetStatus(codes.Ok, "")
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) {
	s.Span.SetAttributes(convert(attrs)...)
}

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(convert(attrs)...))
}

// convert maps attribute values onto OpenTelemetry types. Values of other
// types are recorded through fmt.
func convert(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		var kv attribute.KeyValue
		switch v := a.Value.(type) {
		case string:
			kv = attribute.String(a.Key, v)
		case bool:
			kv = attribute.Bool(a.Key, v)
		case int64:
			kv = attribute.Int64(a.Key, v)
		case int:
			kv = attribute.Int(a.Key, v)
		case float64:
			kv = attribute.Float64(a.Key, v)
		case []string:
			kv = attribute.StringSlice(a.Key, v)
		case nil:
			continue
		default:
			kv = attribute.String(a.Key, fmt.Sprint(v))
		}
		out = append(out, kv)
	}
	return out
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = otelSpan{}
)
