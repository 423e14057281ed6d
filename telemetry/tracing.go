package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tarun9121/project-lambok/db"
)

// InstrumentationName identifies spans emitted by this module.
const InstrumentationName = "github.com/Tarun9121/project-lambok"

// Tracer emits OpenTelemetry spans for statements and requests. It
// implements db.Tracer.
type Tracer struct {
	tracer trace.Tracer
}

var _ db.Tracer = (*Tracer)(nil)

// NewTracer returns a Tracer backed by tp, or by the global provider when tp
// is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(InstrumentationName)}
}

// TraceQuery implements db.Tracer. The span covers [start, start+d].
func (t *Tracer) TraceQuery(ctx context.Context, query string, start time.Time, d time.Duration, err error) {
	op := db.Operation(query)
	_, span := t.tracer.Start(ctx, "db."+strings.ToLower(op),
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.operation", op),
			attribute.String("db.statement", strings.Join(strings.Fields(query), " ")),
		),
	)
	if err != nil && !db.IsNotFound(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(start.Add(d)))
}

// StartSpan starts a server span. The caller ends it, normally through
// EndSpan.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records the HTTP status on span and ends it. 5xx codes mark the
// span as failed.
func EndSpan(span trace.Span, code int) {
	span.SetAttributes(attribute.Int("http.status_code", code))
	if code >= 500 {
		span.SetStatus(codes.Error, "server error")
	}
	span.End()
}
