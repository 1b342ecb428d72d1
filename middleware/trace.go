package middleware

import (
	"net/http"

	"github.com/advdv/xeno"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer spans are started with.
const TracerName = "github.com/advdv/xeno/middleware"

type tracing[C any] struct {
	tracer trace.Tracer
	prop   propagation.TextMapPropagator
}

// Trace starts a server span per request, continuing the trace propagated in the request headers. The span ends with
// the status of the final response recorded, including responses rendered from failures. The provider and
// propagator are passed explicitly, no globals are consulted.
func Trace[C any](tp trace.TracerProvider, prop propagation.TextMapPropagator) xeno.Middleware[C] {
	return tracing[C]{tracer: tp.Tracer(TracerName), prop: prop}
}

func (m tracing[C]) Before(_ C, r *xeno.Request) error {
	ctx := m.prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, _ = m.tracer.Start(ctx, r.Method.String()+" "+r.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method.String()),
			attribute.String("url.path", r.Path),
		),
	)

	r.WithContext(ctx)

	return nil
}

func (m tracing[C]) After(C, *xeno.Request, *xeno.Response) error { return nil }

func (m tracing[C]) Finish(_ C, r *xeno.Request, res *xeno.Response) {
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))

	if res.Status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(res.Status))
	}

	span.End()
}
