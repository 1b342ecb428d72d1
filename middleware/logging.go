package middleware

import (
	"context"
	"time"

	"github.com/advdv/xeno"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger attaches a request-scoped logger to the context, annotated with the method, the path and the request id
// when [RequestID] runs earlier in the chain.
func Logger[C any](logs *zap.Logger) xeno.Middleware[C] {
	return xeno.BeforeFunc[C](func(_ C, r *xeno.Request) error {
		fields := []zap.Field{zap.String("method", r.Method.String()), zap.String("path", r.Path)}
		if id := RequestIDFrom(r.Context()); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		r.WithContext(context.WithValue(r.Context(), ctxKeyLogger, logs.With(fields...)))

		return nil
	})
}

// Log returns the logger attached by [Logger], correlated with the current trace span. Without one attached it
// returns a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	logs, ok := ctx.Value(ctxKeyLogger).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return logs.With(traceFields(ctx)...)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}

// ServerErrors reports whether status is a 5xx status.
func ServerErrors(status int) bool { return status >= 500 && status <= 599 }

// StatusRange returns a predicate matching statuses in [lo, hi].
func StatusRange(lo, hi int) func(int) bool {
	return func(status int) bool { return status >= lo && status <= hi }
}

type accessLog[C any] struct {
	logs    *zap.Logger
	isError func(int) bool
}

// AccessLog logs one line per response with the method, path, status and duration. Statuses matched by isError
// are logged at error level, the rest at info. A nil isError defaults to [ServerErrors]. Responses rendered from a
// failing handler or middleware are logged as well.
func AccessLog[C any](logs *zap.Logger, isError func(int) bool) xeno.Middleware[C] {
	if isError == nil {
		isError = ServerErrors
	}

	return accessLog[C]{logs: logs, isError: isError}
}

func (m accessLog[C]) Before(_ C, r *xeno.Request) error {
	markStart(r)
	return nil
}

func (m accessLog[C]) After(C, *xeno.Request, *xeno.Response) error { return nil }

func (m accessLog[C]) Finish(_ C, r *xeno.Request, res *xeno.Response) {
	fields := []zap.Field{
		zap.String("method", r.Method.String()),
		zap.String("path", r.Path),
		zap.Int("status", res.Status),
		zap.Duration("duration", time.Since(startOf(r.Context()))),
	}

	if id := RequestIDFrom(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	fields = append(fields, traceFields(r.Context())...)

	if m.isError(res.Status) {
		m.logs.Error("request failed", fields...)
	} else {
		m.logs.Info("request served", fields...)
	}
}

// markStart records the start of the request unless an earlier middleware already did.
func markStart(r *xeno.Request) {
	if _, ok := r.Context().Value(ctxKeyStart).(time.Time); ok {
		return
	}

	r.WithContext(context.WithValue(r.Context(), ctxKeyStart, time.Now()))
}

func startOf(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxKeyStart).(time.Time); ok {
		return t
	}

	return time.Now()
}
