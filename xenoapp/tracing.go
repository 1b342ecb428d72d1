package xenoapp

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const tracingInitTimeout = 5 * time.Second

// Exporters selectable with XENO_OTEL_EXPORTER.
const (
	ExporterStdout  = "stdout"
	ExporterXRayUDP = "xrayudp"
	ExporterNone    = "none"
)

// tracingBackend describes how spans leave the process for one exporter setting.
type tracingBackend struct {
	exporter   func(ctx context.Context) (sdktrace.SpanExporter, error)
	lambdaRes  bool
	xrayIDs    bool
	propagator func() propagation.TextMapPropagator
}

func w3cPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

var tracingBackends = map[string]tracingBackend{
	ExporterStdout: {
		exporter: func(context.Context) (sdktrace.SpanExporter, error) {
			return stdouttrace.New(stdouttrace.WithPrettyPrint())
		},
		propagator: w3cPropagator,
	},
	ExporterXRayUDP: {
		exporter: func(ctx context.Context) (sdktrace.SpanExporter, error) {
			return xrayudp.NewSpanExporter(ctx)
		},
		lambdaRes:  true,
		xrayIDs:    true,
		propagator: func() propagation.TextMapPropagator { return xray.Propagator{} },
	},
	ExporterNone: {propagator: w3cPropagator},
}

func lookupTracingBackend(name string) (tracingBackend, error) {
	if name == "" {
		name = ExporterStdout
	}

	b, ok := tracingBackends[name]
	if !ok {
		names := make([]string, 0, len(tracingBackends))
		for n := range tracingBackends {
			names = append(names, n)
		}
		sort.Strings(names)

		return b, errors.Newf("unsupported XENO_OTEL_EXPORTER: %q (supported: %s)", name, strings.Join(names, ", "))
	}

	return b, nil
}

// NewTracerProvider creates the tracer provider for XENO_OTEL_EXPORTER and flushes it when the app stops.
// No global provider is installed.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingInitTimeout)
	defer cancel()

	backend, err := lookupTracingBackend(env.base().OtelExporter)
	if err != nil {
		return nil, err
	}

	res, err := newResource(ctx, backend, env.base().ServiceName)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if backend.exporter != nil {
		exp, err := backend.exporter(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create span exporter")
		}

		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)))
	}

	if backend.xrayIDs {
		opts = append(opts, sdktrace.WithIDGenerator(xray.NewIDGenerator()))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	lc.Append(fx.StopHook(tp.Shutdown))

	return tp, nil
}

// NewPropagator returns the X-Ray propagator for the xrayudp exporter and W3C trace context with baggage
// otherwise.
func NewPropagator(env Environment) propagation.TextMapPropagator {
	backend, err := lookupTracingBackend(env.base().OtelExporter)
	if err != nil {
		return w3cPropagator()
	}

	return backend.propagator()
}

func newResource(ctx context.Context, backend tracingBackend, serviceName string) (*resource.Resource, error) {
	if backend.lambdaRes {
		res, err := lambda.NewResourceDetector().Detect(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to detect lambda resource")
		}

		return res, nil
	}

	return resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)), nil
}

// traceHandler starts a server span for every request except those to the untraced paths.
func traceHandler(
	next http.Handler, tp trace.TracerProvider, prop propagation.TextMapPropagator, operation string,
	untraced ...string,
) http.Handler {
	skip := make(map[string]bool, len(untraced))
	for _, p := range untraced {
		skip[p] = true
	}

	return otelhttp.NewHandler(next, operation,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool { return !skip[r.URL.Path] }),
	)
}
