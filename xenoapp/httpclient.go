package xenoapp

import (
	"net/http"

	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// NewHTTPTransport returns the transport for outbound calls. Requests become child spans of the active trace and
// carry its propagation headers.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	base := http.DefaultTransport.(*http.Transport).Clone()

	return otelhttp.NewTransport(base, otelhttp.WithTracerProvider(tp), otelhttp.WithPropagators(prop))
}

// NewHTTPClient wraps the outbound transport in a client for code that wants the standard library API.
func NewHTTPClient(rt http.RoundTripper) *http.Client {
	return &http.Client{Transport: rt}
}

// newRequestBuilder is the template that [Runtime.NewRequest] clones.
func newRequestBuilder(rt http.RoundTripper) *requests.Builder {
	return requests.New().Transport(rt)
}
