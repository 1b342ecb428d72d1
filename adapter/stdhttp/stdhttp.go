// Package stdhttp serves a xeno application with net/http.
package stdhttp

import (
	"io"
	"net/http"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Option configures the handler.
type Option func(*handler)

// WithMaxBodyBytes limits the request body. Larger bodies are rejected with a payload too large error before the
// application sees the request. Zero or less means no limit.
func WithMaxBodyBytes(n int64) Option {
	return func(h *handler) { h.maxBody = n }
}

// WithH2C serves HTTP/2 over cleartext next to HTTP/1.
func WithH2C() Option {
	return func(h *handler) { h.h2c = true }
}

type handler struct {
	app     xeno.Dispatcher
	maxBody int64
	h2c     bool
}

// New returns an http.Handler that converts every request, dispatches it to app and writes the response.
func New(app xeno.Dispatcher, opts ...Option) http.Handler {
	h := &handler{app: app}
	for _, opt := range opts {
		opt(h)
	}

	if h.h2c {
		return h2c.NewHandler(h, &http2.Server{})
	}

	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := h.convert(w, r)
	if err != nil {
		write(w, h.app.Render(err))
		return
	}

	write(w, h.app.Handle(req))
}

// convert reads the body and builds the core request. The path is the decoded path.
func (h *handler) convert(w http.ResponseWriter, r *http.Request) (*xeno.Request, error) {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, body, h.maxBody)
	}

	buf, err := io.ReadAll(body)

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return nil, xeno.PayloadTooLarge()
	} else if err != nil {
		return nil, xeno.WrapProtocol(errors.Wrap(err, "failed to read body"))
	}

	req := xeno.NewRequestWithContext(r.Context(), r.Method, "/", buf)
	req.Path = r.URL.Path
	req.RawQuery = r.URL.RawQuery
	req.Header = r.Header.Clone()

	if req.Path == "" {
		req.Path = "/"
	}

	if r.Host != "" && req.Header.Get("Host") == "" {
		req.Header.Set("Host", r.Host)
	}

	return req, nil
}

func write(w http.ResponseWriter, res *xeno.Response) {
	for k, vs := range res.Header {
		w.Header()[k] = append([]string(nil), vs...)
	}

	w.WriteHeader(res.Status)
	_, _ = w.Write(res.Body)
}
