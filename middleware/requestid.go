// Package middleware provides ready-made middleware for xeno applications. Each constructor is generic over the
// application context value so it can be installed on any [xeno.Builder].
package middleware

import (
	"context"

	"github.com/advdv/xeno"
	"github.com/google/uuid"
)

// ctxKey scopes the values middleware attaches to the request context.
type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyLogger
	ctxKeyStart
	ctxKeyCancel
	ctxKeyClaims
	ctxKeyLWA
	ctxKeyLWACancel
)

type requestID[C any] struct {
	header string
}

// RequestID correlates a request with its response. An id already present in the header is kept, otherwise a
// random UUID is generated. The id is echoed on every response, including the ones rendered from failures, and is
// available through [RequestIDFrom]. An empty header defaults to [xeno.DefaultRequestIDHeader].
func RequestID[C any](header string) xeno.Middleware[C] {
	if header == "" {
		header = xeno.DefaultRequestIDHeader
	}

	return requestID[C]{header: header}
}

func (m requestID[C]) Before(_ C, r *xeno.Request) error {
	id := r.Header.Get(m.header)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(m.header, id)
	}

	r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id))

	return nil
}

func (m requestID[C]) After(C, *xeno.Request, *xeno.Response) error { return nil }

func (m requestID[C]) Finish(_ C, r *xeno.Request, res *xeno.Response) {
	if id := RequestIDFrom(r.Context()); id != "" {
		res.WithHeader(m.header, id)
	}
}

// RequestIDFrom returns the id attached by [RequestID], or an empty string.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
