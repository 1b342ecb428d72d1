package middleware

import (
	"context"
	"time"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
)

// BodyLimit fails requests whose body exceeds n bytes with a payload too large error.
func BodyLimit[C any](n int64) xeno.Middleware[C] {
	return xeno.BeforeFunc[C](func(_ C, r *xeno.Request) error {
		if int64(len(r.Body)) > n {
			return xeno.PayloadTooLarge()
		}

		return nil
	})
}

type deadline[C any] struct {
	timeout time.Duration
}

// Deadline bounds the request context by timeout. A response produced after the deadline expired is replaced by a
// request timeout error, as is any handler error caused by the deadline. The deadline's resources are released
// once the response is final. A non-positive timeout disables it.
func Deadline[C any](timeout time.Duration) xeno.Middleware[C] {
	return deadline[C]{timeout: timeout}
}

func (m deadline[C]) Before(_ C, r *xeno.Request) error {
	if m.timeout <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), m.timeout)
	r.WithContext(context.WithValue(ctx, ctxKeyCancel, cancel))

	return nil
}

func (m deadline[C]) After(_ C, r *xeno.Request, _ *xeno.Response) error {
	return expired(r.Context())
}

func (m deadline[C]) Finish(_ C, r *xeno.Request, _ *xeno.Response) {
	release(r.Context(), ctxKeyCancel)
}

// expired fails with a request timeout once the context deadline has passed.
func expired(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return xeno.RequestTimeout()
	}

	return nil
}

// release calls the cancel func stored under key, if any.
func release(ctx context.Context, key ctxKey) {
	if cancel, ok := ctx.Value(key).(context.CancelFunc); ok {
		cancel()
	}
}
