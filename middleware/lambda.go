package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/advdv/xeno"
)

// LambdaContextHeader carries the invocation context when running behind the Lambda Web Adapter.
const LambdaContextHeader = "x-amzn-lambda-context"

// DefaultDeadlineBuffer is the time reserved before the invocation deadline for rendering a response.
const DefaultDeadlineBuffer = 500 * time.Millisecond

// LWAContext contains Lambda execution context from the x-amzn-lambda-context header.
type LWAContext struct {
	RequestID          string       `json:"request_id"`
	Deadline           int64        `json:"deadline"`
	InvokedFunctionARN string       `json:"invoked_function_arn"`
	XRayTraceID        string       `json:"xray_trace_id"`
	EnvConfig          LWAEnvConfig `json:"env_config"`
}

// LWAEnvConfig contains Lambda function environment configuration.
type LWAEnvConfig struct {
	FunctionName string `json:"function_name"`
	Memory       int    `json:"memory"`
	Version      string `json:"version"`
	LogGroup     string `json:"log_group"`
	LogStream    string `json:"log_stream"`
}

// DeadlineTime returns the invocation deadline, or the zero time when unknown.
func (lc *LWAContext) DeadlineTime() time.Time {
	if lc.Deadline == 0 {
		return time.Time{}
	}

	return time.UnixMilli(lc.Deadline)
}

type lambdaContext[C any] struct {
	buffer time.Duration
}

// LambdaContext parses the invocation context forwarded by the Lambda Web Adapter and bounds the request context by
// the invocation deadline minus buffer. Without the header, or with a malformed one, the request passes unchanged.
// As with [Deadline], a response produced after the adjusted deadline becomes a request timeout.
func LambdaContext[C any](buffer time.Duration) xeno.Middleware[C] {
	if buffer <= 0 {
		buffer = DefaultDeadlineBuffer
	}

	return lambdaContext[C]{buffer: buffer}
}

func (m lambdaContext[C]) Before(_ C, r *xeno.Request) error {
	header := r.Header.Get(LambdaContextHeader)
	if header == "" {
		return nil
	}

	var lc LWAContext
	if err := json.Unmarshal([]byte(header), &lc); err != nil {
		return nil //nolint:nilerr
	}

	ctx := context.WithValue(r.Context(), ctxKeyLWA, &lc)
	if dl := lc.DeadlineTime(); !dl.IsZero() {
		if adjusted := dl.Add(-m.buffer); time.Until(adjusted) > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, adjusted)
			ctx = context.WithValue(ctx, ctxKeyLWACancel, cancel)
		}
	}

	r.WithContext(ctx)

	return nil
}

func (m lambdaContext[C]) After(_ C, r *xeno.Request, _ *xeno.Response) error {
	return expired(r.Context())
}

func (m lambdaContext[C]) Finish(_ C, r *xeno.Request, _ *xeno.Response) {
	release(r.Context(), ctxKeyLWACancel)
}

// LWA returns the invocation context attached by [LambdaContext], or nil outside of Lambda.
func LWA(ctx context.Context) *LWAContext {
	lc, _ := ctx.Value(ctxKeyLWA).(*LWAContext)
	return lc
}

// RemainingTime returns the duration until the context deadline, or zero when there is none or it has passed.
func RemainingTime(ctx context.Context) time.Duration {
	dl, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(time.Until(dl), 0)
}
