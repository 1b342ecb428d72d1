package xeno

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// DefaultRequestIDHeader is the header that carries the correlation id of rendered errors.
const DefaultRequestIDHeader = "X-Request-Id"

// Renderer turns errors into responses. Every error response shares the same JSON envelope:
//
//	{"error": "Not Found", "status": 404, "timestamp": "2024-01-01T00:00:00Z"}
//
// With Debug set the "error" field holds the verbose message, otherwise the static safe message.
type Renderer struct {
	Debug           bool
	RequestIDHeader string
	Logger          Logger

	// Now, NewID and Marshal default to the wall clock, random UUIDs and encoding/json.
	Now     func() time.Time
	NewID   func() string
	Marshal func(v any) ([]byte, error)
}

// NewRenderer returns a renderer with production defaults.
func NewRenderer() *Renderer {
	return &Renderer{RequestIDHeader: DefaultRequestIDHeader, Logger: NopLogger{}}
}

type envelope struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

// renderedError is a failure that a nested middleware stack already translated into res.
type renderedError struct {
	res   *Response
	cause error
}

func (e *renderedError) Error() string { return e.cause.Error() }
func (e *renderedError) Unwrap() error { return e.cause }

// Render translates err into a response. It never fails.
func (r *Renderer) Render(err error) *Response {
	var rendered *renderedError
	if errors.As(err, &rendered) {
		return rendered.res
	}

	xerr := AsError(err)
	if xerr == nil {
		xerr = Internal("nil error rendered")
	}

	status := int(xerr.Code())
	if status >= http.StatusInternalServerError {
		r.logger().LogTranslatedError(xerr, status)
	}

	msg := xerr.SafeMessage()
	if r.Debug {
		msg = xerr.Error()
	}

	return r.render(status, msg)
}

// RenderRequest is Render for a failure of req. When req carries a correlation id in the request id header the
// response echoes it instead of a fresh one.
func (r *Renderer) RenderRequest(req *Request, err error) *Response {
	res := r.Render(err)
	if r.RequestIDHeader == "" || req == nil {
		return res
	}

	if id := req.Header.Get(r.RequestIDHeader); id != "" {
		res.Header.Set(r.RequestIDHeader, id)
	}

	return res
}

// RenderStatus renders the envelope for a status that is not backed by an error, such as 405.
func (r *Renderer) RenderStatus(code Code) *Response {
	msg := http.StatusText(int(code))
	if msg == "" {
		msg = "Unknown"
	}

	return r.render(int(code), msg)
}

func (r *Renderer) render(status int, msg string) *Response {
	body, err := r.marshal(envelope{
		Error:     msg,
		Status:    status,
		Timestamp: r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		res := NewResponse(http.StatusInternalServerError, []byte(http.StatusText(http.StatusInternalServerError)))
		res.Header.Set("Content-Type", contentTypeText)

		return res
	}

	res := NewResponse(status, body)
	res.Header.Set("Content-Type", contentTypeJSON)

	if r.RequestIDHeader != "" {
		res.Header.Set(r.RequestIDHeader, r.newID())
	}

	return res
}

func (r *Renderer) logger() Logger {
	if r.Logger == nil {
		return NopLogger{}
	}

	return r.Logger
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}

func (r *Renderer) newID() string {
	if r.NewID == nil {
		return uuid.New().String()
	}

	return r.NewID()
}

func (r *Renderer) marshal(v any) ([]byte, error) {
	if r.Marshal == nil {
		return json.Marshal(v)
	}

	return r.Marshal(v)
}
