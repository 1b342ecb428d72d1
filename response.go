package xeno

import (
	"encoding/json"
	"net/http"
)

const (
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeBinary = "application/octet-stream"
)

// Response is what a handler produces and an adapter writes to the wire.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with the given status and body and no headers.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Header: http.Header{}, Body: body}
}

// Text creates a 200 plain text response.
func Text(s string) *Response {
	res := NewResponse(http.StatusOK, []byte(s))
	res.Header.Set("Content-Type", contentTypeText)

	return res
}

// Blob creates a 200 binary response.
func Blob(b []byte) *Response {
	res := NewResponse(http.StatusOK, b)
	res.Header.Set("Content-Type", contentTypeBinary)

	return res
}

// JSON creates a 200 response with v encoded as JSON. If v cannot be encoded the result is a plain text 500.
func JSON(v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		res := NewResponse(http.StatusInternalServerError, []byte("Failed to serialize JSON"))
		res.Header.Set("Content-Type", contentTypeText)

		return res
	}

	res := NewResponse(http.StatusOK, b)
	res.Header.Set("Content-Type", contentTypeJSON)

	return res
}

// NoContent creates an empty response with the given status.
func NoContent(status int) *Response {
	return NewResponse(status, nil)
}

// WithStatus sets the status and returns the response.
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WithHeader sets a header and returns the response.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = http.Header{}
	}

	r.Header.Set(key, value)

	return r
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	r2 := &Response{Status: r.Status, Header: r.Header.Clone()}
	if r.Body != nil {
		r2.Body = append([]byte(nil), r.Body...)
	}

	return r2
}
