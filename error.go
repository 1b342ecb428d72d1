package xeno

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes that the error taxonomy and the router produce.
type Code int

const (
	CodeUnknown               Code = 0
	CodeBadRequest            Code = http.StatusBadRequest            // RFC 9110, 15.5.1
	CodeUnauthorized          Code = http.StatusUnauthorized          // RFC 9110, 15.5.2
	CodeForbidden             Code = http.StatusForbidden             // RFC 9110, 15.5.4
	CodeNotFound              Code = http.StatusNotFound              // RFC 9110, 15.5.5
	CodeMethodNotAllowed      Code = http.StatusMethodNotAllowed      // RFC 9110, 15.5.6
	CodeRequestTimeout        Code = http.StatusRequestTimeout        // RFC 9110, 15.5.9
	CodeRequestEntityTooLarge Code = http.StatusRequestEntityTooLarge // RFC 9110, 15.5.14
	CodeUnprocessableEntity   Code = http.StatusUnprocessableEntity   // RFC 9110, 15.5.21

	CodeInternalServerError Code = http.StatusInternalServerError // RFC 9110, 15.6.1
)

// Kind is the closed set of failures a request can end in.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindPayloadTooLarge
	KindRequestTimeout
	KindUnprocessableEntity
	KindJSON
	KindProtocol
)

type kindInfo struct {
	code Code
	safe string
	name string
}

var kinds = map[Kind]kindInfo{
	KindInternal:            {CodeInternalServerError, "Internal Server Error", "Internal server error"},
	KindNotFound:            {CodeNotFound, "Not Found", "Not found"},
	KindBadRequest:          {CodeBadRequest, "Bad Request", "Bad request"},
	KindUnauthorized:        {CodeUnauthorized, "Unauthorized", "Unauthorized"},
	KindForbidden:           {CodeForbidden, "Forbidden", "Forbidden"},
	KindPayloadTooLarge:     {CodeRequestEntityTooLarge, "Request Entity Too Large", "Request entity too large"},
	KindRequestTimeout:      {CodeRequestTimeout, "Request Timeout", "Request timeout"},
	KindUnprocessableEntity: {CodeUnprocessableEntity, "Unprocessable Entity", "Unprocessable entity"},
	KindJSON:                {CodeBadRequest, "Invalid JSON", "JSON parse error"},
	KindProtocol:            {CodeBadRequest, "HTTP Error", "HTTP error"},
}

func (k Kind) info() kindInfo {
	if ki, ok := kinds[k]; ok {
		return ki
	}

	return kinds[KindInternal]
}

// Code returns the status code the kind maps to.
func (k Kind) Code() Code { return k.info().code }

func (k Kind) String() string { return k.info().name }

// Error describes a request failure. It carries a kind, an optional detail and an optional cause.
type Error struct {
	kind   Kind
	detail string
	cause  error
}

// NewError inits a new error of the given kind.
func NewError(k Kind, detail string, cause error) *Error {
	return &Error{kind: k, detail: detail, cause: cause}
}

func NotFound() *Error { return NewError(KindNotFound, "", nil) }
func BadRequest(detail string) *Error { return NewError(KindBadRequest, detail, nil) }
func Internal(detail string) *Error { return NewError(KindInternal, detail, nil) }
func Unauthorized() *Error { return NewError(KindUnauthorized, "", nil) }
func Forbidden() *Error { return NewError(KindForbidden, "", nil) }
func PayloadTooLarge() *Error { return NewError(KindPayloadTooLarge, "", nil) }
func RequestTimeout() *Error { return NewError(KindRequestTimeout, "", nil) }
func UnprocessableEntity(detail string) *Error { return NewError(KindUnprocessableEntity, detail, nil) }

// WrapJSON turns a JSON decoding failure into a request error.
func WrapJSON(err error) *Error { return NewError(KindJSON, "", err) }

// WrapProtocol turns a failure of the transport, such as an unreadable body, into a request error.
func WrapProtocol(err error) *Error { return NewError(KindProtocol, "", err) }

func (e *Error) Kind() Kind { return e.kind }
func (e *Error) Code() Code { return e.kind.Code() }
func (e *Error) Detail() string { return e.detail }
func (e *Error) Unwrap() error { return e.cause }
func (e *Error) SafeMessage() string { return e.kind.info().safe }

// Error returns the debug message, which may contain internal detail.
func (e *Error) Error() string {
	name := e.kind.String()

	switch e.kind {
	case KindBadRequest, KindUnprocessableEntity:
		return fmt.Sprintf("%s: %s", name, e.detail)
	case KindJSON, KindProtocol:
		if e.cause == nil {
			return name
		}
		return fmt.Sprintf("%s: %s", name, e.cause.Error())
	case KindInternal:
		if e.detail == "" {
			return name
		}
		return fmt.Sprintf("%s: %s", name, e.detail)
	default:
		return name
	}
}

// AsError folds any error into the taxonomy. An [*Error] anywhere in the chain is returned as is, an exceeded
// context deadline becomes a request timeout and everything else becomes an internal error that keeps the cause.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	if xerr, ok := asError(err); ok {
		return xerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindRequestTimeout, "", err)
	}

	return NewError(KindInternal, err.Error(), err)
}

// CodeOf returns the error's status code if it is or wraps an [*Error] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if xerr, ok := asError(err); ok {
		return xerr.Code()
	}
	return CodeUnknown
}

// asError uses errors.As to unwrap any error and look for a *Error.
func asError(err error) (*Error, bool) {
	var xerr *Error
	ok := errors.As(err, &xerr)
	return xerr, ok
}
