package xeno

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrUnsupportedMethod is returned when a method outside the closed set is used to register a route.
var ErrUnsupportedMethod = errors.New("unsupported method")

// Method is a request method. Routes can only be registered for the constants below, requests may carry any
// method and resolve to a 405 response when no route table exists for it.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodDelete  Method = http.MethodDelete
	MethodPatch   Method = http.MethodPatch
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// Methods lists every supported method in a stable order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

// ParseMethod normalizes s to upper case and checks it against the supported methods.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	if !lo.Contains(Methods, m) {
		return m, errors.Wrapf(ErrUnsupportedMethod, "%q", s)
	}

	return m, nil
}

func (m Method) String() string { return string(m) }

// Params holds the path parameters of a matched route.
type Params map[string]string

// Get returns the named parameter or the empty string.
func (p Params) Get(name string) string { return p[name] }

// Request is the transport-independent request that adapters build and the core dispatches. A request is owned by
// a single exchange and never shared across concurrent requests.
type Request struct {
	Method   Method
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte

	ctx    context.Context
	params Params
}

// NewRequest creates a request. The target is split into its path and query.
func NewRequest(method, target string, body []byte) *Request {
	return NewRequestWithContext(context.Background(), method, target, body)
}

// NewRequestWithContext creates a request that carries ctx.
func NewRequestWithContext(ctx context.Context, method, target string, body []byte) *Request {
	path, query, _ := strings.Cut(target, "?")
	if path == "" {
		path = "/"
	}

	return &Request{
		Method:   Method(strings.ToUpper(method)),
		Path:     path,
		RawQuery: query,
		Header:   http.Header{},
		Body:     body,
		ctx:      ctx,
	}
}

// Context returns the request's context. It is never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}

	return r.ctx
}

// WithContext sets the request's context. Middleware uses it to attach deadlines and request-scoped values.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("xeno: nil context")
	}

	r.ctx = ctx

	return r
}

// Params returns the path parameters attached by the router. It is nil before routing.
func (r *Request) Params() Params { return r.params }

// Param returns a single path parameter.
func (r *Request) Param(name string) string { return r.params.Get(name) }

// Query parses the raw query. Malformed pairs are skipped.
func (r *Request) Query() url.Values {
	vals, _ := url.ParseQuery(r.RawQuery)
	return vals
}

// Clone returns a deep copy of the request. The context is shared.
func (r *Request) Clone() *Request {
	r2 := new(Request)
	*r2 = *r
	r2.Header = r.Header.Clone()
	if r.Body != nil {
		r2.Body = append([]byte(nil), r.Body...)
	}

	if r.params != nil {
		r2.params = make(Params, len(r.params))
		for k, v := range r.params {
			r2.params[k] = v
		}
	}

	return r2
}

// setParams attaches the matched parameters, replacing any earlier value.
func (r *Request) setParams(p Params) {
	if p == nil {
		p = Params{}
	}

	r.params = p
}
