package xeno

// Middleware intercepts a handler invocation. Before hooks run in registration order and may mutate the request,
// after hooks run in reverse order and may mutate the response. Either hook fails the request by returning an error.
type Middleware[C any] interface {
	Before(c C, r *Request) error
	After(c C, r *Request, res *Response) error
}

// NopMiddleware can be embedded by middleware that only implements one of the hooks.
type NopMiddleware[C any] struct{}

func (NopMiddleware[C]) Before(C, *Request) error { return nil }
func (NopMiddleware[C]) After(C, *Request, *Response) error { return nil }

// BeforeFunc allow casting a function to a [Middleware] with only a before hook.
type BeforeFunc[C any] func(C, *Request) error

func (f BeforeFunc[C]) Before(c C, r *Request) error { return f(c, r) }
func (f BeforeFunc[C]) After(C, *Request, *Response) error { return nil }

// AfterFunc allow casting a function to a [Middleware] with only an after hook.
type AfterFunc[C any] func(C, *Request, *Response) error

func (f AfterFunc[C]) Before(C, *Request) error { return nil }
func (f AfterFunc[C]) After(c C, r *Request, res *Response) error { return f(c, r, res) }

// MiddlewareStack is an ordered list of middleware wrapping a single handler invocation.
type MiddlewareStack[C any] struct {
	mws      []Middleware[C]
	renderer *Renderer
}

// NewMiddlewareStack creates a stack that translates failures with renderer.
func NewMiddlewareStack[C any](renderer *Renderer, mws ...Middleware[C]) *MiddlewareStack[C] {
	if renderer == nil {
		renderer = NewRenderer()
	}

	return &MiddlewareStack[C]{mws: append([]Middleware[C](nil), mws...), renderer: renderer}
}

// Len returns the number of middleware in the stack.
func (s *MiddlewareStack[C]) Len() int { return len(s.mws) }

// Finisher is implemented by middleware that observes the final response of every request whose before hook it
// passed, including responses rendered from failures. Finish hooks run in reverse order once the response is final.
type Finisher[C any] interface {
	Finish(c C, r *Request, res *Response)
}

// Execute runs the before hooks, the handler and the after hooks. The first failing before hook short-circuits the
// chain. The handler sees a clone of the request so after hooks observe the request as it was before the handler
// ran. A failing handler skips all after hooks, and the first failing after hook skips the remaining ones. Every
// failure is translated into a response immediately. Finishers then observe the final response.
func (s *MiddlewareStack[C]) Execute(c C, req *Request, h Handler[C]) *Response {
	res, _ := s.run(c, req, h)
	return res
}

// run is Execute for a stack nested in another one. A failure is returned as a [renderedError] next to its
// response, so the enclosing stack skips its after hooks and reuses the response.
func (s *MiddlewareStack[C]) run(c C, req *Request, h Handler[C]) (*Response, error) {
	logs := s.renderer.logger()

	passed, res, err := s.chain(logs, c, req, h)
	if err != nil {
		res = s.renderer.RenderRequest(req, err)
		err = &renderedError{res: res, cause: err}
	}

	for i := passed - 1; i >= 0; i-- {
		if f, ok := s.mws[i].(Finisher[C]); ok {
			_ = guard(logs, func() error {
				f.Finish(c, req, res)
				return nil
			})
		}
	}

	return res, err
}

// chain returns how many before hooks passed along with the untranslated outcome.
func (s *MiddlewareStack[C]) chain(logs Logger, c C, req *Request, h Handler[C]) (int, *Response, error) {
	for i, mw := range s.mws {
		if err := guard(logs, func() error { return mw.Before(c, req) }); err != nil {
			return i, nil, err
		}
	}

	hreq := req.Clone()

	res, err := invoke(logs, func() (*Response, error) { return h.Handle(c, hreq) })
	if err != nil {
		return len(s.mws), nil, err
	}

	for i := len(s.mws) - 1; i >= 0; i-- {
		mw := s.mws[i]
		if err := guard(logs, func() error { return mw.After(c, req, res) }); err != nil {
			return len(s.mws), nil, err
		}
	}

	return len(s.mws), res, nil
}
