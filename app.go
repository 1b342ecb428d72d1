package xeno

import (
	"github.com/cockroachdb/errors"
)

// Option configures how an [App] renders errors.
type Option func(*Renderer)

// WithRenderer replaces the renderer settings with a copy of r.
func WithRenderer(r *Renderer) Option {
	return func(dst *Renderer) { *dst = *r }
}

// WithLogger sets the logger that is informed of server errors and recovered panics.
func WithLogger(l Logger) Option {
	return func(dst *Renderer) { dst.Logger = l }
}

// WithDebugErrors switches error responses to the verbose messages.
func WithDebugErrors(v bool) Option {
	return func(dst *Renderer) { dst.Debug = v }
}

// WithRequestIDHeader sets the correlation header of error responses. An empty name disables it.
func WithRequestIDHeader(name string) Option {
	return func(dst *Renderer) { dst.RequestIDHeader = name }
}

type routeEntry[C any] struct {
	method  Method
	pattern string
	handler Handler[C]
	name    string
	scope   []Middleware[C]
}

// Builder assembles an [App]. It is not safe for concurrent use, the App it builds is.
type Builder[C any] struct {
	ctx      C
	renderer Renderer
	routes   []routeEntry[C]
	mws      []Middleware[C]
	errs     []error
}

// New starts assembling an application that passes c to every handler and middleware.
func New[C any](c C, opts ...Option) *Builder[C] {
	b := &Builder[C]{ctx: c, renderer: *NewRenderer()}
	for _, opt := range opts {
		opt(&b.renderer)
	}

	return b
}

func (b *Builder[C]) Get(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodGet, pattern, h, name...)
}

func (b *Builder[C]) Post(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodPost, pattern, h, name...)
}

func (b *Builder[C]) Put(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodPut, pattern, h, name...)
}

func (b *Builder[C]) Delete(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodDelete, pattern, h, name...)
}

func (b *Builder[C]) Patch(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodPatch, pattern, h, name...)
}

func (b *Builder[C]) Head(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodHead, pattern, h, name...)
}

func (b *Builder[C]) Options(pattern string, h HandlerFunc[C], name ...string) *Builder[C] {
	return b.Handle(MethodOptions, pattern, h, name...)
}

// Handle registers h for the method and pattern. An optional name makes the route reversible.
func (b *Builder[C]) Handle(method Method, pattern string, h Handler[C], name ...string) *Builder[C] {
	if h == nil {
		b.errs = append(b.errs, errors.Newf("nil handler for %s %s", method, pattern))
		return b
	}

	b.routes = append(b.routes, routeEntry[C]{
		method:  method,
		pattern: pattern,
		handler: h,
		name:    firstName(name),
	})

	return b
}

// HandleFunc registers a function for the method and pattern.
func (b *Builder[C]) HandleFunc(method Method, pattern string, f func(C, *Request) (*Response, error), name ...string) *Builder[C] {
	return b.Handle(method, pattern, HandlerFunc[C](f), name...)
}

// Use appends middleware. All middleware observes every request, including the ones that end in 404 or 405,
// regardless of whether it was added before or after the routes.
func (b *Builder[C]) Use(mw ...Middleware[C]) *Builder[C] {
	b.mws = append(b.mws, mw...)
	return b
}

// Build validates the registered routes and produces an immutable application. Every call produces an
// independent route table, so changes to the builder never affect an app that was built before.
func (b *Builder[C]) Build() (*App[C], error) {
	renderer := b.renderer
	router := NewRouter[C](&renderer)
	reverser := NewReverser()

	errs := append([]error(nil), b.errs...)
	for _, e := range b.routes {
		h := e.handler
		if len(e.scope) > 0 {
			h = scoped[C]{NewMiddlewareStack(&renderer, e.scope...), h}
		}

		if err := router.AddRoute(e.method, e.pattern, h); err != nil {
			errs = append(errs, err)
			continue
		}

		if e.name != "" {
			if _, err := reverser.NamedPattern(e.name, e.pattern); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "failed to build app")
	}

	return &App[C]{
		ctx:      b.ctx,
		router:   router,
		dispatch: HandlerFunc[C](router.Resolve),
		stack:    NewMiddlewareStack(&renderer, b.mws...),
		renderer: &renderer,
		reverser: reverser,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder[C]) MustBuild() *App[C] {
	app, err := b.Build()
	if err != nil {
		panic("xeno: " + err.Error())
	}

	return app
}

// App is an assembled application. It is safe for concurrent use.
type App[C any] struct {
	ctx      C
	router   *Router[C]
	dispatch Handler[C]
	stack    *MiddlewareStack[C]
	renderer *Renderer
	reverser *Reverser
}

// Handle dispatches the request through the middleware stack and the router. It always returns a response.
func (a *App[C]) Handle(req *Request) *Response {
	return a.stack.Execute(a.ctx, req, a.dispatch)
}

// Render translates err with the application's error policy.
func (a *App[C]) Render(err error) *Response {
	return a.renderer.Render(err)
}

// Reverse returns the url based on the name and parameter values.
func (a *App[C]) Reverse(name string, vals ...string) (string, error) {
	return a.reverser.Reverse(name, vals...)
}

// Routes lists the registered routes.
func (a *App[C]) Routes() []Route {
	return a.router.Routes()
}

// Context returns the value passed to handlers.
func (a *App[C]) Context() C {
	return a.ctx
}

func firstName(name []string) string {
	if len(name) > 0 {
		return name[0]
	}

	return ""
}

var _ Dispatcher = &App[struct{}]{}
