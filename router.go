package xeno

import (
	"github.com/advdv/xeno/internal/pathtree"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrDuplicateRoute is returned when a method and pattern combination is registered twice.
var ErrDuplicateRoute = errors.New("duplicate route")

// Route describes a registered route.
type Route struct {
	Method  Method
	Pattern string
}

// Router resolves requests to handlers. It keeps one pattern tree per method. At every path segment literal
// segments take precedence over ":param" segments, which take precedence over a trailing "*catchall".
type Router[C any] struct {
	trees    map[Method]*pathtree.Tree[Handler[C]]
	renderer *Renderer
}

// NewRouter creates an empty router that translates errors with renderer.
func NewRouter[C any](renderer *Renderer) *Router[C] {
	if renderer == nil {
		renderer = NewRenderer()
	}

	return &Router[C]{trees: map[Method]*pathtree.Tree[Handler[C]]{}, renderer: renderer}
}

// AddRoute registers h for the method and pattern.
func (rt *Router[C]) AddRoute(method Method, pattern string, h Handler[C]) error {
	method, err := ParseMethod(string(method))
	if err != nil {
		return err
	}

	pat, err := pathtree.ParsePattern(pattern)
	if err != nil {
		return errors.Wrap(err, "failed to parse pattern")
	}

	tree, ok := rt.trees[method]
	if !ok {
		tree = pathtree.New[Handler[C]]()
		rt.trees[method] = tree
	}

	if err := tree.Insert(pat, h); err != nil {
		if errors.Is(err, pathtree.ErrDuplicate) {
			return errors.Wrapf(ErrDuplicateRoute, "%s %s", method, pattern)
		}

		return errors.Wrapf(err, "failed to add %s %s", method, pattern)
	}

	return nil
}

// Resolve finds the handler for the request and invokes it. A method without any routes results in a 405
// response, a path without a match in a 404 response. The matched parameters are attached to the request
// before the handler runs. Handler errors are returned untouched.
func (rt *Router[C]) Resolve(c C, req *Request) (*Response, error) {
	tree, ok := rt.trees[req.Method]
	if !ok {
		return rt.renderer.RenderStatus(CodeMethodNotAllowed), nil
	}

	match, ok := tree.Lookup(req.Path)
	if !ok {
		return rt.renderer.RenderStatus(CodeNotFound), nil
	}

	req.setParams(Params(match.Params))

	return match.Value.Handle(c, req)
}

// Handle resolves the request and translates any failure into a response.
func (rt *Router[C]) Handle(c C, req *Request) *Response {
	res, err := invoke(rt.renderer.logger(), func() (*Response, error) { return rt.Resolve(c, req) })
	if err != nil {
		return rt.renderer.RenderRequest(req, err)
	}

	return res
}

// Routes lists the registered routes ordered by method and pattern.
func (rt *Router[C]) Routes() []Route {
	var routes []Route
	for _, method := range Methods {
		tree, ok := rt.trees[method]
		if !ok {
			continue
		}

		routes = append(routes, lo.Map(tree.Patterns(), func(p *pathtree.Pattern, _ int) Route {
			return Route{Method: method, Pattern: p.String()}
		})...)
	}

	return routes
}
