package xeno

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mount copies the routes of sub into b with prefix prepended to their patterns. Middleware of sub only wraps
// its own routes and runs inside the middleware of b. Route names are kept. Changes made to sub after mounting
// are not reflected in b.
func (b *Builder[C]) Mount(prefix string, sub *Builder[C]) *Builder[C] {
	if !strings.HasPrefix(prefix, "/") {
		b.errs = append(b.errs, errors.Newf("mount prefix must start with '/', got: %q", prefix))
		return b
	}

	b.errs = append(b.errs, sub.errs...)
	for _, e := range sub.routes {
		scope := make([]Middleware[C], 0, len(sub.mws)+len(e.scope))
		scope = append(scope, sub.mws...)
		scope = append(scope, e.scope...)

		b.routes = append(b.routes, routeEntry[C]{
			method:  e.method,
			pattern: joinPattern(prefix, e.pattern),
			handler: e.handler,
			name:    e.name,
			scope:   scope,
		})
	}

	return b
}

// scoped runs middleware of a mounted builder around a single route.
type scoped[C any] struct {
	stack *MiddlewareStack[C]
	next  Handler[C]
}

func (s scoped[C]) Handle(c C, r *Request) (*Response, error) {
	return s.stack.run(c, r, s.next)
}

func joinPattern(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if pattern == "/" {
		if prefix == "" {
			return "/"
		}

		return prefix
	}

	return prefix + pattern
}
