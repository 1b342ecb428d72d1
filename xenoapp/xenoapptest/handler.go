package xenoapptest

import (
	"github.com/advdv/xeno"
)

// CallHandler invokes a handler outside of an app and returns its response. Errors are rendered the way an
// app with default settings renders them, so tests can assert on status and body alike.
func CallHandler[C any](c C, handler xeno.HandlerFunc[C], req *xeno.Request) *xeno.Response {
	res, err := handler(c, req)
	if err != nil {
		return xeno.NewRenderer().Render(err)
	}

	if res == nil {
		panic("xenoapptest: handler returned no response")
	}

	return res
}
