package xeno

import (
	"fmt"
)

// Handler produces a response for a request, or fails with an error that is translated by the [Renderer]. The
// context value c is the application-supplied value the [App] was built with.
type Handler[C any] interface {
	Handle(c C, r *Request) (*Response, error)
}

// HandlerFunc allow casting a function to implement [Handler].
type HandlerFunc[C any] func(C, *Request) (*Response, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc[C]) Handle(c C, r *Request) (*Response, error) {
	return f(c, r)
}

// Dispatcher is what transport adapters need from an [App]: dispatching a request and rendering errors that occur
// before the request reaches the core.
type Dispatcher interface {
	Handle(r *Request) *Response
	Render(err error) *Response
}

// invoke calls fn, turning a panic or a missing response into an internal error.
func invoke(logs Logger, fn func() (*Response, error)) (res *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			logs.LogRecoveredPanic(v)
			res, err = nil, Internal(fmt.Sprintf("panic: %v", v))
		}
	}()

	res, err = fn()
	if err == nil && res == nil {
		return nil, Internal("handler returned no response")
	}

	return res, err
}

// guard calls fn, turning a panic into an internal error.
func guard(logs Logger, fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			logs.LogRecoveredPanic(v)
			err = Internal(fmt.Sprintf("panic: %v", v))
		}
	}()

	return fn()
}
