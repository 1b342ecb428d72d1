// Package xeno provides a transport-agnostic request dispatch core.
//
// # Overview
//
// An adapter (see the adapter packages) builds a [Request] from wire input and
// calls [App.Handle], which always returns a [Response]. In between, the
// request passes the middleware stack, is routed by method and path, and the
// handler's result, including any failure, is turned into a response.
//
// A minimal example:
//
//	app := xeno.New(xeno.NewCtx()).
//	    Get("/users/:id", func(c xeno.Ctx, r *xeno.Request) (*xeno.Response, error) {
//	        return xeno.JSON(map[string]string{"user_id": r.Param("id")}), nil
//	    }, "get-user").
//	    MustBuild()
//
//	res := app.Handle(xeno.NewRequest("GET", "/users/123", nil))
//
// # Handlers
//
// Handlers receive the application context value and the request, and
// return either a response or an error:
//
//	func(c C, r *xeno.Request) (*xeno.Response, error)
//
// The context value C is supplied once, when calling [New], and is passed
// unchanged to every handler and middleware. It is shared by all concurrent
// requests so anything mutable it refers to must do its own synchronization.
// [Ctx] is a ready-made context that optionally carries a key-value store.
//
// # Errors
//
// Failures are expressed with the closed set of [Kind]s. Each kind maps to a
// status code, a static safe message and a verbose debug message:
//
//	return nil, xeno.BadRequest("missing name")
//	return nil, xeno.WrapJSON(err)
//	return nil, xeno.NotFound()
//
// Any other error is treated as an internal error. The [Renderer] turns
// errors into a JSON envelope with the message, the status and a timestamp,
// and adds a correlation header. Whether the safe or the debug message is
// rendered is decided at runtime with [WithDebugErrors].
//
// # Routing
//
// Patterns consist of literal segments, ":name" segments that capture one
// non-empty path segment and an optional final "*name" segment that captures
// the rest of the path, possibly nothing, so "/files/*rest" also matches
// "/files". At each position literals win over parameters, which
// win over a catch-all. Registering the same method and pattern twice is an
// error. A method without routes yields a 405 response, a path without a
// match a 404 response.
//
// # Middleware
//
// A [Middleware] has a before hook and an after hook. Given middleware A and
// B, a successful request runs A.Before, B.Before, the handler, B.After and
// A.After. A failing before hook stops the chain. A failing handler skips the
// after hooks. The handler runs on a clone of the request so that after
// hooks observe the request as the before hooks left it. Because routing is
// the handler the stack wraps, 404 and 405 outcomes pass through both hooks.
// Middleware that must see every final response, including the ones rendered
// from failures, also implements [Finisher]. Mounted middleware behaves the
// same way: a failure inside a mounted stack skips the after hooks around it.
//
// # Assembly
//
// A [Builder] collects routes and middleware. [Builder.Build] validates
// everything and returns an immutable [App] that is safe for concurrent use.
// Named routes can be turned back into URLs with [App.Reverse].
package xeno
