package xeno_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/internal/pathtree"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCtx struct{ Name string }

func echoPattern(pattern string) xeno.HandlerFunc[testCtx] {
	return func(_ testCtx, r *xeno.Request) (*xeno.Response, error) {
		b, _ := json.Marshal(map[string]any{"pattern": pattern, "params": r.Params()})
		return xeno.Blob(b), nil
	}
}

func decodeEcho(t *testing.T, res *xeno.Response) (string, map[string]string) {
	t.Helper()

	var v struct {
		Pattern string            `json:"pattern"`
		Params  map[string]string `json:"params"`
	}

	require.NoError(t, json.Unmarshal(res.Body, &v))

	return v.Pattern, v.Params
}

func decodeEnvelope(t *testing.T, res *xeno.Response) (string, int) {
	t.Helper()

	var v struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}

	require.NoError(t, json.Unmarshal(res.Body, &v))

	return v.Error, v.Status
}

func newTestRouter(t *testing.T, patterns ...string) *xeno.Router[testCtx] {
	t.Helper()

	rt := xeno.NewRouter[testCtx](xeno.NewRenderer())
	for _, p := range patterns {
		require.NoError(t, rt.AddRoute(xeno.MethodGet, p, echoPattern(p)))
	}

	return rt
}

func TestRouterPathParams(t *testing.T) {
	rt := newTestRouter(t, "/users/:id")

	var seen string
	require.NoError(t, rt.AddRoute(xeno.MethodPost, "/users/:id", xeno.HandlerFunc[testCtx](
		func(_ testCtx, r *xeno.Request) (*xeno.Response, error) {
			seen = r.Param("id")
			return xeno.NoContent(http.StatusNoContent), nil
		})))

	res := rt.Handle(testCtx{}, xeno.NewRequest("GET", "/users/123", nil))
	require.Equal(t, http.StatusOK, res.Status)

	pattern, params := decodeEcho(t, res)
	assert.Equal(t, "/users/:id", pattern)
	assert.Equal(t, map[string]string{"id": "123"}, params)

	res = rt.Handle(testCtx{}, xeno.NewRequest("POST", "/users/abc", nil))
	require.Equal(t, http.StatusNoContent, res.Status)
	assert.Equal(t, "abc", seen)
}

func TestRouterNotFoundAndMethodNotAllowed(t *testing.T) {
	rt := newTestRouter(t, "/users/:id")

	res := rt.Handle(testCtx{}, xeno.NewRequest("GET", "/nope", nil))
	require.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))

	msg, status := decodeEnvelope(t, res)
	assert.Equal(t, "Not Found", msg)
	assert.Equal(t, http.StatusNotFound, status)

	for _, method := range []string{"DELETE", "TRACE"} {
		res = rt.Handle(testCtx{}, xeno.NewRequest(method, "/users/1", nil))
		require.Equal(t, http.StatusMethodNotAllowed, res.Status)

		msg, status = decodeEnvelope(t, res)
		assert.Equal(t, "Method Not Allowed", msg)
		assert.Equal(t, http.StatusMethodNotAllowed, status)
	}
}

func TestRouterPrecedence(t *testing.T) {
	rt := newTestRouter(t,
		"/users/me",
		"/users/:id",
		"/users/:id/posts",
		"/users/me/settings",
		"/static/*path",
		"/static/index.html",
	)

	for _, tt := range []struct {
		path      string
		expPat    string
		expParams map[string]string
	}{
		{"/users/me", "/users/me", nil},
		{"/users/42", "/users/:id", map[string]string{"id": "42"}},
		{"/users/me/posts", "/users/:id/posts", map[string]string{"id": "me"}},
		{"/users/me/settings", "/users/me/settings", nil},
		{"/static/index.html", "/static/index.html", nil},
		{"/static/js/app.js", "/static/*path", map[string]string{"path": "js/app.js"}},
		{"/static", "/static/*path", map[string]string{"path": ""}},
	} {
		t.Run(tt.path, func(t *testing.T) {
			res := rt.Handle(testCtx{}, xeno.NewRequest("GET", tt.path, nil))
			require.Equal(t, http.StatusOK, res.Status)

			pattern, params := decodeEcho(t, res)
			assert.Equal(t, tt.expPat, pattern)
			assert.Equal(t, len(tt.expParams), len(params))
			for k, v := range tt.expParams {
				assert.Equal(t, v, params[k])
			}
		})
	}
}

func TestRouterTrailingSlashAndEmptySegments(t *testing.T) {
	rt := newTestRouter(t, "/a", "/u/:id")

	assert.Equal(t, http.StatusOK, rt.Handle(testCtx{}, xeno.NewRequest("GET", "/a", nil)).Status)
	assert.Equal(t, http.StatusNotFound, rt.Handle(testCtx{}, xeno.NewRequest("GET", "/a/", nil)).Status)
	assert.Equal(t, http.StatusNotFound, rt.Handle(testCtx{}, xeno.NewRequest("GET", "/u/", nil)).Status)
}

func TestRouterRejectsDuplicateRoute(t *testing.T) {
	rt := newTestRouter(t, "/users/:id")

	err := rt.AddRoute(xeno.MethodGet, "/users/:id", echoPattern("again"))
	require.ErrorIs(t, err, xeno.ErrDuplicateRoute)

	err = rt.AddRoute(xeno.MethodGet, "/users/:name/x", echoPattern("conflict"))
	require.ErrorIs(t, err, pathtree.ErrParamConflict)

	err = rt.AddRoute("TRACE", "/users", echoPattern("trace"))
	require.ErrorIs(t, err, xeno.ErrUnsupportedMethod)

	err = rt.AddRoute(xeno.MethodGet, "users", echoPattern("bad"))
	require.ErrorContains(t, err, "failed to parse pattern")

	require.NoError(t, rt.AddRoute(xeno.MethodPut, "/users/:id", echoPattern("put")))
	require.NoError(t, rt.AddRoute("patch", "/users/:id", echoPattern("patch")))

	assert.Equal(t, []xeno.Route{
		{Method: xeno.MethodGet, Pattern: "/users/:id"},
		{Method: xeno.MethodPut, Pattern: "/users/:id"},
		{Method: xeno.MethodPatch, Pattern: "/users/:id"},
	}, rt.Routes())
}

func TestRouterResolveReturnsHandlerErrors(t *testing.T) {
	rt := xeno.NewRouter[testCtx](nil)
	require.NoError(t, rt.AddRoute(xeno.MethodGet, "/fail", xeno.HandlerFunc[testCtx](
		func(testCtx, *xeno.Request) (*xeno.Response, error) {
			return nil, xeno.BadRequest("nope")
		})))

	res, err := rt.Resolve(testCtx{}, xeno.NewRequest("GET", "/fail", nil))
	require.Nil(t, res)
	require.Equal(t, xeno.KindBadRequest, xeno.AsError(err).Kind())

	res = rt.Handle(testCtx{}, xeno.NewRequest("GET", "/fail", nil))
	require.Equal(t, http.StatusBadRequest, res.Status)

	msg, _ := decodeEnvelope(t, res)
	assert.Equal(t, "Bad Request", msg)
}

func TestRouterRecoversPanics(t *testing.T) {
	logs := xeno.NewTestLogger(t)
	renderer := xeno.NewRenderer()
	renderer.Logger = logs

	rt := xeno.NewRouter[testCtx](renderer)
	require.NoError(t, rt.AddRoute(xeno.MethodGet, "/panic", xeno.HandlerFunc[testCtx](
		func(testCtx, *xeno.Request) (*xeno.Response, error) {
			panic("boom")
		})))
	require.NoError(t, rt.AddRoute(xeno.MethodGet, "/nil", xeno.HandlerFunc[testCtx](
		func(testCtx, *xeno.Request) (*xeno.Response, error) {
			return nil, nil //nolint:nilnil
		})))
	require.NoError(t, rt.AddRoute(xeno.MethodGet, "/plain", xeno.HandlerFunc[testCtx](
		func(testCtx, *xeno.Request) (*xeno.Response, error) {
			return nil, errors.New("db down")
		})))

	for _, path := range []string{"/panic", "/nil", "/plain"} {
		res := rt.Handle(testCtx{}, xeno.NewRequest("GET", path, nil))
		require.Equal(t, http.StatusInternalServerError, res.Status)

		msg, _ := decodeEnvelope(t, res)
		assert.Equal(t, "Internal Server Error", msg)
	}

	assert.Equal(t, int64(1), logs.NumLogRecoveredPanic)
	assert.Equal(t, int64(3), logs.NumLogTranslatedError)
}
