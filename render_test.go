package xeno_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRenderer(t *testing.T) (*xeno.Renderer, *xeno.TestLogger) {
	t.Helper()

	logs := xeno.NewTestLogger(t)
	r := xeno.NewRenderer()
	r.Logger = logs
	r.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600)) }
	r.NewID = func() string { return "req-1" }

	return r, logs
}

func TestRenderEnvelope(t *testing.T) {
	r, logs := fixedRenderer(t)

	res := r.Render(xeno.BadRequest("missing name"))
	require.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "application/json; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "req-1", res.Header.Get(xeno.DefaultRequestIDHeader))
	assert.JSONEq(t, `{"error":"Bad Request","status":400,"timestamp":"2024-01-02T02:04:05Z"}`, string(res.Body))
	assert.Equal(t, int64(0), logs.NumLogTranslatedError)
}

func TestRenderDebugMessages(t *testing.T) {
	r, _ := fixedRenderer(t)
	r.Debug = true

	res := r.Render(xeno.BadRequest("missing name"))
	assert.JSONEq(t, `{"error":"Bad request: missing name","status":400,"timestamp":"2024-01-02T02:04:05Z"}`,
		string(res.Body))

	res = r.Render(errors.New("db down"))
	assert.JSONEq(t, `{"error":"Internal server error: db down","status":500,"timestamp":"2024-01-02T02:04:05Z"}`,
		string(res.Body))

	r.Debug = false
	res = r.Render(errors.New("db down"))
	assert.JSONEq(t, `{"error":"Internal Server Error","status":500,"timestamp":"2024-01-02T02:04:05Z"}`,
		string(res.Body))
}

func TestRenderServerErrorsAreLogged(t *testing.T) {
	r, logs := fixedRenderer(t)

	r.Render(errors.New("db down"))
	r.Render(xeno.NotFound())
	r.Render(xeno.Internal("disk full"))

	assert.Equal(t, int64(2), logs.NumLogTranslatedError)
}

func TestRenderStatus(t *testing.T) {
	r, _ := fixedRenderer(t)

	res := r.RenderStatus(xeno.CodeMethodNotAllowed)
	require.Equal(t, http.StatusMethodNotAllowed, res.Status)
	assert.JSONEq(t, `{"error":"Method Not Allowed","status":405,"timestamp":"2024-01-02T02:04:05Z"}`,
		string(res.Body))

	res = r.RenderStatus(xeno.Code(599))
	assert.JSONEq(t, `{"error":"Unknown","status":599,"timestamp":"2024-01-02T02:04:05Z"}`, string(res.Body))
}

func TestRenderWithoutRequestIDHeader(t *testing.T) {
	r, _ := fixedRenderer(t)
	r.RequestIDHeader = ""

	res := r.Render(xeno.NotFound())
	assert.Empty(t, res.Header.Get(xeno.DefaultRequestIDHeader))
}

func TestRenderRequestEchoesRequestID(t *testing.T) {
	r, _ := fixedRenderer(t)

	req := xeno.NewRequest("GET", "/", nil)
	req.Header.Set(xeno.DefaultRequestIDHeader, "client-abc")
	assert.Equal(t, "client-abc", r.RenderRequest(req, xeno.NotFound()).Header.Get(xeno.DefaultRequestIDHeader))

	res := r.RenderRequest(xeno.NewRequest("GET", "/", nil), xeno.NotFound())
	assert.Equal(t, "req-1", res.Header.Get(xeno.DefaultRequestIDHeader))

	r.RequestIDHeader = ""
	assert.Empty(t, r.RenderRequest(req, xeno.NotFound()).Header.Get(xeno.DefaultRequestIDHeader))
}

func TestRenderDefaultRequestIDIsUUID(t *testing.T) {
	res := xeno.NewRenderer().Render(xeno.NotFound())
	assert.Len(t, res.Header.Get(xeno.DefaultRequestIDHeader), 36)
}

func TestRenderMarshalFailureFallback(t *testing.T) {
	r, _ := fixedRenderer(t)
	r.Marshal = func(any) ([]byte, error) { return nil, errors.New("nope") }

	res := r.Render(xeno.NotFound())
	require.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, "text/plain; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "Internal Server Error", string(res.Body))
}
