package lambda_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/advdv/xeno"
	"github.com/advdv/xeno/adapter/lambda"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) *lambda.Adapter {
	t.Helper()

	app := xeno.New(struct{}{}).
		Get("/users/:id", func(_ struct{}, r *xeno.Request) (*xeno.Response, error) {
			return xeno.JSON(map[string]any{
				"id":     r.Param("id"),
				"tags":   r.Query()["tag"],
				"accept": r.Header.Values("Accept"),
				"cookie": r.Header.Get("Cookie"),
			}), nil
		}).
		Post("/blob", func(_ struct{}, r *xeno.Request) (*xeno.Response, error) {
			return xeno.Blob(r.Body).WithHeader("Set-Cookie", "a=1"), nil
		}).
		MustBuild()

	return lambda.New(app)
}

func invoke(t *testing.T, a *lambda.Adapter, event string) any {
	t.Helper()

	out, err := a.Handler()(context.Background(), json.RawMessage(event))
	require.NoError(t, err)

	return out
}

func TestRESTEvent(t *testing.T) {
	out := invoke(t, newAdapter(t), `{
		"httpMethod": "GET",
		"path": "/users/42",
		"headers": {"Accept": "text/html"},
		"multiValueHeaders": {"Accept": ["text/html", "application/json"]},
		"queryStringParameters": {"tag": "b"},
		"multiValueQueryStringParameters": {"tag": ["a", "b"]},
		"body": ""
	}`)

	res, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, res.IsBase64Encoded)
	assert.Equal(t, "application/json; charset=utf-8", res.Headers["Content-Type"])
	assert.Equal(t, []string{"application/json; charset=utf-8"}, res.MultiValueHeaders["Content-Type"])
	assert.JSONEq(t, `{"id":"42","tags":["a","b"],"accept":["text/html","application/json"],"cookie":""}`, res.Body)
}

func TestHTTPAPIEvent(t *testing.T) {
	a := newAdapter(t)

	out := invoke(t, a, `{
		"version": "2.0",
		"rawPath": "/users/7",
		"rawQueryString": "tag=x",
		"cookies": ["s=1", "t=2"],
		"headers": {"accept": "application/json"},
		"requestContext": {"domainName": "abc.execute-api.eu-west-1.amazonaws.com", "http": {"method": "GET", "path": "/users/7"}},
		"isBase64Encoded": false
	}`)

	res, ok := out.(events.APIGatewayV2HTTPResponse)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"id":"7","tags":["x"],"accept":["application/json"],"cookie":"s=1; t=2"}`, res.Body)

	payload := []byte{0x00, 0xff, 0x10}
	out = invoke(t, a, `{
		"version": "2.0",
		"rawPath": "/blob",
		"requestContext": {"domainName": "abc.execute-api.eu-west-1.amazonaws.com", "http": {"method": "POST"}},
		"body": "`+base64.StdEncoding.EncodeToString(payload)+`",
		"isBase64Encoded": true
	}`)

	res, ok = out.(events.APIGatewayV2HTTPResponse)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, res.IsBase64Encoded)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), res.Body)
	assert.Equal(t, []string{"a=1"}, res.Cookies)
	assert.NotContains(t, res.Headers, "Set-Cookie")
}

func TestFunctionURLEvent(t *testing.T) {
	out := invoke(t, newAdapter(t), `{
		"version": "2.0",
		"rawPath": "/nope",
		"requestContext": {"domainName": "xyz.lambda-url.eu-west-1.on.aws", "http": {"method": "GET"}}
	}`)

	res, ok := out.(events.LambdaFunctionURLResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, res.Body, `"error":"Not Found"`)
	assert.Len(t, res.Headers[xeno.DefaultRequestIDHeader], 36)
}

func TestBadBase64Body(t *testing.T) {
	out := invoke(t, newAdapter(t), `{"httpMethod":"POST","path":"/blob","body":"%%%","isBase64Encoded":true}`)

	res, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, res.Body, `"error":"HTTP Error"`)
}

func TestUnsupportedEvent(t *testing.T) {
	for _, event := range []string{`{"Records":[]}`, `[1,2]`} {
		res, ok := invoke(t, newAdapter(t), event).(events.LambdaFunctionURLResponse)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, "application/json; charset=utf-8", res.Headers["Content-Type"])
	}
}
