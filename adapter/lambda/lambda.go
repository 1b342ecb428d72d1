// Package lambda serves a xeno application from AWS Lambda. It accepts API Gateway REST (v1) proxy events, HTTP API
// (v2) events and Function URL events.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/advdv/xeno"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Adapter converts Lambda events into requests and responses back into the event's response shape.
type Adapter struct {
	app xeno.Dispatcher
}

// New creates an adapter for app.
func New(app xeno.Dispatcher) *Adapter {
	return &Adapter{app: app}
}

// Start hands the adapter to the Lambda runtime. It does not return.
func (a *Adapter) Start() {
	lambda.Start(a.Handler())
}

// Handler returns the function registered with the Lambda runtime.
func (a *Adapter) Handler() func(ctx context.Context, event json.RawMessage) (any, error) {
	return a.Invoke
}

// probe holds the fields that tell the event shapes apart.
type probe struct {
	HTTPMethod     string `json:"httpMethod"`
	RequestContext struct {
		DomainName string `json:"domainName"`
		HTTP       struct {
			Method string `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// Invoke handles one event. Events that are not HTTP events are answered with a bad request envelope in the
// Function URL response shape.
func (a *Adapter) Invoke(ctx context.Context, event json.RawMessage) (any, error) {
	var p probe
	if err := json.Unmarshal(event, &p); err != nil {
		return toFunctionURLResponse(a.app.Render(xeno.WrapJSON(err))), nil
	}

	// the request context is done once the response is converted
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	switch {
	case p.HTTPMethod != "":
		var ev events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode REST API event")
		}

		return toProxyResponse(a.dispatch(fromProxyRequest(ctx, ev))), nil
	case p.RequestContext.HTTP.Method != "" && strings.Contains(p.RequestContext.DomainName, ".lambda-url."):
		var ev events.LambdaFunctionURLRequest
		if err := json.Unmarshal(event, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode Function URL event")
		}

		return toFunctionURLResponse(a.dispatch(fromV2(ctx, ev.RequestContext.HTTP.Method, ev.RawPath,
			ev.RawQueryString, ev.Headers, ev.Cookies, ev.Body, ev.IsBase64Encoded))), nil
	case p.RequestContext.HTTP.Method != "":
		var ev events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(event, &ev); err != nil {
			return nil, errors.Wrap(err, "failed to decode HTTP API event")
		}

		return toV2Response(a.dispatch(fromV2(ctx, ev.RequestContext.HTTP.Method, ev.RawPath,
			ev.RawQueryString, ev.Headers, ev.Cookies, ev.Body, ev.IsBase64Encoded))), nil
	default:
		return toFunctionURLResponse(a.app.Render(xeno.BadRequest("unsupported event type"))), nil
	}
}

func (a *Adapter) dispatch(req *xeno.Request, err error) *xeno.Response {
	if err != nil {
		return a.app.Render(err)
	}

	return a.app.Handle(req)
}

func fromProxyRequest(ctx context.Context, ev events.APIGatewayProxyRequest) (*xeno.Request, error) {
	body, err := decodeBody(ev.Body, ev.IsBase64Encoded)
	if err != nil {
		return nil, err
	}

	req := xeno.NewRequestWithContext(ctx, ev.HTTPMethod, "/", body)
	req.Path = lo.Ternary(ev.Path == "", "/", ev.Path)

	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}

	for k, vs := range ev.MultiValueHeaders {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	query := url.Values{}
	for k, v := range ev.QueryStringParameters {
		query.Set(k, v)
	}

	for k, vs := range ev.MultiValueQueryStringParameters {
		query[k] = vs
	}

	req.RawQuery = query.Encode()

	return req, nil
}

func fromV2(
	ctx context.Context, method, path, query string, headers map[string]string, cookies []string, raw string, b64 bool,
) (*xeno.Request, error) {
	body, err := decodeBody(raw, b64)
	if err != nil {
		return nil, err
	}

	req := xeno.NewRequestWithContext(ctx, method, "/", body)
	req.Path = lo.Ternary(path == "", "/", path)
	req.RawQuery = query

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if len(cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(cookies, "; "))
	}

	return req, nil
}

func decodeBody(raw string, b64 bool) ([]byte, error) {
	if !b64 {
		return []byte(raw), nil
	}

	body, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, xeno.WrapProtocol(errors.Wrap(err, "failed to decode base64 body"))
	}

	return body, nil
}

// encodeBody returns the body as a string, base64 encoding anything that is not text.
func encodeBody(res *xeno.Response) (string, bool) {
	if len(res.Body) == 0 || isText(res.Header.Get("Content-Type")) {
		return string(res.Body), false
	}

	return base64.StdEncoding.EncodeToString(res.Body), true
}

func isText(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mt, "text/") ||
		strings.HasSuffix(mt, "json") ||
		strings.HasSuffix(mt, "xml") ||
		mt == "application/javascript" ||
		mt == "application/x-www-form-urlencoded"
}

// flatHeaders joins repeated header values, leaving out Set-Cookie which has its own field in v2 responses.
func flatHeaders(h http.Header, withCookies bool) map[string]string {
	return lo.MapValues(lo.OmitBy(h, func(k string, _ []string) bool {
		return !withCookies && http.CanonicalHeaderKey(k) == "Set-Cookie"
	}), func(vs []string, _ string) string {
		return strings.Join(vs, ",")
	})
}

func toProxyResponse(res *xeno.Response) events.APIGatewayProxyResponse {
	body, b64 := encodeBody(res)

	return events.APIGatewayProxyResponse{
		StatusCode:        res.Status,
		Headers:           flatHeaders(res.Header, true),
		MultiValueHeaders: res.Header.Clone(),
		Body:              body,
		IsBase64Encoded:   b64,
	}
}

func toV2Response(res *xeno.Response) events.APIGatewayV2HTTPResponse {
	body, b64 := encodeBody(res)

	return events.APIGatewayV2HTTPResponse{
		StatusCode:      res.Status,
		Headers:         flatHeaders(res.Header, false),
		Cookies:         res.Header.Values("Set-Cookie"),
		Body:            body,
		IsBase64Encoded: b64,
	}
}

func toFunctionURLResponse(res *xeno.Response) events.LambdaFunctionURLResponse {
	body, b64 := encodeBody(res)

	return events.LambdaFunctionURLResponse{
		StatusCode:      res.Status,
		Headers:         flatHeaders(res.Header, false),
		Cookies:         res.Header.Values("Set-Cookie"),
		Body:            body,
		IsBase64Encoded: b64,
	}
}
