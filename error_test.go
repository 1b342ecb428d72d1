package xeno_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/advdv/xeno"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	for _, tt := range []struct {
		err     *xeno.Error
		code    xeno.Code
		safe    string
		debug   string
		expKind xeno.Kind
	}{
		{xeno.NotFound(), xeno.CodeNotFound, "Not Found", "Not found", xeno.KindNotFound},
		{xeno.BadRequest("no id"), xeno.CodeBadRequest, "Bad Request", "Bad request: no id", xeno.KindBadRequest},
		{xeno.Internal("db down"), xeno.CodeInternalServerError, "Internal Server Error",
			"Internal server error: db down", xeno.KindInternal},
		{xeno.Internal(""), xeno.CodeInternalServerError, "Internal Server Error",
			"Internal server error", xeno.KindInternal},
		{xeno.Unauthorized(), xeno.CodeUnauthorized, "Unauthorized", "Unauthorized", xeno.KindUnauthorized},
		{xeno.Forbidden(), xeno.CodeForbidden, "Forbidden", "Forbidden", xeno.KindForbidden},
		{xeno.PayloadTooLarge(), xeno.CodeRequestEntityTooLarge, "Request Entity Too Large",
			"Request entity too large", xeno.KindPayloadTooLarge},
		{xeno.RequestTimeout(), xeno.CodeRequestTimeout, "Request Timeout", "Request timeout", xeno.KindRequestTimeout},
		{xeno.UnprocessableEntity("name too long"), xeno.CodeUnprocessableEntity, "Unprocessable Entity",
			"Unprocessable entity: name too long", xeno.KindUnprocessableEntity},
		{xeno.WrapJSON(errors.New("unexpected end")), xeno.CodeBadRequest, "Invalid JSON",
			"JSON parse error: unexpected end", xeno.KindJSON},
		{xeno.WrapProtocol(errors.New("connection reset")), xeno.CodeBadRequest, "HTTP Error",
			"HTTP error: connection reset", xeno.KindProtocol},
	} {
		t.Run(tt.debug, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.code, xeno.CodeOf(tt.err))
			assert.Equal(t, tt.safe, tt.err.SafeMessage())
			assert.Equal(t, tt.debug, tt.err.Error())
			assert.Equal(t, tt.expKind, tt.err.Kind())
		})
	}

	var syntaxErr *json.SyntaxError
	require.ErrorAs(t, xeno.WrapJSON(json.Unmarshal([]byte("{"), new(any))), &syntaxErr)
}

func TestAsError(t *testing.T) {
	require.Nil(t, xeno.AsError(nil))

	xerr := xeno.Forbidden()
	assert.Same(t, xerr, xeno.AsError(fmt.Errorf("handler failed: %w", xerr)))
	assert.Equal(t, xeno.CodeForbidden, xeno.CodeOf(errors.Wrap(xerr, "wrapped")))

	plain := errors.New("something went wrong")
	folded := xeno.AsError(plain)
	assert.Equal(t, xeno.KindInternal, folded.Kind())
	assert.Equal(t, "something went wrong", folded.Detail())
	assert.ErrorIs(t, folded, plain)
	assert.Equal(t, xeno.CodeUnknown, xeno.CodeOf(plain))

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	timeout := xeno.AsError(errors.Wrap(ctx.Err(), "query"))
	assert.Equal(t, xeno.KindRequestTimeout, timeout.Kind())
	assert.Equal(t, xeno.CodeRequestTimeout, timeout.Code())
}
