package middleware

import (
	"context"
	"strings"

	"github.com/advdv/xeno"
	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth requires a valid JWT in the Authorization header. Requests without a bearer token, or with a token
// that fails verification, are rejected as unauthorized. The verified claims are available through [Claims].
func BearerAuth[C any](keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) xeno.Middleware[C] {
	parser := jwt.NewParser(opts...)

	return xeno.BeforeFunc[C](func(_ C, r *xeno.Request) error {
		header := r.Header.Get("Authorization")

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return xeno.Unauthorized()
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc)
		if err != nil || !token.Valid {
			return xeno.Unauthorized()
		}

		r.WithContext(context.WithValue(r.Context(), ctxKeyClaims, claims))

		return nil
	})
}

// Claims returns the claims verified by [BearerAuth].
func Claims(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims).(jwt.MapClaims)
	return claims, ok
}

// Subject returns the "sub" claim verified by [BearerAuth], or an empty string.
func Subject(ctx context.Context) string {
	claims, ok := Claims(ctx)
	if !ok {
		return ""
	}

	sub, _ := claims.GetSubject()

	return sub
}
