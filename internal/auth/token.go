// Package auth carries the visitor's bearer token from the incoming request to the cinema API
// and derives the "authorized" predicate the booking screens depend on.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const tokenKey ctxKey = "auth_token"

// ContextWithToken returns a context carrying the bearer token.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the bearer token stored by ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok && token != ""
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// IsAuthorized reports whether token can be presented to the cinema API.
// Any non-empty token counts; when it is a JWT carrying an exp claim, it must not be expired.
// The signature is not verified here, the cinema API does that.
func IsAuthorized(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// opaque token
		return true
	}

	if claims.ExpiresAt == nil {
		return true
	}
	return now.Before(claims.ExpiresAt.Time)
}

// Authorized is IsAuthorized applied to the token carried by ctx.
func Authorized(ctx context.Context, now time.Time) bool {
	token, _ := TokenFromContext(ctx)
	return IsAuthorized(token, now)
}
