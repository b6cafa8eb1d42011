package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// CookieName is the cookie the hosted backend's browser client stores the
// access token in.
const CookieName = "sb-access-token"

type contextKey string

const (
	claimsKey contextKey = "claims"
	tokenKey  contextKey = "token"
)

// WithSession returns a context carrying a verified token and its claims.
func WithSession(ctx context.Context, token string, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, tokenKey, token)
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// TokenFromContext returns the verified raw access token, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// TokenFromRequest extracts an access token from the Authorization header
// or, failing that, the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionMiddleware verifies the request's access token, if any, and adds
// the session to the context. Requests without a valid token pass through
// anonymously. With an empty secret no token is ever trusted.
func SessionMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if secret == "" || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := ValidateToken(secret, token)
			if err != nil {
				slog.Warn("ignoring invalid access token", "error", err, "remote", r.RemoteAddr)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), token, claims)))
		})
	}
}
