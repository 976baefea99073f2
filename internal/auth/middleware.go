package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the caller.
type contextKey string

const callerKey contextKey = "caller"

// CookieName is the HttpOnly cookie the web client stores the session token in.
const CookieName = "token"

// RequireAuth rejects requests without a valid token with 401 and stores the Caller in
// the request context otherwise.
//
// The token is read from the "token" cookie (browsers) or an "Authorization: Bearer"
// header (the explore CLI and other API clients).
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := extractCaller(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
		})
	}
}

// OptionalAuth attaches the Caller when a valid token is present and lets anonymous
// requests through unchanged.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller, err := extractCaller(r, tokens); err == nil {
				r = r.WithContext(ContextWithCaller(r.Context(), caller))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithCaller returns a copy of ctx carrying c.
func ContextWithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFromContext returns the authenticated caller, or (Caller{}, false) for
// anonymous requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok && !c.IsZero()
}

var errNoToken = errors.New("auth: no token")

// extractCaller prefers the Authorization header over the cookie when both are sent.
func extractCaller(r *http.Request, tokens *TokenService) (Caller, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return Caller{}, errNoToken
		}
		return tokens.Validate(strings.TrimSpace(token))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Caller{}, errNoToken
	}
	return tokens.Validate(cookie.Value)
}
