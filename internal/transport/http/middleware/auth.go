package middleware

import (
	"context"
	"net/http"

	jwtinfra "github.com/ncetprep/educator-gate/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// SessionCookieName is the identity-provider session cookie.
const SessionCookieName = "edu_session"

// Auth returns middleware that validates the session cookie and injects the
// session claims into the request context.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "no active session")
				return
			}
			claims, err := provider.VerifySession(cookie.Value)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.SessionClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.SessionClaims)
	return c, ok
}
