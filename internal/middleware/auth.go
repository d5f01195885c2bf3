package middleware

import (
	"net/http"
	"strings"

	"github.com/pmsstreaming/storefront/internal/auth"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Authenticate is a middleware that parses an optional Bearer token and stores
// the authenticated user ID in the context. Requests without a token, or with
// an invalid one, pass through unauthenticated; handlers that require a user
// check for an empty ID and respond 401 themselves.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				claims, err := validator.ValidateToken(token)
				if err == nil && claims.Type == auth.TokenTypeAccess {
					ctx := SetUserID(r.Context(), claims.Subject)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
