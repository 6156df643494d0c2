package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/auth"
)

type subjectKey struct{}

// RequireScope validates the bearer control token and checks it grants scope.
// A nil token service disables the check; the service then trusts its network.
func RequireScope(tokens *auth.TokenService, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tokens == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			claims, err := tokens.Authorize(tokenString, scope)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrMissingScope):
					models.NewForbidden(GetRequestID(r.Context()), "token does not grant "+scope).
						WithInstance(r.URL.Path).
						Write(w)
				case errors.Is(err, auth.ErrTokenExpired):
					writeUnauthorized(w, r, "control token has expired")
				default:
					writeUnauthorized(w, r, "invalid control token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized lives here rather than in response to avoid an import cycle.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	models.NewUnauthorized(GetRequestID(r.Context()), detail).
		WithInstance(r.URL.Path).
		Write(w)
}

// GetSubject returns the token subject, empty for anonymous requests.
func GetSubject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return ""
}
