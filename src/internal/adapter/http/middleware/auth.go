package middleware

import (
	"context"
	"net/http"

	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator resolves basic-auth credentials to an authenticated
// principal.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Principal, error)
}

func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="mani-banking"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := auth.Authenticate(r.Context(), email, password)
			if err != nil {
				logger.Info("auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "invalid_or_missing",
				})
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects requests whose principal lacks elevated privilege.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok || !principal.IsAdmin {
			logger.Info("auth middleware admin privilege denied", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(domain.Principal)
	return principal, ok
}
