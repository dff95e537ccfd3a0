package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/keygate/keygate/internal/service"
)

type contextKeyAuth string

// PrincipalKey is the context key for the authenticated admin principal.
const PrincipalKey contextKeyAuth = "auth_principal"

// RequireAdmin gates privileged routes behind a bearer session token. The
// gate fails closed with a deliberate status split:
//
//   - no Authorization header at all → 401 (no credentials presented)
//   - a token that is malformed, mis-signed, or expired → 403 (credentials
//     presented but rejected)
//
// On success the decoded Principal is attached to the request context for
// downstream authorization decisions.
func RequireAdmin(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization required")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				writeAuthError(w, http.StatusForbidden, "Invalid authorization header")
				return
			}

			principal, err := authSvc.ValidateToken(token)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns nil for unauthenticated requests.
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(PrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually construct JSON to avoid an import cycle with the handler package.
	w.Write([]byte(`{"error":{"code":` + strconv.Itoa(status) + `,"message":"` + message + `"}}`))
}
