package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package. Only
// this package can create a key of this type, so no other package can read
// or shadow the principal stored in a request context.
type contextKey string

const principalKey contextKey = "principal"

// RequireAuth enforces authentication on protected routes.
//
// It reads the bearer credential from the Authorization header, verifies it,
// and stores the resulting Principal in the request context. A missing token
// and an invalid token get distinct messages but the same 401 status.
//
// The principal lives only in this request's context; concurrent requests
// each carry their own copy and never observe one another's identity.
// Public routes (registration, login, healthcheck) are simply mounted
// without this middleware.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				writeUnauthorized(w, "No token, access denied")
				return
			}

			principal, err := tokens.Verify(raw)
			if err != nil {
				writeUnauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext retrieves the authenticated principal set by
// RequireAuth. Returns (nil, false) on routes that did not pass through the
// middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// bearerToken extracts the credential from an "Authorization: Bearer <t>"
// header value. Returns "" if the header is absent or the scheme is wrong.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"error":"` + msg + `"}`))
}
