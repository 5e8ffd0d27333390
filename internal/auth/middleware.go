package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the claims we store on a request.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth enforces authentication on protected routes.
//
// It extracts the bearer token from the Authorization header, validates it,
// and stores the decoded claims in the request context. Missing or invalid
// tokens stop the chain with 401; an expired token gets its own message so
// the frontend can prompt a re-login instead of showing a generic failure.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, authErrorMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole composes on top of RequireAuth and rejects callers whose role
// claim does not match. The decision itself lives in Allowed — a pure
// (claims, role) function — so the rule is testable without HTTP plumbing.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				// RequireRole mounted without RequireAuth is a wiring bug,
				// but fail closed rather than panic.
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !Allowed(claims, role) {
				writeAuthError(w, http.StatusForbidden, fmt.Sprintf("%s role required", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext retrieves the authenticated caller's claims.
// Returns (nil, false) on routes without RequireAuth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractClaims reads and validates the "Authorization: Bearer <jwt>" header.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errors.New("auth: missing Authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, ErrTokenInvalid
	}

	return tokens.Validate(strings.TrimSpace(token))
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid token"
	default:
		return "authentication required"
	}
}

// writeAuthError emits the same {success,message} envelope the handlers use.
// Hand-rolled here to keep the auth package free of a handler dependency.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}
