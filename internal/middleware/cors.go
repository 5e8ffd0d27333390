package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers preflights and tags responses for the browser frontend,
// which is served from a different origin than this API. allowedOrigin ""
// means same-origin deployment and disables the headers entirely.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
}
