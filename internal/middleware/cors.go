package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// AllowedOrigins parses a comma-separated origin list, trimming whitespace
// and dropping duplicates. Defaults to the local frontend when empty.
func AllowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000"}
	seen := map[string]bool{origins[0]: true}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		origins = append(origins, trimmed)
	}
	return origins
}

// CORS creates CORS middleware for the configured frontend origins.
// Preflight OPTIONS requests are answered here and bypass the gateway
// entirely (they carry no credentials to verify).
func CORS(frontendURL string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   AllowedOrigins(frontendURL),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-RateLimit-Window", RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
