package handlers

import (
	"net/http"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Root handles GET /
func Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "chat-api",
		"version": Version,
	})
}

// GetVersion handles GET /version
func GetVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// Docs handles GET /docs with a human-oriented route listing.
func Docs(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"routes": []map[string]string{
			{"method": "GET", "path": "/healthz", "description": "health probe, add ?mode=extended for dependency checks"},
			{"method": "GET", "path": "/version", "description": "build version"},
			{"method": "GET", "path": "/api/v1/me", "description": "authenticated caller's identity"},
			{"method": "POST", "path": "/api/v1/ai/chat", "description": "chat endpoint, stricter admission pool"},
			{"method": "GET", "path": "/rate-limit/stats", "description": "admission throttle stats, admin only"},
			{"method": "POST", "path": "/api/v1/webhooks/signup", "description": "auth provider signup webhook"},
		},
	})
}
