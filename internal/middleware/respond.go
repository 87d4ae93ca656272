package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/convoly/chat-api/internal/request"
)

// AuthErrorResponse is the body returned for every 401 and 403.
type AuthErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	ReqID   string `json:"req_id"`
}

// RateLimitDetails carries the pool parameters on a 429.
type RateLimitDetails struct {
	Limit     int   `json:"limit"`
	WindowMS  int64 `json:"window_ms"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimitResponse is the body returned for every 429.
type RateLimitResponse struct {
	Error   string           `json:"error"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Details RateLimitDetails `json:"details"`
}

// writeAuthError terminates the request with a 401 and the structured auth
// error body. No internal error text ever reaches the caller here.
func writeAuthError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, http.StatusUnauthorized, AuthErrorResponse{
		Error:   http.StatusText(http.StatusUnauthorized),
		Message: message,
		Code:    code,
		ReqID:   request.ID(r.Context()),
	})
}

// writeForbidden terminates the request with a 403.
func writeForbidden(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, http.StatusForbidden, AuthErrorResponse{
		Error:   http.StatusText(http.StatusForbidden),
		Message: message,
		Code:    "FORBIDDEN",
		ReqID:   request.ID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding these fixed-shape bodies cannot realistically fail; the header
	// is already written, so there is nothing useful to do with an error.
	_ = json.NewEncoder(w).Encode(body)
}
