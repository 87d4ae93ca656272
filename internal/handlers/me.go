package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/convoly/chat-api/internal/middleware"
	"github.com/convoly/chat-api/internal/request"
)

// MeResponse echoes the caller's resolved identity.
type MeResponse struct {
	ID    string  `json:"id"`
	Email *string `json:"email,omitempty"`
	Role  string  `json:"role"`
}

// GetMe handles GET /api/v1/me. The auth middleware guarantees an identity
// is attached on this route; the nil check is a fail-closed backstop that
// keeps the 401 contract of the verifier.
func GetMe(w http.ResponseWriter, r *http.Request) {
	ident := request.IdentityFromContext(r)
	if ident == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(middleware.AuthErrorResponse{
			Error:   http.StatusText(http.StatusUnauthorized),
			Message: "authentication required",
			Code:    "UNAUTHENTICATED",
			ReqID:   request.ID(r.Context()),
		})
		return
	}
	respondJSON(w, http.StatusOK, MeResponse{
		ID:    ident.ID,
		Email: ident.Email,
		Role:  string(ident.Role),
	})
}
