package middleware

import (
	"net/http"

	"github.com/convoly/chat-api/internal/models"
	"github.com/convoly/chat-api/internal/request"
)

// SetIdentityInContext attaches an identity to the request context.
// Intended for tests that exercise handlers behind the auth middleware.
func SetIdentityInContext(r *http.Request, identity models.Identity) *http.Request {
	return r.WithContext(request.WithIdentity(r.Context(), identity))
}
