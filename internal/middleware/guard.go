package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/models"
	"github.com/convoly/chat-api/internal/request"
	"github.com/convoly/chat-api/internal/services/token"
)

// RequireRole gates a route to callers whose attached Identity carries the
// given role. Requests with no Identity at all (excluded paths, or a
// misconfigured route ordering) fail closed with a 401.
func RequireRole(role models.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := request.IdentityFromContext(r)
			if ident == nil {
				writeAuthError(w, r, string(token.CodeUnauthenticated), "authentication required")
				return
			}
			if ident.Role != role {
				logger.Warn("role_check_failed",
					zap.String("subject", logpkg.SanitizeSubject(ident.ID)),
					zap.String("required_role", string(role)),
					zap.String("role", string(ident.Role)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				writeForbidden(w, r, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
