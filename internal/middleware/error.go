package middleware

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/request"
)

// ErrorHandler creates panic-recovery middleware. Panic details are logged
// server-side and never exposed to the client.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
						zap.String("req_id", request.ID(r.Context())),
					)
					writeJSON(w, http.StatusInternalServerError, AuthErrorResponse{
						Error:   http.StatusText(http.StatusInternalServerError),
						Message: "an unexpected error occurred",
						Code:    "INTERNAL",
						ReqID:   request.ID(r.Context()),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
