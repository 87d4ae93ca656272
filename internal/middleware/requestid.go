package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/convoly/chat-api/internal/request"
)

// RequestIDHeader is the header used to propagate request ids from and to
// clients and proxies.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, honoring one supplied by a trusted
// proxy. The id is echoed on the response and carried in the context for
// error bodies and log correlation.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := request.WithID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
