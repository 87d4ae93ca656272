package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/convoly/chat-api/internal/models"
)

type contextKey string

const (
	identityContextKey  contextKey = "identity"
	requestIDContextKey contextKey = "request_id"
)

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithIdentity returns a context with the identity attached. The identity is
// stored by value so downstream handlers cannot mutate what the verifier
// established.
func WithIdentity(ctx context.Context, ident models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// IdentityFromContext returns a copy of the identity attached to the request,
// or nil if the request was not authenticated (excluded path or missing auth).
func IdentityFromContext(r *http.Request) *models.Identity {
	return IdentityFrom(r.Context())
}

// IdentityFrom is like IdentityFromContext but works on a bare context.
func IdentityFrom(ctx context.Context) *models.Identity {
	ident, ok := ctx.Value(identityContextKey).(models.Identity)
	if !ok {
		return nil
	}
	return &ident
}

// WithID returns a context carrying the request ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// ID returns the request ID from the context, or empty if none was assigned.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
