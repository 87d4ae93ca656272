package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/convoly/chat-api/internal/database"
	logpkg "github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/models"
	"github.com/convoly/chat-api/internal/request"
	"github.com/convoly/chat-api/internal/services/token"
)

// excludedPaths lists the unauthenticated paths: health probe, root info,
// documentation, and the signup webhook from the auth provider. Requests to
// these paths carry no Identity, so anything downstream that requires one
// must fail closed.
var excludedPaths = map[string]struct{}{
	"/":                       {},
	"/healthz":                {},
	"/version":                {},
	"/docs":                   {},
	"/api/v1/webhooks/signup": {},
}

// skipAdmission reports whether the request bypasses both the verifier and
// the throttle: excluded paths and CORS preflight.
func skipAdmission(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	_, ok := excludedPaths[r.URL.Path]
	return ok
}

type identityCacheKey struct{}

// identityCache memoizes subject-to-identity resolution within one request,
// so a second lookup does not repeat the profile-store round trip. It is
// request-scoped and bounded to the single subject actually in play; it must
// never outlive the request.
type identityCache struct {
	mu    sync.Mutex
	bySub map[string]models.Identity
}

func withIdentityCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, identityCacheKey{}, &identityCache{bySub: make(map[string]models.Identity, 1)})
}

// resolveIdentity resolves the role for a verified subject via the profile
// store, consulting the request-scoped cache first.
func resolveIdentity(ctx context.Context, profiles database.ProfileStore, claims *models.TokenClaims) (models.Identity, error) {
	cache, _ := ctx.Value(identityCacheKey{}).(*identityCache)
	if cache != nil {
		cache.mu.Lock()
		if ident, ok := cache.bySub[claims.Sub]; ok {
			cache.mu.Unlock()
			return ident, nil
		}
		cache.mu.Unlock()
	}

	profile, err := profiles.GetBySubjectID(ctx, claims.Sub)
	if err != nil {
		return models.Identity{}, err
	}

	ident := models.Identity{
		ID:   profile.SubjectID,
		Role: profile.Role,
	}
	if claims.Email != "" {
		email := claims.Email
		ident.Email = &email
	} else if profile.Email != nil {
		email := *profile.Email
		ident.Email = &email
	}

	if cache != nil {
		cache.mu.Lock()
		cache.bySub[claims.Sub] = ident
		cache.mu.Unlock()
	}
	return ident, nil
}

// Auth creates the identity-verification middleware. It runs before any
// route-specific logic and before the throttle: it verifies the bearer
// token, resolves the caller's role, and attaches an immutable Identity to
// the request context. Every failure terminates the request with a 401; an
// Identity is only ever attached after both signature verification and role
// resolution succeed.
func Auth(verifier *token.Verifier, profiles database.ProfileStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAdmission(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, r, string(token.CodeUnauthenticated), "missing authorization header")
				return
			}

			tokenString, err := token.ExtractBearer(authHeader)
			if err != nil {
				writeAuthError(w, r, string(token.CodeOf(err)), token.MessageOf(err))
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				logger.Debug("token_verification_failed",
					zap.String("code", string(token.CodeOf(err))),
					zap.String("token", logpkg.RedactToken(tokenString)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.Error(err),
				)
				writeAuthError(w, r, string(token.CodeOf(err)), token.MessageOf(err))
				return
			}

			ctx = withIdentityCache(ctx)
			ident, err := resolveIdentity(ctx, profiles, claims)
			if err != nil {
				// A verified token with no profile row is a data-integrity
				// problem, not a bad credential. It still fails closed with
				// the same generic body, but the log event is distinct so
				// operators can tell them apart.
				if errors.Is(err, database.ErrProfileNotFound) {
					logger.Warn("profile_not_found_for_verified_token",
						zap.String("subject", logpkg.SanitizeSubject(claims.Sub)),
					)
				} else {
					logger.Error("profile_lookup_failed",
						zap.String("subject", logpkg.SanitizeSubject(claims.Sub)),
						zap.Error(err),
					)
				}
				writeAuthError(w, r, string(token.CodeUnauthenticated), "authentication required")
				return
			}

			ctx = request.WithIdentity(ctx, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
