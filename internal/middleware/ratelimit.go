package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/ratelimit"
	"github.com/convoly/chat-api/internal/request"
	"github.com/convoly/chat-api/internal/telemetry"
)

// ChatPathPrefix scopes the stricter feature pool. Requests under this prefix
// are checked only against the chat pool; everything else only against the
// general pool. The two ceilings are never summed or shared.
const ChatPathPrefix = "/api/v1/ai/chat"

// RateLimit creates the admission-throttle middleware. It keys counters on
// the Identity the verifier attached, falling back to the client network
// address, and enforces the fixed-window quota for the pool the path belongs
// to. Informational headers are set on every checked request; rejections get
// a structured 429. The throttle never fails for legitimate traffic.
func RateLimit(store *ratelimit.Store, sink telemetry.Sink, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAdmission(r) {
				next.ServeHTTP(w, r)
				return
			}

			subject := ""
			if ident := request.IdentityFromContext(r); ident != nil {
				subject = ident.ID
			} else {
				subject = request.ClientIP(r)
			}

			pool := ratelimit.PoolGeneral
			if strings.HasPrefix(r.URL.Path, ChatPathPrefix) {
				pool = ratelimit.PoolChat
			}

			res := store.Check(pool, subject)

			// The window header is whole seconds, rounded up so a sub-second
			// window never reads as 0.
			windowSecs := int(math.Ceil(res.Window.Seconds()))
			if windowSecs < 1 {
				windowSecs = 1
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			w.Header().Set("X-RateLimit-Window", strconv.Itoa(windowSecs))

			// Fire-and-forget: the decision record is emitted off the request
			// path with a detached context, so a slow or unavailable sink
			// never blocks or fails the response.
			decision := telemetry.Decision{
				Key:     res.Key,
				Subject: subject,
				Pool:    string(res.Pool),
				Path:    logpkg.SanitizePath(r.URL.Path),
				Count:   res.Count,
				Limit:   res.Limit,
				Allowed: res.Allowed,
				At:      time.Now().UTC(),
			}
			go sink.Emit(context.Background(), decision)

			logger.Debug("admission_check",
				zap.String("key", res.Key),
				zap.String("pool", string(res.Pool)),
				zap.Int("count", res.Count),
				zap.Int("limit", res.Limit),
				zap.Bool("allowed", res.Allowed),
			)

			if !res.Allowed {
				retryAfter := res.RetryAfter(time.Now())
				retrySecs := int(math.Ceil(retryAfter.Seconds()))
				if retrySecs < 1 {
					retrySecs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retrySecs))
				writeJSON(w, http.StatusTooManyRequests, RateLimitResponse{
					Error:   http.StatusText(http.StatusTooManyRequests),
					Code:    "RATE_LIMITED",
					Message: fmt.Sprintf("rate limit exceeded, retry in %ds", retrySecs),
					Details: RateLimitDetails{
						Limit:     res.Limit,
						WindowMS:  res.Window.Milliseconds(),
						ResetTime: res.ResetAt.Unix(),
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
