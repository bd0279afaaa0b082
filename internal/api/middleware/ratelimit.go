package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/ratelimit"
)

// RateLimit enforces the per-caller request ceiling. Authenticated requests
// are keyed by client ID, anonymous ones by remote address. Rejected requests
// are answered here and never reach the handler chain below, so they leave no
// usage records behind. If the limiter itself fails the request is admitted;
// an unavailable limiter must not take the API down with it.
func RateLimit(limiter ratelimit.Limiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := "addr:" + remoteHost(r)
			if client := GetClient(r.Context()); client != nil {
				identity = "client:" + client.ID
			}

			decision, err := limiter.Allow(r.Context(), identity)
			if err != nil {
				logger.Warn().Err(err).Msg("rate limiter unavailable, admitting request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision.RetryAfter)))
				response.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// remoteHost strips the port from RemoteAddr. RealIP runs earlier in the
// chain, so behind a proxy this is already the forwarded client address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds rounds up to whole seconds, with a floor of one so
// clients never retry immediately.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
