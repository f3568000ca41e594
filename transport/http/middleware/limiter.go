package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	"hotel/transport/http/response"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"

	bucketDefault = "default"
	bucketAuth    = "auth"

	headerRetryAfter = "Retry-After"
)

// window is a fixed rate limit window stored in the cache.
type window struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"reset_at"`
}

// RateLimit counts requests per client and bucket in fixed windows. Credential endpoints
// under /auth share a tighter bucket when AUTH_MAX_REQUESTS is set. Cache failures let
// the request through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := a.config.App.RateLimiter
			if !limiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			bucket, maxReqs := bucketDefault, limiter.MaxRequests
			if strings.Contains(r.URL.Path, "/auth/") && limiter.AuthMaxRequests > 0 {
				bucket, maxReqs = bucketAuth, limiter.AuthMaxRequests
			}

			now := time.Now().Unix()
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, bucket, a.getClientIP(r), a.getUA(r))

			var current window

			err := a.cache.Get(r.Context(), cacheKey, &current)

			switch {
			case err == nil && current.ResetAt > now:
				current.Count++
			case err == nil || errors.Is(err, cache.Nil):
				current = window{Count: 1, ResetAt: now + int64(limiter.WindowSeconds)}
			default:
				log.Warn().Err(err).Msg("rate limiter cache unavailable")
				next.ServeHTTP(w, r)

				return
			}

			remaining := int(current.ResetAt - now)

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, maxReqs-current.Count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limiter.WindowSeconds))

			if current.Count > maxReqs {
				w.Header().Set(headerRetryAfter, strconv.Itoa(remaining))
				response.WithRequestLimitExceeded(w)

				return
			}

			if err := a.cache.Save(r.Context(), cacheKey, current, max(1, remaining)); err != nil {
				log.Warn().Err(err).Msg("rate limiter failed to store window")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) getUA(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = "unknown"
	}

	return ua
}

func (a *appMiddleware) getClientIP(r *http.Request) string {
	// first hop of X-Forwarded-For is the original client
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
