package ratelimiter

import (
	"net/http"

	"gitlab.com/servicemarket/marketplace-api/internal/feature"
	"gitlab.com/servicemarket/marketplace-api/internal/httperrors"
	"gitlab.com/servicemarket/marketplace-api/internal/logging"
	"gitlab.com/servicemarket/marketplace-api/internal/request"
)

const headerXForwardedFor = "X-Forwarded-For"

// SourceIPLimiter returns middleware for rate-limiting clients based on their IP.
// Rejected requests are answered with 429 by normalizer, unless enforcement
// is switched off with feature.EnforceIPRateLimits.
func (rl *RateLimiter) SourceIPLimiter(handler http.Handler, normalizer *httperrors.Normalizer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sourceIP := request.GetRemoteAddrWithoutPort(r)
		if !rl.SourceIPAllowed(sourceIP) {
			enforced := feature.EnforceIPRateLimits.Enabled()
			rl.logSourceIP(r, sourceIP, enforced)

			if enforced {
				rl.sourceIPBlockedCount.Inc()
				normalizer.ServeError(w, r, httperrors.New(http.StatusTooManyRequests, "Too many requests, please try again later."))
				return
			}
		}

		handler.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) logSourceIP(r *http.Request, sourceIP string, enforced bool) {
	logging.LogRequest(r).WithFields(map[string]interface{}{
		"rate_limiter_enforced":         enforced,
		"handler":                       "source_ip_rate_limiter",
		"remote_addr":                   r.RemoteAddr,
		"source_ip":                     sourceIP,
		"x_forwarded_for":               r.Header.Get(headerXForwardedFor),
		"rate_limiter_limit_per_second": rl.sourceIPLimitPerSecond,
		"rate_limiter_burst_size":       rl.sourceIPBurstSize,
	}).Info("source IP hit rate limit")
}
