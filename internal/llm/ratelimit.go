package llm

import (
	"golang.org/x/time/rate"
)

const defaultRateLimit = 60

// newRateLimiter returns a token bucket that allows requestsPerMinute calls per
// minute, with a burst of one minute's worth of requests.
func newRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRateLimit
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute)
}
