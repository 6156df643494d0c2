package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/nimbusview/nimbus/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// PerMinute builds a one-minute window of n requests.
func PerMinute(n int) RateLimitConfig {
	return RateLimitConfig{RequestLimit: n, WindowLength: time.Minute}
}

// LookupRateLimit applies to the ad-hoc weather lookup, which spends provider
// quota on every call.
var LookupRateLimit = PerMinute(20)

// RateLimitByIP limits by client IP. Run chi's RealIP first so proxies are
// honored.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(cfg)),
	)
}

// RateLimitBySubject limits by control token subject, falling back to the
// client IP for anonymous requests.
func RateLimitBySubject(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySubjectOrIP),
		httprate.WithLimitHandler(limitExceeded(cfg)),
	)
}

func keyBySubjectOrIP(r *http.Request) (string, error) {
	if subject := GetSubject(r.Context()); subject != "" {
		return "sub:" + subject, nil
	}
	return httprate.KeyByRealIP(r)
}

// limitExceeded writes a 429 problem. httprate does not expose the reset time,
// so Retry-After is the full window.
func limitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(cfg.WindowLength.Seconds()))

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.").
			WithInstance(r.URL.Path).
			Write(w)
	}
}
