package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jaysurani18/smart-society/internal/metrics"
	"github.com/jaysurani18/smart-society/internal/store"

	"go.uber.org/zap"
)

// RateLimiter fixed-window counter per client IP backed by the KV store.
// Traffic passes when the store is unreachable.
func RateLimiter(kv store.KV, limit int, window time.Duration, keyPrefix string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if kv == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + keyPrefix + ":ip:" + clientIP(r)

			count, err := kv.Incr(r.Context(), key, window)
			if err != nil {
				logger.Warn("Rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if count > int64(limit) {
				retry := window
				if ttl, err := kv.TTL(r.Context(), key); err == nil && ttl > 0 {
					retry = ttl
				}
				metrics.RecordRateLimited()
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
				writeMessage(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
