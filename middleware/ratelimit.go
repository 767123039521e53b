package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RateLimiter is a Redis-backed fixed-window limiter for the HTTP layer
// (the counter's expiry is set when the key is created and never extended),
// generalizing the teacher's in-memory per-key limiter to a shared store so
// counts survive process restarts and are correct across replicas.
type RateLimiter struct {
	logger  zerolog.Logger
	rdb     *redis.Client
	limit   int
	window  time.Duration
	enabled bool
}

// NewRateLimiter builds a rate limiter enforcing limit requests per window.
func NewRateLimiter(logger zerolog.Logger, rdb *redis.Client, limit int, window time.Duration, enabled bool) *RateLimiter {
	return &RateLimiter{logger: logger, rdb: rdb, limit: limit, window: window, enabled: enabled}
}

// Handler is the chi-compatible middleware function.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		key := TenantID(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		count, ttl, err := rl.incr(r.Context(), "rl:"+key)
		if err != nil {
			// Availability preferred over strict enforcement for the
			// counter read, per the intake rate limit's stated policy.
			rl.logger.Warn().Err(err).Msg("rate limiter backend unavailable, admitting request")
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.limit - count
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > rl.limit {
			retryAfter := int(ttl.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, fmt.Sprintf(`{"status":"error","error_code":"RATE_LIMIT_EXCEEDED","message":"rate limit exceeded","details":{"current_count":%d,"limit":%d,"retry_after_seconds":%d}}`,
				count, rl.limit, retryAfter), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) incr(ctx context.Context, key string) (int, time.Duration, error) {
	pipe := rl.rdb.TxPipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window, redis.NX) // hit only on key creation
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	ttl, err := rl.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		ttl = rl.window
	}
	return int(incrCmd.Val()), ttl, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
