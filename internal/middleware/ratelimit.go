package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/medvoice/medvoice-backend/internal/database"
	"github.com/medvoice/medvoice-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the counting window per IP
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// RateLimitMiddleware provides Redis-backed per-IP rate limiting. Chunk
// uploads arrive every few seconds during an active recording, so the
// window is sized well above a single client's steady rate. If Redis is
// unavailable the request is allowed (fail open).
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ipAddress := clientip.RealClientIP(r)

		ctx := context.Background()
		rateLimitKey := RateLimitKeyPrefix + ipAddress

		count, err := database.RedisClient.Incr(ctx, rateLimitKey).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			database.RedisClient.Expire(ctx, rateLimitKey, RateLimitWindow)
		}

		if count > RateLimitMaxRequests {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please slow down and try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
