package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/medvoice/medvoice-backend/pkg/clientip"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- In-process per-IP rate limiting (production path) ---

const (
	perIPRateLimitRPS   = 2
	perIPRateLimitBurst = 20
	limiterCleanupEvery = 5 * time.Minute
	limiterTTL          = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	ipLimiters       = make(map[string]*limiterEntry)
	ipLimitersMu     sync.Mutex
	limiterCleanupOn bool
)

func limiterFor(ip string) *rate.Limiter {
	ipLimitersMu.Lock()
	defer ipLimitersMu.Unlock()
	startLimiterCleanupOnce()
	e, ok := ipLimiters[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(perIPRateLimitRPS), perIPRateLimitBurst),
		}
		ipLimiters[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startLimiterCleanupOnce() {
	if limiterCleanupOn {
		return
	}
	limiterCleanupOn = true
	go func() {
		ticker := time.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()
		for range ticker.C {
			ipLimitersMu.Lock()
			now := time.Now()
			for ip, e := range ipLimiters {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(ipLimiters, ip)
				}
			}
			ipLimitersMu.Unlock()
		}
	}()
}

// IPRateLimit limits each client IP with an in-process token bucket.
// The burst accommodates a browser issuing a chunk upload alongside
// list/get polling.
func IPRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !limiterFor(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please slow down and try again later."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity is the middleware chain used when ENV=production.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		IPRateLimit,
	}
}
