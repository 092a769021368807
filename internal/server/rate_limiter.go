package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter is a fixed-window per-key counter. It guards the public
// endpoints, which carry no session, so the key is the client IP.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*windowCount
}

type windowCount struct {
	start time.Time
	count int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*windowCount),
	}
}

func (r *rateLimiter) allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok || now.Sub(b.start) >= r.window {
		r.buckets[key] = &windowCount{start: now, count: 1}
		r.maybeSweep(now)
		return true
	}
	if b.count >= r.limit {
		return false
	}
	b.count++
	return true
}

// maybeSweep drops expired windows so the map does not grow with every
// address that ever hit the endpoint. Called with the lock held.
func (r *rateLimiter) maybeSweep(now time.Time) {
	if len(r.buckets) < 1024 {
		return
	}
	for key, b := range r.buckets {
		if now.Sub(b.start) >= r.window {
			delete(r.buckets, key)
		}
	}
}

func (s *Server) PublicRateLimit(limiter *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}
		c.Next()
	}
}
