package ratelimit

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiters tracks one token bucket per client IP. Registration traffic is
// extremely bursty at window open, so buckets are created lazily.
type limiters struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func (l *limiters) get(ip string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.buckets[ip]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.buckets[ip]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.limit, l.burst)
	l.buckets[ip] = limiter
	return limiter
}

// PerIP returns middleware throttling each client IP independently.
func PerIP(rps float64, burst int) gin.HandlerFunc {
	l := &limiters{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
