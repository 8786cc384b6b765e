package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "job-portal/internal/transport/http/response"
)

const tooMany = "Too many requests, please retry later"

// RateLimit is one token bucket shared by every client.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		JSONResponder(c, resp.CodeServerError, tooMany)
	}
}

// maxBuckets bounds the per-IP table; it is reset when full.
const maxBuckets = 10000

// RateLimitPerIP gives each client IP its own bucket.
func RateLimitPerIP(rps rate.Limit, burst int, deny Responder) gin.HandlerFunc {
	if deny == nil {
		deny = JSONResponder
	}
	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		lim, ok := buckets[ip]
		if !ok {
			if len(buckets) >= maxBuckets {
				buckets = make(map[string]*rate.Limiter)
			}
			lim = rate.NewLimiter(rps, burst)
			buckets[ip] = lim
		}
		mu.Unlock()
		if lim.Allow() {
			c.Next()
			return
		}
		deny(c, resp.CodeServerError, tooMany)
	}
}
