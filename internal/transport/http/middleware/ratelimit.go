package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const errTooManyRequests = "Too many requests from this IP, please try again later"

// Defaults match the public API budget: 100 requests per 15 minutes.
const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit rejects clients that exceed the default request budget
// with 429. Limits are tracked per client IP.
func RateLimit() gin.HandlerFunc {
	return RateLimitWith(rateLimitMax, rateLimitWindow)
}

// RateLimitWith allows a burst of max requests per IP, refilling at
// max-per-window. Idle IPs are evicted after a full window so the
// table does not grow with every client ever seen.
func RateLimitWith(max int, window time.Duration) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		visitors  = make(map[string]*visitor)
		nextSweep = time.Now().Add(window)
	)
	refill := rate.Every(window / time.Duration(max))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.After(nextSweep) {
			for addr, v := range visitors {
				if now.Sub(v.lastSeen) > window {
					delete(visitors, addr)
				}
			}
			nextSweep = now.Add(window)
		}

		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(refill, max)}
			visitors[ip] = v
		}
		v.lastSeen = now
		allowed := v.limiter.Allow()
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": errTooManyRequests})
			return
		}
		c.Next()
	}
}
