package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// rateLimitBurst caps how many requests can arrive back to back.
const rateLimitBurst = 10

// RateLimit returns middleware enforcing a per-user token bucket on chat
// requests. Must run after Auth.
func RateLimit(requestsPerHour int) gin.HandlerFunc {
	if requestsPerHour <= 0 {
		requestsPerHour = 1
	}
	interval := rate.Every(time.Hour / time.Duration(requestsPerHour))

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	return func(c *gin.Context) {
		user := CurrentUser(c)
		key := c.ClientIP()
		if user != nil {
			key = user.ID
		}

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(interval, rateLimitBurst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
