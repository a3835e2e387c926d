// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	logger "github.com/sepulvedablanco/clouddriver/logging"
)

// staleAfter is how long an idle client keeps its limiter before the next
// sweep drops it.
const staleAfter = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func (rl *rateLimiters) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > staleAfter {
		for k, client := range rl.clients {
			if now.Sub(client.lastSeen) > staleAfter {
				delete(rl.clients, k)
			}
		}
		rl.lastSweep = now
	}

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}

// RateLimiter allows each client ip at most limit requests per the given
// window, tracked in memory per instance.
func RateLimiter(limit int, per time.Duration) gin.HandlerFunc {
	limiters := &rateLimiters{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(limit) / per.Seconds()),
		burst:     limit,
		lastSweep: time.Now(),
	}

	return func(c *gin.Context) {
		key := c.ClientIP()

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !limiters.allow(key) {
			logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
