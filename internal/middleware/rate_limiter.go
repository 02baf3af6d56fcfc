package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per caller. A bucket idle long enough
// to have refilled completely is indistinguishable from a new one, so such
// entries are swept when new callers arrive.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*callerLimiter
	interval  time.Duration
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per caller per minute, with
// bursts up to perMinute.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	return &RateLimiter{
		limiters: make(map[string]*callerLimiter),
		interval: interval,
		burst:    perMinute,
		idleTTL:  interval * time.Duration(perMinute),
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, ok := rl.limiters[key]
	if !ok {
		rl.sweepLocked(now)
		cl = &callerLimiter{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweepLocked drops idle callers, at most once per idleTTL.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	rl.lastSweep = now
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) >= rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}

// Len returns the number of tracked callers.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Allow reports whether key may make a request now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Remaining returns the whole tokens left for key.
func (rl *RateLimiter) Remaining(key string) int {
	tokens := int(rl.limiter(key).Tokens())
	if tokens < 0 {
		return 0
	}
	return tokens
}

// RateLimitMiddleware limits each API key, or each client IP when no key
// was presented.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if k := c.GetString(apiKeyCtxKey); k != "" {
			key = "key:" + k
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !rl.Allow(key) {
			c.Header("X-RateLimit-Remaining", "0")
			RespondErrorWithRetry(c, http.StatusTooManyRequests, ErrCodeRateLimited,
				"Too many requests, please try again later",
				int(rl.interval.Milliseconds()))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining(key)))

		c.Next()
	}
}
