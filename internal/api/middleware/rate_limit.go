package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"contentdesk/internal/config"
	"contentdesk/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPThrottle applies a token bucket per client IP in front of every route.
// It is a coarse flood guard; per-account attempt limits live in the services.
type IPThrottle struct {
	mu       sync.Mutex
	clients  map[string]*client
	rate     rate.Limit
	burst    int
	requests int
	idle     time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPThrottle creates the throttle from the RATE_LIMIT_* settings and starts
// a goroutine that forgets idle clients. Call Close to stop it.
func NewIPThrottle(cfg *config.Config) *IPThrottle {
	window := time.Duration(cfg.RateLimit.Window) * time.Second
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = cfg.RateLimit.Requests
	}

	t := &IPThrottle{
		clients:  make(map[string]*client),
		rate:     rate.Every(window / time.Duration(cfg.RateLimit.Requests)),
		burst:    burst,
		requests: cfg.RateLimit.Requests,
		idle:     window + time.Minute,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go t.cleanupRoutine(time.Minute)

	return t
}

// getLimiter returns the limiter for key, creating one with a full bucket
func (t *IPThrottle) getLimiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.clients[key] = c
	}
	c.lastSeen = t.now()
	return c.limiter
}

// cleanupRoutine periodically removes clients that have been idle long enough
// for their bucket to refill completely
func (t *IPThrottle) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.evictIdle()
		case <-t.stop:
			return
		}
	}
}

func (t *IPThrottle) evictIdle() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.idle)
	n := 0
	for key, c := range t.clients {
		if c.lastSeen.Before(cutoff) {
			delete(t.clients, key)
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine
func (t *IPThrottle) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Middleware returns a Gin middleware function that implements rate limiting
func (t *IPThrottle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting for Swagger documentation
		if strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			c.Next()
			return
		}

		limiter := t.getLimiter(c.ClientIP())

		now := t.now()
		r := limiter.ReserveN(now, 1)
		if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
			r.CancelAt(now)
			retryAfter := int(math.Ceil(delay.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("X-RateLimit-Limit", strconv.Itoa(t.requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:      "rate limit exceeded",
				RetryAfter: retryAfter,
			})
			return
		}

		remaining := int(limiter.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(t.requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}
