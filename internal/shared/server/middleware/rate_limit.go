package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/server/respond"
)

// Rate limit groups used by the router.
const (
	RateGroupDefault = "DEFAULT"
	RateGroupExport  = "EXPORT"
)

const defaultBucketIdleTTL = 30 * time.Minute

// RateLimitRule is a token bucket holding up to Burst tokens and refilled
// at Rate tokens per second.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one bucket per principal and group. Buckets left idle
// for IdleTTL are dropped.
type RateLimiter struct {
	IdleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastSweep time.Time
}

type rateBucket struct {
	tokens float64
	seen   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		IdleTTL: defaultBucketIdleTTL,
		buckets: map[string]*rateBucket{},
		now:     now,
	}
}

// RateLimit rejects requests over the rule of their group with 429 and a
// Retry-After header. Requests are keyed by user id, or client IP when the
// caller is unidentified. Groups without a rule pass through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = RateGroupDefault
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		wait, allowed := cfg.Limiter.Allow(group+"|"+principal, rule)
		if allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// Allow takes a token from the bucket for key. When the bucket is empty it
// reports how long until the next token, never less than one second.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (time.Duration, bool) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return 0, true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.Rate)
	}
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	wait := time.Duration((1 - b.tokens) / rule.Rate * float64(time.Second))
	if wait < time.Second {
		wait = time.Second
	}
	return wait, false
}

func (l *RateLimiter) sweep(now time.Time) {
	if l.IdleTTL <= 0 || now.Sub(l.lastSweep) < l.IdleTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.seen) >= l.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Len reports the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
