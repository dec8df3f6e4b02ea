package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/pkg/logger"
	"kondax-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig describes one fixed-window limit keyed by client IP.
type RateLimitConfig struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	// Client-facing message on rejection
	Message string
	// Event recorded for every rejected request
	Event security.EventType
}

// GlobalRateLimitConfig applies to every /v1 route.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		Message:   "Rate limit exceeded. Please try again later.",
		Event:     security.EventRateLimitTriggered,
	}
}

// ContactRateLimitConfig is the per-IP budget for contact submissions.
// Every accepted submission sends mail, so it is far stricter than the
// global limit.
func ContactRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:contact:",
		Message:   "送信回数の上限に達しました。しばらくしてから再度お試しください。",
		Event:     security.EventContactThrottled,
	}
}

// INCR + EXPIRE on first hit, returns {count, ttl}
var windowScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`)

type windowCounter struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests in redis when a client is given and in process
// memory otherwise. A redis failure falls back to the local counters for that
// request. Call Close to stop the expiry sweeper.
type RateLimiter struct {
	cfg   RateLimitConfig
	rdb   *goredis.Client
	audit *security.SecurityLogger

	mu       sync.Mutex
	counters map[string]*windowCounter

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter. rdb and audit may be nil.
func NewRateLimiter(cfg RateLimitConfig, rdb *goredis.Client, audit *security.SecurityLogger) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	l := &RateLimiter{
		cfg:      cfg,
		rdb:      rdb,
		audit:    audit,
		counters: make(map[string]*windowCounter),
		stop:     make(chan struct{}),
	}
	go l.sweep(cfg.Window)
	return l
}

// Close stops the sweeper. It is safe to call more than once.
func (l *RateLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Handler returns the gin middleware.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, resetAt := l.hit(c.Request.Context(), l.cfg.KeyPrefix+c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > l.cfg.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			if l.audit != nil {
				l.audit.LogRateLimited(c.Request.Context(), l.cfg.Event, c.ClientIP(), c.GetHeader("User-Agent"), response.RequestID(c), c.FullPath())
			}
			response.Error(c, http.StatusTooManyRequests, l.cfg.Message, nil)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(l.cfg.Limit-count))
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string) (int, time.Time) {
	if l.rdb != nil {
		count, resetAt, err := l.hitRedis(ctx, key)
		if err == nil {
			return count, resetAt
		}
		logger.Log.Warn("Rate limit store unavailable, counting locally", "key", key, "error", err)
	}
	return l.hitLocal(key, time.Now())
}

func (l *RateLimiter) hitRedis(ctx context.Context, key string) (int, time.Time, error) {
	vals, err := windowScript.Run(ctx, l.rdb, []string{key}, int(l.cfg.Window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(vals) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script returned %d values", len(vals))
	}
	return int(vals[0]), time.Now().Add(time.Duration(vals[1]) * time.Second), nil
}

func (l *RateLimiter) hitLocal(key string, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.counters[key]
	if !ok || now.After(wc.resetAt) {
		wc = &windowCounter{resetAt: now.Add(l.cfg.Window)}
		l.counters[key] = wc
	}
	wc.count++
	return wc.count, wc.resetAt
}

func (l *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, wc := range l.counters {
				if now.After(wc.resetAt) {
					delete(l.counters, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
