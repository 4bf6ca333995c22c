package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/utils"
	"golang.org/x/time/rate"
)

const rateLimitKeyPrefix = "ratelimit"

// tokenBucketScript refills whole intervals and takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = capacity
		last_refill = last_refill + (intervals * interval_ms)
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimiter limits requests per caller. Redis holds the shared buckets;
// without Redis (or when it errors) an in-process limiter takes over.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	redis  *redis.Client
	logger *logrus.Logger
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter. rdb may be nil.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *logrus.Logger) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	return &RateLimiter{
		cfg:    cfg,
		redis:  rdb,
		logger: logger,
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

// Middleware returns the gin handler
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	if !l.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := l.key(c)

		allowed, remaining, retryAfter := l.take(c, key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			l.logger.WithFields(logrus.Fields{
				"key":         key,
				"retry_after": secs,
			}).Info("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}

		c.Next()
	}
}

func (l *RateLimiter) take(c *gin.Context, key string) (bool, int, time.Duration) {
	if l.redis != nil {
		window := time.Duration(l.cfg.WindowSeconds) * time.Second
		vals, err := tokenBucketScript.Run(c.Request.Context(), l.redis, []string{key},
			l.now().UnixMilli(),
			l.cfg.Requests,
			window.Milliseconds(),
			l.cfg.WindowSeconds*2,
		).Int64Slice()
		if err == nil && len(vals) == 3 {
			return vals[0] == 1, int(vals[1]), time.Duration(vals[2]) * time.Millisecond
		}
		l.logger.WithError(err).WithField("key", key).Warn("Redis rate limit failed, using local limiter")
	}

	limiter := l.localLimiter(key)
	now := l.now()
	if limiter.AllowN(now, 1) {
		return true, int(limiter.TokensAt(now)), 0
	}
	r := limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, delay
}

func (l *RateLimiter) localLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	bucket, ok := l.local[key]
	if !ok {
		every := time.Duration(l.cfg.WindowSeconds) * time.Second / time.Duration(l.cfg.Requests)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), l.cfg.Requests)}
		l.local[key] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter
}

// sweepLocked drops buckets idle for a full window, at most once per window.
// An idle bucket is full again, so forgetting it changes nothing.
func (l *RateLimiter) sweepLocked(now time.Time) {
	window := time.Duration(l.cfg.WindowSeconds) * time.Second
	if now.Sub(l.lastSweep) < window {
		return
	}
	l.lastSweep = now

	for key, bucket := range l.local {
		if now.Sub(bucket.lastSeen) >= window {
			delete(l.local, key)
		}
	}
}

// localSize reports how many callers the in-process limiter tracks
func (l *RateLimiter) localSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.local)
}

// key identifies the caller: the authenticated user when known, otherwise the client IP
func (l *RateLimiter) key(c *gin.Context) string {
	if userCtx, ok := GetUserContext(c); ok {
		return fmt.Sprintf("%s:user:%s", rateLimitKeyPrefix, userCtx.UserID)
	}
	return fmt.Sprintf("%s:ip:%s", rateLimitKeyPrefix, utils.GetRealIP(c))
}
