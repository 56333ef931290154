package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
)

// ActorLimiter 按操作者分桶的 Token Bucket 限流器
type ActorLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	rejected atomic.Int64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewActorLimiter perMin: 每分钟稳定速率；burst: 突发容量
func NewActorLimiter(perMin, burst int) *ActorLimiter {
	if perMin <= 0 {
		perMin = 30
	}
	if burst <= 0 {
		burst = 5
	}
	return &ActorLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(perMin)),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

// Allow 非阻塞判断；顺带清理长时间空闲的桶
func (l *ActorLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	if len(l.buckets) > 1024 {
		for k, other := range l.buckets {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.buckets, k)
			}
		}
	}
	l.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true
	}
	l.rejected.Add(1)
	return false
}

// RejectedCount 被拒绝的请求数（累计）
func (l *ActorLimiter) RejectedCount() int64 { return l.rejected.Load() }

// RateLimit 按操作者限流，超限返回 429；未识别操作者时按客户端 IP
func RateLimit(cfg cfgpkg.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	l := NewActorLimiter(cfg.RequestsPerMin, cfg.BurstSize)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if actor, ok := Actor(c); ok && actor.ID != "" {
			key = "actor:" + actor.ID
		}
		if !l.Allow(key) {
			c.Header("Retry-After", "60")
			abortJSON(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}
