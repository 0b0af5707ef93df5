package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "noteapp/internal/transport/http/response"
)

// RateLimit 全局令牌桶限速
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			resp.Abort(c, resp.CodeTooMany, "too many requests")
			return
		}
		c.Next()
	}
}

// ipIdleTTL 超过这么久没有请求的 IP 桶会被回收
const ipIdleTTL = 10 * time.Minute

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipBuckets 每 IP 一个令牌桶，map 由 mu 保护；每隔 idle 清理一次闲置的桶
type ipBuckets struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	swept   time.Time
	buckets map[string]*ipBucket
}

func newIPBuckets(rps rate.Limit, burst int, idle time.Duration, now func() time.Time) *ipBuckets {
	return &ipBuckets{rps: rps, burst: burst, idle: idle, now: now, swept: now(), buckets: make(map[string]*ipBucket)}
}

func (b *ipBuckets) get(ip string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.Sub(b.swept) >= b.idle {
		for k, v := range b.buckets {
			if now.Sub(v.seen) >= b.idle {
				delete(b.buckets, k)
			}
		}
		b.swept = now
	}
	e, ok := b.buckets[ip]
	if !ok {
		e = &ipBucket{lim: rate.NewLimiter(b.rps, b.burst)}
		b.buckets[ip] = e
	}
	e.seen = now
	return e.lim
}

func (b *ipBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buckets)
}

// RateLimitPerIP 按客户端 IP 限速
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	ips := newIPBuckets(rps, burst, ipIdleTTL, time.Now)
	return func(c *gin.Context) {
		if !ips.get(c.ClientIP()).Allow() {
			resp.Abort(c, resp.CodeTooMany, "too many requests")
			return
		}
		c.Next()
	}
}
