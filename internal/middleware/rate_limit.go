package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
)

type ipLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// ipLimiters 按客户端 IP 维护令牌桶，空闲条目定期过期回收。
// 每个中间件实例持有自己的状态，互不影响
type ipLimiters struct {
	mu      sync.Mutex
	entries map[string]*ipLimiter
	limit   rate.Limit
	burst   int
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, entry := range l.entries {
		if now.After(entry.expires) {
			delete(l.entries, k)
		}
	}

	if entry, ok := l.entries[key]; ok {
		entry.expires = now.Add(5 * time.Minute)
		return entry.limiter
	}

	entry := &ipLimiter{
		limiter: rate.NewLimiter(l.limit, l.burst),
		expires: now.Add(5 * time.Minute),
	}
	l.entries[key] = entry
	return entry.limiter
}

// RateLimitMiddleware 基于令牌桶的按 IP 限流
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	if perMinute < 1 {
		perMinute = 1
	}
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	limiters := &ipLimiters{
		entries: make(map[string]*ipLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			errors.HandleError(c, errors.New(errors.ErrTooManyRequests, "Too many requests"))
			c.Abort()
			return
		}
		c.Next()
	}
}
