package util

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const blacklistKeyPrefix = "jwt:blacklist:"

// TokenBlacklist 记录已注销的令牌，优先使用 Redis，降级为进程内存
type TokenBlacklist struct {
	rdb     *redis.Client
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		rdb:     rdb,
		entries: make(map[string]time.Time),
	}
}

// Revoke 将令牌加入黑名单，直到其自然过期
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}

	if b.rdb != nil {
		if err := b.rdb.Set(ctx, blacklistKeyPrefix+token, "1", ttl).Err(); err == nil {
			return
		} else {
			Logger.Warn("写入 Redis 黑名单失败，降级为内存", zap.Error(err))
		}
	}

	b.mu.Lock()
	b.entries[token] = expiresAt
	b.mu.Unlock()
}

// IsRevoked 检查令牌是否已被撤销
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b.rdb != nil {
		n, err := b.rdb.Exists(ctx, blacklistKeyPrefix+token).Result()
		if err == nil {
			return n > 0
		}
		// Redis 不可用时放行，避免把所有用户锁在门外
	}

	b.mu.RLock()
	expiresAt, ok := b.entries[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}

	if time.Now().After(expiresAt) {
		b.mu.Lock()
		delete(b.entries, token)
		b.mu.Unlock()
		return false
	}
	return true
}
