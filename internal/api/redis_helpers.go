package api

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// LoginThrottle 基于 Redis 的登录限流与失败锁定。
// A nil *LoginThrottle or a nil client allows every attempt; redis errors fail open.
type LoginThrottle struct {
	redis         redis.UniversalClient
	ratePerHour   int
	lockThreshold int
	lockTTL       time.Duration
	now           func() time.Time
}

func NewLoginThrottle(client redis.UniversalClient, ratePerHour, lockThreshold int, lockTTL time.Duration) *LoginThrottle {
	if client == nil {
		return nil
	}
	return &LoginThrottle{
		redis:         client,
		ratePerHour:   ratePerHour,
		lockThreshold: lockThreshold,
		lockTTL:       lockTTL,
		now:           time.Now,
	}
}

// Allow counts the attempt and reports whether it may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, ip, email string) bool {
	if t == nil {
		return true
	}
	email = strings.ToLower(email)

	// 每 IP+邮箱 每小时计数
	rateKey := "rate:login:" + ip + ":" + email + ":" + t.now().UTC().Format("2006010215")
	count, err := incrWithTTL(ctx, t.redis, rateKey, time.Hour)
	if err == nil && t.ratePerHour > 0 && count > int64(t.ratePerHour) {
		return false
	}

	if ttl, err := t.redis.TTL(ctx, lockKey(email)).Result(); err == nil && ttl > 0 {
		return false
	}
	return true
}

// Fail records a failed attempt and locks the account once the threshold is hit.
func (t *LoginThrottle) Fail(ctx context.Context, email string) {
	if t == nil {
		return
	}
	email = strings.ToLower(email)
	count, err := incrWithTTL(ctx, t.redis, failKey(email), t.lockTTL)
	if err != nil {
		return
	}
	if t.lockThreshold > 0 && count >= int64(t.lockThreshold) {
		_ = t.redis.Set(ctx, lockKey(email), "1", t.lockTTL).Err()
	}
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil {
		return
	}
	_ = t.redis.Del(ctx, failKey(strings.ToLower(email))).Err()
}

func lockKey(email string) string { return "lock:login:" + email }
func failKey(email string) string { return "lock:login:fail:" + email }
