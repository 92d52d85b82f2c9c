package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SubmitLockKey builds the redis key guarding a visitor's in-flight quote.
func SubmitLockKey(sessionID string) string {
	return "quote:submit:" + sessionID + ":lock"
}

// releaseScript deletes the lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is a per-key in-flight guard shared across site replicas. The lock
// expires after ttl so a crashed process cannot block a visitor forever.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard constructs a RedisGuard. ttl must exceed the webhook timeout.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisGuard{client: client, ttl: ttl}
}

// TryAcquire takes the lock for key if nobody holds it and returns the token
// that owns it.
func (g *RedisGuard) TryAcquire(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("submit lock key required")
	}
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, SubmitLockKey(key), token, g.ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

// Release drops the lock for key if token still owns it.
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, g.client, []string{SubmitLockKey(key)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
