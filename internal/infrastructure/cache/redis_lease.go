package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLeasePrefix = "ledger:lease:"

// releaseScript deletes the key only while it still holds the caller's token,
// so a holder whose lease expired cannot release a successor's lease.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease implements a single-holder lease shared by every instance
type RedisLease struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisLease creates a lease over an existing client
func NewRedisLease(client redis.UniversalClient, keyPrefix string) *RedisLease {
	if keyPrefix == "" {
		keyPrefix = defaultLeasePrefix
	}
	return &RedisLease{client: client, keyPrefix: keyPrefix}
}

// Acquire takes the lease with SET NX PX. ok is false while another holder
// owns the key.
func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release gives the lease back if token still owns it
func (l *RedisLease) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", key, err)
	}
	return nil
}
