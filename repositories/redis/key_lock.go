package redis

import (
	// Go Internal Packages
	"context"
	"time"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// KeyLock is a short-lived lock on a record's natural key, held while one
// ingester checks and inserts it. The TTL bounds how long a crashed holder
// can block the key.
type KeyLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewKeyLock(client *redis.Client, ttl time.Duration) *KeyLock {
	return &KeyLock{client: client, ttl: ttl}
}

func lockKey(key string) string { return "lock:" + key }

// Lock reports false when the key is already held.
func (l *KeyLock) Lock(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, lockKey(key), 1, l.ttl).Result()
}

func (l *KeyLock) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, lockKey(key)).Err()
}
