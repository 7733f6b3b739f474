// Package lease keeps a single worker active across replicas.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"docworker/internal/config"
	"docworker/internal/port"
)

// refreshScript extends the lease only if this holder still owns it.
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// releaseScript deletes the lease only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	holder string
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewRedisLease creates a lease on key held for ttl after each Acquire.
func NewRedisLease(client *redis.Client, key string, ttl time.Duration) port.Lease {
	return &redisLease{
		client: client,
		key:    key,
		ttl:    ttl,
		holder: uuid.NewString(),
	}
}

func (l *redisLease) Acquire(ctx context.Context) (bool, error) {
	refreshed, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.holder, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("lease.Acquire: refresh: %w", err)
	}
	if refreshed == 1 {
		return true, nil
	}

	ok, err := l.client.SetNX(ctx, l.key, l.holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lease.Acquire: %w", err)
	}
	return ok, nil
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.holder).Err(); err != nil {
		return fmt.Errorf("lease.Release: %w", err)
	}
	return nil
}
