package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccountCache remembers which system an external account resolves to.
type AccountCache interface {
	// GetSystemID reports ok=false on a miss.
	GetSystemID(ctx context.Context, accountID uint64) (systemID int, ok bool, err error)
	SetSystemID(ctx context.Context, accountID uint64, systemID int) error
	Invalidate(ctx context.Context, accountID uint64) error
}

const accountNamespace = "pk:account"

type redisAccountCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisAccountCache(client redis.UniversalClient, ttl time.Duration) *redisAccountCache {
	return &redisAccountCache{client: client, ttl: ttl}
}

// NewRedisClient connects to a single Redis node and verifies it is reachable.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func accountKey(accountID uint64) string {
	return accountNamespace + ":" + strconv.FormatUint(accountID, 10)
}

func (c *redisAccountCache) GetSystemID(ctx context.Context, accountID uint64) (int, bool, error) {
	raw, err := c.client.Get(ctx, accountKey(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	systemID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cache entry for account %d: %w", accountID, err)
	}
	return systemID, true, nil
}

func (c *redisAccountCache) SetSystemID(ctx context.Context, accountID uint64, systemID int) error {
	return c.client.Set(ctx, accountKey(accountID), strconv.Itoa(systemID), c.ttl).Err()
}

func (c *redisAccountCache) Invalidate(ctx context.Context, accountID uint64) error {
	return c.client.Del(ctx, accountKey(accountID)).Err()
}

// Noop is used when no Redis address is configured; every lookup misses.
type Noop struct{}

func (Noop) GetSystemID(context.Context, uint64) (int, bool, error) { return 0, false, nil }

func (Noop) SetSystemID(context.Context, uint64, int) error { return nil }

func (Noop) Invalidate(context.Context, uint64) error { return nil }
