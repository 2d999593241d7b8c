package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const vacantUnitsKey = "rentapp:board:vacant-units"

type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// RedisUnitCache keeps the vacant unit listing in Redis for ttl.
type RedisUnitCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUnitCache(client *redis.Client, ttl time.Duration) *RedisUnitCache {
	return &RedisUnitCache{client: client, ttl: ttl}
}

func (c *RedisUnitCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisUnitCache) GetUnits(ctx context.Context) ([]Unit, bool, error) {
	raw, err := c.client.Get(ctx, vacantUnitsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var units []Unit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, false, fmt.Errorf("decode cached units: %w", err)
	}
	return units, true, nil
}

func (c *RedisUnitCache) SetUnits(ctx context.Context, units []Unit) error {
	raw, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("encode units: %w", err)
	}
	if err := c.client.Set(ctx, vacantUnitsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the cached listing.
func (c *RedisUnitCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, vacantUnitsKey).Err()
}
