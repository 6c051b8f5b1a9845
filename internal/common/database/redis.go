package database

import (
	"context"
	"time"

	"job-applier/internal/common/config"
	"job-applier/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the seen-URL cache and the customization staging area.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a lazily-connecting client; nothing is dialed until the
// first command.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		ClientName:      "job-applier",
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	return &RedisClient{Client: rdb}
}

// Ping reports whether the cache is reachable.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return errors.NewCacheError("ping", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
