package db

import (
	"context"
	"fmt"
	"spendtracker/src/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared between API replicas. Each user's keys are
// tracked in a set so they can be dropped together.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url (redis://host:port/db) and verifies the
// connection.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func userKeySet(userID int64) string {
	return fmt.Sprintf("analytics:user:%d:keys", userID)
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, userID int64, key string, value []byte) {
	set := userKeySet(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetEx(ctx, key, value, c.ttl)
		pipe.SAdd(ctx, set, key)
		pipe.Expire(ctx, set, c.ttl)
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("redis cache write failed")
	}
}

func (c *RedisCache) InvalidateUser(ctx context.Context, userID int64) {
	set := userKeySet(userID)
	keys, err := c.client.SMembers(ctx, set).Result()
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("user_id", userID).Msg("redis cache invalidation failed")
		return
	}
	if err := c.client.Del(ctx, append(keys, set)...).Err(); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("user_id", userID).Msg("redis cache invalidation failed")
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
