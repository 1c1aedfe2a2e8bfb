package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/wes-io-live/livechat/internal/config"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type RedisStreamerCache struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamerCache(cfg config.RedisConfig) (*RedisStreamerCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStreamerCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisStreamerCacheFromClient wraps an existing client.
func NewRedisStreamerCacheFromClient(client *redis.Client, prefix string) *RedisStreamerCache {
	return &RedisStreamerCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisStreamerCache) BuildKey(roomID string) string {
	return fmt.Sprintf("%s:room:%s", c.prefix, roomID)
}

func (c *RedisStreamerCache) Get(ctx context.Context, key string) (*domain.Streamer, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var streamer domain.Streamer
	if err := json.Unmarshal(data, &streamer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &streamer, nil
}

func (c *RedisStreamerCache) Set(ctx context.Context, key string, streamer *domain.Streamer, ttl time.Duration) error {
	data, err := json.Marshal(streamer)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisStreamerCache) Close() error {
	return c.client.Close()
}
