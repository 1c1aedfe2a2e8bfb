package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/livechat/internal/config"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

func newTestRedisCache(t *testing.T) (*RedisStreamerCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisStreamerCache(config.RedisConfig{Address: mr.Addr(), Prefix: "livechat:streamer"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisStreamerCache_BuildKey(t *testing.T) {
	c := NewRedisStreamerCacheFromClient(nil, "livechat:streamer")
	assert.Equal(t, "livechat:streamer:room:2", c.BuildKey("2"))
}

func TestRedisStreamerCache_MissAndHit(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)
	key := c.BuildKey("room-1")

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, &domain.Streamer{ID: "2", Name: "Bea"}, time.Minute))

	raw, err := mr.Get("livechat:streamer:room:room-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"Bea"}`, raw)
	assert.Equal(t, time.Minute, mr.TTL(key))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.Streamer{ID: "2", Name: "Bea"}, *got)
}

func TestRedisStreamerCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)
	key := c.BuildKey("room-1")

	require.NoError(t, c.Set(ctx, key, &domain.Streamer{ID: "2", Name: "Bea"}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisStreamerCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)
	key := c.BuildKey("room-1")
	require.NoError(t, mr.Set(key, "{not json"))

	_, err := c.Get(ctx, key)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRedisStreamerCache_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisStreamerCacheFromClient(client, "livechat:streamer")
	defer c.Close()
	mr.Close()

	_, err := c.Get(context.Background(), c.BuildKey("room-1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	_, err = NewRedisStreamerCache(config.RedisConfig{Address: mr.Addr()})
	assert.Error(t, err)
}
