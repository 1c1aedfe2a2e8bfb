package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

func TestMemoryStreamerCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryStreamerCache()
	c.now = func() time.Time { return now }

	key := c.BuildKey("2")
	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, &domain.Streamer{ID: "2", Name: "Bea"}, time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, domain.Streamer{ID: "2", Name: "Bea"}, *got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
