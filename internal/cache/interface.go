package cache

import (
	"context"
	"time"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// StreamerCache stores room owner lookups so a remount does not hit the room service.
type StreamerCache interface {
	Get(ctx context.Context, key string) (*domain.Streamer, error)
	Set(ctx context.Context, key string, streamer *domain.Streamer, ttl time.Duration) error
	BuildKey(roomID string) string
	Close() error
}
