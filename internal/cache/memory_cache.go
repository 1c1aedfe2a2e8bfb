package cache

import (
	"context"
	"sync"
	"time"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// MemoryStreamerCache is the in-process fallback when redis is disabled.
type MemoryStreamerCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	streamer  domain.Streamer
	expiresAt time.Time
}

func NewMemoryStreamerCache() *MemoryStreamerCache {
	return &MemoryStreamerCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryStreamerCache) BuildKey(roomID string) string {
	return "room:" + roomID
}

func (c *MemoryStreamerCache) Get(_ context.Context, key string) (*domain.Streamer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	s := e.streamer
	return &s, nil
}

func (c *MemoryStreamerCache) Set(_ context.Context, key string, streamer *domain.Streamer, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{streamer: *streamer, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryStreamerCache) Close() error {
	return nil
}
