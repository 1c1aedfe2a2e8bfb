package identity

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/weiawesome/wes-io-live/livechat/internal/cache"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// CachedStreamerSource is a read-through cache in front of a StreamerSource.
// Cache failures are logged and fall through to the source.
type CachedStreamerSource struct {
	source StreamerSource
	cache  cache.StreamerCache
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedStreamerSource(source StreamerSource, c cache.StreamerCache, roomID string, ttl time.Duration, logger zerolog.Logger) *CachedStreamerSource {
	return &CachedStreamerSource{
		source: source,
		cache:  c,
		key:    c.BuildKey(roomID),
		ttl:    ttl,
		logger: logger,
	}
}

func (s *CachedStreamerSource) Streamer(ctx context.Context) (domain.Streamer, error) {
	cached, err := s.cache.Get(ctx, s.key)
	if err == nil {
		return *cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("streamer cache read failed")
	}

	streamer, err := s.source.Streamer(ctx)
	if err != nil {
		return domain.Streamer{}, err
	}

	if err := s.cache.Set(ctx, s.key, &streamer, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("streamer cache write failed")
	}
	return streamer, nil
}
