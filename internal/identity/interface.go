package identity

import (
	"context"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// Provider loads the viewer and streamer identity once per mount.
type Provider interface {
	Load(ctx context.Context) (domain.Identity, error)
}

// StreamerSource resolves the streamer for the configured room.
type StreamerSource interface {
	Streamer(ctx context.Context) (domain.Streamer, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (domain.Identity, error)

func (f ProviderFunc) Load(ctx context.Context) (domain.Identity, error) {
	return f(ctx)
}
