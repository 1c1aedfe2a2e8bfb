package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/livechat/internal/cache"
	"github.com/weiawesome/wes-io-live/livechat/internal/channel"
	"github.com/weiawesome/wes-io-live/livechat/internal/config"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/internal/identity"
	"github.com/weiawesome/wes-io-live/livechat/internal/service"
	"github.com/weiawesome/wes-io-live/livechat/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/livechat/pkg/log"
)

const (
	identityModeStatic = "static"
	identityModeToken  = "token"

	transportTCP = "tcp"
)

// checkLogFile requires a log file: stdout and stderr both belong to the
// terminal UI while it runs.
func checkLogFile(cfg pkglog.Config) error {
	if cfg.File == "" {
		return errors.New("log.file must be set, the terminal is used by the chat view")
	}
	return nil
}

// buildProvider assembles the identity chain for cfg.Identity.Mode. The
// returned func releases the streamer cache.
func buildProvider(cfg *config.Config, logger zerolog.Logger) (identity.Provider, func(), error) {
	noop := func() {}

	switch cfg.Identity.Mode {
	case identityModeStatic, "":
		// The fixture is read at mount so a bad file shows up in the UI.
		fixture := cfg.Identity.Fixture
		return identity.ProviderFunc(func(ctx context.Context) (domain.Identity, error) {
			p, err := identity.LoadFixture(fixture)
			if err != nil {
				return domain.Identity{}, err
			}
			return p.Load(ctx)
		}), noop, nil

	case identityModeToken:
		if cfg.Identity.Token == "" {
			return nil, noop, fmt.Errorf("%w: no access token", domain.ErrIdentityUnavailable)
		}
		verifier, err := jwt.NewVerifier(cfg.Identity.JWT)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create token verifier: %w", err)
		}

		var streamerCache cache.StreamerCache
		if cfg.Redis.Enabled {
			rc, err := cache.NewRedisStreamerCache(cfg.Redis)
			if err != nil {
				return nil, noop, err
			}
			streamerCache = rc
			logger.Info().Str("address", cfg.Redis.Address).Msg("redis streamer cache connected")
		} else {
			streamerCache = cache.NewMemoryStreamerCache()
		}

		rooms := identity.NewRoomClient(cfg.Identity.RoomService, cfg.Identity.RoomID, cfg.Identity.HTTPTimeout, logger)
		source := identity.NewCachedStreamerSource(rooms, streamerCache, rooms.RoomID(), cfg.Redis.TTL, logger)

		closeCache := func() {
			if err := streamerCache.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close streamer cache")
			}
		}
		return identity.NewTokenProvider(cfg.Identity.Token, verifier, source), closeCache, nil

	default:
		return nil, noop, fmt.Errorf("unknown identity mode %q", cfg.Identity.Mode)
	}
}

// buildChannelFactory returns a factory producing one channel per streamer
// over the configured transport.
func buildChannelFactory(cfg config.ChatConfig, token string, logger zerolog.Logger) service.ChannelFactory {
	return func(streamer domain.Streamer, handlers channel.Handlers) service.RealtimeChannel {
		var dialer channel.Dialer
		if cfg.Transport == transportTCP {
			dialer = &channel.TCPDialer{Address: cfg.Endpoint, Timeout: cfg.ConnectTimeout}
		} else {
			dialer = &channel.WebsocketDialer{URL: cfg.Endpoint, Token: token, HandshakeTimeout: cfg.ConnectTimeout}
		}

		return channel.New(channel.Config{
			StreamerID:     streamer.ID,
			InboundPrefix:  cfg.InboundPrefix,
			OutboundPrefix: cfg.OutboundPrefix,
			Host:           cfg.Host,
			HeartbeatSend:  cfg.HeartbeatSend,
			HeartbeatRecv:  cfg.HeartbeatRecv,
			Reconnect: channel.ReconnectPolicy{
				InitialInterval: cfg.Reconnect.InitialInterval,
				MaxInterval:     cfg.Reconnect.MaxInterval,
				Multiplier:      cfg.Reconnect.Multiplier,
				MaxAttempts:     cfg.Reconnect.MaxAttempts,
			},
		}, dialer, handlers, logger)
	}
}
