package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/weiawesome/wes-io-live/livechat/internal/channel"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/internal/feed"
	"github.com/weiawesome/wes-io-live/livechat/internal/identity"
	"github.com/weiawesome/wes-io-live/livechat/pkg/log"
)

// WarningChatPlastered is the local line appended when the viewer floods the chat.
const WarningChatPlastered = "user warning(chat plastered)"

const eventBuffer = 64

// Options configures a LiveChat session.
type Options struct {
	Provider identity.Provider
	Channels ChannelFactory
	// SendRate is messages per second; zero disables flood limiting.
	SendRate  float64
	SendBurst int
	Now       func() time.Time
	Logger    zerolog.Logger
}

// liveChatService implements LiveChat.
type liveChatService struct {
	provider identity.Provider
	channels ChannelFactory
	limiter  *rate.Limiter
	now      func() time.Time
	logger   zerolog.Logger

	feed   *feed.Feed
	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	mounted   bool
	unmounted bool
	ident     *domain.Identity
	ch        RealtimeChannel
	state     domain.ConnState

	unmountOnce sync.Once
}

// NewLiveChatService creates a session. Nothing connects until Mount.
func NewLiveChatService(opts Options) LiveChat {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var limiter *rate.Limiter
	if opts.SendRate > 0 {
		burst := opts.SendBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.SendRate), burst)
	}

	return &liveChatService{
		provider: opts.Provider,
		channels: opts.Channels,
		limiter:  limiter,
		now:      now,
		logger:   opts.Logger,
		feed:     feed.New(),
		events:   make(chan Event, eventBuffer),
		done:     make(chan struct{}),
		state:    domain.StateIdle,
	}
}

// Mount bootstraps identity, appends the join notice and opens the channel.
// It blocks until the channel is connected or gives up.
func (s *liveChatService) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return domain.ErrClosed
	}
	if s.mounted {
		s.mu.Unlock()
		return domain.ErrAlreadyMounted
	}
	s.mounted = true
	s.mu.Unlock()

	ident, err := s.bootstrap(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("identity bootstrap failed")
		s.setState(domain.StateFailed, err)
		return err
	}

	s.logger.Info().
		Str(log.FieldUserID, ident.User.ID.String()).
		Str(log.FieldStreamerID, ident.Streamer.ID.String()).
		Msg("chat session mounted")

	if s.feed.AppendJoinNotice(ident.User, s.now()) {
		s.notify(Event{Kind: FeedChanged})
	}

	if s.isUnmounted() {
		return domain.ErrClosed
	}
	ch := s.channels(ident.Streamer, channel.Handlers{
		OnFrame: s.handleFrame,
		OnState: func(state domain.ConnState) { s.setState(state, nil) },
	})

	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		ch.Close()
		return domain.ErrClosed
	}
	s.ch = ch
	s.mu.Unlock()

	if err := ch.Open(ctx); err != nil {
		if errors.Is(err, domain.ErrClosed) {
			return err
		}
		s.setState(domain.StateFailed, err)
		return err
	}
	return nil
}

func (s *liveChatService) bootstrap(ctx context.Context) (domain.Identity, error) {
	ident, err := s.provider.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityUnavailable) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrIdentityUnavailable, err)
	}
	if err := ident.Validate(); err != nil {
		return domain.Identity{}, err
	}

	s.mu.Lock()
	s.ident = &ident
	s.mu.Unlock()
	return ident, nil
}

// Send publishes draft once. The caller keeps its draft unless Send returns nil.
func (s *liveChatService) Send(ctx context.Context, draft string) error {
	if draft == "" {
		return domain.ErrEmptyDraft
	}

	s.mu.Lock()
	ch, ident := s.ch, s.ident
	s.mu.Unlock()

	if s.isUnmounted() {
		return domain.ErrClosed
	}
	if ch == nil || ident == nil || ch.State() != domain.StateConnected {
		return domain.ErrNotConnected
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.feed.AppendWarning(ident.User, WarningChatPlastered, s.now())
		s.notify(Event{Kind: FeedChanged})
		s.logger.Warn().Str(log.FieldUserID, ident.User.ID.String()).Msg("send rate exceeded")
		return domain.ErrRateLimited
	}

	err := ch.Publish(ctx, domain.OutboundMessage{UserID: ident.User, Content: draft})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to send chat message")
		return err
	}
	return nil
}

// Unmount closes the channel exactly once. It is safe while Mount is still
// connecting and safe to call repeatedly.
func (s *liveChatService) Unmount() {
	s.unmountOnce.Do(func() {
		s.mu.Lock()
		s.unmounted = true
		ch := s.ch
		s.mu.Unlock()

		if ch != nil {
			if err := ch.Close(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to close realtime channel")
			}
		}
		s.setState(domain.StateClosed, nil)
		close(s.done)
		s.logger.Info().Msg("chat session unmounted")
	})
}

func (s *liveChatService) Identity() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ident == nil {
		return domain.Identity{}, false
	}
	return *s.ident, true
}

func (s *liveChatService) Feed() *feed.Feed {
	return s.feed
}

func (s *liveChatService) State() domain.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events delivers change notifications. Notifications are dropped when the
// buffer is full; readers re-read Feed and State on every event.
func (s *liveChatService) Events() <-chan Event {
	return s.events
}

// Done is closed once the session is unmounted.
func (s *liveChatService) Done() <-chan struct{} {
	return s.done
}

func (s *liveChatService) handleFrame(body []byte) {
	msg, err := domain.DecodeInbound(body)
	if err != nil {
		s.logger.Warn().Err(err).Int("size", len(body)).Msg("dropping malformed chat frame")
		return
	}
	s.feed.Append(msg, s.now())
	s.notify(Event{Kind: FeedChanged})
}

func (s *liveChatService) setState(state domain.ConnState, err error) {
	s.mu.Lock()
	if s.state == domain.StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()

	s.notify(Event{Kind: StateChanged, State: state, Err: err})
}

func (s *liveChatService) notify(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func (s *liveChatService) isUnmounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unmounted
}
