package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-stomp/stomp/v3"
	"github.com/rs/zerolog"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/pkg/log"
)

const (
	contentTypeJSON   = "application/json"
	disconnectTimeout = 2 * time.Second
)

// ReconnectPolicy bounds the exponential backoff used when the transport drops.
// MaxAttempts of zero disables reconnecting: a drop moves straight to Failed.
type ReconnectPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxAttempts     uint
}

// Config binds a channel to one streamer.
type Config struct {
	StreamerID     domain.ID
	InboundPrefix  string
	OutboundPrefix string
	Host           string
	HeartbeatSend  time.Duration
	HeartbeatRecv  time.Duration
	Reconnect      ReconnectPolicy
}

// Handlers receive channel events. Both are called from the channel's
// receive goroutine, one at a time.
type Handlers struct {
	OnFrame func(body []byte)
	OnState func(state domain.ConnState)
}

// session is one live STOMP connection with its subscription.
type session struct {
	transport *trackedConn
	conn      *stomp.Conn
	sub       *stomp.Subscription
}

// Channel is a single realtime connection: one subscription to the
// streamer's inbound topic and a publish capability to the outbound topic.
type Channel struct {
	cfg      Config
	dialer   Dialer
	handlers Handlers
	logger   zerolog.Logger
	inbound  string
	outbound string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  domain.ConnState
	opened bool
	sess   *session

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func New(cfg Config, dialer Dialer, handlers Handlers, logger zerolog.Logger) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	if handlers.OnFrame == nil {
		handlers.OnFrame = func([]byte) {}
	}
	if handlers.OnState == nil {
		handlers.OnState = func(domain.ConnState) {}
	}
	return &Channel{
		cfg:      cfg,
		dialer:   dialer,
		handlers: handlers,
		logger:   logger.With().Str(log.FieldStreamerID, cfg.StreamerID.String()).Logger(),
		inbound:  Topic(cfg.InboundPrefix, cfg.StreamerID),
		outbound: Topic(cfg.OutboundPrefix, cfg.StreamerID),
		ctx:      ctx,
		cancel:   cancel,
		state:    domain.StateIdle,
	}
}

// State returns the current connection state.
func (c *Channel) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InboundTopic is the destination this channel subscribes to.
func (c *Channel) InboundTopic() string {
	return c.inbound
}

// OutboundTopic is the destination Publish sends to.
func (c *Channel) OutboundTopic() string {
	return c.outbound
}

// Open connects and subscribes. It blocks until the channel is Connected,
// the connect attempts are exhausted, or Close is called. A channel can be
// opened once.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if c.opened {
		c.mu.Unlock()
		return domain.ErrAlreadyOpen
	}
	c.opened = true
	c.mu.Unlock()

	c.setState(domain.StateConnecting)

	// Close must be able to abort an in-flight dial or handshake.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	sess, err := c.connectWithRetry(ctx, c.cfg.Reconnect.MaxAttempts+1)
	if err != nil {
		if c.ctx.Err() != nil {
			return domain.ErrClosed
		}
		c.logger.Error().Err(err).Str(log.FieldDestination, c.inbound).Msg("realtime channel connect failed")
		c.setState(domain.StateFailed)
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if !c.install(sess, true) {
		return domain.ErrClosed
	}
	c.logger.Info().Str(log.FieldDestination, c.inbound).Msg("realtime channel connected")
	c.setState(domain.StateConnected)

	go c.receive(sess)
	return nil
}

// Publish sends one chat message to the outbound topic.
func (c *Channel) Publish(ctx context.Context, msg domain.OutboundMessage) error {
	c.mu.Lock()
	state, sess := c.state, c.sess
	c.mu.Unlock()

	if state == domain.StateClosed {
		return domain.ErrClosed
	}
	if state != domain.StateConnected || sess == nil {
		return domain.ErrNotConnected
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- sess.conn.Send(c.outbound, contentTypeJSON, body)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to publish to %s: %w", c.outbound, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the channel down. It is safe to call at any point, any number
// of times; the transport is closed exactly once.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		sess := c.sess
		c.sess = nil
		c.mu.Unlock()

		if sess != nil {
			c.shutdown(sess, true)
		}
		c.wg.Wait()

		c.setState(domain.StateClosed)
		c.logger.Info().Msg("realtime channel closed")
	})
	return nil
}

// install publishes a fresh session unless Close already ran, in which case
// the session is torn down here. spawn registers a new receive goroutine
// under the same lock Close takes before waiting.
func (c *Channel) install(sess *session, spawn bool) bool {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		c.shutdown(sess, false)
		return false
	}
	c.sess = sess
	if spawn {
		c.wg.Add(1)
	}
	c.mu.Unlock()
	return true
}

func (c *Channel) receive(sess *session) {
	defer c.wg.Done()

	for {
		dropped := c.drain(sess)
		if !dropped {
			return
		}

		c.mu.Lock()
		owned := c.sess == sess
		if owned {
			c.sess = nil
		}
		c.mu.Unlock()
		if owned {
			c.shutdown(sess, false)
		}

		if c.ctx.Err() != nil {
			return
		}

		next, ok := c.reconnect()
		if !ok {
			return
		}
		sess = next
	}
}

// drain delivers frames until the subscription or the transport ends. It
// reports whether the transport dropped (as opposed to the channel being closed).
func (c *Channel) drain(sess *session) bool {
	for {
		select {
		case <-c.ctx.Done():
			return false
		case <-sess.transport.Dead():
			c.flush(sess)
			if c.ctx.Err() != nil {
				return false
			}
			c.logger.Warn().Msg("realtime transport lost")
			return true
		case msg, ok := <-sess.sub.C:
			if !ok {
				return c.ctx.Err() == nil
			}
			if msg.Err != nil {
				if c.ctx.Err() != nil {
					return false
				}
				c.logger.Warn().Err(msg.Err).Msg("realtime transport error")
				return true
			}
			c.handlers.OnFrame(msg.Body)
		}
	}
}

// flush delivers frames that were already queued when the transport died.
func (c *Channel) flush(sess *session) {
	for {
		select {
		case msg, ok := <-sess.sub.C:
			if !ok || msg.Err != nil {
				return
			}
			c.handlers.OnFrame(msg.Body)
		default:
			return
		}
	}
}

func (c *Channel) reconnect() (*session, bool) {
	if c.cfg.Reconnect.MaxAttempts == 0 {
		c.logger.Error().Msg("realtime channel dropped, reconnect disabled")
		c.setState(domain.StateFailed)
		return nil, false
	}

	c.setState(domain.StateReconnecting)
	sess, err := c.connectWithRetry(c.ctx, c.cfg.Reconnect.MaxAttempts)
	if err != nil {
		if c.ctx.Err() != nil {
			return nil, false
		}
		c.logger.Error().Err(err).Msg("realtime channel reconnect exhausted")
		c.setState(domain.StateFailed)
		return nil, false
	}

	if !c.install(sess, false) {
		return nil, false
	}
	c.logger.Info().Msg("realtime channel reconnected")
	c.setState(domain.StateConnected)
	return sess, true
}

func (c *Channel) connectWithRetry(ctx context.Context, tries uint) (*session, error) {
	p := c.cfg.Reconnect
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}

	var attempt int
	op := func() (*session, error) {
		attempt++
		sess, err := c.connect(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return sess, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(tries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn().Err(err).
				Int(log.FieldAttempt, attempt).
				Int64(log.FieldBackoff, wait.Milliseconds()).
				Msg("realtime channel connect attempt failed")
		}),
	)
}

// connect performs one dial, STOMP handshake and subscribe.
func (c *Channel) connect(ctx context.Context) (*session, error) {
	raw, err := c.dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	transport := newTrackedConn(raw)

	// Unblock the handshake if ctx ends while the broker is silent.
	stop := context.AfterFunc(ctx, func() { transport.Close() })

	opts := []func(*stomp.Conn) error{
		stomp.ConnOpt.HeartBeat(c.cfg.HeartbeatSend, c.cfg.HeartbeatRecv),
	}
	if c.cfg.Host != "" {
		opts = append(opts, stomp.ConnOpt.Host(c.cfg.Host))
	}

	conn, err := stomp.Connect(transport, opts...)
	if err != nil {
		stop()
		transport.Close()
		return nil, fmt.Errorf("stomp handshake failed: %w", err)
	}

	sub, err := conn.Subscribe(c.inbound, stomp.AckAuto)
	if err != nil {
		stop()
		conn.MustDisconnect()
		transport.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", c.inbound, err)
	}

	sess := &session{transport: transport, conn: conn, sub: sub}
	if !stop() {
		c.shutdown(sess, false)
		return nil, ctx.Err()
	}
	return sess, nil
}

// shutdown ends a session. A graceful shutdown sends DISCONNECT and waits
// briefly for the receipt before dropping the transport.
func (c *Channel) shutdown(sess *session, graceful bool) {
	if graceful {
		done := make(chan error, 1)
		go func() {
			done <- sess.conn.Disconnect()
		}()
		select {
		case err := <-done:
			if err != nil {
				c.logger.Debug().Err(err).Msg("stomp disconnect failed")
			}
		case <-time.After(disconnectTimeout):
			c.logger.Warn().Msg("stomp disconnect timed out")
			sess.conn.MustDisconnect()
		}
	} else {
		sess.conn.MustDisconnect()
	}

	if err := sess.transport.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("transport close failed")
	}
}

func (c *Channel) setState(s domain.ConnState) {
	c.mu.Lock()
	if c.state == s || (c.state == domain.StateClosed) {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	c.logger.Debug().Str(log.FieldState, s.String()).Msg("realtime channel state changed")
	c.handlers.OnState(s)
}
