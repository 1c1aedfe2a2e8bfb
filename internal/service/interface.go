package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/livechat/internal/channel"
	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/internal/feed"
)

// LiveChat defines one mounted chat session for a single viewer and streamer.
type LiveChat interface {
	Mount(ctx context.Context) error
	Send(ctx context.Context, draft string) error
	Unmount()
	Identity() (domain.Identity, bool)
	Feed() *feed.Feed
	State() domain.ConnState
	Events() <-chan Event
	Done() <-chan struct{}
}

// RealtimeChannel is the part of channel.Channel the session depends on.
type RealtimeChannel interface {
	Open(ctx context.Context) error
	Publish(ctx context.Context, msg domain.OutboundMessage) error
	Close() error
	State() domain.ConnState
}

// ChannelFactory builds the channel for a streamer once identity is known.
type ChannelFactory func(streamer domain.Streamer, handlers channel.Handlers) RealtimeChannel

// EventKind tells the UI what changed.
type EventKind int

const (
	FeedChanged EventKind = iota
	StateChanged
)

type Event struct {
	Kind  EventKind
	State domain.ConnState
	Err   error
}
