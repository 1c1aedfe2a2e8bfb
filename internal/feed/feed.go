// Package feed holds the chat list of one mounted session: an append-only,
// receipt-ordered sequence of entries. Nothing is ever evicted, reordered or
// deduplicated, so memory grows with the session.
package feed

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

type Feed struct {
	mu      sync.RWMutex
	entries []domain.Entry
	joined  bool
	version uint64
	ids     *ulid.MonotonicEntropy
}

func New() *Feed {
	return &Feed{
		ids: ulid.Monotonic(rand.Reader, 0),
	}
}

// Append adds a received chat message.
func (f *Feed) Append(msg domain.InboundMessage, at time.Time) domain.Entry {
	return f.add(domain.EntryChat, msg, at)
}

// AppendWarning adds a local moderation warning about sender.
func (f *Feed) AppendWarning(sender domain.User, text string, at time.Time) domain.Entry {
	return f.add(domain.EntryWarning, domain.InboundMessage{
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    text,
	}, at)
}

// AppendJoinNotice adds the "joined" system line. Only the first call per
// feed appends; later calls report false.
func (f *Feed) AppendJoinNotice(user domain.User, at time.Time) bool {
	f.mu.Lock()
	if f.joined {
		f.mu.Unlock()
		return false
	}
	f.joined = true
	f.mu.Unlock()

	f.add(domain.EntryJoinNotice, domain.InboundMessage{
		SenderID:   user.ID,
		SenderName: user.Name,
	}, at)
	return true
}

func (f *Feed) add(kind domain.EntryKind, msg domain.InboundMessage, at time.Time) domain.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := domain.Entry{
		ID:         ulid.MustNew(ulid.Timestamp(at), f.ids).String(),
		Kind:       kind,
		Message:    msg,
		ReceivedAt: at,
	}
	f.entries = append(f.entries, e)
	f.version++
	return e
}

// Entries returns a snapshot in insertion order.
func (f *Feed) Entries() []domain.Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]domain.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// Version increases on every append.
func (f *Feed) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}
