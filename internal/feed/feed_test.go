package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

func TestFeed_PreservesOrderWithoutDedup(t *testing.T) {
	f := New()
	base := time.Date(2026, 10, 19, 9, 5, 0, 0, time.UTC)

	var want []domain.InboundMessage
	for i := 0; i < 100; i++ {
		msg := domain.InboundMessage{SenderID: domain.ID(fmt.Sprint(i % 2)), Content: fmt.Sprintf("m%d", i%10)}
		want = append(want, msg)
		f.Append(msg, base)
	}

	entries := f.Entries()
	require.Len(t, entries, 100)
	seen := map[string]bool{}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Message)
		assert.Equal(t, domain.EntryChat, e.Kind)
		assert.False(t, seen[e.ID], "entry ids must be unique")
		seen[e.ID] = true
		if i > 0 {
			assert.Less(t, entries[i-1].ID, e.ID, "ids sort in receipt order")
		}
	}
	assert.Equal(t, uint64(100), f.Version())
}

func TestFeed_JoinNoticeOnce(t *testing.T) {
	f := New()
	ann := domain.User{ID: "1", Name: "Ann"}
	now := time.Now()

	assert.True(t, f.AppendJoinNotice(ann, now))
	f.Append(domain.InboundMessage{SenderID: "2", Content: "hi"}, now)
	assert.False(t, f.AppendJoinNotice(ann, now))

	entries := f.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.EntryJoinNotice, entries[0].Kind)
	assert.Equal(t, "Ann", entries[0].Message.SenderName)
}

func TestFeed_SnapshotIsCopy(t *testing.T) {
	f := New()
	f.Append(domain.InboundMessage{Content: "a"}, time.Now())

	snap := f.Entries()
	snap[0].Message.Content = "mutated"
	f.AppendWarning(domain.User{ID: "1", Name: "Ann"}, "user warning(chat plastered)", time.Now())

	entries := f.Entries()
	assert.Equal(t, "a", entries[0].Message.Content)
	assert.Equal(t, domain.EntryWarning, entries[1].Kind)
	assert.Equal(t, 2, f.Len())
}
