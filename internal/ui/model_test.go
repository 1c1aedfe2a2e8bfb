package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/internal/feed"
	"github.com/weiawesome/wes-io-live/livechat/internal/service"
)

type fakeChat struct {
	mu      sync.Mutex
	feed    *feed.Feed
	events  chan service.Event
	done    chan struct{}
	state   domain.ConnState
	sendErr error
	sent    []string
	mounts  int
}

func newFakeChat() *fakeChat {
	f := &fakeChat{
		feed:   feed.New(),
		events: make(chan service.Event, 8),
		done:   make(chan struct{}),
		state:  domain.StateConnected,
	}
	f.feed.AppendJoinNotice(testIdentity.User, at(9, 0))
	return f
}

func (f *fakeChat) Mount(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounts++
	return nil
}

func (f *fakeChat) Send(_ context.Context, draft string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, draft)
	return nil
}

func (f *fakeChat) Unmount() {}
func (f *fakeChat) Identity() (domain.Identity, bool) { return testIdentity, true }
func (f *fakeChat) Feed() *feed.Feed { return f.feed }
func (f *fakeChat) State() domain.ConnState { return f.state }
func (f *fakeChat) Events() <-chan service.Event { return f.events }
func (f *fakeChat) Done() <-chan struct{} { return f.done }

func newTestModel(chat *fakeChat) Model {
	m := NewModel(context.Background(), chat, Options{TimestampMode: TimestampReceipt, SupportAmount: "100,000"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func TestModel_SendClearsDraftOnSuccess(t *testing.T) {
	chat := newFakeChat()
	m := typeText(newTestModel(chat), "yo")
	assert.Equal(t, "yo", m.input.Value())

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.sending)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.sending)
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, []string{"yo"}, chat.sent)
}

func TestModel_SendFailureKeepsDraft(t *testing.T) {
	chat := newFakeChat()
	chat.sendErr = domain.ErrNotConnected
	m := typeText(newTestModel(chat), "hello")

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, "hello", m.input.Value())
	assert.Empty(t, chat.sent)
	assert.Equal(t, 1, chat.feed.Len())
}

func TestModel_EmptyDraftDoesNothing(t *testing.T) {
	m, cmd := press(newTestModel(newFakeChat()), tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.sending)
}

func TestModel_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := press(newTestModel(newFakeChat()), k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestModel_Overlays(t *testing.T) {
	chat := newFakeChat()
	chat.feed.Append(domain.InboundMessage{SenderID: "2", Content: "hi"}, at(9, 5))
	m := newTestModel(chat)

	m, _ = press(m, tea.KeyCtrlB)
	assert.True(t, m.banOpen)
	assert.Equal(t, "Bea", m.banTarget)
	assert.Contains(t, m.View(), "Ban Bea?")

	m, _ = press(m, tea.KeyCtrlB)
	assert.False(t, m.banOpen)

	m, _ = press(m, tea.KeyCtrlO)
	assert.True(t, m.communityOpen)
	assert.Contains(t, m.View(), "Community: Bea")

	m, _ = press(m, tea.KeyCtrlS)
	assert.True(t, m.supportOpen)
	assert.Contains(t, m.View(), "100,000")

	// Esc closes overlays before quitting.
	m, cmd := press(m, tea.KeyEsc)
	assert.Nil(t, cmd)
	assert.False(t, m.communityOpen)
	assert.False(t, m.supportOpen)
}

func TestModel_BanNeedsChatLine(t *testing.T) {
	m, _ := press(newTestModel(newFakeChat()), tea.KeyCtrlB)
	assert.False(t, m.banOpen)
}

func TestModel_Selection(t *testing.T) {
	chat := newFakeChat()
	chat.feed.Append(domain.InboundMessage{SenderID: "2", Content: "a"}, at(9, 1))
	chat.feed.Append(domain.InboundMessage{SenderID: "1", Content: "b"}, at(9, 2))
	m := newTestModel(chat)
	assert.Equal(t, -1, m.selected)

	m, _ = press(m, tea.KeyUp)
	assert.Equal(t, 2, m.selected)
	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyUp)
	assert.Equal(t, 0, m.selected)

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyCtrlB)
	assert.Equal(t, "Bea", m.banTarget)
	m, _ = press(m, tea.KeyCtrlB)

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyDown)
	assert.Equal(t, -1, m.selected)
}

func TestModel_EventsRefreshView(t *testing.T) {
	chat := newFakeChat()
	m := newTestModel(chat)

	chat.feed.Append(domain.InboundMessage{SenderID: "2", Content: "fresh"}, at(9, 5))
	chat.events <- service.Event{Kind: service.FeedChanged}

	msg := m.waitForEvent()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd, "model keeps listening")
	assert.Contains(t, m.View(), "fresh")

	chat.events <- service.Event{Kind: service.StateChanged, State: domain.StateReconnecting}
	next, _ = m.Update(m.waitForEvent()())
	m = next.(Model)
	assert.Contains(t, m.View(), "reconnecting")
}

func TestModel_SessionDone(t *testing.T) {
	chat := newFakeChat()
	m := newTestModel(chat)
	close(chat.done)

	done := make(chan tea.Msg, 1)
	go func() { done <- m.waitForEvent()() }()
	select {
	case msg := <-done:
		next, _ := m.Update(msg)
		assert.Equal(t, domain.StateClosed, next.(Model).state)
	case <-time.After(time.Second):
		t.Fatal("listener did not return")
	}
}

func TestModel_MountFailureStatus(t *testing.T) {
	chat := newFakeChat()
	chat.state = domain.StateFailed
	m := newTestModel(chat)

	next, _ := m.Update(mountedMsg{err: domain.ErrClosed})
	assert.Contains(t, next.(Model).View(), "failed")
}

func TestModel_Resize(t *testing.T) {
	m := newTestModel(newFakeChat())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-headerHeight-inputHeight, m.viewport.Height)
}

func TestModel_MountCommand(t *testing.T) {
	chat := newFakeChat()
	m := newTestModel(chat)

	msg := m.mount()()
	assert.Equal(t, mountedMsg{}, msg)
	assert.Equal(t, 1, chat.mounts)
}

func TestModel_TerminalStateBlocksSend(t *testing.T) {
	chat := newFakeChat()
	m := typeText(newTestModel(chat), "still here")

	chat.events <- service.Event{Kind: service.StateChanged, State: domain.StateFailed}
	next, _ := m.Update(m.waitForEvent()())
	m = next.(Model)
	assert.Equal(t, placeholderUnavailable, m.input.Placeholder)

	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, m.sending)
	assert.Equal(t, "still here", m.input.Value())
	assert.Empty(t, chat.sent)

	chat.events <- service.Event{Kind: service.StateChanged, State: domain.StateConnected}
	next, _ = m.Update(m.waitForEvent()())
	m = next.(Model)
	assert.Equal(t, placeholderDraft, m.input.Placeholder)
}
