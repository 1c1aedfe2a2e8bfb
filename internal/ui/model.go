package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
	"github.com/weiawesome/wes-io-live/livechat/internal/service"
)

const (
	placeholderDraft       = "Send Message"
	placeholderUnavailable = "Chat unavailable"

	headerHeight = 2
	inputHeight  = 2
	panelHeight  = 3
)

type (
	eventMsg   service.Event
	mountedMsg struct{ err error }
	sentMsg    struct {
		draft string
		err   error
	}
	sessionDoneMsg struct{}
)

// Options configures the chat model.
type Options struct {
	TimestampMode TimestampMode
	SupportAmount string
}

// Model is the bubbletea model for one chat session.
type Model struct {
	ctx      context.Context
	svc      service.LiveChat
	renderer Renderer
	styles   Styles

	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
	ready    bool

	version  uint64
	selected int
	state    domain.ConnState
	mountErr error
	sending  bool

	banOpen       bool
	banTarget     string
	communityOpen bool
	supportOpen   bool
	supportAmount string
}

// NewModel creates the chat view. Init mounts svc with ctx.
func NewModel(ctx context.Context, svc service.LiveChat, opts Options) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = placeholderDraft
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{
		ctx:           ctx,
		svc:           svc,
		renderer:      NewRenderer(styles, opts.TimestampMode),
		styles:        styles,
		input:         ti,
		viewport:      vp,
		selected:      -1,
		state:         svc.State(),
		supportAmount: opts.SupportAmount,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.mount(),
		m.waitForEvent(),
	)
}

func (m Model) mount() tea.Cmd {
	return func() tea.Msg {
		return mountedMsg{err: m.svc.Mount(m.ctx)}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.svc.Events():
			return eventMsg(ev)
		case <-m.svc.Done():
			return sessionDoneMsg{}
		}
	}
}

func (m Model) send(draft string) tea.Cmd {
	return func() tea.Msg {
		return sentMsg{draft: draft, err: m.svc.Send(m.ctx, draft)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			// Esc closes an open overlay before it quits.
			if m.banOpen || m.communityOpen || m.supportOpen {
				m.banOpen, m.communityOpen, m.supportOpen = false, false, false
				return m, nil
			}
			return m, tea.Quit

		case "enter":
			if m.sending || m.state.Terminal() {
				return m, nil
			}
			draft := m.input.Value()
			if draft == "" {
				return m, nil
			}
			m.sending = true
			return m, m.send(draft)

		case "ctrl+b":
			m.toggleBan()
			return m, nil

		case "ctrl+o":
			m.communityOpen = !m.communityOpen
			m.resize()
			return m, nil

		case "ctrl+s":
			m.supportOpen = !m.supportOpen
			m.resize()
			return m, nil

		case "up":
			m.moveSelection(-1)
			return m, nil

		case "down":
			m.moveSelection(1)
			return m, nil
		}

		m.input, tiCmd = m.input.Update(msg)
		return m, tiCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = max(msg.Width-4, 1)
		m.resize()
		m.refresh(true)

	case mountedMsg:
		m.mountErr = msg.err
		m.setState(m.svc.State())
		m.refresh(true)

	case eventMsg:
		if msg.Kind == service.StateChanged {
			m.setState(msg.State)
		}
		m.refresh(false)
		return m, m.waitForEvent()

	case sentMsg:
		m.sending = false
		// The draft survives a failed send and any edits made while sending.
		if msg.err == nil && m.input.Value() == msg.draft {
			m.input.Reset()
		}
		m.refresh(false)
		return m, nil

	case sessionDoneMsg:
		m.setState(domain.StateClosed)
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// setState tracks the connection state. Once the session can no longer
// connect the input says so and Enter stops sending.
func (m *Model) setState(s domain.ConnState) {
	m.state = s
	if s.Terminal() {
		m.input.Placeholder = placeholderUnavailable
	} else {
		m.input.Placeholder = placeholderDraft
	}
}

// refresh redraws the list when the feed changed. It follows the tail unless
// the user scrolled up or has an entry selected.
func (m *Model) refresh(force bool) {
	f := m.svc.Feed()
	v := f.Version()
	if v == m.version && !force {
		return
	}
	m.version = v

	follow := m.selected < 0 && (m.viewport.AtBottom() || force)
	ident, _ := m.svc.Identity()
	m.viewport.SetContent(m.renderer.Render(ident, f.Entries(), m.selected))
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	h := m.height - headerHeight - inputHeight
	if m.banOpen || m.communityOpen || m.supportOpen {
		h -= panelHeight + 2
	}
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(h, 1)
}

func (m *Model) moveSelection(delta int) {
	n := m.svc.Feed().Len()
	if n == 0 {
		m.selected = -1
		return
	}
	switch {
	case m.selected < 0 && delta < 0:
		m.selected = n - 1
	case m.selected < 0:
		m.selected = 0
	default:
		m.selected += delta
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= n {
		// Moving past the newest entry clears the selection.
		m.selected = -1
	}
	m.refresh(true)
	if m.selected >= 0 {
		m.scrollTo(m.selected)
	}
}

func (m *Model) scrollTo(line int) {
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// toggleBan opens the ban overlay for the selected chat line, or the newest
// one when nothing is selected. It only tracks visibility.
func (m *Model) toggleBan() {
	if m.banOpen {
		m.banOpen = false
		m.resize()
		return
	}

	entries := m.svc.Feed().Entries()
	idx := m.selected
	if idx < 0 {
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].Kind == domain.EntryChat {
				idx = i
				break
			}
		}
	}
	if idx < 0 || idx >= len(entries) || entries[idx].Kind != domain.EntryChat {
		return
	}

	ident, _ := m.svc.Identity()
	m.banTarget = SenderLabel(ident, entries[idx].Message)
	m.banOpen = true
	m.resize()
}

func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	if panel := m.panel(); panel != "" {
		b.WriteString("\n")
		b.WriteString(panel)
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Width(max(m.width, 1)).Render(m.input.View()))
	return b.String()
}

func (m Model) header() string {
	title := m.styles.Live.Render("●") + " LIVE Chat"
	status := m.styles.Status.Render(m.statusText())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Width(max(m.width, 1)).Render(title + strings.Repeat(" ", gap) + status)
}

func (m Model) statusText() string {
	if m.mountErr != nil && m.state == domain.StateFailed {
		if _, ok := m.svc.Identity(); !ok {
			return "identity unavailable"
		}
	}
	return m.state.String()
}

func (m Model) panel() string {
	var lines []string
	if m.banOpen {
		lines = append(lines, fmt.Sprintf("Ban %s? (ctrl+b to close)", m.banTarget))
	}
	if m.communityOpen {
		lines = append(lines, "Community: "+strings.Join(m.participants(), ", "))
	}
	if m.supportOpen {
		lines = append(lines, fmt.Sprintf("Support %s (not available yet)", m.supportAmount))
	}
	if len(lines) == 0 {
		return ""
	}
	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

// participants lists the distinct senders seen in this session.
func (m Model) participants() []string {
	ident, _ := m.svc.Identity()
	seen := map[string]bool{}
	var names []string
	for _, e := range m.svc.Feed().Entries() {
		if e.Kind != domain.EntryChat {
			continue
		}
		name := SenderLabel(ident, e.Message)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []string{"nobody yet"}
	}
	return names
}
