package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// TimestampMode selects which clock the HH:MM prefix shows.
type TimestampMode string

const (
	// TimestampReceipt shows when the entry arrived.
	TimestampReceipt TimestampMode = "receipt"
	// TimestampRender shows the time the list is drawn, for every entry.
	TimestampRender TimestampMode = "render"
)

// ParseTimestampMode falls back to receipt time for unknown values.
func ParseTimestampMode(s string) TimestampMode {
	if TimestampMode(strings.ToLower(s)) == TimestampRender {
		return TimestampRender
	}
	return TimestampReceipt
}

// Renderer turns feed entries into display lines. It holds no state.
type Renderer struct {
	Styles Styles
	Mode   TimestampMode
	Now    func() time.Time
}

func NewRenderer(styles Styles, mode TimestampMode) Renderer {
	return Renderer{Styles: styles, Mode: mode, Now: time.Now}
}

// Render draws all entries, one per line. selected is an index into entries,
// or -1 for no selection.
func (r Renderer) Render(ident domain.Identity, entries []domain.Entry, selected int) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := r.Line(ident, e)
		if i == selected {
			line = r.Styles.Selected.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

// Line renders a single entry.
func (r Renderer) Line(ident domain.Identity, e domain.Entry) string {
	switch e.Kind {
	case domain.EntryJoinNotice:
		return r.Styles.Notice.Render(fmt.Sprintf("%s joined the chat.", Sanitize(e.Message.SenderName)))
	case domain.EntryWarning:
		return fmt.Sprintf("%s %s",
			r.Styles.Time.Render(r.clock(e)),
			r.Styles.Warning.Render(fmt.Sprintf("%s: %s", Sanitize(e.Message.SenderName), Sanitize(e.Message.Content))),
		)
	}

	label := SenderLabel(ident, e.Message)
	var sender string
	switch ident.RoleOf(e.Message.SenderID) {
	case domain.RoleStreamer:
		sender = r.Styles.Streamer.Render(label + ":")
	case domain.RoleViewer:
		sender = r.Styles.Viewer.Render(label + ":")
	default:
		sender = r.Styles.Sender.Render(label + ":")
	}
	return fmt.Sprintf("%s %s %s", r.Styles.Time.Render(r.clock(e)), sender, r.Styles.Content.Render(Sanitize(e.Message.Content)))
}

func (r Renderer) clock(e domain.Entry) string {
	t := e.ReceivedAt
	if r.Mode == TimestampRender || t.IsZero() {
		now := r.Now
		if now == nil {
			now = time.Now
		}
		t = now()
	}
	return t.Format("15:04")
}

// SenderLabel names the sender of a message, preferring the name carried in
// the frame and falling back to the known identities, then the raw id.
func SenderLabel(ident domain.Identity, msg domain.InboundMessage) string {
	if name := Sanitize(msg.SenderName); name != "" {
		return name
	}
	switch ident.RoleOf(msg.SenderID) {
	case domain.RoleStreamer:
		if ident.Streamer.Name != "" {
			return ident.Streamer.Name
		}
	case domain.RoleViewer:
		if ident.User.Name != "" {
			return ident.User.Name
		}
	}
	if msg.SenderID.IsZero() {
		return "anonymous"
	}
	return Sanitize(msg.SenderID.String())
}

// Sanitize makes remote text safe to print as part of one line: escape
// sequences are stripped, line breaks and tabs become spaces and other control
// characters are dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}
