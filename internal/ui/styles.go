package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorStreamer = lipgloss.Color("#FF4AF8")
	colorViewer   = lipgloss.Color("#4ABEFF")
	colorWarning  = lipgloss.Color("#FF0000")
	colorBorder   = lipgloss.Color("#494949")
	colorLive     = lipgloss.Color("#FF3B30")
	colorMuted    = lipgloss.Color("#8A8A9A")
)

// Styles groups the lipgloss styles used by the chat view.
type Styles struct {
	Header   lipgloss.Style
	Live     lipgloss.Style
	Status   lipgloss.Style
	Time     lipgloss.Style
	Streamer lipgloss.Style
	Viewer   lipgloss.Style
	Sender   lipgloss.Style
	Content  lipgloss.Style
	Notice   lipgloss.Style
	Warning  lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style
	Input    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorBorder),
		Live:     lipgloss.NewStyle().Foreground(colorLive).Bold(true),
		Status:   lipgloss.NewStyle().Foreground(colorMuted),
		Time:     lipgloss.NewStyle().Foreground(colorMuted),
		Streamer: lipgloss.NewStyle().Foreground(colorStreamer).Bold(true),
		Viewer:   lipgloss.NewStyle().Foreground(colorViewer).Bold(true),
		Sender:   lipgloss.NewStyle().Bold(true),
		Content:  lipgloss.NewStyle(),
		Notice:   lipgloss.NewStyle().Faint(true).Italic(true),
		Warning:  lipgloss.NewStyle().Foreground(colorWarning),
		Selected: lipgloss.NewStyle().Reverse(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder),
	}
}
