// Package debug provides a scrollable event log overlay for camera,
// detection, session and auth events.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

const maxEntries = 200

// Event kinds.
const (
	KindCamera  = "cam"
	KindSession = "ses"
	KindAuth    = "auth"
	KindNav     = "nav"
	KindError   = "err"
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// Model holds debug log state.
type Model struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)
	now     func() time.Time
}

// New creates an empty debug model.
func New() Model {
	return Model{now: time.Now}
}

// Add appends a log entry, drops the oldest beyond maxEntries and scrolls
// back to the bottom. Consecutive duplicates only refresh the timestamp.
func (m *Model) Add(kind, message string) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	if n := len(m.Entries); n > 0 && m.Entries[n-1].Kind == kind && m.Entries[n-1].Message == message {
		m.Entries[n-1].Time = now()
		return
	}
	m.Entries = append(m.Entries, Entry{Time: now(), Kind: kind, Message: message})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

// Addf is Add with formatting.
func (m *Model) Addf(kind, format string, args ...any) {
	m.Add(kind, fmt.Sprintf(format, args...))
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.Entries)-1, 0))
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := max(width-4, 20)
	visibleLines := max(height-6, 3)

	title := theme.StyleHeader.Render(" EVENT LOG ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		return panelStyle(innerW).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	end := max(len(m.Entries)-m.Offset, 0)
	start := max(end-visibleLines, 0)

	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(4).Render(e.Kind)
		msg := e.Message
		if limit := innerW - 20; limit > 3 && len(msg) > limit {
			msg = msg[:limit-3] + "..."
		}
		lines = append(lines, ts+" "+kind+" "+msg)
	}

	scroll := ""
	if m.Offset > 0 {
		scroll = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), scroll, help)
	return panelStyle(innerW).Render(content)
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindCamera:
		return theme.ColorAccent
	case KindSession:
		return theme.ColorDetecting
	case KindAuth:
		return theme.ColorStress
	case KindNav:
		return theme.ColorWarning
	case KindError:
		return theme.ColorDanger
	default:
		return theme.ColorDimmed
	}
}
