// Package reportview shows the Markdown measurement report in a scrollable
// overlay, rendered with glamour.
package reportview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

type Model struct {
	// Style is a glamour standard style name; "notty" renders plain text.
	Style    string
	viewport viewport.Model
	markdown string
	// Saved is the path of the written report, if any.
	Saved string
	Err   error
}

func New() Model {
	return Model{Style: "dark", viewport: viewport.New(0, 0)}
}

// Render converts markdown for a terminal of the given width.
func Render(markdown, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// SetReport loads markdown and sizes the viewport.
func (m *Model) SetReport(markdown string, width, height int) {
	m.markdown = markdown
	m.viewport.Width = max(width-4, 20)
	m.viewport.Height = max(height-8, 5)

	out, err := Render(markdown, m.Style, m.viewport.Width)
	if err != nil {
		out = markdown
	}
	m.viewport.SetContent(out)
	m.viewport.GotoTop()
}

// Resize re-renders for a new terminal size.
func (m *Model) Resize(width, height int) {
	if m.markdown == "" {
		return
	}
	m.SetReport(m.markdown, width, height)
}

// Update scrolls the viewport.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	title := theme.StyleHeader.Render(" MEASUREMENT REPORT ")

	var footer string
	switch {
	case m.Err != nil:
		footer = theme.StyleError.Render("Save failed: " + m.Err.Error())
	case m.Saved != "":
		footer = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("Saved to " + m.Saved)
	default:
		footer = theme.StyleDimmed.Render("w:save  j/k:scroll  esc:close")
	}
	pct := theme.StyleDimmed.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), pct+"  "+footer)
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
