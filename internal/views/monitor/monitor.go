// Package monitor renders the monitoring page: camera panel with the face
// indicator, the start control, the countdown and the status line.
package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/session"
	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

const (
	panelWidth  = 44
	panelHeight = 9
)

// Model holds the animated widgets. Everything else comes from the
// session.View passed to View.
type Model struct {
	Spinner  spinner.Model
	Progress progress.Model
	Width    int
}

func New() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorAccent)

	p := progress.New(progress.WithGradient(string(theme.ColorRecording), string(theme.ColorAwaiting)))
	p.Width = panelWidth
	return Model{Spinner: s, Progress: p}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.Spinner, cmd = m.Spinner.Update(msg)
	return m, cmd
}

// Elapsed is the fraction of the countdown already recorded.
func Elapsed(v session.View) float64 {
	if v.Total <= 0 {
		return 0
	}
	return float64(v.Total-v.Remaining) / float64(v.Total)
}

// View renders the page for v.
func (m Model) View(v session.View) string {
	sections := []string{
		m.cameraPanel(v),
		"",
		m.button(v),
	}

	if v.State == session.Recording {
		sections = append(sections, "", m.Progress.ViewAs(Elapsed(v)))
	}

	status := v.Status
	if v.LoaderVisible {
		status = m.Spinner.View() + " " + status
	}
	sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.ColorBright).Render(status))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) cameraPanel(v session.View) string {
	var badge string
	switch v.Indicator {
	case session.IndicatorFace:
		badge = theme.Badge(v.IndicatorText, theme.ColorFace)
	case session.IndicatorNoFace:
		badge = theme.Badge(v.IndicatorText, theme.ColorNoFace)
	default:
		badge = theme.StyleDimmed.Render("waiting for camera")
	}

	var body string
	switch {
	case v.State == session.Recording:
		body = lipgloss.NewStyle().Foreground(theme.ColorRecording).Bold(true).
			Render(fmt.Sprintf("● REC  %02ds", v.Remaining))
	case v.Indicator == session.IndicatorFace:
		body = faceGlyph
	default:
		body = theme.StyleDimmed.Render(emptyGlyph)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, body, "", badge)
	return theme.StyleBorder.
		Width(panelWidth).
		Height(panelHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m Model) button(v session.View) string {
	label := "[ " + v.StartLabel + " ]"
	if v.StartEnabled {
		return theme.StyleButton.Render(label) + theme.StyleDimmed.Render("  press s")
	}
	return theme.StyleButtonDisabled.Render(label)
}

var faceGlyph = strings.Join([]string{
	"  .---.  ",
	" ( o o ) ",
	"  \\ - /  ",
	"   '-'   ",
}, "\n")

var emptyGlyph = strings.Join([]string{
	"  .- -.  ",
	" (  ?  ) ",
	"  \\   /  ",
	"   '-'   ",
}, "\n")
