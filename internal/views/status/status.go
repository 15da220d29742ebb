package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Page     string
	State    string
	Camera   string
	CameraOK bool
	Backend  string
	Sessions int
	Width    int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	title := theme.StyleHeader.Render("VitalScan")
	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")

	content := title + sep + m.Page
	if m.State != "" {
		stateStr := lipgloss.NewStyle().Foreground(theme.StateColor(m.State)).
			Render(theme.StateGlyph(m.State) + " " + m.State)
		content += sep + stateStr
	}

	if m.Camera != "" {
		var camStr string
		if m.CameraOK {
			camStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + m.Camera)
		} else {
			camStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ " + m.Camera)
		}
		content += sep + camStr
	}

	if m.Backend != "" {
		content += sep + theme.StyleDimmed.Render(m.Backend)
	}
	if m.Sessions > 0 {
		content += sep + fmt.Sprintf("%d measured", m.Sessions)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
