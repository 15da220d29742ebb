// Package theme provides the Lip Gloss color palette and reusable styles
// for the VitalScan TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Metric colors.
var (
	ColorHeart    = lipgloss.Color("#ef4444")
	ColorPressure = lipgloss.Color("#3b82f6")
	ColorStress   = lipgloss.Color("#a855f7")
	ColorDefault  = lipgloss.Color("#9ca3af")
)

// Face indicator colors.
var (
	ColorFace   = lipgloss.Color("#16a34a")
	ColorNoFace = lipgloss.Color("#dc2626")
)

// Stress level colors.
var (
	ColorStressLow      = lipgloss.Color("#22c55e")
	ColorStressModerate = lipgloss.Color("#d97706")
	ColorStressHigh     = lipgloss.Color("#dc2626")
)

// Session state colors.
var (
	ColorIdle      = lipgloss.Color("#4b5563")
	ColorDetecting = lipgloss.Color("#2563eb")
	ColorRecording = lipgloss.Color("#dc2626")
	ColorAwaiting  = lipgloss.Color("#d97706")
	ColorDisplay   = lipgloss.Color("#16a34a")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorAccent  = lipgloss.Color("#06b6d4")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// MetricColor returns the color for a result metric name.
func MetricColor(metric string) lipgloss.Color {
	switch metric {
	case "heart_rate":
		return ColorHeart
	case "blood_pressure":
		return ColorPressure
	case "stress":
		return ColorStress
	default:
		return ColorDefault
	}
}

// StressColor returns the color for a stress level as sent by the backend.
func StressColor(level string) lipgloss.Color {
	switch level {
	case "Low", "low":
		return ColorStressLow
	case "Moderate", "moderate", "Medium", "medium":
		return ColorStressModerate
	case "High", "high":
		return ColorStressHigh
	default:
		return ColorDefault
	}
}

// StateColor returns the color for a session state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "detecting":
		return ColorDetecting
	case "recording":
		return ColorRecording
	case "awaiting_result":
		return ColorAwaiting
	case "displaying_result":
		return ColorDisplay
	default:
		return ColorIdle
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleButton = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(ColorBright).
			Background(ColorAccent)

	StyleButtonDisabled = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(ColorDimmed).
				Background(lipgloss.Color("#1f2937"))
)

// Badge renders text as a solid colored pill.
func Badge(text string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(ColorBright).
		Background(bg).
		Render(text)
}

// StateGlyph returns a Unicode glyph representing a session state.
func StateGlyph(state string) string {
	switch state {
	case "detecting":
		return "◎"
	case "recording":
		return "●"
	case "awaiting_result":
		return "◌"
	case "displaying_result":
		return "✓"
	default:
		return "○"
	}
}
