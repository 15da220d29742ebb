// Package results reveals the result fragments one after another, each
// sliding in on a spring once its delay has passed.
package results

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeevanteja1304/VitalValue/internal/report"
	"github.com/jeevanteja1304/VitalValue/internal/theme"
)

const (
	fps = 60
	// slideFrom is the starting indent of a fragment, in columns.
	slideFrom = 16.0
	settled   = 0.05
	boxWidth  = 40
)

// FrameMsg advances the animation.
type FrameMsg time.Time

type slot struct {
	frag     report.Fragment
	pos      float64
	vel      float64
	revealed bool
}

type Model struct {
	slots  []slot
	start  time.Time
	spring harmonica.Spring
	seq    uint64
}

func New() Model {
	return Model{spring: harmonica.NewSpring(harmonica.FPS(fps), 7.0, 0.6)}
}

// Set replaces the fragments and restarts the reveal at now. Setting the
// same generation again is a no-op so repeated views do not replay the
// animation.
func (m Model) Set(frags []report.Fragment, seq uint64, now time.Time) (Model, tea.Cmd) {
	if len(frags) == 0 {
		m.slots = nil
		m.seq = 0
		return m, nil
	}
	if seq == m.seq && len(m.slots) == len(frags) {
		return m, nil
	}
	m.seq = seq
	m.start = now
	m.slots = make([]slot, len(frags))
	for i, f := range frags {
		m.slots[i] = slot{frag: f, pos: slideFrom}
	}
	return m, frame()
}

func frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

// Update steps the springs. It keeps ticking until every fragment has been
// revealed and settled.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	fm, ok := msg.(FrameMsg)
	if !ok || len(m.slots) == 0 {
		return m, nil
	}
	m = m.step(time.Time(fm))
	if m.Animating() {
		return m, frame()
	}
	return m, nil
}

func (m Model) step(now time.Time) Model {
	elapsed := now.Sub(m.start)
	slots := make([]slot, len(m.slots))
	copy(slots, m.slots)
	for i := range slots {
		s := &slots[i]
		if elapsed < s.frag.Delay {
			continue
		}
		s.revealed = true
		s.pos, s.vel = m.spring.Update(s.pos, s.vel, 0)
	}
	m.slots = slots
	return m
}

// Animating reports whether any fragment is still hidden or moving.
func (m Model) Animating() bool {
	for _, s := range m.slots {
		if !s.revealed || math.Abs(s.pos) > settled || math.Abs(s.vel) > settled {
			return true
		}
	}
	return false
}

// Visible is the number of fragments revealed so far.
func (m Model) Visible() int {
	n := 0
	for _, s := range m.slots {
		if s.revealed {
			n++
		}
	}
	return n
}

// View renders the revealed fragments.
func (m Model) View() string {
	var boxes []string
	for _, s := range m.slots {
		if !s.revealed {
			continue
		}
		indent := int(math.Round(math.Max(s.pos, 0)))
		boxes = append(boxes, lipgloss.NewStyle().MarginLeft(indent).Render(box(s.frag)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func box(f report.Fragment) string {
	color := theme.MetricColor(string(f.Metric))
	icon := lipgloss.NewStyle().Foreground(color).Render(f.Icon)
	value := lipgloss.NewStyle().Bold(true)
	if f.Metric == report.MetricStress {
		value = value.Foreground(theme.StressColor(f.Value))
	}
	line := icon + " " + f.Title + ":  " + value.Render(f.Value)
	return lipgloss.NewStyle().
		Width(boxWidth).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Render(line)
}
