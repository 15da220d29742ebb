package results

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/report"
)

var frags = report.Fragments(client.Vitals{HeartRate: 72, Systolic: 120, Diastolic: 80, Stress: "Low"})

func TestVisibleAfterFrame(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{199 * time.Millisecond, 1},
		{200 * time.Millisecond, 2},
		{399 * time.Millisecond, 2},
		{400 * time.Millisecond, 3},
		{time.Second, 3},
	}
	for _, tt := range tests {
		m, _ := New().Set(frags, 1, start)
		m, _ = m.Update(FrameMsg(start.Add(tt.elapsed)))
		assert.Equal(t, tt.want, m.Visible(), "elapsed %v", tt.elapsed)
	}
}

func TestRevealStaggers(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, cmd := New().Set(frags, 1, start)
	require.NotNil(t, cmd)
	assert.Equal(t, 0, m.Visible())
	assert.Empty(t, m.View())

	m, _ = m.Update(FrameMsg(start.Add(10 * time.Millisecond)))
	assert.Equal(t, 1, m.Visible())
	assert.Contains(t, m.View(), "Heart Rate:")
	assert.NotContains(t, m.View(), "Blood Pressure:")

	m, _ = m.Update(FrameMsg(start.Add(250 * time.Millisecond)))
	assert.Equal(t, 2, m.Visible())

	m, cmd = m.Update(FrameMsg(start.Add(450 * time.Millisecond)))
	assert.Equal(t, 3, m.Visible())
	assert.NotNil(t, cmd, "still sliding")
	out := m.View()
	assert.Contains(t, out, "Blood Pressure:")
	assert.Contains(t, out, "120/80 mmHg")
	assert.Contains(t, out, "Stress Level:")
}

func TestSpringSettles(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, _ := New().Set(frags, 1, start)

	var cmd tea.Cmd
	now := start.Add(500 * time.Millisecond)
	for i := 0; i < 600 && m.Animating(); i++ {
		now = now.Add(time.Second / fps)
		m, cmd = m.Update(FrameMsg(now))
	}
	assert.False(t, m.Animating())
	assert.Nil(t, cmd)
}

func TestSetSameGenerationKeepsState(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m, _ := New().Set(frags, 3, start)
	m, _ = m.Update(FrameMsg(start.Add(time.Second)))
	require.Equal(t, 3, m.Visible())

	m, cmd := m.Set(frags, 3, start.Add(2*time.Second))
	assert.Nil(t, cmd)
	assert.Equal(t, 3, m.Visible())

	m, cmd = m.Set(frags, 4, start.Add(2*time.Second))
	assert.NotNil(t, cmd, "new generation replays")
	assert.Equal(t, 0, m.Visible())
}

func TestSetEmptyClears(t *testing.T) {
	m, _ := New().Set(frags, 1, time.Now())
	m, cmd := m.Set(nil, 2, time.Now())
	assert.Nil(t, cmd)
	assert.Empty(t, m.View())
	assert.False(t, m.Animating())
}
