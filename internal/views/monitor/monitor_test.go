package monitor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeevanteja1304/VitalValue/internal/session"
)

func TestElapsed(t *testing.T) {
	assert.Equal(t, 0.0, Elapsed(session.View{Total: 20, Remaining: 20}))
	assert.Equal(t, 0.25, Elapsed(session.View{Total: 20, Remaining: 15}))
	assert.Equal(t, 1.0, Elapsed(session.View{Total: 20, Remaining: 0}))
	assert.Equal(t, 0.0, Elapsed(session.View{}))
}

func TestViewReady(t *testing.T) {
	m := New()
	out := m.View(session.View{
		State:         session.Detecting,
		Status:        session.StatusReady,
		Indicator:     session.IndicatorFace,
		IndicatorText: session.TextFaceDetected,
		StartEnabled:  true,
		StartLabel:    session.LabelStart,
	})
	assert.Contains(t, out, "Face Detected")
	assert.Contains(t, out, "Start Monitoring")
	assert.Contains(t, out, "press s")
	assert.Contains(t, out, session.StatusReady)
}

func TestViewRecording(t *testing.T) {
	m := New()
	out := m.View(session.View{
		State:      session.Recording,
		Status:     "Recording... 12s remaining",
		StartLabel: session.LabelMonitoring,
		Total:      20,
		Remaining:  12,
	})
	assert.Contains(t, out, "REC  12s")
	assert.Contains(t, out, "Monitoring...")
	assert.False(t, strings.Contains(out, "press s"), "disabled control shows no hint")
}

func TestViewLoader(t *testing.T) {
	m := New()
	out := m.View(session.View{
		State:         session.AwaitingResult,
		Status:        session.StatusSending,
		LoaderVisible: true,
		StartLabel:    session.LabelStart,
	})
	assert.Contains(t, out, session.StatusSending)
	assert.Contains(t, out, m.Spinner.View())
}
