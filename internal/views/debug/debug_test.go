package debug

import (
	"strings"
	"testing"
	"time"
)

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add(KindCamera, "stream opened")
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	if m.Entries[0].Kind != KindCamera {
		t.Errorf("expected kind %q, got %q", KindCamera, m.Entries[0].Kind)
	}
}

func TestAddCollapsesDuplicates(t *testing.T) {
	m := New()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	m.Add(KindSession, "Ready to start monitoring.")
	clock = clock.Add(time.Second)
	m.Add(KindSession, "Ready to start monitoring.")

	if len(m.Entries) != 1 {
		t.Fatalf("expected duplicates collapsed, got %d entries", len(m.Entries))
	}
	if !m.Entries[0].Time.Equal(clock) {
		t.Error("duplicate should refresh the timestamp")
	}
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Addf(KindSession, "msg %d", i)
	}
	if len(m.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(m.Entries))
	}
	if m.Entries[0].Message != "msg 50" {
		t.Errorf("oldest entries should be dropped, first is %q", m.Entries[0].Message)
	}
}

func TestScrollUpDown(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Addf(KindSession, "msg %d", i)
	}

	m.ScrollUp(5)
	if m.Offset != 5 {
		t.Errorf("expected offset 5, got %d", m.Offset)
	}
	m.ScrollDown(3)
	if m.Offset != 2 {
		t.Errorf("expected offset 2, got %d", m.Offset)
	}
	m.ScrollDown(10)
	if m.Offset != 0 {
		t.Errorf("expected offset 0, got %d", m.Offset)
	}
	m.ScrollUp(100)
	if m.Offset != 19 {
		t.Errorf("expected offset capped at 19, got %d", m.Offset)
	}
}

func TestViewEmpty(t *testing.T) {
	m := New()
	if v := m.View(80, 20); !strings.Contains(v, "No events") {
		t.Error("empty view should show 'No events' message")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add(KindCamera, "stream opened")
	m.Add(KindError, "vitals request failed")
	v := m.View(100, 20)
	for _, want := range []string{"stream opened", "vitals request failed", "2 entries"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Addf(KindSession, "msg %d", i)
	}
	m.ScrollUp(5)
	m.Add(KindNav, "monitor")
	if m.Offset != 0 {
		t.Error("adding entry should reset scroll to 0")
	}
}
