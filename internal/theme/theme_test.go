package theme

import "testing"

func TestStressColor(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"Low", string(ColorStressLow)},
		{"Moderate", string(ColorStressModerate)},
		{"medium", string(ColorStressModerate)},
		{"High", string(ColorStressHigh)},
		{"???", string(ColorDefault)},
	}
	for _, tt := range tests {
		if got := string(StressColor(tt.level)); got != tt.want {
			t.Errorf("StressColor(%q) = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestStateGlyph(t *testing.T) {
	if StateGlyph("recording") != "●" {
		t.Error("recording glyph")
	}
	if StateGlyph("bogus") != "○" {
		t.Error("unknown state should fall back to idle glyph")
	}
}
