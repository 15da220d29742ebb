// Package report maps a vitals result to display fragments and to the
// downloadable Markdown report. Nothing here touches the terminal.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/client"
)

// StaggerStep is the reveal delay added per fragment.
const StaggerStep = 200 * time.Millisecond

// Metric identifies a fragment.
type Metric string

const (
	MetricHeartRate     Metric = "heart_rate"
	MetricBloodPressure Metric = "blood_pressure"
	MetricStress        Metric = "stress"
)

// Fragment is one result box.
type Fragment struct {
	Metric Metric
	Icon   string
	Title  string
	Value  string
	Delay  time.Duration
}

// Text is the fragment as a single line, e.g. "Heart Rate: 72 bpm".
func (f Fragment) Text() string {
	return f.Title + ": " + f.Value
}

// Fragments returns the three result fragments in display order, each
// delayed by its index times StaggerStep.
func Fragments(v client.Vitals) []Fragment {
	frags := []Fragment{
		{
			Metric: MetricHeartRate,
			Icon:   "♥",
			Title:  "Heart Rate",
			Value:  client.FormatNumber(v.HeartRate) + " bpm",
		},
		{
			Metric: MetricBloodPressure,
			Icon:   "◉",
			Title:  "Blood Pressure",
			Value:  client.FormatNumber(v.Systolic) + "/" + client.FormatNumber(v.Diastolic) + " mmHg",
		},
		{
			Metric: MetricStress,
			Icon:   "≋",
			Title:  "Stress Level",
			Value:  v.Stress,
		},
	}
	for i := range frags {
		frags[i].Delay = time.Duration(i) * StaggerStep
	}
	return frags
}

// Markdown renders the measurement report.
func Markdown(v client.Vitals, at time.Time) string {
	var b strings.Builder
	b.WriteString("# Vital Signs Report\n\n")
	fmt.Fprintf(&b, "_Measured %s_\n\n", at.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, f := range Fragments(v) {
		fmt.Fprintf(&b, "| %s | %s |\n", f.Title, f.Value)
	}
	b.WriteString("\n> Estimated from a short camera recording. Not a medical device; ")
	b.WriteString("consult a professional for diagnosis.\n")
	return b.String()
}

// Save writes the report into dir and returns the file path.
func Save(dir string, v client.Vitals, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report dir: %w", err)
	}
	path := filepath.Join(dir, "vitals-"+at.Format("20060102-150405")+".md")
	if err := os.WriteFile(path, []byte(Markdown(v, at)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
