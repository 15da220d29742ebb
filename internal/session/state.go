package session

import (
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/report"
)

type State int

const (
	Idle State = iota
	Detecting
	Recording
	AwaitingResult
	DisplayingResult
)

var stateNames = map[State]string{
	Idle:             "idle",
	Detecting:        "detecting",
	Recording:        "recording",
	AwaitingResult:   "awaiting_result",
	DisplayingResult: "displaying_result",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Busy reports whether a countdown or submission is in flight.
func (s State) Busy() bool {
	return s == Recording || s == AwaitingResult
}

// acceptsPresence reports whether poll ticks may update the view.
func (s State) acceptsPresence() bool {
	return s == Detecting || s == DisplayingResult
}

// Indicator is the face-presence badge.
type Indicator int

const (
	IndicatorUnknown Indicator = iota
	IndicatorFace
	IndicatorNoFace
)

// Status and label texts.
const (
	StatusLoading      = "Loading models, please wait..."
	StatusInitCamera   = "Initializing camera..."
	StatusReady        = "Ready to start monitoring."
	StatusPosition     = "Position your face in the camera."
	StatusSending      = "Sending data for processing..."
	StatusComplete     = "Measurement complete."
	StatusUnreachable  = "Could not connect to the server."
	StatusCameraDenied = "Camera access denied."
	StatusModelFailed  = "Could not load models."
	StatusCameraError  = "Camera unavailable."

	LabelStart      = "Start Monitoring"
	LabelMonitoring = "Monitoring..."

	TextFaceDetected = "Face Detected"
	TextNoFace       = "No Face Detected"
)

// View is the complete UI state. The terminal renders it; nothing else
// holds presentation state.
type View struct {
	State         State
	Status        string
	Indicator     Indicator
	IndicatorText string

	StartEnabled bool
	StartLabel   string

	// Remaining and Total are countdown seconds.
	Remaining int
	Total     int

	PlaceholderVisible bool
	LoaderVisible      bool
	ReportVisible      bool

	Fragments  []report.Fragment
	Vitals     *client.Vitals
	MeasuredAt time.Time

	// Err is the most recent failure surfaced in Status.
	Err error
	// Seq increases on every change.
	Seq uint64
}

func initialView(total int) View {
	return View{
		State:              Idle,
		Status:             StatusLoading,
		StartLabel:         LabelStart,
		Total:              total,
		Remaining:          total,
		PlaceholderVisible: true,
	}
}

// clone returns a copy that shares no mutable memory with v.
func (v View) clone() View {
	c := v
	if v.Fragments != nil {
		c.Fragments = append([]report.Fragment(nil), v.Fragments...)
	}
	if v.Vitals != nil {
		vv := *v.Vitals
		c.Vitals = &vv
	}
	return c
}
