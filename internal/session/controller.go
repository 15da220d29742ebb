// Package session runs a monitoring session: it gates the start control on
// face presence, counts down the recording window, submits to the vitals
// backend and publishes the result as a View.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/camera"
	"github.com/jeevanteja1304/VitalValue/internal/client"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
	"github.com/jeevanteja1304/VitalValue/internal/presence"
	"github.com/jeevanteja1304/VitalValue/internal/report"
)

var (
	// ErrNotReady is returned when the start control is disabled.
	ErrNotReady = errors.New("start control disabled")
	// ErrBusy is returned while a countdown or submission is in flight.
	ErrBusy = errors.New("session in progress")
)

// VitalsBackend submits a recording. signal is nil unless raw signal capture
// is enabled.
type VitalsBackend interface {
	Process(ctx context.Context, signal []float64) (*client.Vitals, error)
}

// Presence is the face poller the controller pauses during a session.
type Presence interface {
	Start(ctx context.Context, onTick func(presence.Tick))
	Stop()
}

// Options tune a Controller. Zero values fall back to the defaults.
type Options struct {
	// Ticks is the countdown length; Tick is its period.
	Ticks int
	Tick  time.Duration

	// SendSignal records the mean face green level of each frame and
	// submits it with the request.
	SendSignal    bool
	FrameInterval time.Duration

	NewTicker presence.TickerFunc
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

const (
	defaultTicks         = 20
	defaultTick          = time.Second
	defaultFrameInterval = 33 * time.Millisecond
)

// Controller owns the session state machine. All methods are safe for
// concurrent use.
type Controller struct {
	backend   VitalsBackend
	opts      Options
	newTicker presence.TickerFunc
	metrics   *metrics.Metrics
	now       func() time.Time

	updates chan View

	mu       sync.Mutex
	poller   Presence
	frames   presence.FrameSource
	view     View
	ctx      context.Context
	cancel   context.CancelFunc
	lastFace image.Rectangle
	wg       sync.WaitGroup
	closed   bool
}

// New creates a controller in the Idle state with the start control
// disabled. Call Activate once the camera and model are ready.
func New(backend VitalsBackend, opts Options) *Controller {
	if opts.Ticks <= 0 {
		opts.Ticks = defaultTicks
	}
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultFrameInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = presence.RealTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:   backend,
		opts:      opts,
		newTicker: opts.NewTicker,
		metrics:   opts.Metrics,
		now:       opts.Now,
		updates:   make(chan View, 1),
		view:      initialView(opts.Ticks),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Updates delivers a View after every change. Only the latest undelivered
// View is kept.
func (c *Controller) Updates() <-chan View {
	return c.updates
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// SetStatus replaces the status line while idle, e.g. during camera setup.
func (c *Controller) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.State != Idle {
		return
	}
	c.view.Status = status
	c.emitLocked()
}

// Fail leaves the controller Idle with the start control disabled. Used when
// the camera or detection model cannot be set up.
func (c *Controller) Fail(err error, status string) {
	logger.Error("session", "setup failed: %v", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.State = Idle
	c.view.Status = status
	c.view.Err = err
	c.view.StartEnabled = false
	c.emitLocked()
}

// Activate starts p against the camera frames. The start control becomes
// enabled on the first tick that detects a face.
func (c *Controller) Activate(p Presence, frames presence.FrameSource) {
	c.mu.Lock()
	if c.closed || c.poller != nil {
		c.mu.Unlock()
		return
	}
	c.poller = p
	c.frames = frames
	c.view.State = Detecting
	c.view.Status = StatusPosition
	c.view.Err = nil
	c.emitLocked()
	ctx := c.ctx
	c.mu.Unlock()

	p.Start(ctx, c.onPresence)
	logger.Info("session", "face detection active")
}

func (c *Controller) onPresence(t presence.Tick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.view.State.acceptsPresence() {
		return
	}
	streamDown := errors.Is(t.Err, presence.ErrStreamDown)
	switch {
	case t.Present:
		c.view.Indicator = IndicatorFace
		c.view.IndicatorText = TextFaceDetected
		c.view.StartEnabled = true
		c.view.Status = StatusReady
		if f, ok := t.Result.Largest(); ok {
			c.lastFace = f.Bounds
		}
	case streamDown:
		c.view.Indicator = IndicatorUnknown
		c.view.IndicatorText = ""
		c.view.StartEnabled = false
		c.view.Status = StatusCameraError
		if errors.Is(t.Err, camera.ErrPermissionDenied) {
			c.view.Status = StatusCameraDenied
		}
		c.lastFace = image.Rectangle{}
	default:
		c.view.Indicator = IndicatorNoFace
		c.view.IndicatorText = TextNoFace
		c.view.StartEnabled = false
		c.view.Status = StatusPosition
		c.lastFace = image.Rectangle{}
	}
	switch {
	case streamDown:
		c.view.Err = t.Err
	case errors.Is(c.view.Err, presence.ErrStreamDown):
		c.view.Err = nil
	}
	c.emitLocked()
}

// StartMonitoring begins a countdown. It fails with ErrBusy while a session
// is in flight and ErrNotReady when no face is detected.
func (c *Controller) StartMonitoring() error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrNotReady
	case c.view.State.Busy():
		c.mu.Unlock()
		return ErrBusy
	case !c.view.State.acceptsPresence() || !c.view.StartEnabled:
		c.mu.Unlock()
		return ErrNotReady
	}

	c.view.State = Recording
	c.view.StartEnabled = false
	c.view.StartLabel = LabelMonitoring
	c.view.Fragments = nil
	c.view.Vitals = nil
	c.view.MeasuredAt = time.Time{}
	c.view.ReportVisible = false
	c.view.LoaderVisible = false
	c.view.PlaceholderVisible = true
	c.view.Err = nil
	c.view.Remaining = c.opts.Ticks
	c.view.Status = recordingStatus(c.opts.Ticks)
	c.emitLocked()

	ctx := c.ctx
	roi := c.lastFace
	poller := c.poller
	var frames presence.FrameSource
	if c.opts.SendSignal {
		frames = c.frames
	}
	c.wg.Add(1)
	c.mu.Unlock()

	poller.Stop()
	c.metrics.SessionStarted()
	logger.Info("session", "monitoring started (%d ticks)", c.opts.Ticks)

	go c.run(ctx, poller, frames, roi)
	return nil
}

func recordingStatus(remaining int) string {
	return fmt.Sprintf("Recording... %ds remaining", remaining)
}

func (c *Controller) run(ctx context.Context, poller Presence, frames presence.FrameSource, roi image.Rectangle) {
	defer c.wg.Done()

	var collect func() []float64
	if frames != nil {
		rec := newRecorder(frames, roi)
		recCtx, stopRec := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			rec.run(recCtx, c.opts.FrameInterval)
		}()
		collect = func() []float64 {
			stopRec()
			<-done
			return rec.samples
		}
	}

	ok := c.countdown(ctx)
	var signal []float64
	if collect != nil {
		signal = collect()
	}
	if !ok {
		return
	}
	c.submit(ctx, signal)
	if ctx.Err() == nil {
		poller.Start(ctx, c.onPresence)
	}
}

// countdown returns false when cancelled.
func (c *Controller) countdown(ctx context.Context) bool {
	ch, stop := c.newTicker(c.opts.Tick)
	defer stop()

	for remaining := c.opts.Ticks; remaining > 0; {
		select {
		case <-ctx.Done():
			return false
		case <-ch:
			remaining--
			c.mu.Lock()
			c.view.Remaining = remaining
			if remaining > 0 {
				c.view.Status = recordingStatus(remaining)
			}
			c.emitLocked()
			c.mu.Unlock()
		}
	}
	return true
}

func (c *Controller) submit(ctx context.Context, signal []float64) {
	c.mu.Lock()
	c.view.State = AwaitingResult
	c.view.Status = StatusSending
	c.view.StartLabel = LabelStart
	c.view.PlaceholderVisible = false
	c.view.LoaderVisible = true
	c.emitLocked()
	c.mu.Unlock()

	logger.Info("session", "submitting recording (%d samples)", len(signal))
	start := c.now()
	vitals, err := c.backend.Process(ctx, signal)
	if err == nil && vitals == nil {
		err = client.ErrNetwork
	}
	c.metrics.ObserveSession(err == nil, c.now().Sub(start).Seconds())

	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	c.view.LoaderVisible = false
	if err != nil {
		logger.Warn("session", "vitals request failed: %v", err)
		c.view.State = Detecting
		c.view.Status = StatusUnreachable
		c.view.Err = err
		c.view.PlaceholderVisible = true
		c.view.ReportVisible = false
	} else {
		logger.Info("session", "vitals received: hr=%s bp=%s/%s stress=%s",
			client.FormatNumber(vitals.HeartRate), client.FormatNumber(vitals.Systolic),
			client.FormatNumber(vitals.Diastolic), vitals.Stress)
		c.view.State = DisplayingResult
		c.view.Status = StatusComplete
		c.view.Fragments = report.Fragments(*vitals)
		c.view.Vitals = vitals
		c.view.MeasuredAt = c.now()
		c.view.ReportVisible = true
	}
	c.view.StartEnabled = false
	c.emitLocked()
	c.mu.Unlock()
}

// Shutdown cancels any countdown or in-flight request, stops the poller and
// waits for the session goroutine to exit.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	poller := c.poller
	c.mu.Unlock()

	c.wg.Wait()
	if poller != nil {
		poller.Stop()
	}
	logger.Debug("session", "controller shut down")
}

// emitLocked publishes the view, replacing an undelivered one. Requires c.mu.
func (c *Controller) emitLocked() {
	c.view.Seq++
	v := c.view.clone()
	select {
	case c.updates <- v:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- v:
	default:
	}
}
