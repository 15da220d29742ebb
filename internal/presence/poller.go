// Package presence polls the detection model against the latest camera
// frame at a fixed interval.
package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/camera"
	"github.com/jeevanteja1304/VitalValue/internal/detect"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
	"github.com/jeevanteja1304/VitalValue/internal/metrics"
)

var (
	// ErrNoFrame is reported when the camera has not produced a frame yet.
	ErrNoFrame = errors.New("no frame available")
	// ErrStreamDown wraps a stream failure or a frame older than the stale
	// limit. The last frame is never run through detection in that case.
	ErrStreamDown = errors.New("camera stream down")
)

// Tick is the outcome of one poll.
type Tick struct {
	Present bool
	Result  detect.Result
	Frame   camera.Frame
	Err     error
	At      time.Time
}

// FrameSource is the part of camera.Stream the poller reads.
type FrameSource interface {
	Latest() (camera.Frame, bool)
	Err() error
}

// staleIntervals is how many poll intervals a frame may age before the
// stream counts as down.
const staleIntervals = 3

// TickerFunc creates a ticker channel and its stop function. Tests inject a
// manual channel to drive polls deterministically.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker wraps time.NewTicker.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Poller runs at most one poll loop at a time.
type Poller struct {
	frames    FrameSource
	detector  detect.Detector
	interval  time.Duration
	staleAge  time.Duration
	newTicker TickerFunc
	metrics   *metrics.Metrics
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. m may be nil.
func NewPoller(frames FrameSource, d detect.Detector, interval time.Duration, m *metrics.Metrics) *Poller {
	return &Poller{
		frames:    frames,
		detector:  d,
		interval:  interval,
		staleAge:  staleIntervals * interval,
		newTicker: RealTicker,
		metrics:   m,
		now:       time.Now,
	}
}

// SetTicker replaces the ticker factory. Call before Start.
func (p *Poller) SetTicker(f TickerFunc) {
	p.mu.Lock()
	p.newTicker = f
	p.mu.Unlock()
}

// Start stops any running loop, then begins polling. The first poll happens
// one interval after Start. onTick runs on the poller goroutine and must not
// call Stop or Start.
func (p *Poller) Start(ctx context.Context, onTick func(Tick)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ch, stopTicker := p.newTicker(p.interval)
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ch:
				t := p.poll(loopCtx)
				if loopCtx.Err() != nil {
					return
				}
				onTick(t)
			}
		}
	}()
	logger.Debug("presence", "poller started (every %v)", p.interval)
}

// Stop cancels the running loop and waits for it to exit. After Stop
// returns no further onTick calls happen. Safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked requires p.mu. The loop goroutine never takes p.mu, so waiting
// on done here cannot deadlock.
func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
	logger.Debug("presence", "poller stopped")
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) poll(ctx context.Context) Tick {
	t := Tick{At: p.now()}
	if err := p.frames.Err(); err != nil {
		t.Err = fmt.Errorf("%w: %w", ErrStreamDown, err)
		logger.Warn("presence", "%v", t.Err)
		p.metrics.ObserveDetection(false, t.Err)
		return t
	}
	frame, ok := p.frames.Latest()
	if !ok {
		t.Err = ErrNoFrame
		p.metrics.ObserveDetection(false, t.Err)
		return t
	}
	t.Frame = frame
	if p.staleAge > 0 && t.At.Sub(frame.At) > p.staleAge {
		t.Err = fmt.Errorf("%w: last frame %v old", ErrStreamDown, t.At.Sub(frame.At).Round(time.Millisecond))
		logger.Warn("presence", "%v", t.Err)
		p.metrics.ObserveDetection(false, t.Err)
		return t
	}

	res, err := p.detector.Detect(ctx, frame.Image)
	if err != nil {
		logger.Warn("presence", "detection failed: %v", err)
		t.Err = err
	} else {
		t.Result = res
		t.Present = res.Present
	}
	p.metrics.ObserveDetection(t.Present, t.Err)
	return t
}
