package presence

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/camera"
	"github.com/jeevanteja1304/VitalValue/internal/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFrames struct {
	have bool
	at   time.Time
	err  error
}

func (s staticFrames) Latest() (camera.Frame, bool) {
	if !s.have {
		return camera.Frame{}, false
	}
	at := s.at
	if at.IsZero() {
		at = time.Now()
	}
	return camera.Frame{Image: image.NewGray(image.Rect(0, 0, 4, 4)), Seq: 1, At: at}, true
}

func (s staticFrames) Err() error { return s.err }

type manualTicker struct {
	mu      sync.Mutex
	chans   []chan time.Time
	stopped int32
}

func (m *manualTicker) factory(time.Duration) (<-chan time.Time, func()) {
	ch := make(chan time.Time)
	m.mu.Lock()
	m.chans = append(m.chans, ch)
	m.mu.Unlock()
	return ch, func() { atomic.AddInt32(&m.stopped, 1) }
}

// fire delivers one tick to the most recent ticker.
func (m *manualTicker) fire(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	ch := m.chans[len(m.chans)-1]
	m.mu.Unlock()
	select {
	case ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("poller did not accept tick")
	}
}

func presentDetector(present bool) detect.Detector {
	return detect.Func(func(context.Context, image.Image) (detect.Result, error) {
		return detect.Result{Present: present}, nil
	})
}

func collect() (func(Tick), <-chan Tick) {
	ch := make(chan Tick, 16)
	return func(t Tick) {
		select {
		case ch <- t:
		default:
		}
	}, ch
}

func next(t *testing.T, ch <-chan Tick) Tick {
	t.Helper()
	select {
	case tk := <-ch:
		return tk
	case <-time.After(time.Second):
		t.Fatal("no tick delivered")
	}
	return Tick{}
}

func TestPollerReportsPresence(t *testing.T) {
	mt := &manualTicker{}
	p := NewPoller(staticFrames{have: true}, presentDetector(true), time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	mt.fire(t)
	tk := next(t, ticks)
	assert.True(t, tk.Present)
	assert.NoError(t, tk.Err)
	assert.Equal(t, uint64(1), tk.Frame.Seq)
}

func TestPollerNoFrame(t *testing.T) {
	mt := &manualTicker{}
	p := NewPoller(staticFrames{}, presentDetector(true), time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	mt.fire(t)
	tk := next(t, ticks)
	assert.False(t, tk.Present)
	assert.ErrorIs(t, tk.Err, ErrNoFrame)
}

func TestPollerDetectorError(t *testing.T) {
	mt := &manualTicker{}
	boom := errors.New("inference failed")
	d := detect.Func(func(context.Context, image.Image) (detect.Result, error) {
		return detect.Result{}, boom
	})
	p := NewPoller(staticFrames{have: true}, d, time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	mt.fire(t)
	tk := next(t, ticks)
	assert.False(t, tk.Present)
	assert.ErrorIs(t, tk.Err, boom)
}

func TestPollerStopIsFinal(t *testing.T) {
	mt := &manualTicker{}
	p := NewPoller(staticFrames{have: true}, presentDetector(false), time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	require.True(t, p.Running())

	p.Stop()
	assert.False(t, p.Running())
	assert.Equal(t, int32(1), atomic.LoadInt32(&mt.stopped))
	assert.Empty(t, ticks)

	// Idempotent.
	p.Stop()
}

func TestPollerRestartReplacesLoop(t *testing.T) {
	mt := &manualTicker{}
	p := NewPoller(staticFrames{have: true}, presentDetector(true), time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	p.Start(context.Background(), onTick)
	defer p.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&mt.stopped), "first loop should be stopped")
	mt.fire(t)
	next(t, ticks)
	assert.Empty(t, ticks)
}

func TestPollerRealTicker(t *testing.T) {
	p := NewPoller(staticFrames{have: true}, presentDetector(true), 10*time.Millisecond, nil)
	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	assert.True(t, next(t, ticks).Present)
}

// countingDetector always finds a face and counts its calls.
type countingDetector struct{ calls int32 }

func (d *countingDetector) Detect(context.Context, image.Image) (detect.Result, error) {
	atomic.AddInt32(&d.calls, 1)
	return detect.Result{Present: true, Faces: []detect.Face{{Bounds: image.Rect(0, 0, 4, 4)}}}, nil
}

func TestPollerStreamError(t *testing.T) {
	mt := &manualTicker{}
	d := &countingDetector{}
	frames := staticFrames{have: true, err: camera.ErrUnavailable}
	p := NewPoller(frames, d, time.Second, nil)
	p.SetTicker(mt.factory)

	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	mt.fire(t)
	tk := next(t, ticks)
	assert.False(t, tk.Present)
	assert.ErrorIs(t, tk.Err, ErrStreamDown)
	assert.ErrorIs(t, tk.Err, camera.ErrUnavailable)
	assert.Zero(t, atomic.LoadInt32(&d.calls), "last frame must not reach the detector")
}

func TestPollerStaleFrame(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		present bool
	}{
		{"fresh", 500 * time.Millisecond, true},
		{"at limit", 3 * time.Second, true},
		{"stale", 3*time.Second + time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
			p := NewPoller(staticFrames{have: true, at: now.Add(-tt.age)}, &countingDetector{}, time.Second, nil)
			p.now = func() time.Time { return now }

			tk := p.poll(context.Background())
			assert.Equal(t, tt.present, tk.Present)
			if tt.present {
				assert.NoError(t, tk.Err)
			} else {
				assert.ErrorIs(t, tk.Err, ErrStreamDown)
			}
		})
	}
}

func TestPollerEndedMJPEGStream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := multipart.NewWriter(w)
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
		part, _ := mw.CreatePart(map[string][]string{"Content-Type": {"image/jpeg"}})
		part.Write(buf.Bytes())
		mw.Close()
	}))
	defer srv.Close()

	stream, err := camera.NewMJPEGSource(srv.URL).Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()
	require.Eventually(t, func() bool { return stream.Err() != nil }, 2*time.Second, 5*time.Millisecond)
	_, ok := stream.Latest()
	require.True(t, ok, "the last frame is still held")

	mt := &manualTicker{}
	d := &countingDetector{}
	p := NewPoller(stream, d, time.Second, nil)
	p.SetTicker(mt.factory)
	onTick, ticks := collect()
	p.Start(context.Background(), onTick)
	defer p.Stop()

	mt.fire(t)
	tk := next(t, ticks)
	assert.False(t, tk.Present)
	assert.ErrorIs(t, tk.Err, ErrStreamDown)
	assert.ErrorIs(t, tk.Err, camera.ErrUnavailable)
	assert.Zero(t, atomic.LoadInt32(&d.calls))
}
