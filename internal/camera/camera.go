// Package camera acquires frames from a live source and keeps the most
// recent one available to the presence poller and the session recorder.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/config"
)

var (
	// ErrPermissionDenied is returned when the source refuses access
	// (HTTP 401/403, unreadable frame directory).
	ErrPermissionDenied = errors.New("camera access denied")
	// ErrUnavailable covers every other acquisition failure.
	ErrUnavailable = errors.New("camera unavailable")
	// ErrClosed is reported by a stream after Close.
	ErrClosed = errors.New("camera stream closed")
)

// Frame is one decoded image from the source.
type Frame struct {
	Image image.Image
	Seq   uint64
	At    time.Time
}

// Source opens a live stream.
type Source interface {
	Open(ctx context.Context) (Stream, error)
	Name() string
}

// Stream exposes the latest frame of an open source.
type Stream interface {
	// Latest returns the most recent frame, or false before the first one.
	Latest() (Frame, bool)
	// Err reports why the stream stopped producing frames, if it did.
	Err() error
	Close() error
}

// New builds the source selected in cfg.
func New(cfg config.CameraConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceMJPEG:
		return NewMJPEGSource(cfg.URL), nil
	case config.SourceWS:
		return NewWSSource(cfg.URL), nil
	case config.SourceDir:
		return NewDirSource(cfg.Dir, cfg.FrameInterval), nil
	}
	return nil, fmt.Errorf("camera: unknown source %q", cfg.Source)
}

// latestFrame is the shared single-slot frame buffer behind every Stream.
type latestFrame struct {
	mu     sync.RWMutex
	frame  Frame
	have   bool
	seq    uint64
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

func newLatestFrame(cancel context.CancelFunc) *latestFrame {
	return &latestFrame{cancel: cancel, done: make(chan struct{})}
}

func (l *latestFrame) publish(img image.Image) {
	l.mu.Lock()
	l.seq++
	l.frame = Frame{Image: img, Seq: l.seq, At: time.Now()}
	l.have = true
	l.mu.Unlock()
}

func (l *latestFrame) fail(err error) {
	l.mu.Lock()
	if l.err == nil {
		l.err = err
	}
	l.mu.Unlock()
}

func (l *latestFrame) Latest() (Frame, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frame, l.have
}

func (l *latestFrame) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Close stops the producer goroutine and waits for it to exit.
func (l *latestFrame) Close() error {
	l.cancel()
	<-l.done
	l.fail(ErrClosed)
	return nil
}
