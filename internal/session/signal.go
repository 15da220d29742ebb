package session

import (
	"context"
	"image"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/presence"
)

// recorder samples the mean green intensity of each new frame inside the
// face region. Owned by a single goroutine until run returns.
type recorder struct {
	frames  presence.FrameSource
	roi     image.Rectangle
	lastSeq uint64
	samples []float64
}

func newRecorder(frames presence.FrameSource, roi image.Rectangle) *recorder {
	return &recorder{frames: frames, roi: roi, samples: make([]float64, 0, 600)}
}

func (r *recorder) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sample()
		}
	}
}

func (r *recorder) sample() {
	if r.frames.Err() != nil {
		return
	}
	f, ok := r.frames.Latest()
	if !ok || f.Image == nil || (f.Seq == r.lastSeq && len(r.samples) > 0) {
		return
	}
	r.lastSeq = f.Seq
	r.samples = append(r.samples, MeanGreen(f.Image, r.roi))
}

// MeanGreen returns the mean green channel (0-255) of img inside roi. An
// empty roi, or one outside the image, covers the whole frame.
func MeanGreen(img image.Image, roi image.Rectangle) float64 {
	b := img.Bounds()
	r := roi.Intersect(b)
	if r.Empty() {
		r = b
	}
	if r.Empty() {
		return 0
	}

	var sum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			_, g, _, _ := img.At(x, y).RGBA()
			sum += uint64(g >> 8)
		}
	}
	return float64(sum) / float64(r.Dx()*r.Dy())
}
