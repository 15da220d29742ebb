// Package detect wraps the face detection model used to gate monitoring
// sessions.
package detect

import (
	"context"
	"errors"
	"image"
)

// ErrModelLoad is returned when the detection model cannot be loaded.
var ErrModelLoad = errors.New("could not load detection model")

// Face is one detected face in frame coordinates.
type Face struct {
	Bounds  image.Rectangle
	Quality float32
}

// Result is the outcome of one inference call.
type Result struct {
	Present bool
	Faces   []Face
}

// Largest returns the biggest face, or false when none were found.
func (r Result) Largest() (Face, bool) {
	if len(r.Faces) == 0 {
		return Face{}, false
	}
	best := r.Faces[0]
	for _, f := range r.Faces[1:] {
		if f.Bounds.Dx()*f.Bounds.Dy() > best.Bounds.Dx()*best.Bounds.Dy() {
			best = f
		}
	}
	return best, true
}

// Detector reports whether a face is present in a frame.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (Result, error)
}

// Func adapts a plain function to Detector.
type Func func(ctx context.Context, img image.Image) (Result, error)

func (f Func) Detect(ctx context.Context, img image.Image) (Result, error) {
	return f(ctx, img)
}
