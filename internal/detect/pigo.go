package detect

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	"golang.org/x/image/draw"

	"github.com/jeevanteja1304/VitalValue/internal/config"
)

// PigoDetector runs the pigo pixel-intensity cascade over a grayscale,
// downscaled copy of each frame.
type PigoDetector struct {
	classifier *pigo.Pigo
	minSize    int
	maxSize    int
	quality    float32
	scaleWidth int
}

// LoadPigo unpacks the cascade file named in cfg.
func LoadPigo(cfg config.DetectionConfig) (*PigoDetector, error) {
	data, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return NewPigo(data, cfg)
}

// NewPigo builds a detector from an in-memory cascade.
func NewPigo(cascade []byte, cfg config.DetectionConfig) (*PigoDetector, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return &PigoDetector{
		classifier: classifier,
		minSize:    cfg.MinFace,
		maxSize:    cfg.MaxFace,
		quality:    cfg.Quality,
		scaleWidth: cfg.ScaleWidth,
	}, nil
}

func (d *PigoDetector) Detect(ctx context.Context, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	small, factor := Downscale(img, d.scaleWidth)
	b := small.Bounds()
	cols, rows := b.Dx(), b.Dy()

	params := pigo.CascadeParams{
		MinSize:     max(1, int(float64(d.minSize)/factor)),
		MaxSize:     max(1, int(float64(d.maxSize)/factor)),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(small),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	var res Result
	origin := img.Bounds().Min
	for _, det := range dets {
		if det.Q < d.quality {
			continue
		}
		half := float64(det.Scale) / 2
		r := image.Rect(
			int((float64(det.Col)-half)*factor),
			int((float64(det.Row)-half)*factor),
			int((float64(det.Col)+half)*factor),
			int((float64(det.Row)+half)*factor),
		).Add(origin).Intersect(img.Bounds())
		res.Faces = append(res.Faces, Face{Bounds: r, Quality: det.Q})
	}
	res.Present = len(res.Faces) > 0
	return res, nil
}

// Downscale returns img scaled to at most width pixels wide together with the
// factor that maps scaled coordinates back to the original. Images already
// narrow enough are copied into an NRGBA without scaling.
func Downscale(img image.Image, width int) (*image.NRGBA, float64) {
	b := img.Bounds()
	factor := 1.0
	w, h := b.Dx(), b.Dy()
	if width > 0 && w > width {
		factor = float64(w) / float64(width)
		w = width
		h = max(1, int(float64(h)/factor))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if factor == 1.0 {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return dst, factor
}
