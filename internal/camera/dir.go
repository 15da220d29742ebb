package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeevanteja1304/VitalValue/internal/logger"
)

// DirSource replays the JPEG/PNG files of a directory in name order, looping
// forever. It stands in for a webcam in demos and tests.
type DirSource struct {
	dir      string
	interval time.Duration
}

func NewDirSource(dir string, interval time.Duration) *DirSource {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &DirSource{dir: dir, interval: interval}
}

func (s *DirSource) Name() string { return "dir " + s.dir }

func (s *DirSource) Open(ctx context.Context) (Stream, error) {
	frames, err := LoadFrames(s.dir)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	lf := newLatestFrame(cancel)
	lf.publish(frames[0])

	go func() {
		defer close(lf.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		i := 1
		for {
			select {
			case <-streamCtx.Done():
				return
			case <-ticker.C:
				lf.publish(frames[i%len(frames)])
				i++
			}
		}
	}()
	return lf, nil
}

// LoadFrames decodes every image file in dir, sorted by name.
func LoadFrames(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	frames := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := decodeFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("camera", "skipping %s: %v", name, err)
			continue
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", ErrUnavailable, dir)
	}
	return frames, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
