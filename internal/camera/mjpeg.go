package camera

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jeevanteja1304/VitalValue/internal/logger"
)

// MJPEGSource reads a multipart/x-mixed-replace JPEG stream, the format
// served by most webcam bridges and IP cameras.
type MJPEGSource struct {
	url    string
	client *http.Client
}

func NewMJPEGSource(url string) *MJPEGSource {
	return &MJPEGSource{url: url, client: &http.Client{}}
}

func (s *MJPEGSource) Name() string { return "mjpeg " + s.url }

// Open connects and starts decoding parts in the background. It returns
// once the response headers are validated, not after the first frame.
func (s *MJPEGSource) Open(ctx context.Context) (Stream, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, s.url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, resp.Status)
	case resp.StatusCode >= 300:
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: not an mjpeg stream (%q)", ErrUnavailable, resp.Header.Get("Content-Type"))
	}

	lf := newLatestFrame(cancel)
	go s.readParts(resp.Body, params["boundary"], lf)
	return lf, nil
}

func (s *MJPEGSource) readParts(body io.ReadCloser, boundary string, lf *latestFrame) {
	defer close(lf.done)
	defer body.Close()

	mr := multipart.NewReader(body, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Warn("camera", "mjpeg stream ended: %v", err)
			}
			lf.fail(fmt.Errorf("%w: %v", ErrUnavailable, err))
			return
		}
		img, err := jpeg.Decode(part)
		part.Close()
		if err != nil {
			logger.Debug("camera", "skipping undecodable part: %v", err)
			continue
		}
		lf.publish(img)
	}
}
