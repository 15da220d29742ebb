package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jeevanteja1304/VitalValue/internal/logger"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	writeTimeout       = 10 * time.Second
	pongTimeout        = 60 * time.Second
	pingInterval       = 30 * time.Second
)

// WSSource receives binary JPEG frames over a WebSocket feed. A dropped
// connection is redialed with exponential backoff until the stream closes.
type WSSource struct {
	url    string
	dialer *websocket.Dialer

	// baseDelay is the first reconnect delay; tests shorten it.
	baseDelay time.Duration
}

func NewWSSource(url string) *WSSource {
	return &WSSource{url: url, dialer: websocket.DefaultDialer, baseDelay: reconnectBaseDelay}
}

func (s *WSSource) Name() string { return "ws " + s.url }

// Open performs the first dial synchronously so permission and reachability
// errors surface to the caller. Later drops reconnect in the background.
func (s *WSSource) Open(ctx context.Context) (Stream, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	lf := newLatestFrame(cancel)
	go s.run(streamCtx, conn, lf)
	return lf, nil
}

func (s *WSSource) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, resp.Status)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conn, nil
}

func (s *WSSource) run(ctx context.Context, conn *websocket.Conn, lf *latestFrame) {
	defer close(lf.done)

	delay := s.baseDelay
	for {
		err := s.readLoop(ctx, conn, lf)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("camera", "ws feed dropped: %v (retry in %v)", err, delay)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			conn, err = s.dial(ctx)
			if err == nil {
				delay = s.baseDelay
				break
			}
			if errors.Is(err, ErrPermissionDenied) {
				lf.fail(err)
				return
			}
			delay = min(delay*2, reconnectMaxDelay)
		}
	}
}

// readLoop consumes frames until the connection fails or ctx is cancelled.
func (s *WSSource) readLoop(ctx context.Context, conn *websocket.Conn, lf *latestFrame) error {
	var writeMu sync.Mutex
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go pingLoop(pingCtx, conn, &writeMu)

	// Unblock ReadMessage on shutdown.
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(pongTimeout))

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			logger.Debug("camera", "skipping undecodable ws frame: %v", err)
			continue
		}
		lf.publish(img)
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
