package mock

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeevanteja1304/VitalValue/internal/logger"
)

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newFeedClient(conn *websocket.Conn) *feedClient {
	c := &feedClient{
		conn: conn,
		send: make(chan []byte, 8),
	}
	go c.writePump()
	return c
}

func (c *feedClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			return
		}
	}
}

// Feed broadcasts JPEG frames to every connected camera client.
type Feed struct {
	mu       sync.RWMutex
	clients  map[*feedClient]bool
	frames   [][]byte
	interval time.Duration
}

func NewFeed(frames [][]byte, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &Feed{
		clients:  make(map[*feedClient]bool),
		frames:   frames,
		interval: interval,
	}
}

// EncodeFrames JPEG-encodes images for the feed.
func EncodeFrames(imgs []image.Image) ([][]byte, error) {
	out := make([][]byte, 0, len(imgs))
	for _, img := range imgs {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, err
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

func (f *Feed) Add(conn *websocket.Conn) *feedClient {
	c := newFeedClient(conn)
	f.mu.Lock()
	f.clients[c] = true
	f.mu.Unlock()
	return c
}

func (f *Feed) Remove(c *feedClient) {
	f.mu.Lock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()
}

func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Run cycles through the frames until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	if len(f.frames) == 0 {
		return
	}
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case <-ticker.C:
			f.broadcast(f.frames[i%len(f.frames)])
			i++
		}
	}
}

func (f *Feed) broadcast(frame []byte) {
	f.mu.RLock()
	clients := make([]*feedClient, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- frame:
		default:
			// A camera client only needs the newest frame.
			logger.Debug("mock", "feed client behind, frame dropped")
		}
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
}
