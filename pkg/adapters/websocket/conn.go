// Package websocket implements ports.Dialer over gorilla/websocket.
package websocket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/ports"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 * 1024 * 1024
)

// Dialer opens websocket connections.
type Dialer struct {
	dialer *websocket.Dialer
	header http.Header
	logger *slog.Logger
}

type Option func(*Dialer)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dialer) { d.logger = l }
}

// WithHeader adds request headers sent with the handshake.
func WithHeader(h http.Header) Option {
	return func(d *Dialer) { d.header = h.Clone() }
}

// WithHandshakeTimeout bounds the opening handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(d *Dialer) { d.dialer.HandshakeTimeout = timeout }
}

func NewDialer(opts ...Option) *Dialer {
	base := *websocket.DefaultDialer
	d := &Dialer{
		dialer: &base,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial performs the handshake and starts the keepalive pinger.
func (d *Dialer) Dial(ctx context.Context, url string) (ports.Conn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, url, d.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	c := &Conn{
		ws:     ws,
		done:   make(chan struct{}),
		logger: d.logger.With("url", url),
	}
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.pingLoop()
	return c, nil
}

// Conn is one websocket connection. Reads happen on a single goroutine,
// writes are serialized by a mutex.
type Conn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// ReadMessage returns the next text frame. A normal close from the peer is
// reported as io.EOF.
func (c *Conn) ReadMessage() ([]byte, error) {
	for {
		messageType, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Binary messages not supported")
			continue
		}
		return message, nil
	}
}

func (c *Conn) WriteMessage(data []byte) error {
	return c.write(websocket.TextMessage, data)
}

func (c *Conn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// Close sends a close frame and tears the connection down.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.write(websocket.CloseMessage, msg)
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}
