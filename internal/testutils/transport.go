// Package testutils provides in-memory fakes shared by package tests.
package testutils

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aretw0/arttic/pkg/ports"
	"github.com/stretchr/testify/require"
)

// ErrDialRefused is returned by FakeDialer while failures are queued.
var ErrDialRefused = errors.New("dial refused")

// FakeConn is an in-memory ports.Conn. Inbound messages are queued with Push
// and outbound messages are recorded for inspection.
type FakeConn struct {
	inbound chan []byte
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	err     error
	written [][]byte
}

func NewFakeConn() *FakeConn {
	return &FakeConn{
		inbound: make(chan []byte, 256),
		done:    make(chan struct{}),
	}
}

func (c *FakeConn) ReadMessage() ([]byte, error) {
	select {
	case msg := <-c.inbound:
		return msg, nil
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return nil, c.err
	}
}

func (c *FakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.done:
		return io.ErrClosedPipe
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *FakeConn) Close() error {
	c.terminate(io.EOF)
	return nil
}

// Fail ends the connection as if the network broke.
func (c *FakeConn) Fail(err error) {
	c.terminate(err)
}

func (c *FakeConn) terminate(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.done)
	})
}

// Closed reports whether Close or Fail was called.
func (c *FakeConn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Push queues a raw inbound message.
func (c *FakeConn) Push(msg []byte) {
	c.inbound <- msg
}

// PushEvent queues an inbound {type, data} message.
func (c *FakeConn) PushEvent(t *testing.T, eventType string, data any) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": eventType, "data": data})
	require.NoError(t, err)
	c.Push(raw)
}

// Pending reports how many pushed messages have not been read yet.
func (c *FakeConn) Pending() int {
	return len(c.inbound)
}

// Sent decodes every outbound {action, payload} message.
func (c *FakeConn) Sent(t *testing.T) []SentAction {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentAction, 0, len(c.written))
	for _, raw := range c.written {
		var a SentAction
		require.NoError(t, json.Unmarshal(raw, &a))
		out = append(out, a)
	}
	return out
}

// SentAction is one decoded outbound message.
type SentAction struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

// FakeDialer hands out FakeConns and records every dial.
type FakeDialer struct {
	mu       sync.Mutex
	conns    []*FakeConn
	failures int
	dials    int
	urls     []string
}

// FailNext makes the next n dials return ErrDialRefused.
func (d *FakeDialer) FailNext(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures = n
}

func (d *FakeDialer) Dial(ctx context.Context, url string) (ports.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.urls = append(d.urls, url)
	if d.failures > 0 {
		d.failures--
		return nil, ErrDialRefused
	}
	conn := NewFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

// Dials returns the number of dial attempts.
func (d *FakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// Last returns the most recent successful connection, or nil.
func (d *FakeDialer) Last() *FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// URLs returns the dialed URLs in order.
func (d *FakeDialer) URLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.urls...)
}
