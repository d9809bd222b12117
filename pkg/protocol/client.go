package protocol

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/aretw0/arttic/pkg/ports"
)

// DefaultReconnectDelay is the fixed wait between a failure and the next dial.
const DefaultReconnectDelay = 3 * time.Second

// State is the connection state of the channel.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateErrored:
		return "errored"
	default:
		return "closed"
	}
}

// Client owns the channel and its reconnect loop. Safe for concurrent use.
type Client struct {
	dialer  ports.Dialer
	url     string
	handler domain.EventHandler

	clock         clock.Clock
	delay         time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	onConnect     func()
	onStateChange func(State)

	mu      sync.Mutex
	ctx     context.Context
	unwatch func() bool
	running bool
	state   State
	conn    ports.Conn
	gen     uint64 // incremented for every dial attempt
	failed  uint64 // last generation whose failure was handled
	timer   clock.Timer
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithReconnectDelay overrides DefaultReconnectDelay. Non-positive values are ignored.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithOnConnect registers a callback invoked after every successful dial.
func WithOnConnect(fn func()) Option {
	return func(c *Client) { c.onConnect = fn }
}

// WithOnStateChange registers a callback invoked on every state transition.
func WithOnStateChange(fn func(State)) Option {
	return func(c *Client) { c.onStateChange = fn }
}

// New creates a Client. Nothing is dialed until Open.
func New(dialer ports.Dialer, url string, handler domain.EventHandler, opts ...Option) *Client {
	c := &Client{
		dialer:  dialer,
		url:     url,
		handler: handler,
		clock:   clock.Real(),
		delay:   DefaultReconnectDelay,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open performs the first dial and keeps the channel alive until Close or
// until ctx is cancelled. Calling Open on a running client does nothing.
func (c *Client) Open(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.ctx = ctx
	c.unwatch = context.AfterFunc(ctx, c.Close)
	c.mu.Unlock()

	c.connect()
}

// Close stops the reconnect loop and closes the channel.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn, unwatch := c.conn, c.unwatch
	c.conn, c.unwatch = nil, nil
	changed := c.setStateLocked(StateClosed)
	c.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if changed {
		c.notifyState(StateClosed)
	}
}

// Send encodes and writes one action. It reports false, without error, when
// the channel is not open: nothing is queued for later.
func (c *Client) Send(action domain.Action, payload any) bool {
	c.mu.Lock()
	conn, gen, open := c.conn, c.gen, c.state == StateOpen
	c.mu.Unlock()

	if !open || conn == nil {
		c.logger.Debug("Channel not open, dropping action", "action", action)
		c.metrics.ActionDropped(string(action))
		return false
	}

	data, err := Encode(action, payload)
	if err != nil {
		c.logger.Error("Failed to encode action", "action", action, "error", err)
		c.metrics.ActionDropped(string(action))
		return false
	}
	if err := conn.WriteMessage(data); err != nil {
		c.metrics.ActionDropped(string(action))
		c.fail(gen, err)
		return false
	}
	c.metrics.ActionSent(string(action))
	return true
}

func (c *Client) connect() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.gen++
	gen, ctx := c.gen, c.ctx
	changed := c.setStateLocked(StateConnecting)
	c.mu.Unlock()
	if changed {
		c.notifyState(StateConnecting)
	}

	conn, err := c.dialer.Dial(ctx, c.url)
	if err != nil {
		c.metrics.Dial("error")
		c.fail(gen, err)
		return
	}

	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.setStateLocked(StateOpen)
	c.mu.Unlock()

	c.metrics.Dial("ok")
	c.logger.Info("Channel open", "url", c.url)
	c.notifyState(StateOpen)

	go c.readLoop(gen, conn)
	if c.onConnect != nil {
		c.onConnect()
	}
}

func (c *Client) readLoop(gen uint64, conn ports.Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.fail(gen, err)
			return
		}

		ev, err := Decode(data)
		if err != nil {
			c.logger.Warn("Ignoring malformed message", "error", err)
			continue
		}
		c.metrics.EventReceived(string(ev.Type()))
		if u, ok := ev.(domain.Unrecognized); ok {
			c.logger.Warn("Ignoring unrecognized event", "type", u.Name)
		}

		if !c.current(gen) {
			return
		}
		ev.Accept(c.handler)
	}
}

func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.gen == gen
}

// fail handles the end of one connection attempt. Read errors, write errors
// and dial errors of the same generation schedule a single reconnect.
func (c *Client) fail(gen uint64, err error) {
	c.mu.Lock()
	if !c.running || gen != c.gen || c.failed == gen {
		c.mu.Unlock()
		return
	}
	c.failed = gen
	conn := c.conn
	c.conn = nil

	var states []State
	if !errors.Is(err, io.EOF) {
		c.logger.Warn("Channel error", "error", err)
		if c.setStateLocked(StateErrored) {
			states = append(states, StateErrored)
		}
	}
	if c.setStateLocked(StateClosed) {
		states = append(states, StateClosed)
	}
	if c.timer == nil {
		c.timer = c.clock.AfterFunc(c.delay, c.connect)
		c.metrics.ReconnectScheduled()
	}
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.logger.Info("Channel closed, reconnecting", "delay", c.delay)
	for _, s := range states {
		c.notifyState(s)
	}
}

func (c *Client) setStateLocked(s State) bool {
	if c.state == s {
		return false
	}
	c.state = s
	return true
}

func (c *Client) notifyState(s State) {
	if c.onStateChange != nil {
		c.onStateChange(s)
	}
}
