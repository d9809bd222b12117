// Package notify implements the ephemeral notification and progress feed.
//
// Notices are keyed by a stable id. Showing a notice under an id that is
// already live updates it in place and restarts its expiry timer, so a burst
// of progress events occupies a single element.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/google/uuid"
)

// Handle identifies a notice. It is returned by Show and accepted by Clear.
type Handle string

// Persistent is the duration for notices that stay until cleared.
const Persistent time.Duration = 0

type entry struct {
	notice     domain.Notice
	timer      clock.Timer
	generation uint64
}

// Feed holds the live notices. Safe for concurrent use.
type Feed struct {
	mu         sync.Mutex
	clock      clock.Clock
	entries    map[Handle]*entry
	order      []Handle
	generation uint64
	listeners  map[int]func([]domain.Notice)
	nextID     int

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Feed.
type Option func(*Feed)

// WithClock sets the clock used for expiry timers.
func WithClock(c clock.Clock) Option {
	return func(f *Feed) {
		f.clock = c
	}
}

// WithLogger configures a logger for the Feed.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// WithMetrics records feed operations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Feed) {
		f.metrics = m
	}
}

// New creates an empty Feed.
func New(opts ...Option) *Feed {
	f := &Feed{
		clock:     clock.Real(),
		entries:   make(map[Handle]*entry),
		listeners: make(map[int]func([]domain.Notice)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type showConfig struct {
	handle   Handle
	progress *float64
}

// ShowOption customizes a Show call.
type ShowOption func(*showConfig)

// WithHandle targets an existing notice, or creates one under that handle.
func WithHandle(h Handle) ShowOption {
	return func(c *showConfig) {
		c.handle = h
	}
}

// WithID is WithHandle for callers holding a plain string id.
func WithID(id string) ShowOption {
	return WithHandle(Handle(id))
}

// WithProgress attaches a completion fraction, clamped to [0,1].
func WithProgress(p float64) ShowOption {
	return func(c *showConfig) {
		p = min(max(p, 0), 1)
		c.progress = &p
	}
}

// Show displays message. Without a handle a new notice is created. With the
// handle of a live notice, that notice's content is replaced and its timer
// restarted. A duration of Persistent keeps the notice until Clear.
func (f *Feed) Show(message string, kind domain.NoticeKind, d time.Duration, opts ...ShowOption) Handle {
	var cfg showConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.handle == "" {
		cfg.handle = Handle(uuid.NewString())
	}

	f.mu.Lock()
	now := f.clock.Now()
	e, exists := f.entries[cfg.handle]
	if exists {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	} else {
		e = &entry{notice: domain.Notice{ID: string(cfg.handle), CreatedAt: now}}
		f.entries[cfg.handle] = e
		f.order = append(f.order, cfg.handle)
	}

	f.generation++
	e.generation = f.generation
	e.notice.Kind = kind
	e.notice.Message = message
	e.notice.Progress = cfg.progress
	e.notice.ExpiresAt = time.Time{}
	if d > 0 {
		e.notice.ExpiresAt = now.Add(d)
		h, gen := cfg.handle, e.generation
		e.timer = f.clock.AfterFunc(d, func() { f.expire(h, gen) })
	}
	snapshot, listeners := f.stateLocked()
	f.mu.Unlock()

	if exists {
		f.metrics.Notice("coalesced", string(kind))
	} else {
		f.metrics.Notice("shown", string(kind))
		f.logger.Debug("notice shown", "id", cfg.handle, "kind", kind)
	}
	notifyAll(listeners, snapshot)
	return cfg.handle
}

// expire removes h if the timer that fired is still the current one.
func (f *Feed) expire(h Handle, generation uint64) {
	f.mu.Lock()
	e, ok := f.entries[h]
	if !ok || e.generation != generation {
		f.mu.Unlock()
		return
	}
	kind := e.notice.Kind
	f.removeLocked(h)
	snapshot, listeners := f.stateLocked()
	f.mu.Unlock()

	f.metrics.Notice("expired", string(kind))
	notifyAll(listeners, snapshot)
}

// Clear removes the notice and cancels its timer. Clearing an unknown or
// already-removed handle does nothing.
func (f *Feed) Clear(h Handle) {
	f.mu.Lock()
	e, ok := f.entries[h]
	if !ok {
		f.mu.Unlock()
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	kind := e.notice.Kind
	f.removeLocked(h)
	snapshot, listeners := f.stateLocked()
	f.mu.Unlock()

	f.metrics.Notice("cleared", string(kind))
	notifyAll(listeners, snapshot)
}

// Get returns the live notice for h.
func (f *Feed) Get(h Handle) (domain.Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[h]
	if !ok {
		return domain.Notice{}, false
	}
	return e.notice, true
}

// Active returns the live notices in creation order.
func (f *Feed) Active() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeLocked()
}

// Len returns the number of live notices.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// OnChange registers fn to receive the active list after every change.
// The returned func unregisters it.
func (f *Feed) OnChange(fn func([]domain.Notice)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *Feed) removeLocked(h Handle) {
	delete(f.entries, h)
	for i, id := range f.order {
		if id == h {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

func (f *Feed) activeLocked() []domain.Notice {
	out := make([]domain.Notice, 0, len(f.order))
	for _, h := range f.order {
		out = append(out, f.entries[h].notice)
	}
	return out
}

func (f *Feed) stateLocked() ([]domain.Notice, []func([]domain.Notice)) {
	if len(f.listeners) == 0 {
		return nil, nil
	}
	listeners := make([]func([]domain.Notice), 0, len(f.listeners))
	for _, l := range f.listeners {
		listeners = append(listeners, l)
	}
	return f.activeLocked(), listeners
}

func notifyAll(listeners []func([]domain.Notice), notices []domain.Notice) {
	for _, l := range listeners {
		l(notices)
	}
}
