package session

import (
	"log/slog"
	"sync"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/domain"
)

// Listener is notified after every committed update with the state before
// and after it.
type Listener func(old, new Snapshot)

// Store is the session parameter store. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	params    domain.Params
	revision  uint64
	listeners []Listener
	logger    *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithParams overrides individual defaults at construction time.
func WithParams(p domain.Params) Option {
	return func(s *Store) {
		for k, v := range p {
			s.params[k] = v
		}
	}
}

// NewStore creates a Store populated with domain.DefaultParams.
func NewStore(opts ...Option) *Store {
	s := &Store{
		params: domain.DefaultParams(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tx is the write handle passed to Update. Reads see the transaction's own
// pending writes.
type Tx struct {
	base    domain.Params
	pending domain.Params
}

// Set stages a write.
func (tx *Tx) Set(key domain.Key, value any) {
	tx.pending[key] = value
}

// Get returns the staged value for key, falling back to the committed one.
func (tx *Tx) Get(key domain.Key) any {
	if v, ok := tx.pending[key]; ok {
		return v
	}
	return tx.base[key]
}

// Update runs fn and commits all its writes at once. Readers see either the
// state before fn or the state after it. fn must not call back into s.
func (s *Store) Update(fn func(tx *Tx)) {
	s.mu.Lock()
	tx := &Tx{base: s.params, pending: make(domain.Params)}
	fn(tx)
	if len(tx.pending) == 0 {
		s.mu.Unlock()
		return
	}

	old := Snapshot{params: s.params, revision: s.revision}
	next := make(domain.Params, len(s.params))
	for k, v := range s.params {
		next[k] = v
	}
	for k, v := range tx.pending {
		next[k] = cloneValue(v)
	}
	s.params = next
	s.revision++
	current := Snapshot{params: s.params, revision: s.revision}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("session updated", "revision", current.revision, "keys", len(tx.pending))
	for _, l := range listeners {
		l(old, current)
	}
}

// Set writes a single value.
func (s *Store) Set(key domain.Key, value any) {
	s.Update(func(tx *Tx) { tx.Set(key, value) })
}

// Get returns the current value for key.
func (s *Store) Get(key domain.Key) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneValue(s.params[key])
}

// Snapshot returns an immutable view of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{params: s.params, revision: s.revision}
}

// Subscribe registers l for every future commit. The returned func removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = func(Snapshot, Snapshot) {}
		}
	}
}

func cloneValue(v any) any {
	if b, ok := v.([]byte); ok && b != nil {
		return append([]byte(nil), b...)
	}
	return v
}
