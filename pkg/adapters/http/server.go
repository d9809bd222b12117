// Package http serves a read-mostly introspection API over a running session:
// state snapshots, node views, notices, the gallery, Prometheus metrics and a
// server-sent event stream of changes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/api"
	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/aretw0/arttic/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stream topics accepted by the ?watch= filter of GET /events.
const (
	TopicParams = "params"
	TopicState  = "state"
)

// Session is the part of arttic.Session the server needs.
type Session interface {
	Status() arttic.Status
	Subscribe() (<-chan struct{}, func())
	Store() *session.Store
	Canvas() *canvas.Engine

	LoadModel() error
	UnloadModel() error
	Generate() error
	ClearCache() error
	RandomizeSeed() (int64, error)
	SetParams(domain.Params) error
}

// Server implements ServerInterface over a Session.
type Server struct {
	Session Session
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

var _ ServerInterface = (*Server)(nil)

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer enables GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler creates the HTTP handler and starts forwarding session changes
// to stream subscribers until ctx is done.
func NewHandler(ctx context.Context, sess Session, opts ...Option) http.Handler {
	s := &Server{
		Session: sess,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	s.forward(ctx)

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	handler := HandlerFromMux(s, MustLoadSpec(), r, s.requestError)
	return enableCORS(handler)
}

// requestError answers requests rejected by the OpenAPI document.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// forward turns store diffs and session signals into stream messages.
func (s *Server) forward(ctx context.Context) {
	unsubscribe := s.Session.Store().Subscribe(func(old, cur session.Snapshot) {
		diff := cur.Diff(old)
		if diff == nil {
			return
		}
		if b, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(TopicParams, string(b))
		}
	})

	changes, cancel := s.Session.Subscribe()
	go func() {
		defer cancel()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if b, err := json.Marshal(s.Session.Status()); err == nil {
					s.Streams.Broadcast(TopicState, string(b))
				}
			}
		}
	}()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arttic",
		"version": strings.TrimSpace(arttic.Version),
	})
}

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Status())
}

// NodeView is one canvas node as served by GET /nodes.
type NodeView struct {
	Type     domain.NodeType `json:"type"`
	Title    string          `json:"title"`
	Position domain.Point    `json:"position"`
	Size     domain.Size     `json:"size"`
	Body     []string        `json:"body"`
}

func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	live := s.Session.Canvas().Nodes()
	out := make([]NodeView, 0, len(live))
	for _, n := range live {
		v := NodeView{Type: n.Type, Title: n.Type.Title(), Position: n.Position, Size: n.Size}
		if view, ok := n.View.(nodes.View); ok {
			v.Body = view.Body()
		}
		out = append(out, v)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Status().Notices)
}

func (s *Server) GetGallery(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Session.Status().Gallery)
}

// PutParams applies a JSON object of parameter values in one update.
func (s *Server) PutParams(w http.ResponseWriter, r *http.Request) {
	var body map[domain.Key]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutParams: invalid request body", "error", err)
		return
	}
	if err := s.Session.SetParams(domain.Params(body)); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Session.Status())
}

// PostAction triggers one intent by name.
func (s *Server) PostAction(w http.ResponseWriter, r *http.Request, action ActionName) {
	var err error
	switch action {
	case ActionLoadModel:
		err = s.Session.LoadModel()
	case ActionUnloadModel:
		err = s.Session.UnloadModel()
	case ActionGenerate:
		err = s.Session.Generate()
	case ActionClearCache:
		err = s.Session.ClearCache()
	case ActionRandomizeSeed:
		_, err = s.Session.RandomizeSeed()
	default:
		http.Error(w, fmt.Sprintf("Unknown action %q", action), http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.Session.Status())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownParam), errors.Is(err, domain.ErrInvalidParam):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrNoModelLoaded),
		errors.Is(err, domain.ErrNoModelSelected),
		errors.Is(err, domain.ErrSameConfiguration):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotConnected):
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// StreamManager fans messages out to SSE subscribers by topic.
type StreamManager struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers one channel for every topic. The returned function
// unregisters it and closes the channel.
func (sm *StreamManager) Subscribe(topics ...string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	for _, topic := range topics {
		if _, ok := sm.subscribers[topic]; !ok {
			sm.subscribers[topic] = make(map[chan<- string]struct{})
		}
		sm.subscribers[topic][ch] = struct{}{}
	}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		for _, topic := range topics {
			if subs, ok := sm.subscribers[topic]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, topic)
				}
			}
		}
		close(ch)
	}
}

// Broadcast sends msg, framed as an SSE event of the topic's name, to every
// subscriber of topic. Slow clients drop messages.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	frame := fmt.Sprintf("event: %s\ndata: %s\n\n", topic, msg)
	for ch := range sm.subscribers[topic] {
		select {
		case ch <- frame:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "topic", topic)
		}
	}
}

// SubscribeEvents handles GET /events. ?watch=params,state narrows the
// topics; both are sent by default.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	topics := []string{TopicParams, TopicState}
	if params.Watch != nil && *params.Watch != "" {
		topics = topics[:0]
		for _, t := range strings.Split(*params.Watch, ",") {
			if t = strings.TrimSpace(t); t == TopicParams || t == TopicState {
				topics = append(topics, t)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(topics...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE client connected", "topics", topics)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected")
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Introspection server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
