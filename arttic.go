package arttic

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/gallery"
	"github.com/aretw0/arttic/pkg/metrics"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/aretw0/arttic/pkg/notify"
	"github.com/aretw0/arttic/pkg/ports"
	"github.com/aretw0/arttic/pkg/protocol"
	"github.com/aretw0/arttic/pkg/session"
	"github.com/aretw0/arttic/pkg/settings"
)

// ProgressHandle is the notice handle shared by every progress_update, so a
// stream of ticks renders as one element.
const ProgressHandle notify.Handle = "progress"

const restartHandle notify.Handle = "backend-restart"

// Durations controls how long transient notices stay visible.
type Durations struct {
	Success time.Duration
	Info    time.Duration
	Error   time.Duration
}

// DefaultDurations are used unless WithDurations overrides them.
var DefaultDurations = Durations{
	Success: 3 * time.Second,
	Info:    3 * time.Second,
	Error:   6 * time.Second,
}

// Session is the orchestrator. It owns the parameter store, the protocol
// client, the notice feed, the canvas, the gallery and the settings panel,
// and serializes every user intent, protocol event and timer callback that
// mutates them behind one lock.
type Session struct {
	mu sync.Mutex

	store    *session.Store
	feed     *notify.Feed
	canvas   *canvas.Engine
	gallery  *gallery.Viewer
	settings *settings.Panel
	client   *protocol.Client
	api      ports.BackendAPI
	layouts  ports.LayoutStore

	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     clock.Clock
	durations Durations
	seed      func() int64

	// construction-only settings
	reconnectDelay time.Duration
	imageBaseURL   string
	canvasOpts     []canvas.Option
	params         domain.Params
	statusTimeout  time.Duration

	loaded       bool
	busy         bool
	modelType    domain.ModelType
	statusText   string
	statusClass  nodes.StatusClass
	stableStatus string
	current      domain.LoadedConfig
	pendingLoad  *domain.LoadedConfig
	models       []string
	loras        []string
	schedulers   []string
	resHint      string
	previewFile  string
	previewInfo  string
	dialogs      []domain.Dialog

	conn   atomic.Int32
	render atomic.Pointer[nodes.Context]

	lmu    sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithClock injects the time source for notices and reconnects.
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithReconnectDelay overrides protocol.DefaultReconnectDelay.
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Session) { s.reconnectDelay = d }
}

// WithDurations overrides DefaultDurations.
func WithDurations(d Durations) Option {
	return func(s *Session) { s.durations = d }
}

// WithLayoutStore enables SaveLayout and LoadLayout.
func WithLayoutStore(ls ports.LayoutStore) Option {
	return func(s *Session) { s.layouts = ls }
}

// WithImageBaseURL sets the root used for /outputs image URLs.
func WithImageBaseURL(u string) Option {
	return func(s *Session) { s.imageBaseURL = u }
}

// WithCanvasOptions passes options through to the canvas engine.
func WithCanvasOptions(opts ...canvas.Option) Option {
	return func(s *Session) { s.canvasOpts = append(s.canvasOpts, opts...) }
}

// WithParams seeds the store with p on top of the defaults.
func WithParams(p domain.Params) Option {
	return func(s *Session) { s.params = p }
}

// WithSeedSource replaces the random source used by RandomizeSeed.
func WithSeedSource(fn func() int64) Option {
	return func(s *Session) { s.seed = fn }
}

// New wires a Session. dialer and wsURL reach the live channel; api serves
// the one-shot endpoints and may be nil in tests that do not need them.
func New(dialer ports.Dialer, wsURL string, api ports.BackendAPI, opts ...Option) *Session {
	s := &Session{
		api:           api,
		logger:        logging.NewNop(),
		clock:         clock.Real(),
		durations:     DefaultDurations,
		seed:          func() int64 { return rand.Int64N(1 << 32) },
		statusTimeout: 5 * time.Second,
		statusText:    "No model loaded.",
		statusClass:   nodes.StatusUnloaded,
		stableStatus:  "No model loaded.",
		current:       unloadedConfig(),
		schedulers:    domain.Schedulers,
		subs:          make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	storeOpts := []session.Option{session.WithLogger(s.logger)}
	if s.params != nil {
		storeOpts = append(storeOpts, session.WithParams(s.params))
	}
	s.store = session.NewStore(storeOpts...)
	if _, ok := s.params[domain.KeySeed]; !ok {
		s.store.Set(domain.KeySeed, s.seed())
	}

	s.feed = notify.New(
		notify.WithClock(s.clock),
		notify.WithLogger(s.logger),
		notify.WithMetrics(s.metrics),
	)
	s.gallery = gallery.New(s.imageBaseURL)
	s.settings = settings.New()

	canvasOpts := append([]canvas.Option{
		canvas.WithLogger(s.logger),
		canvas.WithMetrics(s.metrics),
	}, s.canvasOpts...)
	canvasOpts = append(canvasOpts,
		canvas.WithFactory(s.buildView),
		canvas.WithRejectHandler(s.rejectNode),
	)
	s.canvas = canvas.New(canvasOpts...)
	s.canvas.OnChange(s.canvasChanged)
	s.feed.OnChange(func([]domain.Notice) { s.changed() })

	s.client = protocol.New(dialer, wsURL, s,
		protocol.WithClock(s.clock),
		protocol.WithLogger(s.logger),
		protocol.WithMetrics(s.metrics),
		protocol.WithReconnectDelay(s.reconnectDelay),
		protocol.WithOnConnect(s.onConnect),
		protocol.WithOnStateChange(s.onStateChange),
	)

	s.mu.Lock()
	s.refreshLocked()
	s.mu.Unlock()
	return s
}

// Start places the permanent nodes, pulls the backend configuration and
// opens the live channel. A failed configuration fetch is reported as a
// notice; the channel is opened regardless.
func (s *Session) Start(ctx context.Context) error {
	s.canvas.Bootstrap()
	err := s.Bootstrap(ctx)
	s.client.Open(ctx)
	return err
}

// Close stops the live channel and its reconnect loop.
func (s *Session) Close() {
	s.client.Close()
}

func (s *Session) Store() *session.Store     { return s.store }
func (s *Session) Feed() *notify.Feed        { return s.feed }
func (s *Session) Canvas() *canvas.Engine    { return s.canvas }
func (s *Session) Gallery() *gallery.Viewer  { return s.gallery }
func (s *Session) Settings() *settings.Panel { return s.settings }

// Connection returns the current channel state.
func (s *Session) Connection() protocol.State {
	return protocol.State(s.conn.Load())
}

// Subscribe returns a channel that receives a signal after state changes.
// Signals coalesce: a slow reader sees one pending signal, never a backlog.
// The returned function unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

// changed never blocks, so it is safe to call with any lock held.
func (s *Session) changed() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// mutate runs fn under the session lock, refreshes every node view and then
// notifies listeners.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	err := fn()
	s.refreshLocked()
	s.mu.Unlock()
	s.changed()
	return err
}

func (s *Session) onStateChange(st protocol.State) {
	s.conn.Store(int32(st))
	s.logger.Debug("Connection state changed", "state", st)
	s.changed()
}

// onConnect resynchronizes the loaded-model state after every dial. The
// status fetch happens outside the lock.
func (s *Session) onConnect() {
	s.feed.Clear(restartHandle)
	if s.api == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.statusTimeout)
	defer cancel()
	st, err := s.api.Status(ctx)
	if err != nil {
		s.logger.Warn("Status fetch failed", "error", err)
		return
	}

	_ = s.mutate(func() error {
		// An operation in flight on a previous connection will never report back.
		if s.busy {
			s.busy = false
			s.feed.Clear(ProgressHandle)
		}
		s.loaded = st.IsModelLoaded
		if st.ModelType != "" {
			s.modelType = domain.ModelType(st.ModelType)
		}
		if s.loaded {
			if st.CurrentModelName != "" {
				s.current.ModelName = st.CurrentModelName
			}
			s.setStatusLocked(orDefault(st.StatusMessage, "Model loaded."), nodes.StatusReady)
		} else {
			s.current = unloadedConfig()
			s.resHint = ""
			s.setStatusLocked(orDefault(st.StatusMessage, "No model loaded."), nodes.StatusUnloaded)
		}
		return nil
	})
}

func (s *Session) buildView(nt domain.NodeType) any {
	ctx := s.render.Load()
	if ctx == nil {
		return nodes.New(nt, nodes.Context{Snapshot: s.store.Snapshot()})
	}
	return nodes.New(nt, *ctx)
}

func (s *Session) rejectNode(nt domain.NodeType, err error) {
	msg := nt.Title() + " is already on the canvas."
	if !nt.Valid() {
		msg = "Unknown node type: " + string(nt)
	}
	s.feed.Show(msg, domain.NoticeError, s.durations.Error)
}

// canvasChanged refreshes views when the node set changes: the LoRA node's
// presence decides which LoRA is selected.
func (s *Session) canvasChanged(c canvas.Change) {
	switch c.Op {
	case canvas.OpCreate, canvas.OpDelete:
		_ = s.mutate(func() error { return nil })
	case canvas.OpMove:
		s.changed()
	}
}

func (s *Session) refreshLocked() {
	ctx := s.contextLocked()
	s.render.Store(&ctx)
	for _, nt := range slices.Concat(domain.PermanentNodes, domain.OptionalNodes) {
		canvas.Rebuild(s.canvas, nt, func(v nodes.View) nodes.View { return v.Refresh(ctx) })
	}
}

func (s *Session) contextLocked() nodes.Context {
	snap := s.store.Snapshot()
	ctx := nodes.Context{
		Snapshot:       snap,
		Loaded:         s.loaded,
		Busy:           s.busy,
		LoadEnabled:    !s.sameConfigLocked(snap),
		ModelType:      s.modelType,
		StatusText:     s.statusText,
		StatusClass:    s.statusClass,
		Models:         s.models,
		Loras:          s.loras,
		Schedulers:     s.schedulers,
		ResolutionHint: s.resHint,
		PreviewFile:    s.previewFile,
		PreviewInfo:    s.previewInfo,
	}
	if s.previewFile != "" {
		ctx.PreviewURL = s.gallery.URL(s.previewFile)
	}
	return ctx
}

// selectedConfigLocked is the configuration a load would request now.
func (s *Session) selectedConfigLocked(snap session.Snapshot) domain.LoadedConfig {
	return domain.LoadedConfig{
		ModelName:  snap.String(domain.KeyModel),
		LoraName:   s.selectedLoraLocked(snap),
		CPUOffload: snap.Bool(domain.KeyCPUOffload),
		VAETiling:  snap.Bool(domain.KeyVAETiling),
	}
}

// selectedLoraLocked returns NoLora unless the LoRA node is on the canvas
// with its toggle on.
func (s *Session) selectedLoraLocked(snap session.Snapshot) string {
	if !s.canvas.Has(domain.NodeLora) || !snap.Bool(domain.KeyLoraEnabled) {
		return domain.NoLora
	}
	return orDefault(snap.String(domain.KeyLora), domain.NoLora)
}

func (s *Session) sameConfigLocked(snap session.Snapshot) bool {
	return s.loaded && s.selectedConfigLocked(snap) == s.current
}

func (s *Session) setStatusLocked(text string, class nodes.StatusClass) {
	s.statusText = text
	s.statusClass = class
	if class != nodes.StatusBusy {
		s.stableStatus = text
	}
}

// settleLocked ends the operation in flight: busy is cleared, the progress
// notice is removed and the status leaves its busy form.
func (s *Session) settleLocked() {
	s.busy = false
	s.feed.Clear(ProgressHandle)
	if s.statusClass == nodes.StatusBusy {
		class := nodes.StatusUnloaded
		if s.loaded {
			class = nodes.StatusReady
		}
		s.setStatusLocked(s.stableStatus, class)
	}
}

func (s *Session) pushDialogLocked(title, message string) {
	s.dialogs = append(s.dialogs, domain.Dialog{Title: title, Message: message, Buttons: []string{"OK"}})
}

func unloadedConfig() domain.LoadedConfig {
	return domain.LoadedConfig{LoraName: domain.NoLora, VAETiling: true}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
