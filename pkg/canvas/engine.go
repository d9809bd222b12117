package canvas

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/arttic/internal/logging"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/metrics"
)

// Node is a live canvas node. View is built by the engine's factory and is
// replaced as a whole through Rebuild, never mutated in place.
type Node struct {
	Type     domain.NodeType
	Position domain.Point
	Size     domain.Size
	View     any
}

// Rect returns the node bounds in world space.
func (n Node) Rect() domain.Rect {
	return domain.Rect{
		Min: n.Position,
		Max: domain.Point{X: n.Position.X + n.Size.W, Y: n.Position.Y + n.Size.H},
	}
}

// Op describes a lifecycle change.
type Op string

const (
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpMove   Op = "move"
	OpView   Op = "view"
)

// Change is delivered to OnChange subscribers.
type Change struct {
	Op   Op
	Type domain.NodeType
}

// Engine is the canvas state. Safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	transform Transform
	bounds    Bounds
	viewport  domain.Rect

	nodes map[domain.NodeType]*Node
	order []domain.NodeType

	sizes        map[domain.NodeType]domain.Size
	positions    map[domain.NodeType]domain.Point
	headerHeight float64
	fitPadding   float64

	gesture gesture

	factory   func(domain.NodeType) any
	onReject  func(domain.NodeType, error)
	listeners []func(Change)

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records node lifecycle operations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithBounds sets the zoom limits.
func WithBounds(b Bounds) Option {
	return func(e *Engine) {
		e.bounds = b
	}
}

// WithViewport sets the canvas rectangle in screen coordinates.
func WithViewport(r domain.Rect) Option {
	return func(e *Engine) {
		e.viewport = r
	}
}

// WithNodeSize overrides the world size of a node type.
func WithNodeSize(nt domain.NodeType, s domain.Size) Option {
	return func(e *Engine) {
		e.sizes[nt] = s
	}
}

// WithDefaultPosition overrides where Bootstrap places a permanent node.
func WithDefaultPosition(nt domain.NodeType, p domain.Point) Option {
	return func(e *Engine) {
		e.positions[nt] = p
	}
}

// WithHeaderHeight sets the draggable header strip height in world units.
func WithHeaderHeight(h float64) Option {
	return func(e *Engine) {
		e.headerHeight = h
	}
}

// WithFitPadding sets the margin FitView leaves around the nodes.
func WithFitPadding(p float64) Option {
	return func(e *Engine) {
		e.fitPadding = p
	}
}

// WithFactory sets the constructor for node views.
func WithFactory(f func(domain.NodeType) any) Option {
	return func(e *Engine) {
		e.factory = f
	}
}

// WithRejectHandler is called when a create is refused, so the caller can
// surface user feedback.
func WithRejectHandler(f func(domain.NodeType, error)) Option {
	return func(e *Engine) {
		e.onReject = f
	}
}

// New creates an empty canvas.
func New(opts ...Option) *Engine {
	e := &Engine{
		transform:    Identity(),
		bounds:       DefaultBounds,
		viewport:     domain.Rect{Max: domain.Point{X: 1280, Y: 800}},
		nodes:        make(map[domain.NodeType]*Node),
		headerHeight: 28,
		fitPadding:   40,
		sizes: map[domain.NodeType]domain.Size{
			domain.NodeModelSampler: {W: 300, H: 260},
			domain.NodePrompt:       {W: 320, H: 240},
			domain.NodeParameters:   {W: 300, H: 320},
			domain.NodeImagePreview: {W: 360, H: 380},
			domain.NodeLora:         {W: 280, H: 160},
			domain.NodeInputImage:   {W: 280, H: 260},
		},
		positions: map[domain.NodeType]domain.Point{
			domain.NodeModelSampler: {X: 40, Y: 40},
			domain.NodePrompt:       {X: 380, Y: 40},
			domain.NodeParameters:   {X: 40, Y: 340},
			domain.NodeImagePreview: {X: 740, Y: 40},
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bootstrap creates the permanent nodes that do not exist yet.
func (e *Engine) Bootstrap() {
	for _, nt := range domain.PermanentNodes {
		e.mu.Lock()
		pos := e.positions[nt]
		e.mu.Unlock()
		if err := e.Create(nt, pos); err != nil {
			e.logger.Debug("bootstrap skipped node", "type", nt, "err", err)
		}
	}
}

// Create adds a node of type nt at world position pos. A second create for a
// live type changes nothing, reports ErrNodeExists and calls the reject handler.
func (e *Engine) Create(nt domain.NodeType, pos domain.Point) error {
	e.mu.Lock()
	var err error
	switch {
	case !nt.Valid():
		err = fmt.Errorf("create %q: %w", nt, domain.ErrUnknownNodeType)
	case e.nodes[nt] != nil:
		err = fmt.Errorf("create %s: %w", nt, domain.ErrNodeExists)
	}
	if err != nil {
		reject := e.onReject
		e.mu.Unlock()
		e.metrics.Node("reject", string(nt))
		e.logger.Info("node create rejected", "type", nt, "err", err)
		if reject != nil {
			reject(nt, err)
		}
		return err
	}

	n := &Node{Type: nt, Position: pos, Size: e.sizes[nt]}
	factory := e.factory
	e.nodes[nt] = n
	e.order = append(e.order, nt)
	e.mu.Unlock()

	if factory != nil {
		view := factory(nt)
		e.mu.Lock()
		if cur := e.nodes[nt]; cur == n {
			n.View = view
		}
		e.mu.Unlock()
	}

	e.metrics.Node("create", string(nt))
	e.logger.Debug("node created", "type", nt, "x", pos.X, "y", pos.Y)
	e.emit(Change{Op: OpCreate, Type: nt})
	return nil
}

// Delete removes an optional node. Permanent nodes report ErrPermanentNode;
// deleting an absent node is a no-op.
func (e *Engine) Delete(nt domain.NodeType) error {
	if nt.Permanent() {
		return fmt.Errorf("delete %s: %w", nt, domain.ErrPermanentNode)
	}
	e.mu.Lock()
	if e.nodes[nt] == nil {
		e.mu.Unlock()
		return nil
	}
	delete(e.nodes, nt)
	e.order = slices.DeleteFunc(e.order, func(t domain.NodeType) bool { return t == nt })
	if e.gesture.kind == gestureDrag && e.gesture.node == nt {
		e.gesture = gesture{}
	}
	e.mu.Unlock()

	e.metrics.Node("delete", string(nt))
	e.emit(Change{Op: OpDelete, Type: nt})
	return nil
}

// Has reports whether a node of type nt is live.
func (e *Engine) Has(nt domain.NodeType) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nodes[nt] != nil
}

// Node returns a copy of the live node of type nt.
func (e *Engine) Node(nt domain.NodeType) (Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.nodes[nt]
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of the live nodes, bottom to top.
func (e *Engine) Nodes() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Node, 0, len(e.order))
	for _, nt := range e.order {
		out = append(out, *e.nodes[nt])
	}
	return out
}

// Move sets a node's world position.
func (e *Engine) Move(nt domain.NodeType, pos domain.Point) bool {
	e.mu.Lock()
	n := e.nodes[nt]
	if n != nil {
		n.Position = pos
	}
	e.mu.Unlock()
	if n != nil {
		e.emit(Change{Op: OpMove, Type: nt})
	}
	return n != nil
}

// Rebuild replaces the view of the live node of type nt with fn's result
// when that view is a T. It reports whether fn ran. Views are swapped, never
// written in place, so a view returned by Nodes stays safe to read. Events
// targeting a node that was deleted are dropped here.
func Rebuild[T any](e *Engine, nt domain.NodeType, fn func(T) T) bool {
	e.mu.Lock()
	n := e.nodes[nt]
	ok := false
	if n != nil {
		var view T
		if view, ok = n.View.(T); ok {
			n.View = fn(view)
		}
	}
	e.mu.Unlock()
	if ok {
		e.emit(Change{Op: OpView, Type: nt})
	}
	return ok
}

// Lookup returns the view of the live node of type nt as a T.
func Lookup[T any](e *Engine, nt domain.NodeType) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	n := e.nodes[nt]
	if n == nil {
		return zero, false
	}
	v, ok := n.View.(T)
	return v, ok
}

// Transform returns the current view transform.
func (e *Engine) Transform() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform
}

// SetTransform replaces the view transform, clamping the scale.
func (e *Engine) SetTransform(t Transform) {
	e.mu.Lock()
	t.Scale = e.bounds.Clamp(t.Scale)
	e.transform = t
	e.mu.Unlock()
}

// Viewport returns the canvas rectangle in screen coordinates.
func (e *Engine) Viewport() domain.Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// SetViewport updates the canvas rectangle, e.g. after a terminal resize.
func (e *Engine) SetViewport(r domain.Rect) {
	e.mu.Lock()
	e.viewport = r
	e.mu.Unlock()
}

// ScreenToWorld converts a screen point using the current transform.
func (e *Engine) ScreenToWorld(p domain.Point) domain.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.screenToWorldLocked(p)
}

// WorldToScreen converts a world point using the current transform.
func (e *Engine) WorldToScreen(w domain.Point) domain.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.transform.ToViewport(w)
	return domain.Point{X: v.X + e.viewport.Min.X, Y: v.Y + e.viewport.Min.Y}
}

func (e *Engine) screenToWorldLocked(p domain.Point) domain.Point {
	return e.transform.ToWorld(domain.Point{X: p.X - e.viewport.Min.X, Y: p.Y - e.viewport.Min.Y})
}

// Bounds returns the configured zoom range.
func (e *Engine) Bounds() Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds
}

// OnChange registers fn for node lifecycle changes.
func (e *Engine) OnChange(fn func(Change)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) emit(c Change) {
	e.mu.Lock()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()
	for _, l := range listeners {
		l(c)
	}
}
