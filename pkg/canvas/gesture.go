package canvas

import (
	"slices"

	"github.com/aretw0/arttic/pkg/domain"
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDock
	gestureDrag
	gesturePan
)

// Gesture names the interaction a pointer-down started.
type Gesture string

const (
	GestureNone Gesture = ""
	GestureDock Gesture = "dock"
	GestureDrag Gesture = "drag"
	GesturePan  Gesture = "pan"
)

// gesture keeps the state at pointer-down so every move recomputes from the
// origin instead of accumulating deltas.
type gesture struct {
	kind        gestureKind
	node        domain.NodeType
	start       domain.Point
	startOffset domain.Point
	startPos    domain.Point
	pointer     domain.Point
}

// DockProxy describes the placement proxy following the pointer.
type DockProxy struct {
	Type    domain.NodeType
	Pointer domain.Point
}

// BeginDock starts a placement gesture for nt at the given screen point.
func (e *Engine) BeginDock(nt domain.NodeType, screen domain.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gesture = gesture{kind: gestureDock, node: nt, start: screen, pointer: screen}
}

// Proxy returns the dock proxy while a placement gesture is active.
func (e *Engine) Proxy() (DockProxy, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture.kind != gestureDock {
		return DockProxy{}, false
	}
	return DockProxy{Type: e.gesture.node, Pointer: e.gesture.pointer}, true
}

// PointerDown starts a drag when screen hits a node header, or a pan when it
// hits empty canvas. Points outside the viewport start nothing.
func (e *Engine) PointerDown(screen domain.Point) Gesture {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.viewport.Contains(screen) {
		return GestureNone
	}
	world := e.screenToWorldLocked(screen)

	for _, nt := range slices.Backward(e.order) {
		n := e.nodes[nt]
		r := n.Rect()
		if !r.Contains(world) {
			continue
		}
		if world.Y <= r.Min.Y+e.headerHeight {
			e.gesture = gesture{kind: gestureDrag, node: nt, start: screen, startPos: n.Position, pointer: screen}
			e.raiseLocked(nt)
			return GestureDrag
		}
		// Node body: belongs to the node's own widgets.
		return GestureNone
	}

	e.gesture = gesture{
		kind:        gesturePan,
		start:       screen,
		startOffset: domain.Point{X: e.transform.OffsetX, Y: e.transform.OffsetY},
		pointer:     screen,
	}
	return GesturePan
}

// PointerMove advances the active gesture.
func (e *Engine) PointerMove(screen domain.Point) {
	e.mu.Lock()
	g := &e.gesture
	g.pointer = screen
	dx, dy := screen.X-g.start.X, screen.Y-g.start.Y
	var moved domain.NodeType

	switch g.kind {
	case gesturePan:
		e.transform.OffsetX = g.startOffset.X + dx
		e.transform.OffsetY = g.startOffset.Y + dy
	case gestureDrag:
		if n := e.nodes[g.node]; n != nil {
			n.Position = domain.Point{
				X: g.startPos.X + dx/e.transform.Scale,
				Y: g.startPos.Y + dy/e.transform.Scale,
			}
			moved = g.node
		}
	}
	e.mu.Unlock()

	if moved != "" {
		e.emit(Change{Op: OpMove, Type: moved})
	}
}

// PointerUp ends the active gesture. For a dock gesture released inside the
// viewport the node is created at the drop point; the create error, if any,
// is returned.
func (e *Engine) PointerUp(screen domain.Point) (Gesture, error) {
	e.PointerMove(screen)

	e.mu.Lock()
	g := e.gesture
	e.gesture = gesture{}
	inside := e.viewport.Contains(screen)
	world := e.screenToWorldLocked(screen)
	e.mu.Unlock()

	switch g.kind {
	case gestureDock:
		if !inside {
			return GestureDock, nil
		}
		return GestureDock, e.Create(g.node, world)
	case gestureDrag:
		return GestureDrag, nil
	case gesturePan:
		return GesturePan, nil
	}
	return GestureNone, nil
}

// Cancel abandons the active gesture. A drag or pan keeps its last position.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.gesture = gesture{}
	e.mu.Unlock()
}

// Wheel zooms by one step at screen. Positive steps zoom in.
func (e *Engine) Wheel(screen domain.Point, steps int) {
	if steps == 0 {
		return
	}
	factor := ZoomFactor
	if steps < 0 {
		factor = 1 / ZoomFactor
		steps = -steps
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	p := domain.Point{X: screen.X - e.viewport.Min.X, Y: screen.Y - e.viewport.Min.Y}
	for range steps {
		e.transform = e.transform.ZoomAt(p, factor, e.bounds)
	}
}

// FitView frames every live node. With no nodes the transform resets.
func (e *Engine) FitView() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.order) == 0 {
		e.transform = Identity()
		return e.transform
	}
	box := e.nodes[e.order[0]].Rect()
	for _, nt := range e.order[1:] {
		box = box.Union(e.nodes[nt].Rect())
	}
	size := domain.Size{W: e.viewport.Width(), H: e.viewport.Height()}
	e.transform = Fit(box, size, e.fitPadding, e.bounds)
	return e.transform
}

func (e *Engine) raiseLocked(nt domain.NodeType) {
	e.order = slices.DeleteFunc(e.order, func(t domain.NodeType) bool { return t == nt })
	e.order = append(e.order, nt)
}
