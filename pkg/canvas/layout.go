package canvas

import "github.com/aretw0/arttic/pkg/domain"

// Layout captures the transform and every node position.
func (e *Engine) Layout() domain.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	l := domain.Layout{
		Scale:     e.transform.Scale,
		OffsetX:   e.transform.OffsetX,
		OffsetY:   e.transform.OffsetY,
		Positions: make(map[domain.NodeType]domain.Point, len(e.nodes)),
	}
	for nt, n := range e.nodes {
		l.Positions[nt] = n.Position
	}
	return l
}

// ApplyLayout restores a saved arrangement. Optional nodes named in the
// layout are created; live optional nodes missing from it are kept.
func (e *Engine) ApplyLayout(l domain.Layout) {
	scale := l.Scale
	if scale == 0 {
		scale = 1
	}
	e.SetTransform(Transform{Scale: scale, OffsetX: l.OffsetX, OffsetY: l.OffsetY})

	for nt, pos := range l.Positions {
		if !nt.Valid() {
			e.logger.Warn("layout names unknown node type", "type", nt)
			continue
		}
		if e.Has(nt) {
			e.Move(nt, pos)
			continue
		}
		if err := e.Create(nt, pos); err != nil {
			e.logger.Warn("layout node not restored", "type", nt, "err", err)
		}
	}
}
