package canvas

import "github.com/aretw0/arttic/pkg/domain"

// ZoomFactor is the scale multiplier applied per wheel step.
const ZoomFactor = 1.1

// Bounds limits the transform scale.
type Bounds struct {
	MinScale float64
	MaxScale float64
}

// DefaultBounds allows 20% to 300%.
var DefaultBounds = Bounds{MinScale: 0.2, MaxScale: 3.0}

// Clamp limits s to the bounds.
func (b Bounds) Clamp(s float64) float64 {
	return min(max(s, b.MinScale), b.MaxScale)
}

// Transform maps world coordinates onto the canvas viewport.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity is the transform at 100% with no offset.
func Identity() Transform { return Transform{Scale: 1} }

// ToWorld converts a point relative to the viewport origin to world space.
func (t Transform) ToWorld(p domain.Point) domain.Point {
	return domain.Point{
		X: (p.X - t.OffsetX) / t.Scale,
		Y: (p.Y - t.OffsetY) / t.Scale,
	}
}

// ToViewport converts a world point to a point relative to the viewport origin.
func (t Transform) ToViewport(w domain.Point) domain.Point {
	return domain.Point{
		X: w.X*t.Scale + t.OffsetX,
		Y: w.Y*t.Scale + t.OffsetY,
	}
}

// ZoomAt rescales by factor keeping the world point under p fixed. p is
// relative to the viewport origin. The new scale is clamped to b.
func (t Transform) ZoomAt(p domain.Point, factor float64, b Bounds) Transform {
	next := b.Clamp(t.Scale * factor)
	ratio := next / t.Scale
	return Transform{
		Scale:   next,
		OffsetX: p.X - (p.X-t.OffsetX)*ratio,
		OffsetY: p.Y - (p.Y-t.OffsetY)*ratio,
	}
}

// Fit returns the transform that shows box inside a viewport of the given
// size with padding world units around it. The scale never exceeds 1 and is
// clamped to b; the box center lands on the viewport center.
func Fit(box domain.Rect, viewport domain.Size, padding float64, b Bounds) Transform {
	w := box.Width() + 2*padding
	h := box.Height() + 2*padding
	scale := 1.0
	if w > 0 && h > 0 {
		scale = min(viewport.W/w, viewport.H/h, 1)
	}
	scale = b.Clamp(scale)

	cx := box.Min.X + box.Width()/2
	cy := box.Min.Y + box.Height()/2
	return Transform{
		Scale:   scale,
		OffsetX: viewport.W/2 - cx*scale,
		OffsetY: viewport.H/2 - cy*scale,
	}
}
