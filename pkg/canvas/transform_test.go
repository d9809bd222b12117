package canvas

import (
	"math"
	"testing"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransform_RoundTrip(t *testing.T) {
	transforms := []Transform{
		Identity(),
		{Scale: 2, OffsetX: 100, OffsetY: 50},
		{Scale: 0.37, OffsetX: -420.5, OffsetY: 13},
		{Scale: 3, OffsetX: 0.1, OffsetY: -999},
	}
	points := []domain.Point{{X: 0, Y: 0}, {X: 123.4, Y: -56.7}, {X: -1e4, Y: 2e4}}

	for _, tr := range transforms {
		for _, p := range points {
			back := tr.ToWorld(tr.ToViewport(p))
			assert.InDelta(t, p.X, back.X, 1e-9)
			assert.InDelta(t, p.Y, back.Y, 1e-9)
		}
	}
}

func TestTransform_ZoomKeepsPointerAnchored(t *testing.T) {
	tr := Transform{Scale: 1.3, OffsetX: 40, OffsetY: -25}
	pointer := domain.Point{X: 310, Y: 205}
	before := tr.ToWorld(pointer)

	for _, factor := range []float64{ZoomFactor, 1 / ZoomFactor, 1.7, 0.5} {
		zoomed := tr.ZoomAt(pointer, factor, DefaultBounds)
		after := zoomed.ToWorld(pointer)
		assert.InDelta(t, before.X, after.X, 1e-9)
		assert.InDelta(t, before.Y, after.Y, 1e-9)
	}
}

func TestTransform_ZoomClamped(t *testing.T) {
	tr := Identity()
	for range 100 {
		tr = tr.ZoomAt(domain.Point{X: 10, Y: 10}, ZoomFactor, DefaultBounds)
	}
	assert.Equal(t, DefaultBounds.MaxScale, tr.Scale)

	for range 100 {
		tr = tr.ZoomAt(domain.Point{X: 10, Y: 10}, 1/ZoomFactor, DefaultBounds)
	}
	assert.Equal(t, DefaultBounds.MinScale, tr.Scale)
}

func TestFit(t *testing.T) {
	box := domain.Rect{Min: domain.Point{X: 0, Y: 0}, Max: domain.Point{X: 1920, Y: 960}}
	tr := Fit(box, domain.Size{W: 1000, H: 800}, 40, DefaultBounds)

	assert.InDelta(t, 1000.0/2000.0, tr.Scale, 1e-9)
	center := tr.ToViewport(domain.Point{X: 960, Y: 480})
	assert.InDelta(t, 500, center.X, 1e-9)
	assert.InDelta(t, 400, center.Y, 1e-9)
}

func TestFit_NeverMagnifies(t *testing.T) {
	box := domain.Rect{Min: domain.Point{X: 10, Y: 10}, Max: domain.Point{X: 60, Y: 40}}
	tr := Fit(box, domain.Size{W: 1000, H: 800}, 0, DefaultBounds)
	assert.Equal(t, 1.0, tr.Scale)
}

func TestFit_ClampedToMinScale(t *testing.T) {
	box := domain.Rect{Max: domain.Point{X: 1e6, Y: 1e6}}
	tr := Fit(box, domain.Size{W: 100, H: 100}, 0, DefaultBounds)
	assert.Equal(t, DefaultBounds.MinScale, tr.Scale)
	assert.False(t, math.IsNaN(tr.OffsetX))
}
