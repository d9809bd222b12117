package gallery_test

import (
	"testing"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/gallery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openViewer(t *testing.T, images ...string) *gallery.Viewer {
	t.Helper()
	v := gallery.New("http://localhost:7860/")
	v.SetImages(images)
	return v
}

func TestViewer_NextWrapsAround(t *testing.T) {
	v := openViewer(t, "a.png", "b.png", "c.png")
	require.NoError(t, v.Open(2))

	require.NoError(t, v.Next())
	cur, _ := v.Current()
	assert.Equal(t, "a.png", cur)

	require.NoError(t, v.Prev())
	cur, _ = v.Current()
	assert.Equal(t, "c.png", cur)
}

func TestViewer_PrevFromFirstWraps(t *testing.T) {
	v := openViewer(t, "a.png", "b.png", "c.png")
	require.NoError(t, v.Open(0))
	require.NoError(t, v.Prev())
	assert.Equal(t, 2, v.State().Index)
}

func TestViewer_OpenOutOfRange(t *testing.T) {
	v := openViewer(t, "a.png")
	assert.Error(t, v.Open(1))
	assert.Error(t, v.Open(-1))
	assert.Equal(t, gallery.ModeClosed, v.State().Mode)
}

func TestViewer_ZoomClampedAndResetOnNavigate(t *testing.T) {
	v := openViewer(t, "a.png", "b.png")
	require.NoError(t, v.Open(0))

	for range 40 {
		v.ZoomIn()
	}
	assert.Equal(t, gallery.MaxZoom, v.State().Zoom)
	v.Pan(30, -12)

	require.NoError(t, v.Next())
	s := v.State()
	assert.Equal(t, 1.0, s.Zoom)
	assert.Zero(t, s.PanX)
	assert.Zero(t, s.PanY)

	for range 40 {
		v.ZoomOut()
	}
	assert.Equal(t, gallery.MinZoom, v.State().Zoom)
	v.Fit()
	assert.Equal(t, 1.0, v.State().Zoom)
}

func TestViewer_ZoomStepsAreExact(t *testing.T) {
	v := openViewer(t, "a.png")
	require.NoError(t, v.Open(0))
	v.ZoomIn()
	v.ZoomIn()
	v.ZoomIn()
	assert.Equal(t, 1.6, v.State().Zoom)
}

func TestViewer_SingleModeHasNoNavigation(t *testing.T) {
	v := openViewer(t, "a.png", "b.png")
	v.OpenSingle("preview.png")

	s := v.State()
	assert.Equal(t, gallery.ModeSingle, s.Mode)
	assert.False(t, s.CanNav)
	assert.Equal(t, "http://localhost:7860/outputs/preview.png", s.URL)
	assert.ErrorIs(t, v.Next(), domain.ErrViewerClosed)
}

func TestViewer_DeleteClosesAfterConfirmation(t *testing.T) {
	v := openViewer(t, "a.png", "b.png")
	require.NoError(t, v.Open(1))

	name, err := v.RequestDelete()
	require.NoError(t, err)
	assert.Equal(t, "b.png", name)
	assert.Equal(t, gallery.ModeGallery, v.State().Mode, "still open until confirmed")

	assert.False(t, v.ConfirmDeleted("a.png"))
	assert.True(t, v.ConfirmDeleted("b.png"))
	assert.Equal(t, gallery.ModeClosed, v.State().Mode)

	_, err = v.RequestDelete()
	assert.ErrorIs(t, err, domain.ErrViewerClosed)
}

func TestViewer_SetImagesKeepsOpenImage(t *testing.T) {
	v := openViewer(t, "b.png", "c.png")
	require.NoError(t, v.OpenFile("c.png"))

	v.SetImages([]string{"new.png", "b.png", "c.png"})
	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "c.png", cur)
	assert.Equal(t, 2, v.State().Index)

	v.SetImages([]string{"new.png"})
	assert.Equal(t, gallery.ModeClosed, v.State().Mode)
}

func TestViewer_URLEscapes(t *testing.T) {
	v := gallery.New("")
	assert.Equal(t, "/outputs/my%20image.png", v.URL("my image.png"))
}
