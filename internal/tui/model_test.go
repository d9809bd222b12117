package tui

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/internal/testutils"
	"github.com/aretw0/arttic/pkg/adapters/memory"
	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/clock"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/gallery"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T) (Model, *arttic.Session) {
	t.Helper()
	s := arttic.New(&testutils.FakeDialer{}, "ws://backend/ws", testutils.NewFakeBackend(),
		arttic.WithClock(clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))),
		arttic.WithSeedSource(func() int64 { return 7 }),
		arttic.WithLayoutStore(memory.NewStore()),
	)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m := New(ctx, s)

	// 120x40 terminal with an unscaled canvas: cell (x, y) is world
	// (10x, 20y - 20) because the canvas starts on row 1.
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	s.Canvas().SetTransform(canvas.Identity())
	return m, s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestModel_ResizeSetsViewport(t *testing.T) {
	m, s := newModel(t)

	assert.Equal(t, domain.Rect{
		Min: domain.Point{X: 0, Y: 20},
		Max: domain.Point{X: 1200, Y: 680},
	}, s.Canvas().Viewport())

	view := m.View()
	for _, nt := range domain.PermanentNodes {
		assert.Contains(t, view, nt.Title())
	}
}

func TestModel_SeedKey(t *testing.T) {
	m, s := newModel(t)
	s.Store().Set(domain.KeySeed, int64(1))

	update(t, m, press("s"))

	assert.Equal(t, int64(7), s.Store().Get(domain.KeySeed))
}

func TestModel_GenerateWithoutModelRaisesNotice(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, press("g"))

	var msgs []string
	for _, n := range s.Feed().Active() {
		msgs = append(msgs, n.Message)
	}
	assert.Contains(t, msgs, "Load a model before generating.")
	assert.Empty(t, m.errText, "the notice already tells the user")
}

func TestModel_EditPrompt(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, press("p"))
	require.Equal(t, domain.KeyPrompt, m.editing)
	m = update(t, m, press("a cat"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.editing)
	assert.Equal(t, "a cat", s.Store().Get(domain.KeyPrompt))
}

func TestModel_EditPromptCancel(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, press("n"))
	m = update(t, m, press("blurry"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Empty(t, m.editing)
	assert.Equal(t, "", s.Store().Get(domain.KeyNegativePrompt))
}

func TestModel_DialogBlocksUntilDismissed(t *testing.T) {
	m, s := newModel(t)
	s.Store().Set(domain.KeySeed, int64(1))
	s.OnServerError(domain.ServerError{Message: "out of memory"})

	assert.Contains(t, m.View(), "Server Error")

	m = update(t, m, press("s"))
	assert.Equal(t, int64(1), s.Store().Get(domain.KeySeed), "keys are swallowed while a dialog is up")

	update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, s.Dialogs())
}

func TestModel_DockAndDeleteLora(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, press("1"))
	_, docking := s.Canvas().Proxy()
	require.True(t, docking)

	m = update(t, m, mouse(50, 20, tea.MouseActionPress, tea.MouseButtonLeft))
	n, ok := s.Canvas().Node(domain.NodeLora)
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 500, Y: 380}, n.Position)

	update(t, m, mouse(52, 21, tea.MouseActionPress, tea.MouseButtonRight))
	assert.False(t, s.Canvas().Has(domain.NodeLora))
}

func TestModel_RightClickKeepsPermanentNode(t *testing.T) {
	m, s := newModel(t)

	update(t, m, mouse(4, 3, tea.MouseActionPress, tea.MouseButtonRight))

	assert.True(t, s.Canvas().Has(domain.NodeModelSampler))
}

func TestModel_DragNodeByHeader(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, mouse(4, 3, tea.MouseActionPress, tea.MouseButtonLeft))
	require.True(t, m.dragging)
	m = update(t, m, mouse(10, 5, tea.MouseActionMotion, tea.MouseButtonLeft))
	m = update(t, m, mouse(10, 5, tea.MouseActionRelease, tea.MouseButtonLeft))

	assert.False(t, m.dragging)
	n, _ := s.Canvas().Node(domain.NodeModelSampler)
	assert.Equal(t, domain.Point{X: 100, Y: 80}, n.Position)
}

func TestModel_WheelZooms(t *testing.T) {
	m, s := newModel(t)

	update(t, m, mouse(60, 20, tea.MouseActionPress, tea.MouseButtonWheelUp))

	assert.Greater(t, s.Canvas().Transform().Scale, 1.0)
}

func TestModel_GalleryLightbox(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, press("G"))
	require.Equal(t, gallery.ModeGallery, s.Gallery().State().Mode)
	assert.Contains(t, m.View(), "a.png")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, s.Gallery().State().Index)

	m = update(t, m, press("+"))
	assert.InDelta(t, 1.2, s.Gallery().State().Zoom, 1e-9)

	update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, gallery.ModeClosed, s.Gallery().State().Mode)
}

func TestModel_SaveAndRestoreLayout(t *testing.T) {
	m, s := newModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Empty(t, m.errText)
	s.Canvas().Move(domain.NodePrompt, domain.Point{X: 900, Y: 900})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Empty(t, m.errText)
	n, _ := s.Canvas().Node(domain.NodePrompt)
	assert.Equal(t, domain.Point{X: 380, Y: 40}, n.Position)
}

func TestModel_BusyErrorShownInFooter(t *testing.T) {
	m, s := newModel(t)
	require.NoError(t, s.LoadModel())

	m = update(t, m, press("s"))

	assert.Equal(t, domain.ErrBusy.Error(), m.errText)
	assert.Contains(t, m.View(), domain.ErrBusy.Error())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(press("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_InitWaitsForChange(t *testing.T) {
	m, s := newModel(t)
	cmd := m.Init()
	require.NotNil(t, cmd)

	require.NoError(t, s.SetParam(domain.KeySteps, 12))

	assert.Equal(t, changeMsg{}, cmd())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestDialogMarkdown(t *testing.T) {
	md := dialogMarkdown(domain.Dialog{Title: "Error", Message: "Could not delete image.", Buttons: []string{"OK"}})
	assert.Equal(t, "## Error\n\nCould not delete image.\n\n`OK`", md)
}
