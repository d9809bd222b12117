// Package tui is the interactive terminal front-end. It renders the node
// canvas, the notice feed and pending dialogs, and feeds mouse gestures to
// the canvas engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/arttic"
	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/gallery"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LayoutName is the slot used by the save and restore bindings.
const LayoutName = "default"

const maxNoticeRows = 4

type changeMsg struct{}

// Model is the bubbletea model over one session.
type Model struct {
	ctx      context.Context
	session  *arttic.Session
	changes  <-chan struct{}
	keys     KeyMap
	render   Renderer
	progress progress.Model

	width  int
	height int
	fitted bool

	// editing is the prompt key bound to the open text input, if any.
	editing domain.Key
	input   textinput.Model

	dragging bool
	aspect   int
	errText  string
}

// Option configures the Model.
type Option func(*Model)

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// WithRenderer sets the markdown renderer for dialogs.
func WithRenderer(r Renderer) Option {
	return func(m *Model) {
		m.render = r
	}
}

// New creates a model bound to s. The subscription ends when ctx is done.
func New(ctx context.Context, s *arttic.Session, opts ...Option) Model {
	changes, cancel := s.Subscribe()
	context.AfterFunc(ctx, cancel)

	in := textinput.New()
	in.CharLimit = 0

	m := Model{
		ctx:      ctx,
		session:  s,
		changes:  changes,
		keys:     DefaultKeyMap,
		render:   PlainRenderer,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(24)),
		input:    in,
		aspect:   -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// waitForChange blocks until the session signals a change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changeMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changeMsg:
		return m, waitForChange(m.changes)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-20, 10)
		top, rows := m.canvasRows()
		m.session.Canvas().SetViewport(domain.Rect{
			Min: cellToScreen(0, top),
			Max: cellToScreen(m.width, top+rows),
		})
		if !m.fitted {
			m.session.Canvas().FitView()
			m.fitted = true
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing != "" {
			return m.handleInput(msg)
		}
		if len(m.session.Dialogs()) > 0 {
			if key.Matches(msg, m.keys.Confirm, m.keys.Cancel) {
				m.session.DismissDialog()
			}
			return m, nil
		}
		if m.session.Gallery().State().Mode != gallery.ModeClosed {
			return m, m.handleLightboxKeys(msg)
		}
		return m, m.handleKeys(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	s := m.session
	m.errText = ""
	var err error

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Load):
		err = s.LoadModel()
	case key.Matches(msg, m.keys.Unload):
		err = s.UnloadModel()
	case key.Matches(msg, m.keys.Generate):
		err = s.Generate()
	case key.Matches(msg, m.keys.Prompt):
		m.beginInput(domain.KeyPrompt)
	case key.Matches(msg, m.keys.Negative):
		m.beginInput(domain.KeyNegativePrompt)
	case key.Matches(msg, m.keys.Seed):
		_, err = s.RandomizeSeed()
	case key.Matches(msg, m.keys.Aspect):
		m.aspect = (m.aspect + 1) % len(domain.AspectRatios)
		err = s.ApplyAspectRatio(domain.AspectRatios[m.aspect])
	case key.Matches(msg, m.keys.Model):
		st := s.Status()
		err = cycle(s, domain.KeyModel, st.Models, st.Params)
	case key.Matches(msg, m.keys.Sampler):
		st := s.Status()
		err = cycle(s, domain.KeyScheduler, st.Schedulers, st.Params)
	case key.Matches(msg, m.keys.Tiling):
		err = toggle(s, domain.KeyVAETiling)
	case key.Matches(msg, m.keys.Offload):
		err = toggle(s, domain.KeyCPUOffload)
	case key.Matches(msg, m.keys.ToggleLora):
		err = m.toggleLora()
	case key.Matches(msg, m.keys.DockLora):
		s.Canvas().BeginDock(domain.NodeLora, m.center())
	case key.Matches(msg, m.keys.DockInput):
		s.Canvas().BeginDock(domain.NodeInputImage, m.center())
	case key.Matches(msg, m.keys.Fit):
		s.Canvas().FitView()
	case key.Matches(msg, m.keys.Preview):
		if !s.OpenPreview() {
			m.errText = "No image generated yet."
		}
	case key.Matches(msg, m.keys.Gallery):
		err = s.Gallery().Open(0)
	case key.Matches(msg, m.keys.Save):
		err = s.SaveLayout(m.ctx, LayoutName)
	case key.Matches(msg, m.keys.Restore):
		err = s.LoadLayout(m.ctx, LayoutName)
	case key.Matches(msg, m.keys.Cancel):
		s.Canvas().Cancel()
	}
	m.setErr(err)
	return nil
}

func (m *Model) handleLightboxKeys(msg tea.KeyMsg) tea.Cmd {
	v := m.session.Gallery()
	m.errText = ""
	var err error

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		v.Close()
	case key.Matches(msg, m.keys.Next):
		err = v.Next()
	case key.Matches(msg, m.keys.Prev):
		err = v.Prev()
	case key.Matches(msg, m.keys.ZoomIn):
		v.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		v.ZoomOut()
	case key.Matches(msg, m.keys.Fit):
		v.Fit()
	case key.Matches(msg, m.keys.Delete):
		err = m.session.DeleteImage("")
	}
	m.setErr(err)
	return nil
}

func (m *Model) beginInput(k domain.Key) {
	m.editing = k
	m.input.Prompt = string(k) + "> "
	m.input.SetValue(m.session.Store().Snapshot().String(k))
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.setErr(m.session.SetParam(m.editing, strings.TrimSpace(m.input.Value())))
		fallthrough
	case key.Matches(msg, m.keys.Cancel):
		m.editing = ""
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleLora() error {
	st := m.session.Status()
	enable := st.Params[domain.KeyLoraEnabled] != true
	p := domain.Params{domain.KeyLoraEnabled: enable}
	if enable && st.Params[domain.KeyLora] == domain.NoLora && len(st.Loras) > 0 {
		p[domain.KeyLora] = st.Loras[0]
	}
	return m.session.SetParams(p)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	engine := m.session.Canvas()
	p := cellToScreen(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		engine.Wheel(p, 1)
		return
	case tea.MouseButtonWheelDown:
		engine.Wheel(p, -1)
		return
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		engine.PointerMove(p)
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonRight {
			m.deleteAt(p)
			return
		}
		if _, docking := engine.Proxy(); docking {
			_, err := engine.PointerUp(p)
			m.setErr(err)
			return
		}
		m.dragging = engine.PointerDown(p) != canvas.GestureNone
	case tea.MouseActionRelease:
		if m.dragging {
			_, _ = engine.PointerUp(p)
			m.dragging = false
		}
	}
}

// deleteAt removes the topmost optional node under p.
func (m *Model) deleteAt(p domain.Point) {
	engine := m.session.Canvas()
	world := engine.ScreenToWorld(p)
	for _, n := range slices.Backward(engine.Nodes()) {
		if n.Rect().Contains(world) {
			if !n.Type.Permanent() {
				m.setErr(m.session.DeleteNode(n.Type))
			}
			return
		}
	}
}

func (m *Model) setErr(err error) {
	if err == nil {
		return
	}
	// These already raised a notice.
	if errors.Is(err, domain.ErrNotConnected) || errors.Is(err, domain.ErrNoModelLoaded) ||
		errors.Is(err, domain.ErrNoModelSelected) || errors.Is(err, domain.ErrNodeExists) {
		return
	}
	m.errText = err.Error()
}

func (m Model) center() domain.Point {
	v := m.session.Canvas().Viewport()
	return domain.Point{X: (v.Min.X + v.Max.X) / 2, Y: (v.Min.Y + v.Max.Y) / 2}
}

// canvasRows returns the first terminal row of the canvas and its height.
func (m Model) canvasRows() (int, int) {
	return 1, max(m.height-maxNoticeRows-3, 1)
}

// cycle selects the entry after the current value of k.
func cycle(s *arttic.Session, k domain.Key, options []string, p domain.Params) error {
	if len(options) == 0 {
		return nil
	}
	cur, _ := p[k].(string)
	next := options[(slices.Index(options, cur)+1)%len(options)]
	return s.SetParam(k, next)
}

func toggle(s *arttic.Session, k domain.Key) error {
	on, _ := s.Status().Params[k].(bool)
	return s.SetParam(k, !on)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60a5fa"))
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	st := m.session.Status()
	top, rows := m.canvasRows()

	var body string
	switch {
	case len(st.Dialogs) > 0:
		body = m.viewDialog(st.Dialogs[0], rows)
	case st.Gallery.Mode != gallery.ModeClosed:
		body = m.viewLightbox(st.Gallery, rows)
	default:
		body = drawCanvas(m.session.Canvas(), top, m.width, rows)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(st),
		body,
		m.viewNotices(st.Notices),
		m.viewFooter(),
	)
}

func (m Model) viewHeader(st arttic.Status) string {
	conn := errorStyle.Render(st.Connection)
	if st.Connection == "open" {
		conn = successStyle.Render(st.Connection)
	}
	return headerStyle.Render("arttic") + "  " + conn + "  " + st.StatusText
}

func (m Model) viewDialog(d domain.Dialog, rows int) string {
	out, err := m.render(dialogMarkdown(d))
	if err != nil {
		out = d.Title + "\n\n" + d.Message
	}
	box := dialogStyle.Render(strings.TrimSpace(out))
	return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewLightbox(g gallery.State, rows int) string {
	lines := []string{
		headerStyle.Render(g.Filename),
		g.URL,
		fmt.Sprintf("zoom %.1fx  pan %.0f,%.0f", g.Zoom, g.PanX, g.PanY),
	}
	if g.CanNav {
		lines = append(lines, fmt.Sprintf("%d of %d", g.Index+1, len(g.Images)))
	}
	box := dialogStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewNotices(notices []domain.Notice) string {
	if len(notices) > maxNoticeRows {
		notices = notices[len(notices)-maxNoticeRows:]
	}
	lines := make([]string, maxNoticeRows)
	for i, n := range notices {
		switch n.Kind {
		case domain.NoticeError:
			lines[i] = errorStyle.Render("✗ " + n.Message)
		case domain.NoticeSuccess:
			lines[i] = successStyle.Render("✓ " + n.Message)
		case domain.NoticeProgress:
			pct := 0.0
			if n.Progress != nil {
				pct = *n.Progress
			}
			lines[i] = m.progress.ViewAs(pct) + " " + n.Message
		default:
			lines[i] = infoStyle.Render("• " + n.Message)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewFooter() string {
	if m.editing != "" {
		return m.input.View()
	}
	if m.errText != "" {
		return errorStyle.Render(m.errText)
	}
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return faintStyle.Render(strings.Join(parts, " · "))
}
