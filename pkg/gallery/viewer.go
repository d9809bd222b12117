// Package gallery implements the output gallery and its lightbox viewer.
package gallery

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/arttic/pkg/domain"
)

const (
	ZoomStep = 0.2
	MinZoom  = 0.2
	MaxZoom  = 5.0
)

// Mode tells what the lightbox is showing.
type Mode string

const (
	ModeClosed  Mode = "closed"
	ModeGallery Mode = "gallery"
	ModeSingle  Mode = "single"
)

// State is a copy of the viewer state for rendering.
type State struct {
	Mode     Mode     `json:"mode"`
	Images   []string `json:"images"`
	Index    int      `json:"index"`
	Filename string   `json:"filename,omitempty"`
	URL      string   `json:"url,omitempty"`
	Zoom     float64  `json:"zoom"`
	PanX     float64  `json:"pan_x"`
	PanY     float64  `json:"pan_y"`
	CanNav   bool     `json:"can_nav"`
}

// Viewer holds the image list and the lightbox. Safe for concurrent use.
type Viewer struct {
	mu      sync.Mutex
	baseURL string
	images  []string
	mode    Mode
	index   int
	single  string
	zoom    float64
	panX    float64
	panY    float64
}

// New creates a closed viewer. baseURL prefixes image URLs; it may be empty.
func New(baseURL string) *Viewer {
	return &Viewer{baseURL: strings.TrimRight(baseURL, "/"), mode: ModeClosed, index: -1, zoom: 1}
}

// URL returns the address of an output image.
func (v *Viewer) URL(filename string) string {
	return fmt.Sprintf("%s/outputs/%s", v.baseURL, url.PathEscape(filename))
}

// SetImages replaces the gallery list, newest first. An open gallery image
// stays open when it is still present; otherwise the lightbox closes.
func (v *Viewer) SetImages(images []string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := ""
	if v.mode == ModeGallery && v.index >= 0 && v.index < len(v.images) {
		current = v.images[v.index]
	}
	v.images = slices.Clone(images)
	if v.mode != ModeGallery {
		return
	}
	if i := slices.Index(v.images, current); i >= 0 {
		v.index = i
		return
	}
	v.closeLocked()
}

// Images returns the gallery list.
func (v *Viewer) Images() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.images)
}

// Open shows gallery image i with navigation.
func (v *Viewer) Open(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.images) {
		return fmt.Errorf("open image %d of %d: index out of range", i, len(v.images))
	}
	v.mode = ModeGallery
	v.showLocked(i)
	return nil
}

// OpenFile opens the gallery entry named filename.
func (v *Viewer) OpenFile(filename string) error {
	v.mu.Lock()
	i := slices.Index(v.images, filename)
	v.mu.Unlock()
	if i < 0 {
		return fmt.Errorf("open %s: not in gallery", filename)
	}
	return v.Open(i)
}

// OpenSingle shows one image without navigation, as for the preview node.
func (v *Viewer) OpenSingle(filename string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = ModeSingle
	v.single = filename
	v.index = -1
	v.resetLocked()
}

// Close hides the lightbox.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeLocked()
}

// Next moves to the following image, wrapping past the end.
func (v *Viewer) Next() error { return v.step(1) }

// Prev moves to the preceding image, wrapping past the start.
func (v *Viewer) Prev() error { return v.step(-1) }

func (v *Viewer) step(delta int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode != ModeGallery || len(v.images) == 0 {
		return domain.ErrViewerClosed
	}
	n := len(v.images)
	v.showLocked(((v.index+delta)%n + n) % n)
	return nil
}

// ZoomIn increases the zoom by one step.
func (v *Viewer) ZoomIn() { v.zoomBy(ZoomStep) }

// ZoomOut decreases the zoom by one step.
func (v *Viewer) ZoomOut() { v.zoomBy(-ZoomStep) }

func (v *Viewer) zoomBy(d float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	z := math.Round((v.zoom+d)*10) / 10
	v.zoom = min(max(z, MinZoom), MaxZoom)
}

// Fit resets zoom and pan.
func (v *Viewer) Fit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.resetLocked()
}

// Pan moves the image by the given screen delta.
func (v *Viewer) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panX += dx
	v.panY += dy
}

// Current returns the filename on display.
func (v *Viewer) Current() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.currentLocked()
	return f, f != ""
}

// RequestDelete returns the filename to delete. The image stays on display
// until the backend confirms with image_deleted.
func (v *Viewer) RequestDelete() (string, error) {
	f, ok := v.Current()
	if !ok {
		return "", domain.ErrViewerClosed
	}
	return f, nil
}

// ConfirmDeleted applies a successful deletion of filename: the lightbox
// closes when it was showing it. An empty filename closes any open lightbox.
// It reports whether the lightbox closed.
func (v *Viewer) ConfirmDeleted(filename string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mode == ModeClosed {
		return false
	}
	if filename != "" && v.currentLocked() != filename {
		return false
	}
	v.closeLocked()
	return true
}

// State returns a copy for rendering.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := State{
		Mode:   v.mode,
		Images: slices.Clone(v.images),
		Index:  v.index,
		Zoom:   v.zoom,
		PanX:   v.panX,
		PanY:   v.panY,
		CanNav: v.mode == ModeGallery && len(v.images) > 1,
	}
	if f := v.currentLocked(); f != "" {
		s.Filename = f
		s.URL = v.URL(f)
	}
	return s
}

func (v *Viewer) currentLocked() string {
	switch v.mode {
	case ModeSingle:
		return v.single
	case ModeGallery:
		if v.index >= 0 && v.index < len(v.images) {
			return v.images[v.index]
		}
	}
	return ""
}

func (v *Viewer) showLocked(i int) {
	v.index = i
	v.resetLocked()
}

func (v *Viewer) closeLocked() {
	v.mode = ModeClosed
	v.index = -1
	v.single = ""
	v.resetLocked()
}

func (v *Viewer) resetLocked() {
	v.zoom = 1
	v.panX = 0
	v.panY = 0
}
