// Package settings holds the state of the settings panel: the model and LoRA
// files installed on the backend and the outcome of maintenance actions.
package settings

import (
	"slices"
	"sync"

	"github.com/aretw0/arttic/pkg/domain"
)

// Panel is safe for concurrent use.
type Panel struct {
	mu      sync.Mutex
	loaded  bool
	models  []string
	loras   []string
	pending map[domain.FileKind]string
}

// Snapshot is a copy of the panel for rendering.
type Snapshot struct {
	Loaded bool     `json:"loaded"`
	Models []string `json:"models"`
	Loras  []string `json:"loras"`
}

func New() *Panel {
	return &Panel{pending: make(map[domain.FileKind]string)}
}

// Apply replaces the file lists from settings_data or settings_data_updated.
func (p *Panel) Apply(ev domain.SettingsData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	p.models = slices.Clone(ev.Models)
	p.loras = slices.Clone(ev.Loras)
}

// MarkPending records that a delete of filename was requested.
func (p *Panel) MarkPending(kind domain.FileKind, filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[kind] = filename
}

// Resolve consumes the pending delete for ev's kind and returns the filename
// that was requested, falling back to the one the backend reported.
func (p *Panel) Resolve(ev domain.FileDeleted) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	name := p.pending[ev.Kind]
	delete(p.pending, ev.Kind)
	if ev.Filename != "" {
		name = ev.Filename
	}
	if ev.Succeeded() && name != "" {
		if ev.Kind == domain.FileLora {
			p.loras = slices.DeleteFunc(p.loras, func(s string) bool { return s == name })
		} else {
			p.models = slices.DeleteFunc(p.models, func(s string) bool { return s == name })
		}
	}
	return name
}

func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{Loaded: p.loaded, Models: slices.Clone(p.models), Loras: slices.Clone(p.loras)}
}
