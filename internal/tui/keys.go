package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the session view.
type KeyMap struct {
	Load     key.Binding
	Unload   key.Binding
	Generate key.Binding

	Prompt   key.Binding
	Negative key.Binding
	Seed     key.Binding
	Aspect   key.Binding
	Model    key.Binding
	Sampler  key.Binding
	Tiling   key.Binding
	Offload  key.Binding

	// Dock starts a placement gesture; the node drops at the next click.
	DockLora   key.Binding
	DockInput  key.Binding
	ToggleLora key.Binding

	Fit     key.Binding
	Preview key.Binding
	Gallery key.Binding
	Save    key.Binding
	Restore key.Binding

	// Lightbox.
	Next    key.Binding
	Prev    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Delete  key.Binding

	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Load: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "load model"),
	),
	Unload: key.NewBinding(
		key.WithKeys("U"),
		key.WithHelp("U", "unload"),
	),
	Generate: key.NewBinding(
		key.WithKeys("g", "ctrl+g"),
		key.WithHelp("g", "generate"),
	),
	Prompt: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "prompt"),
	),
	Negative: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "negative"),
	),
	Seed: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "new seed"),
	),
	Aspect: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "aspect"),
	),
	Model: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "next model"),
	),
	Sampler: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "next sampler"),
	),
	Tiling: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "vae tiling"),
	),
	Offload: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "cpu offload"),
	),
	DockLora: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "dock lora"),
	),
	DockInput: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "dock input"),
	),
	ToggleLora: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "lora on/off"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit"),
	),
	Preview: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "open preview"),
	),
	Gallery: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "gallery"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "previous"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete image"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save layout"),
	),
	Restore: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "restore layout"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "ok"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Load, k.Generate, k.Prompt, k.Seed, k.Aspect, k.DockLora, k.DockInput, k.Fit, k.Gallery, k.Quit}
}
