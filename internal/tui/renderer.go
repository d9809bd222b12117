package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arttic/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into styled terminal text.
type Renderer func(string) (string, error)

// NewRenderer returns a glamour renderer wrapping at width. It detects a
// light or dark background.
func NewRenderer(width int) Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns the markdown unchanged.
func PlainRenderer(md string) (string, error) { return md, nil }

// dialogMarkdown lays out a dialog as a heading, its message and the
// acknowledgement buttons.
func dialogMarkdown(d domain.Dialog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", d.Title, d.Message)
	for _, label := range d.Buttons {
		fmt.Fprintf(&b, "`%s` ", label)
	}
	return strings.TrimSpace(b.String())
}
