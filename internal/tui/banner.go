package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"                _   _   _      ",
	"   __ _ _ __ __| |_| |_(_) ___ ",
	"  / _` | '__/ _` __| __| |/ __|",
	" | (_| | | | (_| |_| |_| | (__ ",
	"  \\__,_|_|  \\__,\\__|\\__|_|\\___|",
}

var bannerColors = []string{"#f59e0b", "#f97316", "#ef4444", "#ec4899", "#a855f7"}

// PrintBanner writes the startup banner and version to w. Color is dropped
// when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
