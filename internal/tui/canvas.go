package tui

import (
	"strings"

	"github.com/aretw0/arttic/pkg/canvas"
	"github.com/aretw0/arttic/pkg/domain"
	"github.com/aretw0/arttic/pkg/nodes"
	"github.com/charmbracelet/x/ansi"
)

// One terminal cell covers this many canvas screen units.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// cellToScreen maps a terminal cell to canvas screen coordinates.
func cellToScreen(x, y int) domain.Point {
	return domain.Point{X: float64(x) * cellWidth, Y: float64(y) * cellHeight}
}

func screenToCell(p domain.Point) (int, int) {
	return int(p.X / cellWidth), int(p.Y / cellHeight)
}

// grid is a rune buffer for the canvas pane. Rows are absolute terminal rows
// offset by top.
type grid struct {
	top   int
	cells [][]rune
}

func newGrid(top, width, height int) *grid {
	g := &grid{top: top, cells: make([][]rune, max(height, 0))}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", max(width, 0)))
	}
	return g
}

func (g *grid) set(x, y int, r rune) {
	y -= g.top
	if y < 0 || y >= len(g.cells) || x < 0 || x >= len(g.cells[y]) {
		return
	}
	g.cells[y][x] = r
}

func (g *grid) text(x, y, width int, s string) {
	s = ansi.Truncate(s, max(width, 0), "…")
	for i, r := range []rune(s) {
		g.set(x+i, y, r)
	}
}

// box draws a framed node with its title in the top border. Body lines are
// clipped to the interior.
func (g *grid) box(x0, y0, x1, y1 int, title string, body []string) {
	if x1-x0 < 2 || y1-y0 < 1 {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '┌'
			case y == y0 && x == x1:
				r = '┐'
			case y == y1 && x == x0:
				r = '└'
			case y == y1 && x == x1:
				r = '┘'
			case y == y0 || y == y1:
				r = '─'
			case x == x0 || x == x1:
				r = '│'
			}
			g.set(x, y, r)
		}
	}
	inner := x1 - x0 - 1
	g.text(x0+1, y0, inner, " "+title+" ")
	for i, line := range body {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		g.text(x0+1, y, inner, line)
	}
}

func (g *grid) String() string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// drawCanvas renders every live node bottom to top, then the dock proxy.
func drawCanvas(engine *canvas.Engine, top, width, height int) string {
	g := newGrid(top, width, height)
	for _, n := range engine.Nodes() {
		r := n.Rect()
		x0, y0 := screenToCell(engine.WorldToScreen(r.Min))
		x1, y1 := screenToCell(engine.WorldToScreen(r.Max))
		var body []string
		if v, ok := n.View.(nodes.View); ok {
			body = v.Body()
		}
		g.box(x0, y0, x1, y1, n.Type.Title(), body)
	}
	if p, ok := engine.Proxy(); ok {
		x, y := screenToCell(p.Pointer)
		g.text(x, y, width-x, "+ "+p.Type.Title())
	}
	return g.String()
}
