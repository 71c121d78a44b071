// Package term renders the scene as a character grid: nodes as boxes,
// sockets as markers on the box edge, edges as lines between them. It is a
// pure-write adapter; input capture stays with the host.
package term

import (
	"context"
	"io"
	"math"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/scene"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// Screen units per character cell. Cells are roughly twice as tall as
	// they are wide, so the vertical divisor doubles the horizontal one.
	defaultCellWidth  = 10.0
	defaultCellHeight = 20.0
)

const (
	nodeColor   = "#818cf8"
	inputColor  = "#22d3ee"
	outputColor = "#4ade80"
	edgeColor   = "245"
)

// Renderer implements ports.Renderer on a terminal or any writer.
type Renderer struct {
	out     io.Writer
	profile termenv.Profile
	width   int
	height  int
	cellW   float64
	cellH   float64
}

// Option configures the renderer.
type Option func(*Renderer)

// WithSize fixes the frame size in cells, bypassing terminal detection.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		r.width, r.height = width, height
	}
}

// WithCellSize sets how many screen units one character cell covers.
func WithCellSize(width, height float64) Option {
	return func(r *Renderer) {
		r.cellW, r.cellH = width, height
	}
}

// WithProfile overrides color detection, e.g. termenv.Ascii for plain output.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.profile = p
	}
}

// NewRenderer creates a renderer writing frames to out.
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:     out,
		profile: termenv.ColorProfile(),
		cellW:   defaultCellWidth,
		cellH:   defaultCellHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws one full frame of the diagram.
func (r *Renderer) Render(ctx context.Context, d *scene.Diagram) error {
	w, h := r.size()
	g := newGrid(w, h)

	view := d.Graph.Root().Transform

	// Edges first so node boxes and sockets paint over their endpoints.
	for _, e := range d.Graph.Edges() {
		r.drawEdge(g, view.Apply(e.From), view.Apply(e.To), false)
	}
	if p := d.Graph.ProvisionalEdge(); p != nil {
		r.drawEdge(g, view.Apply(p.From), view.Apply(p.To), true)
	}

	var walk func(n *scene.Node)
	walk = func(n *scene.Node) {
		for _, c := range n.Children() {
			if c.Kind == domain.KindSocket {
				continue
			}
			r.drawNode(g, d.Graph, c)
			walk(c)
		}
	}
	walk(d.Graph.Root())

	return r.flush(g)
}

func (r *Renderer) size() (int, int) {
	if r.width > 0 && r.height > 0 {
		return r.width, r.height
	}
	if f, ok := r.out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 1 {
			// Keep one row free for the prompt.
			return w, h - 1
		}
	}
	return defaultWidth, defaultHeight
}

func (r *Renderer) cellAt(p domain.Point) (int, int) {
	return int(math.Floor(p.X / r.cellW)), int(math.Floor(p.Y / r.cellH))
}

func (r *Renderer) drawNode(g *grid, graph *scene.Graph, n *scene.Node) {
	world := graph.WorldTransform(n)
	x0, y0 := r.cellAt(world.Translation)
	x1, y1 := r.cellAt(domain.Point{
		X: world.Translation.X + n.Width*world.ScaleX,
		Y: world.Translation.Y + n.Height*world.ScaleY,
	})
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	faint := n.Placeholder

	g.set(x0, y0, '┌', nodeColor, faint)
	g.set(x1, y0, '┐', nodeColor, faint)
	g.set(x0, y1, '└', nodeColor, faint)
	g.set(x1, y1, '┘', nodeColor, faint)
	for x := x0 + 1; x < x1; x++ {
		g.set(x, y0, '─', nodeColor, faint)
		g.set(x, y1, '─', nodeColor, faint)
	}
	for y := y0 + 1; y < y1; y++ {
		g.set(x0, y, '│', nodeColor, faint)
		g.set(x1, y, '│', nodeColor, faint)
	}

	label := n.Name
	if label == "" {
		label = n.ID
	}
	if inner := x1 - x0 - 1; inner > 0 && y0+1 < y1 {
		runes := []rune(label)
		if len(runes) > inner {
			runes = runes[:inner]
		}
		for i, c := range runes {
			g.set(x0+1+i, y0+1, c, "", faint)
		}
	}

	for _, s := range n.Sockets() {
		if s.Placeholder {
			continue
		}
		anchor, err := graph.Anchor(s.ID)
		if err != nil {
			continue
		}
		cx, cy := r.cellAt(graph.Root().Transform.Apply(anchor))
		mark, color := '◦', inputColor
		if s.Direction == domain.DirectionOutput {
			mark, color = '●', outputColor
		}
		g.set(cx, cy, mark, color, faint)
	}
}

// drawEdge draws an L-shaped path: horizontal at the source height, then
// vertical to the target. Provisional edges are dotted with a marker at the
// free end.
func (r *Renderer) drawEdge(g *grid, from, to domain.Point, provisional bool) {
	x0, y0 := r.cellAt(from)
	x1, y1 := r.cellAt(to)

	hr, vr := '─', '│'
	if provisional {
		hr, vr = '·', '·'
	}

	xstep := 1
	if x1 < x0 {
		xstep = -1
	}
	for x := x0; x != x1; x += xstep {
		g.set(x, y0, hr, edgeColor, false)
	}
	ystep := 1
	if y1 < y0 {
		ystep = -1
	}
	for y := y0; y != y1; y += ystep {
		g.set(x1, y, vr, edgeColor, false)
	}

	if !provisional && x0 != x1 && y0 != y1 {
		var corner rune
		switch {
		case x1 > x0 && y1 > y0:
			corner = '┐'
		case x1 > x0:
			corner = '┘'
		case y1 > y0:
			corner = '┌'
		default:
			corner = '└'
		}
		g.set(x1, y0, corner, edgeColor, false)
	}
	if provisional {
		g.set(x1, y1, '×', edgeColor, false)
	}
}

func (r *Renderer) flush(g *grid) error {
	var sb strings.Builder
	for y := 0; y < g.h; y++ {
		var row strings.Builder
		for x := 0; x < g.w; x++ {
			c := g.cells[y*g.w+x]
			if c.r == ' ' {
				row.WriteByte(' ')
				continue
			}
			s := r.profile.String(string(c.r))
			if c.color != "" {
				s = s.Foreground(r.profile.Color(c.color))
			}
			if c.faint {
				s = s.Faint()
			}
			row.WriteString(s.String())
		}
		sb.WriteString(strings.TrimRight(row.String(), " "))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(r.out, sb.String())
	return err
}

type cell struct {
	r     rune
	color string
	faint bool
}

type grid struct {
	w, h  int
	cells []cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([]cell, w*h)}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

func (g *grid) set(x, y int, r rune, color string, faint bool) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = cell{r: r, color: color, faint: faint}
}
