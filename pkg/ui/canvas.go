package ui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
)

// A terminal cell covers CellWidth by CellHeight world units at zoom 1.
// The engine viewport is sized in these units so the aspect ratio of the
// layout survives the trip to the character grid.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

type cellClass uint8

const (
	clsBlank cellClass = iota
	clsAxis
	clsEdge
	clsEdgeHi
	clsEdgeDim
	clsPerson
	clsAchievement
	clsNodeDim
	clsNodeHi
	clsLabel
	clsLabelDim
	clsPulse
	clsPath
	numCellClasses
)

const (
	glyphPerson      = '●'
	glyphAchievement = '◆'
	glyphConnected   = '◉'
	glyphEdge        = '·'
	glyphAxis        = '─'
	glyphTick        = '┴'

	// wideFill marks the second cell of a double-width rune.
	wideFill = rune(0)
)

// Canvas is a grid of runes with a style class per cell.
type Canvas struct {
	w, h  int
	runes []rune
	cls   []cellClass
}

// NewCanvas returns a blank canvas of w columns and h rows.
func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{w: w, h: h, runes: make([]rune, w*h), cls: make([]cellClass, w*h)}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

func (c *Canvas) in(x, y int) bool { return x >= 0 && y >= 0 && x < c.w && y < c.h }

// Set writes r at (x, y). Out-of-range writes are ignored.
func (c *Canvas) Set(x, y int, r rune, cl cellClass) {
	if !c.in(x, y) {
		return
	}
	c.runes[y*c.w+x] = r
	c.cls[y*c.w+x] = cl
}

// Rune returns the rune at (x, y), or a space outside the canvas.
func (c *Canvas) Rune(x, y int) rune {
	if !c.in(x, y) {
		return ' '
	}
	return c.runes[y*c.w+x]
}

func (c *Canvas) class(x, y int) cellClass {
	if !c.in(x, y) {
		return clsBlank
	}
	return c.cls[y*c.w+x]
}

func isNodeClass(cl cellClass) bool {
	switch cl {
	case clsPerson, clsAchievement, clsNodeDim, clsNodeHi, clsPulse, clsPath:
		return true
	}
	return false
}

// Text writes s starting at (x, y) without overwriting node glyphs. It
// stops at the first node cell or the right edge.
func (c *Canvas) Text(x, y int, s string, cl cellClass) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > c.w || isNodeClass(c.class(x, y)) || (w == 2 && isNodeClass(c.class(x+1, y))) {
			return
		}
		c.Set(x, y, r, cl)
		if w == 2 {
			c.Set(x+1, y, wideFill, cl)
		}
		x += w
	}
}

// String returns the canvas as plain text, one line per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			if r := c.runes[y*c.w+x]; r != wideFill {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// Render styles runs of equal class with the theme.
func (c *Canvas) Render(th Theme) string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		cur := clsBlank
		run.Reset()
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur == clsBlank {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(th.cellStyle(cur).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			i := y*c.w + x
			if c.runes[i] == wideFill {
				continue
			}
			if c.cls[i] != cur {
				flush()
				cur = c.cls[i]
			}
			run.WriteRune(c.runes[i])
		}
		flush()
	}
	return sb.String()
}

// cellOf maps a world point through the frame transform to a cell.
func cellOf(f render.Frame, x, y float64) (int, int) {
	sx, sy := f.Transform.Apply(x, y)
	return int(math.Floor(sx / CellWidth)), int(math.Floor(sy / CellHeight))
}

// Overlay marks nodes the host wants called out on top of the frame's own
// styling.
type Overlay struct {
	Connected map[string]bool
	Path      map[string]bool
	Cursor    string
}

// DrawFrame draws axis, edges, nodes, labels and the focus ring.
func DrawFrame(c *Canvas, f render.Frame, ov Overlay) {
	drawAxis(c, f)
	for _, e := range f.Edges {
		drawEdge(c, f, e, ov)
	}
	for _, n := range f.Nodes {
		drawNodeGlyph(c, f, n, ov)
	}
	if p := f.Pulse; p != nil && p.Opacity > 0.05 {
		col, row := cellOf(f, p.X, p.Y)
		c.Set(col-1, row, '(', clsPulse)
		c.Set(col+1, row, ')', clsPulse)
	}
	for _, n := range f.Nodes {
		drawLabel(c, f, n, ov)
	}
}

func drawAxis(c *Canvas, f render.Frame) {
	if c.h == 0 {
		return
	}
	row := c.h - 1
	for x := 0; x < c.w; x++ {
		c.Set(x, row, glyphAxis, clsAxis)
	}
	last := -1
	for _, t := range f.Axis {
		col, _ := cellOf(f, t.X, 0)
		if col < 0 || col >= c.w || col <= last {
			continue
		}
		c.Set(col, row, glyphTick, clsAxis)
		label := " " + t.Label + " "
		start := col + 1
		if start+runewidth.StringWidth(label) > c.w {
			continue
		}
		c.Text(start, row, label, clsAxis)
		last = start + runewidth.StringWidth(label)
	}
}

func drawEdge(c *Canvas, f render.Frame, e render.EdgeElement, ov Overlay) {
	cl := clsEdge
	switch {
	case e.Highlighted:
		cl = clsEdgeHi
	case ov.Path[e.Source] && ov.Path[e.Target]:
		cl = clsPath
	case e.Opacity < 0.5:
		cl = clsEdgeDim
	}
	x0, y0 := cellOf(f, e.Curve.X0, e.Curve.Y0)
	x1, y1 := cellOf(f, e.Curve.X1, e.Curve.Y1)
	steps := 2 * max(abs(x1-x0), abs(y1-y0), 4)
	for i := 1; i < steps; i++ {
		wx, wy := e.Curve.At(float64(i) / float64(steps))
		col, row := cellOf(f, wx, wy)
		if cur := c.class(col, row); isNodeClass(cur) || (cur == clsEdgeHi && cl != clsEdgeHi) {
			continue
		}
		c.Set(col, row, glyphEdge, cl)
	}
}

func drawNodeGlyph(c *Canvas, f render.Frame, n render.NodeElement, ov Overlay) {
	col, row := cellOf(f, n.X, n.Y)
	glyph := glyphAchievement
	cl := clsAchievement
	if n.Kind == model.KindPerson {
		glyph = glyphPerson
		cl = clsPerson
	}
	if ov.Connected[n.ID] {
		glyph = glyphConnected
	}
	switch {
	case n.Highlighted || n.ID == ov.Cursor:
		cl = clsNodeHi
	case ov.Path[n.ID]:
		cl = clsPath
	case n.Opacity < 0.5:
		cl = clsNodeDim
	}
	c.Set(col, row, glyph, cl)
}

func drawLabel(c *Canvas, f render.Frame, n render.NodeElement, ov Overlay) {
	show := n.LabelOpacity >= 0.5 || n.Highlighted || n.ID == ov.Cursor
	if !show {
		return
	}
	col, row := cellOf(f, n.X, n.Y)
	cl := clsLabel
	if n.Opacity < 0.5 {
		cl = clsLabelDim
	}
	c.Text(col+2, row, truncate(n.Label, 28), cl)
}

// NodeAtCell returns the node drawn at (col, row), preferring an exact cell
// match and falling back to a neighbour within one cell.
func NodeAtCell(f render.Frame, col, row int) (string, bool) {
	best, bestD := "", math.MaxInt
	for i := len(f.Nodes) - 1; i >= 0; i-- {
		n := f.Nodes[i]
		nc, nr := cellOf(f, n.X, n.Y)
		dc, dr := abs(nc-col), abs(nr-row)
		if dc > 1 || dr > 1 {
			continue
		}
		if d := dc + dr; d < bestD {
			best, bestD = n.ID, d
		}
	}
	return best, best != ""
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
