package export

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"

	"github.com/ajstarks/svgo"

	"github.com/DipokalLab/intellect/pkg/render"
)

// WriteSVG draws frame as a standalone SVG document.
func WriteSVG(w io.Writer, f render.Frame, title string) error {
	defer timed()()
	if len(f.Nodes) == 0 {
		return ErrNoNodes
	}
	width, height := imageSize(f)
	sum := summarize(f, title)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(sum.Title)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))

	if len(f.Patterns) > 0 {
		canvas.Def()
		for _, p := range f.Patterns {
			canvas.Pattern(p.ID, 0, 0, 1, 1, "obj", `patternContentUnits="objectBoundingBox"`)
			canvas.Image(0, 0, 1, 1, html.EscapeString(p.URL), `preserveAspectRatio="xMidYMid slice"`)
			canvas.PatternEnd()
		}
		canvas.DefEnd()
	}

	drawAxisSVG(canvas, f, height)

	for _, e := range f.Edges {
		c := e.Curve
		x0, y0 := screen(f, c.X0, c.Y0)
		cx, cy := screen(f, c.CX, c.CY)
		x1, y1 := screen(f, c.X1, c.Y1)
		d := fmt.Sprintf("M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f", x0, y0, cx, cy, x1, y1)
		canvas.Path(d, fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f",
			e.Stroke, e.StrokeWidth*f.Transform.K, e.Opacity))
	}

	for _, n := range f.Nodes {
		x, y := screen(f, n.X, n.Y)
		r := int(math.Max(1, math.Round(n.Radius*f.Transform.K)))
		fill := n.Fill
		if n.PatternID != "" {
			fill = "url(#" + n.PatternID + ")"
		}
		canvas.Circle(int(math.Round(x)), int(math.Round(y)), r,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2;opacity:%.2f", fill, css(colorStroke), n.Opacity))
		if n.LabelOpacity > 0 {
			size := n.FontSize * f.Transform.K
			canvas.Text(int(math.Round(x))+r+4, int(math.Round(y+size/3)), truncate(n.Label, 40),
				fmt.Sprintf("fill:%s;font-size:%.0fpx;font-family:sans-serif;opacity:%.2f", css(colorText), size, n.LabelOpacity*n.Opacity))
		}
	}

	if p := f.Pulse; p != nil {
		x, y := screen(f, p.X, p.Y)
		canvas.Circle(int(math.Round(x)), int(math.Round(y)), int(math.Round(p.Radius)),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;stroke-opacity:%.2f", css(colorPulse), p.Opacity))
	}

	canvas.Roundrect(16, 12, width-32, int(headerHeight)-20, 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	drawSummaryBlockSVG(canvas, sum)
	drawLegendSVG(canvas, width)

	canvas.End()
	return nil
}

func drawAxisSVG(canvas *svg.SVG, f render.Frame, height int) {
	y := height - 24
	canvas.Line(0, y, int(f.Width), y, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorAxis)))
	for _, t := range f.Axis {
		x, _ := screen(f, t.X, 0)
		ix := int(math.Round(x))
		canvas.Line(ix, y, ix, y+5, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorAxis)))
		canvas.Text(ix, y+17, t.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace;text-anchor:middle", css(colorSubtle)))
	}
}

func drawSummaryBlockSVG(canvas *svg.SVG, s summaryInfo) {
	canvas.Text(32, 36, s.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	line := fmt.Sprintf("nodes: %d  edges: %d", s.NodeCount, s.EdgeCount)
	if s.Span != "" {
		line += "  span: " + s.Span
	}
	canvas.Text(32, 54, line, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawLegendSVG(canvas *svg.SVG, width int) {
	cfg := render.DefaultConfig()
	x := width - 200
	y := 24
	drawLegendRowSVG(canvas, x, y, parseHex(cfg.PersonFill), "Person")
	drawLegendRowSVG(canvas, x+90, y, parseHex(cfg.AchievementFill), "Achievement")
}

func drawLegendRowSVG(canvas *svg.SVG, x, y int, c color.RGBA, label string) {
	canvas.Circle(x+7, y+7, 7, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(c), css(colorStroke)))
	canvas.Text(x+20, y+12, label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}
