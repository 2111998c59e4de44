package export

import (
	"fmt"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/DipokalLab/intellect/pkg/render"
)

// WritePNG rasterises frame. Portraits are not fetched; persons are drawn
// with their plain fill.
func WritePNG(w io.Writer, f render.Frame, title string) error {
	defer timed()()
	if len(f.Nodes) == 0 {
		return ErrNoNodes
	}
	width, height := imageSize(f)
	sum := summarize(f, title)

	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawAxis(dc, f, height)

	for _, e := range f.Edges {
		c := e.Curve
		x0, y0 := screen(f, c.X0, c.Y0)
		cx, cy := screen(f, c.CX, c.CY)
		x1, y1 := screen(f, c.X1, c.Y1)
		dc.SetColor(withOpacity(parseHex(e.Stroke), e.Opacity))
		dc.SetLineWidth(e.StrokeWidth * f.Transform.K)
		dc.NewSubPath()
		dc.MoveTo(x0, y0)
		dc.QuadraticTo(cx, cy, x1, y1)
		dc.Stroke()
	}

	for _, n := range f.Nodes {
		drawNode(dc, f, n)
	}

	if p := f.Pulse; p != nil {
		x, y := screen(f, p.X, p.Y)
		dc.SetColor(withOpacity(colorPulse, p.Opacity))
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, p.Radius)
		dc.Stroke()
	}

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 12, float64(width)-32, headerHeight-20, 10)
	dc.Fill()
	drawSummaryBlock(dc, sum)
	drawLegend(dc, width)

	return dc.EncodePNG(w)
}

func drawNode(dc *gg.Context, f render.Frame, n render.NodeElement) {
	x, y := screen(f, n.X, n.Y)
	r := n.Radius * f.Transform.K

	dc.SetColor(withOpacity(parseHex(n.Fill), n.Opacity))
	dc.DrawCircle(x, y, r)
	dc.Fill()
	dc.SetColor(withOpacity(colorStroke, n.Opacity))
	dc.SetLineWidth(1.2)
	dc.DrawCircle(x, y, r)
	dc.Stroke()

	if n.LabelOpacity > 0 {
		dc.SetColor(withOpacity(colorText, n.LabelOpacity*n.Opacity))
		dc.DrawStringAnchored(truncate(n.Label, 40), x+r+4, y, 0, 0.5)
	}
}

func drawAxis(dc *gg.Context, f render.Frame, height int) {
	y := float64(height) - 24
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y, f.Width, y)
	dc.Stroke()
	for _, t := range f.Axis {
		x, _ := screen(f, t.X, 0)
		dc.SetColor(colorAxis)
		dc.DrawLine(x, y, x, y+5)
		dc.Stroke()
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(t.Label, x, y+14, 0.5, 0.5)
	}
}

func drawSummaryBlock(dc *gg.Context, s summaryInfo) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(s.Title, 32, 32, 0, 0.5)
	line := fmt.Sprintf("nodes: %d  edges: %d", s.NodeCount, s.EdgeCount)
	if s.Span != "" {
		line += "  span: " + s.Span
	}
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(line, 32, 50, 0, 0.5)
}

func drawLegend(dc *gg.Context, width int) {
	cfg := render.DefaultConfig()
	x := float64(width) - 200
	drawLegendRow(dc, x, 31, parseHex(cfg.PersonFill), "Person")
	drawLegendRow(dc, x+90, 31, parseHex(cfg.AchievementFill), "Achievement")
}

func drawLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawCircle(x+7, y, 7)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawCircle(x+7, y, 7)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}
