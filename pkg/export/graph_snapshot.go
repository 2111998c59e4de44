// Package export writes one-shot artifacts of the timeline graph: SVG and
// PNG snapshots of a settled layout, and a SQLite database of the document
// with its computed positions.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/engine"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/store"
)

// ErrNoNodes is returned when the selection leaves nothing to draw.
var ErrNoNodes = errors.New("no visible nodes to export")

// DefaultMaxTicks bounds how long a snapshot layout may run.
const DefaultMaxTicks = 1000

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string   // Output path; format inferred from extension when Format empty
	Format string   // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string   // Optional title rendered in the summary block
	Fields []string // Field selection; empty means every field
	Width  int
	Height int

	Engine   *engine.Options // Nil means engine.DefaultOptions
	MaxTicks int
}

// Settle lays out doc under the given field selection on a private engine,
// runs it to rest, fits the view and returns the resulting frame.
func Settle(doc *model.GraphDocument, fields []string, opts engine.Options, maxTicks int) (render.Frame, error) {
	if doc == nil {
		return render.Frame{}, ErrNoNodes
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	debug.Section("settle")
	st := store.New()
	st.SetData(doc)
	if len(fields) > 0 {
		st.SetSelectedFields(fields)
	}

	eng := engine.New(st, opts)
	ticks := eng.RunToRest(maxTicks)
	eng.FitView()
	eng.Tick()

	frame := eng.Frame()
	debug.Log("export: settled %d nodes in %d ticks", len(frame.Nodes), ticks)
	if len(frame.Nodes) == 0 {
		return frame, ErrNoNodes
	}
	return frame, nil
}

// SaveSnapshot settles doc and writes an SVG or PNG snapshot.
func SaveSnapshot(doc *model.GraphDocument, opts SnapshotOptions) error {
	format, path, err := ResolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}

	eo := engine.DefaultOptions()
	if opts.Engine != nil {
		eo = *opts.Engine
	}
	if opts.Width > 0 && opts.Height > 0 {
		eo.Width, eo.Height = float64(opts.Width), float64(opts.Height)
	}
	frame, err := Settle(doc, opts.Fields, eo, opts.MaxTicks)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch format {
	case "svg":
		err = WriteSVG(file, frame, opts.Title)
	case "png":
		err = WritePNG(file, frame, opts.Title)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// ResolveFormat picks the snapshot format from format, else from the file
// extension. A path without an extension gets ".svg" appended; any other
// extension must be svg or png.
func ResolveFormat(format, path string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		format = strings.TrimPrefix(ext, ".")
		if ext == "" {
			format = "svg"
			if path != "" {
				path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return format, path, nil
}

// --- shared drawing helpers ------------------------------------------------

const headerHeight = 72.0

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorAxis     = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorPulse    = color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
)

type summaryInfo struct {
	Title     string
	NodeCount int
	EdgeCount int
	Span      string
}

func summarize(f render.Frame, title string) summaryInfo {
	if strings.TrimSpace(title) == "" {
		title = "Timeline Snapshot"
	}
	s := summaryInfo{Title: title, NodeCount: len(f.Nodes), EdgeCount: len(f.Edges)}
	if len(f.Axis) > 0 {
		s.Span = f.Axis[0].Label + " – " + f.Axis[len(f.Axis)-1].Label
	}
	return s
}

// screen maps a world point through the frame's camera transform into
// image space, below the header.
func screen(f render.Frame, x, y float64) (float64, float64) {
	sx, sy := f.Transform.Apply(x, y)
	return sx, sy + headerHeight
}

func imageSize(f render.Frame) (int, int) {
	return int(f.Width), int(f.Height + headerHeight)
}

// parseHex reads "#rrggbb"; anything else yields mid grey.
func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{r, g, b, 0xff}
		}
	}
	return color.RGBA{0x88, 0x88, 0x88, 0xff}
}

func withOpacity(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{c.R, c.G, c.B, uint8(a*255 + 0.5)}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func timed() func() {
	return metrics.Timer(metrics.SnapshotRender)
}
