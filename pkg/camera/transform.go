// Package camera owns the view transform: user pan and zoom, animated focus
// on a node, and the pulse ring shown while focusing.
package camera

import "math"

// Transform is a translate-then-scale view: screen = world*K + (X, Y).
type Transform struct {
	X, Y, K float64
}

// Identity is the unscaled, untranslated view.
func Identity() Transform { return Transform{K: 1} }

// Apply maps a world point to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen point back to world coordinates.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Clamp limits the scale to [lo, hi], keeping the translation.
func (t Transform) Clamp(lo, hi float64) Transform {
	t.K = math.Max(lo, math.Min(hi, t.K))
	return t
}

// Viewport is the drawable area in screen units.
type Viewport struct {
	Width, Height float64
}

func (v Viewport) center() (float64, float64) { return v.Width / 2, v.Height / 2 }

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}
