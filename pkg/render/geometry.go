package render

import (
	"fmt"
	"math"

	"github.com/DipokalLab/intellect/pkg/layout"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Curve is a quadratic Bézier from (X0,Y0) to (X1,Y1) through control
// point (CX,CY).
type Curve struct {
	X0, Y0, CX, CY, X1, Y1 float64
}

// CurveBetween bends the chord between two points. The control point sits
// on the perpendicular through the midpoint at offset*chord length; it
// bends one way when the source is the higher endpoint (smaller y) and the
// other way otherwise.
func CurveBetween(x0, y0, x1, y1, offset float64) Curve {
	c := Curve{X0: x0, Y0: y0, X1: x1, Y1: y1}
	mx, my := (x0+x1)/2, (y0+y1)/2
	dx, dy := x1-x0, y1-y0
	chord := math.Hypot(dx, dy)
	if chord == 0 {
		c.CX, c.CY = mx, my
		return c
	}
	sign := 1.0
	if y0 >= y1 {
		sign = -1
	}
	// Unit normal scaled by offset*chord reduces to (-dy, dx)*offset.
	c.CX = mx - dy*offset*sign
	c.CY = my + dx*offset*sign
	return c
}

// At evaluates the curve at t in [0,1].
func (c Curve) At(t float64) (float64, float64) {
	u := 1 - t
	x := u*u*c.X0 + 2*u*t*c.CX + t*t*c.X1
	y := u*u*c.Y0 + 2*u*t*c.CY + t*t*c.Y1
	return x, y
}

// PathData renders the curve as SVG path data.
func (c Curve) PathData() string {
	return fmt.Sprintf("M%.2f,%.2f Q%.2f,%.2f %.2f,%.2f", c.X0, c.Y0, c.CX, c.CY, c.X1, c.Y1)
}

// AxisTick is one labelled year on the time axis.
type AxisTick struct {
	Year  int
	X     float64
	Label string
}

func axisTicks(s layout.TimeScale) []AxisTick {
	years := s.Ticks(8)
	out := make([]AxisTick, 0, len(years))
	for _, y := range years {
		out = append(out, AxisTick{Year: y, X: s.X(y), Label: model.FormatYear(y)})
	}
	return out
}
