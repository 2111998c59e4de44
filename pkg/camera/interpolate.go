package camera

import "math"

// view is a camera position as (centre x, centre y, visible width) in world
// units, the parameterisation used by smooth zooming.
type view [3]float64

const (
	rho     = math.Sqrt2
	rho2    = 2.0
	rho4    = 4.0
	epsilon = 1e-12
)

// interpolateZoom returns a path between two views following van Wijk and
// Nuij's "Smooth and efficient zooming and panning": the camera zooms out,
// pans and zooms back in along the perceptually shortest route.
func interpolateZoom(p0, p1 view) func(t float64) view {
	ux0, uy0, w0 := p0[0], p0[1], p0[2]
	ux1, uy1, w1 := p1[0], p1[1], p1[2]
	dx, dy := ux1-ux0, uy1-uy0
	d2 := dx*dx + dy*dy

	if d2 < epsilon {
		s := math.Log(w1/w0) / rho
		return func(t float64) view {
			return view{ux0 + t*dx, uy0 + t*dy, w0 * math.Exp(rho*t*s)}
		}
	}

	d1 := math.Sqrt(d2)
	b0 := (w1*w1 - w0*w0 + rho4*d2) / (2 * w0 * rho2 * d1)
	b1 := (w1*w1 - w0*w0 - rho4*d2) / (2 * w1 * rho2 * d1)
	r0 := math.Log(math.Sqrt(b0*b0+1) - b0)
	r1 := math.Log(math.Sqrt(b1*b1+1) - b1)
	s := (r1 - r0) / rho
	coshr0 := math.Cosh(r0)

	return func(t float64) view {
		st := t * s
		u := w0 / (rho2 * d1) * (coshr0*math.Tanh(rho*st+r0) - math.Sinh(r0))
		return view{ux0 + u*dx, uy0 + u*dy, w0 * coshr0 / math.Cosh(rho*st+r0)}
	}
}

// cubicInOut is the default transition easing.
func cubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// toView converts a transform to the view it shows in vp.
func toView(t Transform, vp Viewport) view {
	cx, cy := vp.center()
	w := math.Max(vp.Width, vp.Height)
	return view{(cx - t.X) / t.K, (cy - t.Y) / t.K, w / t.K}
}

// fromView converts a view back to a transform for vp.
func fromView(v view, vp Viewport) Transform {
	cx, cy := vp.center()
	w := math.Max(vp.Width, vp.Height)
	k := w / v[2]
	return Transform{X: cx - v[0]*k, Y: cy - v[1]*k, K: k}
}
