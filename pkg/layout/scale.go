package layout

// TimeScale maps signed years linearly onto a horizontal pixel range.
// Negative years are BCE. The map is monotonic and continuous; a domain
// that collapses to one year is widened by a year on each side.
type TimeScale struct {
	MinYear, MaxYear int
	Left, Right      float64
}

// NewTimeScale spans [minYear, maxYear] across width less margin on each side.
func NewTimeScale(minYear, maxYear int, width, margin float64) TimeScale {
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}
	if minYear == maxYear {
		minYear--
		maxYear++
	}
	left, right := margin, width-margin
	if right <= left {
		left, right = 0, width
	}
	if right <= left {
		right = left + 1
	}
	return TimeScale{MinYear: minYear, MaxYear: maxYear, Left: left, Right: right}
}

// X returns the coordinate of year. Years outside the domain extrapolate.
func (s TimeScale) X(year int) float64 {
	return s.XFloat(float64(year))
}

// XFloat is X for fractional years.
func (s TimeScale) XFloat(year float64) float64 {
	t := (year - float64(s.MinYear)) / float64(s.MaxYear-s.MinYear)
	return s.Left + t*(s.Right-s.Left)
}

// Year inverts X.
func (s TimeScale) Year(x float64) float64 {
	t := (x - s.Left) / (s.Right - s.Left)
	return float64(s.MinYear) + t*float64(s.MaxYear-s.MinYear)
}

// Rescale maps a coordinate from s onto to, keeping its year.
func (s TimeScale) Rescale(x float64, to TimeScale) float64 {
	return to.XFloat(s.Year(x))
}

// Ticks returns roughly n round years inside the domain, for axis labels.
func (s TimeScale) Ticks(n int) []int {
	if n <= 0 {
		return nil
	}
	span := s.MaxYear - s.MinYear
	step := 1
	for mag := 1; step*n < span; mag *= 10 {
		for _, m := range []int{1, 2, 5, 10} {
			step = m * mag
			if step*n >= span {
				break
			}
		}
	}
	start := floorDiv(s.MinYear, step) * step
	if start < s.MinYear {
		start += step
	}
	var out []int
	for y := start; y <= s.MaxYear; y += step {
		out = append(out, y)
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
