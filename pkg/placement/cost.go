package placement

import "math"

// Cost returns the L1 distance between a slot at (x, y) and a cell whose
// original position is (x0, y0).
func Cost(x0, y0, x, y float64) float64 {
	return math.Abs(x-x0) + math.Abs(y-y0)
}

// Clamp places the interval [ax1, ax2) inside the row [bx1, bx2] on the grid
// bx1 + n*pitch and returns the new start.
//
// An interval starting before the row snaps to bx1, one ending past the row
// is shifted left until it ends at bx2, anything else is floored to the grid.
// Both ax2-ax1 and bx2-bx1 must be multiples of pitch, and pitch must be
// positive.
func Clamp(ax1, ax2, bx1, pitch, bx2 float64) float64 {
	switch {
	case ax1 < bx1:
		return bx1
	case ax2 > bx2:
		return bx2 - (ax2 - ax1)
	default:
		return bx1 + math.Floor((ax1-bx1)/pitch)*pitch
	}
}

// QuantizeWidth rounds width up to the next multiple of pitch.
func QuantizeWidth(width, pitch float64) float64 {
	if pitch <= 0 {
		return width
	}
	return math.Ceil(width/pitch-gridEpsilon) * pitch
}

// gridEpsilon absorbs floating-point noise in grid arithmetic.
const gridEpsilon = 1e-9

// isMultiple reports whether v is a whole multiple of step.
func isMultiple(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) <= gridEpsilon*math.Max(1, math.Abs(q))
}
