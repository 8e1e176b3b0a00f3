package render

import (
	"math"
	"strconv"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// frame is the drawn extent: the die area grown to cover every cell.
type frame struct {
	x1, y1, x2, y2 float64
}

func (f frame) width() float64  { return f.x2 - f.x1 }
func (f frame) height() float64 { return f.y2 - f.y1 }

func bounds(l *layout.Layout, cellWidth, cellHeight float64) frame {
	f := frame{l.DieArea.X1, l.DieArea.Y1, l.DieArea.X2, l.DieArea.Y2}
	for _, c := range l.Cells {
		f.x1 = math.Min(f.x1, c.X)
		f.y1 = math.Min(f.y1, c.Y)
		f.x2 = math.Max(f.x2, c.X+cellWidth)
		f.y2 = math.Max(f.y2, c.Y+cellHeight)
	}
	return f
}

// rowHeight is the drawn height of r: StepY rows of CountY, or one pitch
// per repetition when StepY is zero.
func rowHeight(r layout.Row, pitch float64) float64 {
	step := r.StepY
	if step == 0 {
		step = pitch
	}
	return float64(max(r.CountY, 1)) * step
}

// netRect returns the drawn rectangle of a special net: the centerline
// widened by half the wire width on each side.
func netRect(n layout.SpecialNet) layout.Rect {
	r := layout.Rect{X1: n.X1, Y1: n.Y1, X2: n.X2, Y2: n.Y2}
	if n.Vertical() {
		r.X1 -= n.Width / 2
		r.X2 += n.Width / 2
	} else {
		r.Y1 -= n.Width / 2
		r.Y2 += n.Width / 2
	}
	return r
}

// netColor maps a routing layer to its fill color.
func netColor(layer string) string {
	switch layer {
	case "ME3":
		return "#9966ff"
	case "ME4":
		return "#66b3ff"
	default:
		return "#66ffff"
	}
}

const cellColor = "#ff66ff"

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
