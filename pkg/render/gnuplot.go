package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/legalizer/pkg/layout"
)

const (
	plotPadding = 100 // px around the plot
	plotRatio   = 12  // layout units per px
)

// GnuplotOption configures gnuplot script rendering.
type GnuplotOption func(*gnuplotRenderer)

type gnuplotRenderer struct {
	title      string
	output     string
	cellHeight float64
}

// WithTitle sets the plot title (default "result").
func WithTitle(title string) GnuplotOption {
	return func(r *gnuplotRenderer) { r.title = title }
}

// WithOutputName sets the PNG file the script writes (default "output.png").
func WithOutputName(name string) GnuplotOption {
	return func(r *gnuplotRenderer) { r.output = name }
}

// WithCellHeight draws cells h tall instead of one row pitch.
func WithCellHeight(h float64) GnuplotOption {
	return func(r *gnuplotRenderer) { r.cellHeight = h }
}

// RenderGnuplot returns a gnuplot script that draws rows as empty
// rectangles, cells as labelled filled boxes and special nets colored by
// layer. Running the script writes a PNG sized to the layout.
func RenderGnuplot(l *layout.Layout, cellWidth float64, opts ...GnuplotOption) []byte {
	r := gnuplotRenderer{title: "result", output: "output.png"}
	for _, opt := range opts {
		opt(&r)
	}

	pitch := l.RowPitch()
	cellHeight := r.cellHeight
	if cellHeight == 0 {
		cellHeight = pitch
	}
	f := bounds(l, cellWidth, pitch)
	pad := float64(plotPadding * plotRatio)

	var buf bytes.Buffer
	buf.WriteString("reset\n")
	fmt.Fprintf(&buf, "set title %q\n", r.title)
	buf.WriteString("set xlabel \"X\"\n")
	buf.WriteString("set ylabel \"Y\"\n")
	buf.WriteString("set xtics 1000\n")
	buf.WriteString("set ytics 1000\n")
	fmt.Fprintf(&buf, "set xrange [%s:%s]\n", num(f.x1-pad), num(f.x2+pad))
	fmt.Fprintf(&buf, "set yrange [%s:%s]\n", num(f.y1-pad), num(f.y2+pad))
	// 144 and 106 leave room for the axis labels and tics.
	fmt.Fprintf(&buf, "set terminal png size %.0f,%.0f\n",
		math.Ceil(f.width()/plotRatio+144+plotPadding),
		math.Ceil(f.height()/plotRatio+106+plotPadding))
	fmt.Fprintf(&buf, "set output %q\n", r.output)
	buf.WriteString("\n")

	obj := 1
	for _, row := range l.Rows {
		fmt.Fprintf(&buf, "set object %d rect from %s,%s to %s,%s lw 2 fs empty\n", obj,
			num(row.X), num(row.Y), num(row.Right()), num(row.Y+rowHeight(row, pitch)))
		obj++
	}
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "set style rect fs solid fc rgb %q\n", cellColor)
	for _, c := range l.Cells {
		x2, y2 := c.X+cellWidth, c.Y+cellHeight
		fmt.Fprintf(&buf, "set object %d rect from %s,%s to %s,%s\n", obj,
			num(c.X), num(c.Y), num(x2), num(y2))
		fmt.Fprintf(&buf, "set label \"%s\" at %s,%s center\n",
			escapeUnderscores(c.Name), num((c.X+x2)/2), num((c.Y+y2)/2))
		obj++
	}
	buf.WriteString("\n")

	for _, n := range l.SpecialNets {
		rect := netRect(n)
		fmt.Fprintf(&buf, "set object %d rect from %s,%s to %s,%s fs solid fc rgb %q noborder\n", obj,
			num(rect.X1), num(rect.Y1), num(rect.X2), num(rect.Y2), netColor(n.Layer))
		fmt.Fprintf(&buf, "set label \"%s\" at %s,%s center", escapeUnderscores(n.Label),
			num((rect.X1+rect.X2)/2), num((rect.Y1+rect.Y2)/2))
		if n.Vertical() {
			buf.WriteString(" rotate by 270")
		}
		buf.WriteString("\n")
		obj++
	}
	buf.WriteString("\n")

	buf.WriteString("plot NaN notitle\n")
	buf.WriteString("replot\n")
	return buf.Bytes()
}

// escapeUnderscores keeps gnuplot's enhanced text mode from reading "_" as
// a subscript.
func escapeUnderscores(s string) string {
	return strings.ReplaceAll(s, "_", `\\\_`)
}
