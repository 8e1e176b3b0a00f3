package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// DefaultSVGWidth is the pixel width of the drawing area in SVG output.
const DefaultSVGWidth = 1200.0

const svgMargin = 20.0

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels bool
	nets   bool
	before *layout.Layout
	width  float64
}

// WithLabels draws cell names inside the cells.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithNets draws special nets on top of the cells.
func WithNets() SVGOption { return func(r *svgRenderer) { r.nets = true } }

// WithWidth sets the pixel width of the drawing area.
func WithWidth(px float64) SVGOption { return func(r *svgRenderer) { r.width = px } }

// WithMoves draws a line from each cell's position in before to its
// position in the rendered layout. Cells are matched by name.
func WithMoves(before *layout.Layout) SVGOption {
	return func(r *svgRenderer) { r.before = before }
}

// RenderSVG draws l as an SVG document. Layout y grows upward; the drawing
// is flipped so the lowest row is at the bottom.
func RenderSVG(l *layout.Layout, cellWidth float64, opts ...SVGOption) []byte {
	r := svgRenderer{width: DefaultSVGWidth}
	for _, opt := range opts {
		opt(&r)
	}

	pitch := l.RowPitch()
	f := bounds(l, cellWidth, pitch)
	s := 1.0
	if f.width() > 0 {
		s = r.width / f.width()
	}
	px := func(x float64) float64 { return svgMargin + (x-f.x1)*s }
	py := func(y float64) float64 { return svgMargin + (f.y2-y)*s }

	w := f.width()*s + 2*svgMargin
	h := f.height()*s + 2*svgMargin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(l.Name))
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="white"/>`+"\n", w, h)
	fmt.Fprintf(&buf, `  <rect class="die" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#999" stroke-dasharray="4 2"/>`+"\n",
		px(l.DieArea.X1), py(l.DieArea.Y2), l.DieArea.Width()*s, l.DieArea.Height()*s)

	buf.WriteString(`  <g class="rows" fill="none" stroke="#333" stroke-width="1">` + "\n")
	for _, row := range l.Rows {
		rh := rowHeight(row, pitch)
		fmt.Fprintf(&buf, `    <rect id="row-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			html.EscapeString(row.Name), px(row.X), py(row.Y+rh), row.Width()*s, rh*s)
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <g class="cells" fill="%s" stroke="#993399" stroke-width="0.5">`+"\n", cellColor)
	for _, c := range l.Cells {
		fmt.Fprintf(&buf, `    <rect id="cell-%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			html.EscapeString(c.Name), px(c.X), py(c.Y+pitch), cellWidth*s, pitch*s)
	}
	buf.WriteString("  </g>\n")

	if r.nets && len(l.SpecialNets) > 0 {
		renderNets(&buf, l.SpecialNets, s, px, py)
	}
	if r.before != nil {
		renderMoves(&buf, r.before, l, cellWidth, pitch, px, py)
	}
	if r.labels {
		size := math.Min(pitch*s*0.5, 12)
		fmt.Fprintf(&buf, `  <g class="labels" font-family="monospace" font-size="%.1f" text-anchor="middle" dominant-baseline="central">`+"\n", size)
		for _, c := range l.Cells {
			fmt.Fprintf(&buf, `    <text x="%.2f" y="%.2f">%s</text>`+"\n",
				px(c.X+cellWidth/2), py(c.Y+pitch/2), html.EscapeString(c.Name))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderNets(buf *bytes.Buffer, nets []layout.SpecialNet, s float64, px, py func(float64) float64) {
	buf.WriteString(`  <g class="nets" opacity="0.7">` + "\n")
	for _, n := range nets {
		rect := netRect(n)
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s %s</title></rect>`+"\n",
			px(rect.X1), py(rect.Y2), rect.Width()*s, rect.Height()*s, netColor(n.Layer),
			html.EscapeString(n.Label), html.EscapeString(n.Layer))
	}
	buf.WriteString("  </g>\n")
}

func renderMoves(buf *bytes.Buffer, before, after *layout.Layout, cellWidth, pitch float64, px, py func(float64) float64) {
	idx := after.CellIndex()
	buf.WriteString(`  <g class="moves" stroke="#e03131" stroke-width="1" fill="#e03131">` + "\n")
	for _, b := range before.Cells {
		j, ok := idx[b.Name]
		if !ok {
			continue
		}
		a := after.Cells[j]
		if a.X == b.X && a.Y == b.Y {
			continue
		}
		x1, y1 := px(b.X+cellWidth/2), py(b.Y+pitch/2)
		x2, y2 := px(a.X+cellWidth/2), py(a.Y+pitch/2)
		fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/><circle cx="%.2f" cy="%.2f" r="1.5"/>`+"\n",
			x1, y1, x2, y2, x1, y1)
	}
	buf.WriteString("  </g>\n")
}
