package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/legalizer/pkg/layout"
)

// dotWidth is the width in points the layout is scaled to in DOT output.
const dotWidth = 720.0

// DOTOptions configures Graphviz output.
type DOTOptions struct {
	// Labels shows cell names. When false, cells are blank boxes.
	Labels bool
	// Nets adds special nets as filled boxes.
	Nets bool
}

// ToDOT converts a placement to a Graphviz graph for the neato engine.
// Every row, cell and net is a fixed-size box pinned at its layout position
// with pos="x,y!", so neato draws the placement as-is. The result can be
// rendered with [RenderNeato].
func ToDOT(l *layout.Layout, cellWidth float64, opts DOTOptions) string {
	pitch := l.RowPitch()
	f := bounds(l, cellWidth, pitch)
	s := 1.0
	if f.width() > 0 {
		s = dotWidth / f.width()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %q {\n", l.Name)
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  outputorder=nodesfirst;\n")
	buf.WriteString("  node [shape=box, fixedsize=true, fontsize=6, margin=0, penwidth=0.5];\n")
	buf.WriteString("\n")

	box := func(id string, x, y, w, h float64, attrs string) {
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s!\", width=%s, height=%s, %s];\n", id,
			ptNum((x+w/2-f.x1)*s), ptNum((y+h/2-f.y1)*s),
			inNum(w*s), inNum(h*s), attrs)
	}

	for _, r := range l.Rows {
		box("row:"+r.Name, r.X, r.Y, r.Width(), rowHeight(r, pitch), `label="", style=dashed`)
	}
	for _, c := range l.Cells {
		label := ""
		if opts.Labels {
			label = c.Name
		}
		box("cell:"+c.Name, c.X, c.Y, cellWidth, pitch,
			fmt.Sprintf("label=%q, style=filled, fillcolor=%q", label, cellColor))
	}
	if opts.Nets {
		for i, n := range l.SpecialNets {
			rect := netRect(n)
			box(fmt.Sprintf("net:%d:%s", i, n.Label), rect.X1, rect.Y1, rect.Width(), rect.Height(),
				fmt.Sprintf("label=\"\", style=filled, color=%q, fillcolor=%q, tooltip=%q",
					netColor(n.Layer), netColor(n.Layer), n.Label))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func ptNum(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// inNum converts points to inches, which Graphviz uses for node sizes.
func inNum(v float64) string { return strconv.FormatFloat(v/72, 'f', 4, 64) }

// RenderNeato renders a DOT graph to SVG using the Graphviz neato engine.
// The drawing is DefaultSVGWidth pixels wide, like [RenderSVG] output, and
// can be converted further with [ToPDF] or [ToPNG].
func RenderNeato(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return fitWidth(buf.Bytes(), DefaultSVGWidth), nil
}

var (
	svgTagRe   = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe  = regexp.MustCompile(`viewBox="[-0-9.]+\s+[-0-9.]+\s+([0-9.]+)\s+([0-9.]+)"`)
	sizeAttrRe = regexp.MustCompile(`\s(?:width|height)="[^"]*"`)
)

// fitWidth sizes the root element Graphviz emits to px pixels wide, with the
// height following the viewBox aspect ratio. The viewBox and the namespace
// declarations are kept, since tooltips render as xlink attributes.
func fitWidth(svg []byte, px float64) []byte {
	root := svgTagRe.Find(svg)
	if root == nil {
		return svg
	}
	m := viewBoxRe.FindSubmatch(root)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[1]), 64)
	h, _ := strconv.ParseFloat(string(m[2]), 64)
	if w <= 0 || h <= 0 {
		return svg
	}

	sized := sizeAttrRe.ReplaceAll(root, nil)
	sized = bytes.Replace(sized, []byte("<svg"),
		fmt.Appendf(nil, `<svg width="%.0f" height="%.0f"`, px, px*h/w), 1)
	return bytes.Replace(svg, root, sized, 1)
}
