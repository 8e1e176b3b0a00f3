// Package render draws a placement in several output formats.
//
// # Overview
//
// Every renderer takes a [layout.Layout] and the uniform cell width used by
// legalization. Cells are drawn as cellWidth × row pitch boxes unless a cell
// height is set explicitly.
//
//   - [RenderGnuplot]: a gnuplot script that writes output.png when run
//   - [RenderSVG]: a standalone SVG document
//   - [RenderPNG], [RenderPDF]: the SVG converted with rsvg-convert
//   - [ToDOT], [RenderNeato]: a Graphviz graph with pinned node positions
//   - [NewReport]: a JSON displacement report
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := render.RenderSVG(l, cellWidth, render.WithLabels())
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Displacement
//
// [WithMoves] overlays the distance every cell travelled during
// legalization:
//
//	before := l.Clone()
//	placement.Legalize(l, cellWidth)
//	svg := render.RenderSVG(l, cellWidth, render.WithMoves(before))
//
// [layout.Layout]: github.com/matzehuels/legalizer/pkg/layout.Layout
package render
