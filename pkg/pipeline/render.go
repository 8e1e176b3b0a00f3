package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/legalizer/pkg/errors"
	"github.com/matzehuels/legalizer/pkg/layout"
	"github.com/matzehuels/legalizer/pkg/placement"
	"github.com/matzehuels/legalizer/pkg/render"
)

// Render generates output artifacts in the requested formats. before may be
// nil when the starting positions are unknown; moves and the JSON report
// then compare the layout with itself.
func Render(before, after *layout.Layout, res *placement.Result, cellWidth float64, opts Options) (map[string][]byte, error) {
	if before == nil {
		before = after
	}
	svgOpts := buildSVGOptions(before, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatGnuplot:
			data = render.RenderGnuplot(after, cellWidth, render.WithTitle(after.Name))
		case render.FormatSVG:
			data = render.RenderSVG(after, cellWidth, svgOpts...)
		case render.FormatPNG:
			data, err = render.RenderPNG(after, cellWidth,
				render.WithPNGSVGOptions(svgOpts...), render.WithScale(opts.Scale))
		case render.FormatPDF:
			data, err = render.RenderPDF(after, cellWidth, render.WithPDFSVGOptions(svgOpts...))
		case render.FormatDOT:
			data = []byte(render.ToDOT(after, cellWidth, render.DOTOptions{Labels: opts.Labels, Nets: opts.Nets}))
		case render.FormatNeato:
			data, err = render.RenderNeato(render.ToDOT(after, cellWidth, render.DOTOptions{Labels: opts.Labels, Nets: opts.Nets}))
		case render.FormatJSON:
			data, err = render.RenderJSON(render.NewReport(before, after, cellWidth, res))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if stderrors.Is(err, render.ErrNoConverter) {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "render %s", format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(before *layout.Layout, opts Options) []render.SVGOption {
	var svgOpts []render.SVGOption
	if opts.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	if opts.Nets {
		svgOpts = append(svgOpts, render.WithNets())
	}
	if opts.Moves {
		svgOpts = append(svgOpts, render.WithMoves(before))
	}
	return svgOpts
}
