package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legalizer/pkg/pipeline"
)

// plotCommand creates the plot command for drawing a placement as-is.
func (c *CLI) plotCommand() *cobra.Command {
	var (
		opts    pipeline.Options
		plot    string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "plot [layout.def]",
		Short: "Draw a placement without legalizing it",
		Long: `Draw the rows, cells and special nets of a layout.

Use it to look at a global placement before legalization, or at the output
of 'legalize'. The gnuplot format writes a script in the style of the
classic output.gp; run it with gnuplot to get a PNG.

Files are named <output><ext>, where output defaults to the input path
without its extension.`,
		Example: `  legalizer plot adder.def --sites 2
  legalizer plot adder.def --sites 2 --plot gnuplot
  legalizer plot adder.legal.def --sites 2 --plot svg,dot --labels --nets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(plot)
			return c.runPlot(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLegalizeFlags(cmd, &opts)
	addPlotFlags(cmd, &plot, &opts)

	return cmd
}

func (c *CLI) runPlot(ctx context.Context, input string, flags pipeline.Options, output string, noCache bool) error {
	data, err := pipeline.ReadInput(input)
	if err != nil {
		return err
	}

	opts := c.options(flags)
	if opts.InputFormat == "" {
		opts.InputFormat = pipeline.FormatFromPath(input)
	}
	if err := opts.ValidateForLegalize(); err != nil {
		return err
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	f, warnings, err := pipeline.Parse(data, opts)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printWarning("skipped unsupported word %q at offset %d", w.Word, w.Offset)
	}
	l := f.Design
	cellWidth, err := pipeline.CellWidth(l, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Plotting "+input+"...")
	spinner.Start()
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, l, nil, cellWidth, opts)
	if err != nil {
		spinner.StopWithError("Plot failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered " + l.Name)

	if output == "" {
		output = basePath(input)
	}
	paths, err := writeArtifacts(artifacts, opts.Formats, output)
	if err != nil {
		return err
	}

	printSuccess("Plotted %s", StyleValue.Render(l.Name))
	for _, p := range paths {
		printFile(p)
	}
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	printDetail("%d cells · %d rows · %s", len(l.Cells), len(l.Rows), status)
	return nil
}
