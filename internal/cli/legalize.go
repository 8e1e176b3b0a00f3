package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legalizer/pkg/pipeline"
)

// legalizeFlags holds the flags of the legalize command.
type legalizeFlags struct {
	output  string
	format  string
	plot    string
	noCache bool
	rows    bool
	opts    pipeline.Options
}

// legalizeCommand creates the legalize command.
func (c *CLI) legalizeCommand() *cobra.Command {
	var f legalizeFlags

	cmd := &cobra.Command{
		Use:   "legalize [layout.def]",
		Short: "Move every cell onto a legal row site",
		Long: `Legalize a global placement.

Every cell is treated as the same width, given either in sites of the first
row (--sites) or in layout units (--cell-width). Cells are placed one by one
in order of x onto the row and site that minimize their displacement, packing
overlapping cells into clusters.

The input is DEF or JSON (detected from the extension or content). The
legalized layout is written to <input>.legal.def unless -o is given; use
-o - for stdout. With --plot, pictures of the result are written next to it.

Results are cached locally for faster subsequent runs.`,
		Example: `  legalizer legalize adder.def --sites 2
  legalizer legalize adder.def --sites 2 -o out/adder.def --plot gnuplot,svg --moves
  legalizer legalize adder.json --cell-width 380 -o - --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.opts.Formats = parseFormats(f.plot)
			return c.runLegalize(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, - for stdout (default: <input>.legal.<ext>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: def, json (default: from output extension, else input format)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.rows, "rows", false, "print per-row utilization")
	addLegalizeFlags(cmd, &f.opts)
	addPlotFlags(cmd, &f.plot, &f.opts)
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// addLegalizeFlags registers the flags that choose the cell width.
func addLegalizeFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64VarP(&opts.Sites, "sites", "s", 0, "cell width in sites of the first row, rounded up")
	cmd.Flags().Float64Var(&opts.CellWidth, "cell-width", 0, "cell width in layout units, rounded up to whole sites (overrides --sites)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, fmt.Sprintf("rows evaluated in parallel per cell (default %d)", pipeline.DefaultWorkers))
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: def, json (default: detect)")
}

// addPlotFlags registers the rendering flags.
func addPlotFlags(cmd *cobra.Command, plot *string, opts *pipeline.Options) {
	cmd.Flags().StringVar(plot, "plot", "", "plot format(s): gnuplot, svg, png, pdf, dot, neato, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "label cells")
	cmd.Flags().BoolVar(&opts.Nets, "nets", false, "draw special nets")
	cmd.Flags().BoolVar(&opts.Moves, "moves", false, "draw displacement arrows (svg, png, pdf)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, fmt.Sprintf("png scale factor (default %g)", pipeline.DefaultScale))
}

// runLegalize reads, legalizes and writes one layout.
func (c *CLI) runLegalize(ctx context.Context, input string, f legalizeFlags) error {
	if f.output == stdoutPath {
		uiOut = os.Stderr
		defer func() { uiOut = os.Stdout }()
	}

	data, err := pipeline.ReadInput(input)
	if err != nil {
		return err
	}

	opts := c.options(f.opts)
	if opts.InputFormat == "" {
		opts.InputFormat = pipeline.FormatFromPath(input)
	}
	if opts.InputFormat == "" {
		opts.InputFormat = pipeline.DetectFormat(data)
	}

	outFormat := f.format
	if outFormat == "" && f.output != stdoutPath {
		outFormat = pipeline.FormatFromPath(f.output)
	}
	if outFormat == "" {
		outFormat = opts.InputFormat
	}
	if err := pipeline.ValidateInputFormat(outFormat); err != nil {
		return err
	}

	output := f.output
	if output == "" {
		output = basePath(input) + ".legal." + outFormat
	}

	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, "Legalizing "+input+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Legalization failed")
		return err
	}
	spinner.Stop()

	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := pipeline.Encode(result.File, outFormat)
	if err != nil {
		return err
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}
	prog.done("Legalized " + result.File.Design.Name)

	for _, w := range result.Warnings {
		printWarning("skipped unsupported word %q at offset %d", w.Word, w.Offset)
	}
	printSuccess("Legalized %s", StyleValue.Render(result.File.Design.Name))
	if output != stdoutPath {
		printFile(output)
	}

	if len(result.Artifacts) > 0 {
		base := basePath(output)
		if output == stdoutPath {
			base = basePath(input) + ".legal"
		}
		paths, err := writeArtifacts(result.Artifacts, opts.Formats, base)
		if err != nil {
			return err
		}
		for _, p := range paths {
			printFile(p)
		}
	}

	printStats(result.Legalization, result.CacheInfo.LegalizeHit)
	if f.rows {
		printRowTable(result.Legalization.Rows)
	}
	if output != stdoutPath {
		printNewline()
		printNextStep("Verify", appName+" check "+output+" --cell-width "+num(result.CellWidth))
	}
	return nil
}
