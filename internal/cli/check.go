package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legalizer/pkg/pipeline"
)

// defaultViolationLimit caps the violations printed by check.
const defaultViolationLimit = 20

// IllegalError reports that check found violations.
type IllegalError struct {
	Violations int
}

func (e *IllegalError) Error() string {
	return fmt.Sprintf("placement is not legal: %d violations", e.Violations)
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		opts   pipeline.Options
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "check [layout.def]",
		Short: "Report placement violations without moving cells",
		Long: `Check that every cell sits on a row, on a site boundary, inside the row,
with the row's orientation, and without overlapping another cell.

The command exits with status 1 when any violation is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], opts, asJSON, limit)
		},
	}

	addLegalizeFlags(cmd, &opts)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().IntVar(&limit, "limit", defaultViolationLimit, "maximum number of violations to list")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, input string, flags pipeline.Options, asJSON bool, limit int) error {
	data, err := pipeline.ReadInput(input)
	if err != nil {
		return err
	}

	opts := c.options(flags)
	if opts.InputFormat == "" {
		opts.InputFormat = pipeline.FormatFromPath(input)
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Check(ctx, data, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Legal() {
		printSuccess("%s is legal", StyleValue.Render(result.Design))
		printDetail("%d cells, cell width %s", result.Cells, num(result.CellWidth))
	} else {
		printError("%s has %d violations", StyleValue.Render(result.Design), len(result.Violations))
		printViolations(result.Violations, limit)
	}

	if !result.Legal() {
		return &IllegalError{Violations: len(result.Violations)}
	}
	return nil
}
