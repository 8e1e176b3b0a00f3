package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/legalizer/pkg/buildinfo"
	"github.com/matzehuels/legalizer/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Persistent flags:
//   - --verbose (-v): debug logging
//   - --config: TOML options file (default ~/.config/legalizer/config.toml)
//   - --trace: log every pipeline, cache and server event
//
// The logger is attached to the command context and accessible via
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose bool
		trace   bool
		cfgPath string
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "Legalizer snaps standard cells onto placement rows",
		Long: `Legalizer is a standard-cell placement legalizer. It moves every cell of a
DEF (or JSON) layout onto a legal site of a placement row without overlaps,
keeping the total displacement from the global placement small.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose || trace {
				c.SetLogLevel(LogDebug)
			}
			if trace {
				h := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(h)
				observability.SetCacheHooks(h)
				observability.SetServerHooks(h)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cfgPath)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "log pipeline, cache and server events (implies --verbose)")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "options file (default ~/.config/legalizer/config.toml)")

	// Register all subcommands
	root.AddCommand(c.legalizeCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.plotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
