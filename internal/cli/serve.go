package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legalizer/pkg/cache"
	"github.com/matzehuels/legalizer/pkg/pipeline"
	"github.com/matzehuels/legalizer/pkg/server"
)

const (
	defaultAddr = ":8080"

	// redisEnv names the environment variable read when --redis is not set.
	redisEnv = "LEGALIZER_REDIS_URL"

	// apiKeyPrefix scopes server cache keys apart from CLI runs.
	apiKeyPrefix = "api:"
)

// serveFlags holds the flags of the serve command.
type serveFlags struct {
	addr     string
	redisURL string
	noCache  bool
	maxBody  int64
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve legalization over HTTP",
		Long: `Run the HTTP API.

Routes:
  POST /v1/legalize   body: DEF or JSON layout; query: sites, cell_width, plot, format, raw
  POST /v1/check      body: DEF or JSON layout; query: sites, cell_width
  GET  /healthz

Results are cached in Redis when --redis (or ` + redisEnv + `) is set, so that
several instances share work, and in the local cache directory otherwise.`,
		Example: `  legalizer serve --addr :9000
  legalizer serve --redis redis://localhost:6379/0
  curl --data-binary @adder.def 'localhost:8080/v1/legalize?sites=2'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.redisURL == "" {
				f.redisURL = os.Getenv(redisEnv)
			}
			return c.runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "redis URL for the shared cache (redis://host:port/db)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&f.maxBody, "max-body", server.DefaultMaxBodySize, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, f serveFlags) error {
	store, err := c.serverCache(ctx, f)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), apiKeyPrefix), c.Logger)
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithMaxBodySize(f.maxBody))

	printInfo("Serving on %s", StyleValue.Render(f.addr))
	if err := srv.ListenAndServe(ctx, f.addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printSuccess("Server stopped")
	return nil
}

// serverCache picks Redis when configured, the local cache otherwise.
func (c *CLI) serverCache(ctx context.Context, f serveFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	if f.redisURL == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, f.redisURL, cache.WithKeyPrefix(appName+":"))
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache")
	return rc, nil
}
