package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacklane/internal/server"
	"github.com/matzehuels/stacklane/pkg/observability"
)

// serveCommand starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP until interrupted.

  POST /v1/layout   timeline document in, layout JSON out
  POST /v1/render   timeline document in, ?format=svg|png|pdf|json|dot|overlap
  GET  /healthz
  GET  /metrics     Prometheus metrics (disable with --no-metrics)

Defaults for address, timeouts and cache come from the config file and
STACKLANE_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(cmd, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := server.Options{
				Defaults:        c.Config.PipelineOptions(),
				RequestTimeout:  cfg.RequestTimeout,
				ShutdownTimeout: cfg.ShutdownTimeout,
				MaxBodyBytes:    cfg.MaxBodyBytes,
			}
			if !noMetrics {
				m := observability.NewMetrics()
				observability.SetPipelineHooks(m)
				observability.SetCacheHooks(m)
				observability.SetHTTPHooks(m)
				defer observability.Reset()
				opts.Metrics = m.Handler()
			}

			c.Logger.Info("starting server", "addr", cfg.Addr, "cache", c.Config.Cache.Backend)
			return server.New(runner, opts, c.Logger).ListenAndServe(ctx, cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}
