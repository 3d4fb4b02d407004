package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/projlint/projlint/internal/config"
	"github.com/projlint/projlint/internal/server"
	"github.com/projlint/projlint/pkg/store"
)

// newServeCmd creates the serve command, which runs the HTTP API.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lint and package-metadata HTTP API",
		Long: `Run an HTTP server exposing manifest linting and package metadata.

Endpoints:
  GET  /healthz              Liveness probe
  POST /v1/lint              Lint a manifest posted as the request body
  GET  /v1/packages/{name}   Package metadata from the registry

Examples:
  projlint serve
  projlint serve --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			registry, err := newRegistryClient(ctx)
			if err != nil {
				return err
			}

			historyPath := config.Get(config.KeyHistoryPath)
			if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
				return err
			}
			history, err := store.OpenHistory(historyPath)
			if err != nil {
				return err
			}
			defer history.Close()

			srv := server.New(server.Options{
				Registry: registry,
				History:  history,
				Logger:   logger,
			})

			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
