package main

import (
	"context"
	"fmt"

	"github.com/artpar/fieldresolver/bootstrap"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the fieldresolver HTTP server.

The server will:
  - Load configuration from fieldresolver.yaml (or --config)
  - Or load configuration from FIELDRESOLVER_* environment variables
  - Build the entity catalog from YAML files or the SQLite store
  - Serve /jsonapi/{entity_type}/{bundle}, /_schema and /health
  - Rebuild the catalog on SIGHUP, config changes and (with schema.watch) schema edits

Environment variables (for Docker deployments):
  FIELDRESOLVER_SCHEMA_SOURCE - yaml or sqlite (default: yaml)
  FIELDRESOLVER_SCHEMA_DIR    - YAML schema directory
  FIELDRESOLVER_SCHEMA_DSN    - SQLite schema store
  FIELDRESOLVER_SERVER_PORT   - Server port (default: 8080)
  FIELDRESOLVER_LOG_LEVEL     - Log level: debug, info, warn, error

Examples:
  fieldresolver serve
  fieldresolver serve --config /etc/fieldresolver/config.yaml
  FIELDRESOLVER_SCHEMA_DIR=./schema fieldresolver serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.New(bootstrap.Options{ConfigPath: cfgFile})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	// Run blocks until SIGINT/SIGTERM
	return app.Run(context.Background())
}
