package main

import (
	"context"
	"fmt"
	"os"

	"github.com/artpar/fieldresolver/bootstrap"
	"github.com/artpar/fieldresolver/config"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	schemaDir string
	schemaDSN string
)

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldresolver",
	Short: "Resolve JSON:API field paths against an entity schema",
	Long: `fieldresolver translates external dotted field paths, as used in
JSON:API filter, sort and include parameters, into canonical internal paths.

Quick start:
  fieldresolver validate                             # Check config and schema
  fieldresolver resolve node article field_tags.name # Resolve one path
  fieldresolver shell                                # Explore interactively
  fieldresolver serve                                # Start the HTTP server

Schema storage:
  fieldresolver import --dsn schema.db               # Copy YAML schema into SQLite`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "fieldresolver.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "", "YAML schema directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&schemaDSN, "dsn", "", "SQLite schema store (overrides config)")
}

// schemaConfig returns the schema location from flags, the config file or
// the environment, in that order.
func schemaConfig() (config.SchemaConfig, error) {
	switch {
	case schemaDir != "":
		return config.SchemaConfig{Source: config.SourceYAML, Dir: schemaDir}, nil
	case schemaDSN != "":
		return config.SchemaConfig{Source: config.SourceSQLite, DSN: schemaDSN}, nil
	}

	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return config.SchemaConfig{}, err
	}
	return cfg.Schema, nil
}

func loadCatalog(ctx context.Context) (*schema.Catalog, config.SchemaConfig, error) {
	sc, err := schemaConfig()
	if err != nil {
		return nil, sc, err
	}
	cat, err := bootstrap.LoadCatalog(ctx, sc)
	return cat, sc, err
}
