package main

import (
	"fmt"
	"os"

	"github.com/artpar/fieldresolver/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and schema",
	Long: `Validate the fieldresolver configuration and entity schema.

Checks:
  - Config file syntax and values (when the file exists)
  - Every entity type definition parses and validates
  - Reference targets and target bundles exist

Examples:
  fieldresolver validate
  fieldresolver validate --schema-dir ./schema`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfgFile); err == nil {
		if _, err := config.Load(cfgFile); err != nil {
			fmt.Fprintf(out, "  %s Config %s\n", crossMark, cfgFile)
			return fmt.Errorf("config error: %w", err)
		}
		fmt.Fprintf(out, "  %s Config %s\n", checkMark, cfgFile)
	}

	cat, sc, err := loadCatalog(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "  %s Schema valid\n", crossMark)
		return fmt.Errorf("schema error: %w", err)
	}

	location := sc.Dir
	if sc.Source == config.SourceSQLite {
		location = sc.DSN
	}
	fmt.Fprintf(out, "  %s Schema valid (%s: %s)\n", checkMark, sc.Source, location)
	fmt.Fprintf(out, "  %s Entity types: %d\n", checkMark, len(cat.EntityTypes()))
	fmt.Fprintf(out, "  %s Resource types: %d\n", checkMark, len(cat.ResourceTypes()))
	for _, name := range cat.ResourceTypes() {
		fmt.Fprintf(out, "      %s\n", name)
	}
	return nil
}
