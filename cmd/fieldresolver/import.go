package main

import (
	"fmt"

	"github.com/artpar/fieldresolver/adapters/sqlite"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the YAML schema into the SQLite store",
	Long: `Parse and validate the YAML schema directory and replace the schema
stored in the SQLite database with it. Each import records a revision.

Examples:
  fieldresolver import --schema-dir ./schema --dsn fieldresolver.db`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sc, err := schemaConfig()
	if err != nil {
		return err
	}
	dir := schemaDir
	if dir == "" {
		dir = sc.Dir
	}
	dsn := schemaDSN
	if dsn == "" {
		dsn = sc.DSN
	}
	if dir == "" || dsn == "" {
		return fmt.Errorf("import needs a schema directory and a database (--schema-dir, --dsn)")
	}

	cat, err := schema.LoadDir(dir)
	if err != nil {
		fmt.Fprintf(out, "  %s Schema %s\n", crossMark, dir)
		return fmt.Errorf("schema error: %w", err)
	}
	fmt.Fprintf(out, "  %s Schema %s\n", checkMark, dir)

	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateContext(cmd.Context()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rev, err := sqlite.NewSchemaStore(db).Save(cmd.Context(), cat)
	if err != nil {
		return fmt.Errorf("save schema: %w", err)
	}

	fmt.Fprintf(out, "  %s Imported %d entity types, %d fields into %s\n", checkMark, rev.EntityTypes, rev.Fields, dsn)
	fmt.Fprintf(out, "      revision %s\n", rev.ID)
	return nil
}
