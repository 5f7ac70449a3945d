package main

import (
	"fmt"

	"github.com/artpar/fieldresolver/core/channel/tty"
	"github.com/spf13/cobra"
)

var shellStats bool

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell",
	Long: `Start an interactive REPL for exploring the catalog and resolving paths.

Examples:
  fieldresolver shell --schema-dir ./schema

Interactive commands:
  types                List resource types
  use <type> <bundle>  Select a resource type
  fields               List fields of the selected type
  resolve <path>       Resolve a path
  include <path>       Resolve an include path
  help                 Show help
  quit                 Exit shell`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().BoolVar(&shellStats, "stats", false, "show timing after each command")
}

func runShell(cmd *cobra.Command, args []string) error {
	cat, _, err := loadCatalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	ch := tty.New(cat, cmd.InOrStdin(), cmd.OutOrStdout())
	ch.ShowStats(shellStats)
	return ch.Run(cmd.Context())
}
