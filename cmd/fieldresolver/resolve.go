package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/schema"
	"github.com/spf13/cobra"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <entity_type> <bundle> <path>",
	Short: "Resolve one external field path",
	Long: `Resolve an external dotted field path to its internal form.

Config entities use their own id as bundle.

Examples:
  fieldresolver resolve node article title
  fieldresolver resolve node article tags.name
  fieldresolver resolve node article tags.0.entity.name --json
  fieldresolver resolve node_type node_type label`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print the resolved steps as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	entityType, bundle, path := args[0], args[1], args[2]
	out := cmd.OutOrStdout()

	cat, _, err := loadCatalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	resolved, err := fieldpath.NewResolver(cat).Resolve(entityType, bundle, path)
	if err != nil {
		fmt.Fprintf(out, "%s %s\n", crossMark, path)
		var perr *fieldpath.Error
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "  kind:    %s\n", perr.Kind)
			fmt.Fprintf(out, "  segment: %d\n", perr.Index)
		}
		return err
	}

	if resolveJSON {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s %s -> %s\n", checkMark, path, resolved.String())
	fmt.Fprintf(out, "  resource type: %s\n", schema.ResourceTypeName(entityType, bundle))
	if prop, ok := resolved.Property(); ok {
		fmt.Fprintf(out, "  property:      %s (implicit: %t)\n", prop.Name, prop.Implicit)
	}
	return nil
}
