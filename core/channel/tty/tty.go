// Package tty provides an interactive terminal channel for path resolution.
// It creates a REPL-style interface over a catalog.
package tty

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/artpar/fieldresolver/core/fieldpath"
	"github.com/artpar/fieldresolver/core/schema"
)

// Channel implements the TTY channel for interactive terminal sessions.
type Channel struct {
	catalog   *schema.Catalog
	resolver  *fieldpath.Resolver
	in        io.Reader
	out       io.Writer
	prompt    string
	running   bool
	showStats bool // Show execution stats after each command

	// Current resource type; set with "use".
	entityType string
	bundle     string
}

// New creates a new TTY channel reading commands from in.
func New(catalog *schema.Catalog, in io.Reader, out io.Writer) *Channel {
	return &Channel{
		catalog:  catalog,
		resolver: fieldpath.NewResolver(catalog),
		in:       in,
		out:      out,
		prompt:   "fieldresolver> ",
	}
}

// ShowStats toggles timing and memory output after each command.
func (c *Channel) ShowStats(show bool) {
	c.showStats = show
}

// captureStats captures current memory stats.
func captureStats() goruntime.MemStats {
	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)
	return m
}

// formatBytes formats bytes as human readable.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func (c *Channel) printStats(duration time.Duration, before, after goruntime.MemStats) {
	memUsed := int64(after.Alloc) - int64(before.Alloc)
	if memUsed < 0 {
		memUsed = 0 // GC happened
	}
	fmt.Fprintf(c.out, "\033[90m  %v  %s\033[0m\n", duration.Round(time.Microsecond), formatBytes(uint64(memUsed)))
}

// Run starts the interactive REPL. It returns when the input ends, "quit" is
// entered or ctx is cancelled between commands.
func (c *Channel) Run(ctx context.Context) error {
	c.running = true
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintln(c.out, "fieldresolver interactive shell")
	fmt.Fprintln(c.out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(c.out)

	for c.running && ctx.Err() == nil {
		fmt.Fprint(c.out, c.currentPrompt())
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		before := captureStats()
		start := time.Now()

		if err := c.execute(line); err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}

		if c.showStats && c.running {
			c.printStats(time.Since(start), before, captureStats())
		}
	}

	return scanner.Err()
}

func (c *Channel) currentPrompt() string {
	if c.entityType == "" {
		return c.prompt
	}
	return schema.ResourceTypeName(c.entityType, c.bundle) + "> "
}

// execute parses and executes a command line.
func (c *Channel) execute(line string) error {
	parts := parseArgs(line)
	if len(parts) == 0 {
		return nil
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "quit", "exit", "q":
		c.running = false
		fmt.Fprintln(c.out, "Goodbye!")
		return nil

	case "help", "h", "?":
		c.showHelp()
		return nil

	case "types", "ls":
		c.listTypes()
		return nil

	case "use", "cd":
		return c.use(args)

	case "fields":
		return c.listFields()

	case "resolve", "r":
		return c.resolve(args, false)

	case "include", "i":
		return c.resolve(args, true)

	case "stats":
		c.showStats = !c.showStats
		if c.showStats {
			fmt.Fprintln(c.out, "Stats display enabled")
		} else {
			fmt.Fprintln(c.out, "Stats display disabled")
		}
		return nil

	default:
		// A bare path resolves against the current resource type
		if c.entityType != "" && len(parts) == 1 {
			return c.resolve(parts, false)
		}
		return fmt.Errorf("unknown command: %s (try 'help')", cmd)
	}
}

func (c *Channel) showHelp() {
	fmt.Fprintln(c.out, "\nAvailable commands:")
	fmt.Fprintln(c.out, "  types                   List resource types")
	fmt.Fprintln(c.out, "  use <type> [bundle]     Select a resource type (node article or node--article)")
	fmt.Fprintln(c.out, "  fields                  List fields of the selected resource type")
	fmt.Fprintln(c.out, "  resolve <path>          Resolve a path (a bare path works too)")
	fmt.Fprintln(c.out, "  include <path>          Resolve an include path")
	fmt.Fprintln(c.out, "  stats                   Toggle timing output")
	fmt.Fprintln(c.out, "  help                    Show help")
	fmt.Fprintln(c.out, "  quit                    Exit shell")
	fmt.Fprintln(c.out)
}

func (c *Channel) listTypes() {
	fmt.Fprintln(c.out, "\nResource types:")
	for _, s := range c.catalog.Summaries().ResourceTypes {
		kind := "content"
		if s.Config {
			kind = "config"
		}
		fmt.Fprintf(c.out, "  %-30s %s\n", s.Name, kind)
	}
	fmt.Fprintln(c.out)
}

func (c *Channel) use(args []string) error {
	var entityType, bundle string
	switch len(args) {
	case 1:
		var err error
		if entityType, bundle, err = schema.ParseResourceTypeName(args[0]); err != nil {
			return err
		}
	case 2:
		entityType, bundle = args[0], args[1]
	default:
		return errors.New("usage: use <entity_type> <bundle> | use <entity_type>--<bundle>")
	}

	if !c.catalog.HasBundle(entityType, bundle) {
		return fmt.Errorf("unknown resource type: %s", schema.ResourceTypeName(entityType, bundle))
	}
	c.entityType, c.bundle = entityType, bundle
	return nil
}

func (c *Channel) listFields() error {
	if c.entityType == "" {
		return errors.New("no resource type selected (try 'use')")
	}

	desc, _ := c.catalog.Describe(c.entityType, c.bundle)
	fmt.Fprintf(c.out, "\n%s:\n", desc.Name)
	if desc.Config {
		fmt.Fprintf(c.out, "  properties: %s\n\n", strings.Join(desc.Properties, ", "))
		return nil
	}
	for _, f := range desc.Fields {
		line := fmt.Sprintf("  %-20s %-18s [%s]", f.Name, f.Type, strings.Join(f.Properties, ", "))
		if f.TargetType != "" {
			line += " -> " + f.TargetType
			if len(f.TargetBundles) > 0 {
				line += " (" + strings.Join(f.TargetBundles, ", ") + ")"
			}
		}
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Channel) resolve(args []string, include bool) error {
	if c.entityType == "" {
		return errors.New("no resource type selected (try 'use')")
	}
	if len(args) != 1 {
		return errors.New("usage: resolve <path>")
	}

	var (
		resolved fieldpath.ResolvedPath
		err      error
	)
	if include {
		resolved, err = c.resolver.ResolveInclude(c.entityType, c.bundle, args[0])
	} else {
		resolved, err = c.resolver.Resolve(c.entityType, c.bundle, args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s\n", resolved.String())
	data, err := json.Marshal(resolved)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "  %s\n", data)
	return nil
}

// parseArgs splits a command line on whitespace, honoring quotes.
func parseArgs(line string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	for _, r := range line {
		switch {
		case r == '"' || r == '\'':
			if inQuote && r == quoteChar {
				inQuote = false
				quoteChar = 0
			} else if !inQuote {
				inQuote = true
				quoteChar = r
			} else {
				current.WriteRune(r)
			}
		case r == ' ' || r == '\t':
			if inQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
