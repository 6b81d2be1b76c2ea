package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/krakend/doxsearch/internal/searchindex"
	"github.com/spf13/cobra"
)

func loadSearchDir(searchDir string) (*searchindex.SearchIndex, error) {
	table, err := searchindex.LoadFS(os.DirFS(searchDir), category+"_*.js")
	if err != nil {
		return nil, fmt.Errorf("failed to load search tables: %w", err)
	}
	return table, nil
}

func newLookupCmd() *cobra.Command {
	var (
		term       string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "lookup <search-dir> [prefix]",
		Short: "List entries whose key starts with a prefix",
		Example: `  doxsearch-indexer lookup docs/html/search suffix
  doxsearch-indexer lookup docs/html/search --term "Step 1:"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadSearchDir(args[0])
			if err != nil {
				return err
			}

			prefix := ""
			if len(args) == 2 {
				prefix = args[1]
			}
			if term != "" {
				if prefix != "" {
					return fmt.Errorf("give either a prefix or --term, not both")
				}
				prefix = searchindex.EscapeKey(term)
			}

			entries, total := table.LookupLimit(prefix, maxResults)
			printEntries(cmd.OutOrStdout(), entries)
			if total > len(entries) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d matches shown\n", len(entries), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&term, "term", "t", "", "human search term, escaped before lookup")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "maximum number of entries (0 for all)")
	return cmd
}

func printEntries(w io.Writer, entries []searchindex.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		for _, target := range entry.Targets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Key, entry.Label, target.Href(), target.Description)
		}
	}
	tw.Flush()
}

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <search-dir>",
		Short: "Merge a table family into one JS or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadSearchDir(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch format {
			case "js":
				err = table.WriteJS(&buf)
			case "json":
				err = table.WriteJSON(&buf)
			default:
				return fmt.Errorf("unknown format %q (want js or json)", format)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			log.Printf("✓ Exported %d entries to %s", table.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "js", "output format: js or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a search table or JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			trimmed := bytes.TrimSpace(data)
			if len(trimmed) > 0 && trimmed[0] == '{' {
				violations, err := searchindex.ValidateJSON(trimmed)
				if err != nil {
					return err
				}
				for _, v := range violations {
					fmt.Fprintf(out, "%s: %s\n", v.Path, v.Message)
				}
				if len(violations) > 0 {
					return fmt.Errorf("%s: %d schema violations", args[0], len(violations))
				}
			}

			table, err := searchindex.Load(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(out, "✓ %s: %d entries\n", args[0], table.Len())
			return nil
		},
	}
}
