package main

import (
	"fmt"
	"log"
	"os"

	"github.com/krakend/doxsearch/internal/config"
	"github.com/krakend/doxsearch/internal/indexing"
	"github.com/spf13/cobra"
)

var (
	// category selects the table family (all_N.js, classes_N.js, ...)
	category string
	// baseURL is the root of the rendered documentation
	baseURL string
)

// newRootCmd builds the command tree; tests build their own instance
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doxsearch-indexer",
		Short: "Build, inspect and convert Doxygen search indexes",
		Long: `doxsearch-indexer works on the search tables Doxygen writes to html/search.
It builds the on-disk full-text index and the JSON snapshot used by the
doxsearch MCP server, and can look up, export or validate tables.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&category, "category", config.DefaultCategory, "table family to load (all, classes, pages...)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "root URL of the rendered documentation")

	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newValidateCmd())
	return rootCmd
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	rootCmd := newRootCmd()
	rootCmd.Version = fmt.Sprintf("schema v%d", indexing.IndexSchemaVersion)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

