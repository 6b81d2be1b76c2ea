package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/krakend/doxsearch/internal/indexing"
	"github.com/krakend/doxsearch/internal/searchindex"
	"github.com/krakend/doxsearch/tools"
	"github.com/spf13/cobra"
)

const (
	versionFile  = ".index_version"
	snapshotFile = "searchdata.json"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <search-dir> <index-dir>",
		Short: "Build the on-disk full-text index and JSON snapshot",
		Example: `  doxsearch-indexer build docs/html/search ~/.doxsearch/search/index
  doxsearch-indexer build --category classes --base-url https://docs.example.org/ docs/html/search out/index`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildIndex(args[0], args[1])
		},
	}
}

// buildIndex writes <index-dir> plus .index_version and searchdata.json
// next to it
func buildIndex(searchDir, indexDir string) error {
	startTime := time.Now()
	pattern := category + "_*.js"

	log.Printf("Doxygen Search Indexer v%d", indexing.IndexSchemaVersion)
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Step 1: Load search tables
	log.Printf("Loading search tables: %s/%s", searchDir, pattern)
	table, err := searchindex.LoadFS(os.DirFS(searchDir), pattern)
	if err != nil {
		return fmt.Errorf("failed to load search tables: %w", err)
	}
	docs := indexing.BuildDocuments(table, baseURL)
	log.Printf("✓ Loaded %d entries (%d documents)", table.Len(), len(docs))

	// Step 2: Remove existing index
	if err := os.RemoveAll(indexDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old index: %w", err)
	}

	// Create parent directory
	outDir := filepath.Dir(indexDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Step 3: Create new index
	log.Printf("Creating search index: %s", indexDir)
	index, err := bleve.New(indexDir, tools.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	// Step 4: Index documents in batches
	log.Printf("Indexing %d documents...", len(docs))
	if err := tools.IndexDocuments(index, docs); err != nil {
		index.Close()
		return err
	}
	if err := index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	log.Printf("✓ Indexed %d documents successfully", len(docs))

	// Step 5: Write version file
	versionContent := fmt.Sprintf("%d", indexing.IndexSchemaVersion)
	if err := os.WriteFile(filepath.Join(outDir, versionFile), []byte(versionContent), 0644); err != nil {
		log.Printf("Warning: Failed to write version file: %v", err)
	} else {
		log.Printf("✓ Index schema version: v%d", indexing.IndexSchemaVersion)
	}

	// Step 6: Write snapshot for servers without access to the search dir
	if err := writeJSONFile(filepath.Join(outDir, snapshotFile), table); err != nil {
		return err
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✓ Indexing complete in %v", time.Since(startTime).Round(time.Millisecond))
	log.Printf("")
	log.Printf("Index details:")
	log.Printf("  Location:  %s", indexDir)
	log.Printf("  Entries:   %d", table.Len())
	log.Printf("  Documents: %d", len(docs))
	log.Printf("  Schema:    v%d", indexing.IndexSchemaVersion)
	return nil
}

func writeJSONFile(path string, table *searchindex.SearchIndex) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := table.WriteJSON(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("✓ Snapshot written: %s", path)
	return nil
}
