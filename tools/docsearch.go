package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/krakend/doxsearch/internal/config"
	"github.com/krakend/doxsearch/internal/indexing"
	"github.com/krakend/doxsearch/internal/searchindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	maxResultsLimit = 50
	lockFile        = "search/index.lock"
	snapshotFile    = "search/searchdata.json"
)

var (
	settings = config.DefaultConfig()
	indexMgr = &indexHolder{}
)

// Configure sets the configuration used by the documentation tools
func Configure(cfg *config.Config) {
	settings = cfg
}

// dataDir returns the directory for lock and snapshot files
func dataDir() string {
	if settings.DataDir != "" {
		return settings.DataDir
	}
	return filepath.Join(".", "data")
}

// catalog is one loaded generation of search data: the lookup table and the
// full-text index built from it. A catalog is never modified after creation.
type catalog struct {
	table    *searchindex.SearchIndex
	index    Index
	source   string
	loadedAt time.Time

	// mu is read-held by every in-flight read of this catalog
	mu     sync.RWMutex
	closed bool
}

// acquire registers a read on c. It fails once c has been retired.
func (c *catalog) acquire() bool {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return false
	}
	return true
}

func (c *catalog) release() {
	c.mu.RUnlock()
}

// retire waits for the reads already holding c, then closes its index.
// Reads arriving after retire starts fail to acquire.
func (c *catalog) retire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.index.Close()
}

// indexHolder manages concurrent access to the current catalog
type indexHolder struct {
	// current holds the active catalog (atomic access for lock-free reads)
	current atomic.Pointer[catalog]

	// refreshMu prevents concurrent refresh operations
	// NOT used for lookups - they are lock-free via atomic pointer
	refreshMu sync.Mutex
}

// TargetResult is one link of a lookup result
type TargetResult struct {
	Href        string `json:"href"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Local       bool   `json:"local"`
}

// EntryResult is one search table entry returned by lookup_documentation
type EntryResult struct {
	Key     string         `json:"key"`
	Term    string         `json:"term"`
	Label   string         `json:"label"`
	Targets []TargetResult `json:"targets"`
}

// LookupDocumentationInput defines input for lookup_documentation tool
type LookupDocumentationInput struct {
	Prefix     string `json:"prefix,omitempty" jsonschema:"Key prefix in escaped form, e.g. suffix or step_201_3a (optional)"`
	Term       string `json:"term,omitempty" jsonschema:"Human search term, escaped like the documentation search box does (optional)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of entries (optional, defaults to 10)"`
}

// LookupDocumentationOutput defines output for lookup_documentation tool
type LookupDocumentationOutput struct {
	Entries      []EntryResult `json:"entries"`
	Prefix       string        `json:"prefix"`
	TotalMatches int           `json:"total_matches"`
	Truncated    bool          `json:"truncated"`
}

// SearchResult represents a search result with score
type SearchResult struct {
	Document indexing.Document `json:"document"`
	Score    float64           `json:"score"`
}

// SearchDocumentationInput defines input for search_documentation tool
type SearchDocumentationInput struct {
	Query      string `json:"query" jsonschema:"Search query for documentation"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to 10)"`
}

// SearchDocumentationOutput defines output for search_documentation tool
type SearchDocumentationOutput struct {
	Results    []SearchResult `json:"results"`
	Query      string         `json:"query"`
	TotalHits  int            `json:"total_hits"`
	SourceURLs []string       `json:"source_urls,omitempty"`
}

// RefreshDocumentationIndexInput defines input for refresh_documentation_index tool
type RefreshDocumentationIndexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"Reload even if the search tables did not change (optional, defaults to false)"`
}

// RefreshDocumentationIndexOutput defines output for refresh_documentation_index tool
type RefreshDocumentationIndexOutput struct {
	Updated          bool      `json:"updated"`
	LastUpdate       time.Time `json:"last_update"`
	EntriesLoaded    int       `json:"entries_loaded"`
	DocumentsIndexed int       `json:"documents_indexed"`
	Source           string    `json:"source"`
	Message          string    `json:"message"`
}

// InitializeDocSearch loads the search tables and builds the full-text index
// Priority: configured source dir > last snapshot > embedded tables
func InitializeDocSearch() error {
	startTime := time.Now()
	log.Printf("Initializing documentation search...")

	table, source, err := loadTable(true)
	if err != nil {
		return fmt.Errorf("failed to load search data: %w", err)
	}

	cat, err := buildCatalog(table, source)
	if err != nil {
		return err
	}
	swapCatalog(cat)

	count, _ := cat.index.DocCount()
	log.Printf("✓ Documentation search initialized (%d entries, %d docs, %s) in %v",
		table.Len(), count, source, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// loadTable loads the search table from the first strategy that works.
// Without fallback, a configured source dir that fails to load is an error.
func loadTable(fallback bool) (*searchindex.SearchIndex, string, error) {
	// Strategy 1: Doxygen output directory
	if settings.SourceDir != "" {
		table, err := searchindex.LoadFS(os.DirFS(settings.SourceDir), settings.Pattern())
		if err == nil {
			return table, "source " + settings.SourceDir, nil
		}
		if !fallback {
			return nil, "", err
		}
		log.Printf("Warning: Could not load search data from %s: %v", settings.SourceDir, err)
	}

	// Strategy 2: snapshot from the last successful refresh
	snapshotPath := filepath.Join(dataDir(), snapshotFile)
	if table, err := searchindex.LoadFile(snapshotPath); err == nil {
		return table, "snapshot " + snapshotPath, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Ignoring unreadable snapshot: %v", err)
	}

	// Strategy 3: embedded tables
	table, err := loadProviderTable(defaultDataProvider, embeddedSearchDir, settings.Pattern())
	if err != nil {
		return nil, "", fmt.Errorf("failed to load embedded search data: %w", err)
	}
	return table, "embedded", nil
}

// buildCatalog indexes table for full-text search
func buildCatalog(table *searchindex.SearchIndex, source string) (*catalog, error) {
	docs := indexing.BuildDocuments(table, settings.BaseURL)
	index, err := newMemoryIndex(docs)
	if err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}
	return &catalog{
		table:    table,
		index:    index,
		source:   source,
		loadedAt: time.Now(),
	}, nil
}

// swapCatalog atomically replaces the current catalog and closes the old
// index once in-flight reads are done
func swapCatalog(cat *catalog) {
	old := indexMgr.current.Swap(cat)
	if old == nil {
		return
	}

	go func(old *catalog) {
		waitStart := time.Now()

		// Only reads on the old catalog hold it open
		if err := old.retire(); err != nil {
			log.Printf("Warning: Error closing old index: %v", err)
			return
		}
		log.Printf("✓ Old index closed (waited %v)", time.Since(waitStart).Round(time.Millisecond))
	}(old)
}

// writeSnapshot stores the table in the data dir so a restart without the
// source directory still serves the latest data
func writeSnapshot(table *searchindex.SearchIndex) error {
	snapshotPath := filepath.Join(dataDir(), snapshotFile)
	if err := os.MkdirAll(filepath.Dir(snapshotPath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := snapshotPath + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := table.WriteJSON(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	// Atomic rename on POSIX
	if err := os.Rename(tmpPath, snapshotPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}

// needsRefresh reports whether the source tables changed since the current
// catalog was loaded
func needsRefresh() bool {
	if settings.SourceDir == "" {
		return false
	}

	current := indexMgr.current.Load()
	if current == nil || current.source != "source "+settings.SourceDir {
		return true
	}

	matches, err := filepath.Glob(filepath.Join(settings.SourceDir, settings.Pattern()))
	if err != nil {
		return false
	}
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return true
		}
		if info.ModTime().After(current.loadedAt) {
			return true
		}
	}
	return false
}

// refreshDocumentationIndex reloads the search tables wholesale.
// A failed reload keeps serving the previous catalog.
func refreshDocumentationIndex(force bool) (bool, error) {
	startTime := time.Now()

	if !force && !needsRefresh() {
		log.Printf("Search data unchanged, skipping refresh")
		return false, nil
	}

	// Serialize refresh operations (prevent concurrent refreshes)
	indexMgr.refreshMu.Lock()
	defer indexMgr.refreshMu.Unlock()

	// Re-check after acquiring lock (double-checked locking pattern)
	if !force && !needsRefresh() {
		log.Printf("Search data was refreshed by another goroutine, skipping")
		return false, nil
	}

	log.Printf("Starting documentation refresh (force=%v)...", force)

	// Inter-process lock around the snapshot write
	if err := acquireLock(); err != nil {
		return false, fmt.Errorf("failed to acquire lock for refresh: %w", err)
	}
	defer func() {
		if err := releaseLock(); err != nil {
			log.Printf("Error releasing lock: %v", err)
		}
	}()

	table, source, err := loadTable(false)
	if err != nil {
		return false, fmt.Errorf("reload failed: %w", err)
	}

	cat, err := buildCatalog(table, source)
	if err != nil {
		return false, err
	}

	if settings.SourceDir != "" {
		if err := writeSnapshot(table); err != nil {
			log.Printf("Warning: Failed to write snapshot: %v", err)
		}
	}

	swapCatalog(cat)

	log.Printf("✓ Documentation refresh completed in %v (%d entries, %s)",
		time.Since(startTime).Round(time.Millisecond), table.Len(), source)
	return true, nil
}

// acquireCatalog returns the current catalog, initializing it on first use.
// The returned release func must be called once the caller is done reading.
func acquireCatalog() (*catalog, func(), error) {
	initialized := false
	for {
		cat := indexMgr.current.Load()
		if cat == nil {
			if initialized {
				return nil, nil, fmt.Errorf("index still nil after initialization")
			}
			log.Printf("Doc index not initialized, initializing now...")
			if err := InitializeDocSearch(); err != nil {
				return nil, nil, fmt.Errorf("failed to initialize documentation index: %w", err)
			}
			initialized = true
			continue
		}

		// A failed acquire means a swap retired cat after Load; retry on the new one
		if cat.acquire() {
			return cat, cat.release, nil
		}
	}
}

// resolveMaxResults applies the configured default and the hard cap
func resolveMaxResults(requested int) int {
	if requested <= 0 {
		requested = settings.MaxResults
	}
	if requested <= 0 {
		requested = config.DefaultMaxResults
	}
	if requested > maxResultsLimit {
		requested = maxResultsLimit
	}
	return requested
}

func toEntryResult(entry searchindex.Entry) EntryResult {
	result := EntryResult{
		Key:     entry.Key,
		Term:    entry.Term(),
		Label:   indexing.CleanLabel(entry.Label),
		Targets: make([]TargetResult, 0, len(entry.Targets)),
	}
	for _, target := range entry.Targets {
		result.Targets = append(result.Targets, TargetResult{
			Href:        target.Href(),
			URL:         indexing.ResolveURL(settings.BaseURL, target.Page, target.Anchor),
			Description: indexing.CleanLabel(target.Description),
			Local:       target.Local,
		})
	}
	return result
}

// LookupDocumentation returns search table entries whose key starts with a prefix
func LookupDocumentation(ctx context.Context, req *mcp.CallToolRequest, input LookupDocumentationInput) (*mcp.CallToolResult, LookupDocumentationOutput, error) {
	if input.Prefix != "" && input.Term != "" {
		return nil, LookupDocumentationOutput{}, fmt.Errorf("set either prefix or term, not both")
	}

	cat, release, err := acquireCatalog()
	if err != nil {
		return nil, LookupDocumentationOutput{}, err
	}
	defer release()

	prefix := input.Prefix
	if input.Term != "" {
		prefix = searchindex.EscapeKey(input.Term)
	}

	entries, total := cat.table.LookupLimit(prefix, resolveMaxResults(input.MaxResults))

	output := LookupDocumentationOutput{
		Entries:      make([]EntryResult, 0, len(entries)),
		Prefix:       prefix,
		TotalMatches: total,
		Truncated:    total > len(entries),
	}
	for _, entry := range entries {
		output.Entries = append(output.Entries, toEntryResult(entry))
	}
	return nil, output, nil
}

// hitToDocument rebuilds a document from the stored fields of a hit
func hitToDocument(hit *search.DocumentMatch) indexing.Document {
	doc := indexing.Document{ID: hit.ID}

	if key, ok := hit.Fields["key"].(string); ok {
		doc.Key = key
	}
	if term, ok := hit.Fields["term"].(string); ok {
		doc.Term = term
	}
	if label, ok := hit.Fields["label"].(string); ok {
		doc.Label = label
	}
	if description, ok := hit.Fields["description"].(string); ok {
		doc.Description = description
	}
	if page, ok := hit.Fields["page"].(string); ok {
		doc.Page = page
	}
	if anchor, ok := hit.Fields["anchor"].(string); ok {
		doc.Anchor = anchor
	}
	if url, ok := hit.Fields["url"].(string); ok {
		doc.URL = url
	}
	if breadcrumb, ok := hit.Fields["breadcrumb"].(string); ok {
		doc.Breadcrumb = breadcrumb
	}
	if local, ok := hit.Fields["local"].(bool); ok {
		doc.Local = local
	}
	switch keywords := hit.Fields["keywords"].(type) {
	case []interface{}:
		doc.Keywords = make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kwStr, ok := kw.(string); ok {
				doc.Keywords = append(doc.Keywords, kwStr)
			}
		}
	case string:
		// Single-valued arrays come back as a plain string
		doc.Keywords = []string{keywords}
	}
	return doc
}

// SearchDocumentation runs a full-text query over labels and descriptions
func SearchDocumentation(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentationInput) (*mcp.CallToolResult, SearchDocumentationOutput, error) {
	if input.Query == "" {
		return nil, SearchDocumentationOutput{}, fmt.Errorf("query is required")
	}

	cat, release, err := acquireCatalog()
	if err != nil {
		return nil, SearchDocumentationOutput{}, err
	}
	defer release()

	query := bleve.NewMatchQuery(input.Query)
	searchReq := bleve.NewSearchRequest(query)
	searchReq.Size = resolveMaxResults(input.MaxResults)
	searchReq.Fields = []string{"*"}

	searchResults, err := cat.index.Search(searchReq)
	if err != nil {
		return nil, SearchDocumentationOutput{}, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, SearchResult{
			Document: hitToDocument(hit),
			Score:    hit.Score,
		})
	}

	output := SearchDocumentationOutput{
		Results:   results,
		Query:     input.Query,
		TotalHits: int(searchResults.Total),
	}
	if settings.BaseURL != "" {
		output.SourceURLs = []string{settings.BaseURL}
	}
	return nil, output, nil
}

// RefreshDocumentationIndex reloads the search tables and rebuilds the index
func RefreshDocumentationIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshDocumentationIndexInput) (*mcp.CallToolResult, RefreshDocumentationIndexOutput, error) {
	output := RefreshDocumentationIndexOutput{}

	updated, err := refreshDocumentationIndex(input.Force)
	if err != nil {
		return nil, output, fmt.Errorf("refresh failed: %w", err)
	}

	cat := indexMgr.current.Load()
	if cat == nil {
		return nil, output, fmt.Errorf("documentation index not initialized")
	}

	count, _ := cat.index.DocCount()
	output.Updated = updated
	output.LastUpdate = cat.loadedAt
	output.EntriesLoaded = cat.table.Len()
	output.DocumentsIndexed = int(count)
	output.Source = cat.source

	if updated {
		output.Message = fmt.Sprintf("Search data reloaded, %d entries and %d documents indexed", output.EntriesLoaded, output.DocumentsIndexed)
	} else {
		output.Message = fmt.Sprintf("Search data is current (loaded: %s)", cat.loadedAt.Format(time.RFC3339))
	}
	return nil, output, nil
}

// RegisterDocSearchTools registers documentation search tools
func RegisterDocSearchTools(server *mcp.Server) error {
	// Initialize doc search synchronously
	if err := InitializeDocSearch(); err != nil {
		log.Printf("Warning: Documentation search initialization failed: %v", err)
		log.Printf("Documentation search will attempt to initialize on first use")
	}

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "lookup_documentation",
			Description: "Look up documentation search index entries by key prefix or search term. Returns entries in key order with their page links.",
		},
		LookupDocumentation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_documentation",
			Description: "Full-text search over documentation entry labels and descriptions. Returns scored matches with links.",
		},
		SearchDocumentation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_documentation_index",
			Description: "Reload the documentation search tables from the configured source directory and rebuild the index",
		},
		RefreshDocumentationIndex,
	)

	if settings.Watch {
		if err := StartWatcher(context.Background()); err != nil {
			log.Printf("Warning: Could not watch search data: %v", err)
		}
	}

	return nil
}

// CloseDocSearch stops the watcher, closes the index and releases the lock
func CloseDocSearch() error {
	StopWatcher()

	var closeErr error

	// Atomically swap catalog to nil (prevents new reads)
	cat := indexMgr.current.Swap(nil)
	if cat != nil {
		log.Printf("Waiting for in-flight searches to complete before closing...")

		closeErr = cat.retire()
		if closeErr != nil {
			log.Printf("Error closing doc index: %v", closeErr)
		} else {
			log.Printf("✓ Doc index closed successfully")
		}
	}

	// Always attempt to release inter-process lock, even if close failed
	if err := releaseLock(); err != nil {
		log.Printf("Error releasing lock: %v", err)
		if closeErr == nil {
			closeErr = err
		}
	}

	return closeErr
}
