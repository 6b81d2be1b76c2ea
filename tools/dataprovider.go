package tools

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/krakend/doxsearch/internal/searchindex"
)

// DataProvider defines the interface for accessing embedded data files.
// This abstraction allows for dependency injection and makes the code testable
// without requiring actual embedded files to be present.
//
// Implementations:
//   - embeddedDataProvider: Uses embed.FS for production (real embedded files)
//   - MockDataProvider: Uses in-memory map for testing
type DataProvider interface {
	// ReadFile reads the named file and returns its contents.
	// The name is relative to the data root (e.g., "data/search/all_0.js").
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns its entries.
	// The name is relative to the data root (e.g., "data/search").
	ReadDir(name string) ([]fs.DirEntry, error)
}

// loadProviderTable merges the tables of dir matching pattern into one index
func loadProviderTable(provider DataProvider, dir, pattern string) (*searchindex.SearchIndex, error) {
	entries, err := provider.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := path.Match(pattern, entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no search data matching %s in %s", pattern, dir)
	}
	sort.Strings(names)

	var all []searchindex.Entry
	for _, name := range names {
		file := path.Join(dir, name)
		data, err := provider.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded file %s: %w", file, err)
		}
		parsed, err := searchindex.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		all = append(all, parsed...)
	}
	return searchindex.New(all)
}
