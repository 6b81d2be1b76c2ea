package tools

import (
	"embed"
	"io/fs"
)

// Embed the default search tables into the binary so the server answers
// lookups without a Doxygen output directory on disk.
//
// Embedded files:
// - Doxygen search tables (data/search/<category>_N.js)

//go:embed data/search/*.js
var embeddedFS embed.FS

// embeddedSearchDir is the embedded directory holding the search tables
const embeddedSearchDir = "data/search"

// embeddedDataProvider implements DataProvider using embed.FS.
// This is the production implementation that uses actual embedded files.
type embeddedDataProvider struct {
	fs embed.FS
}

// NewEmbeddedDataProvider creates a production DataProvider that uses embedded files.
func NewEmbeddedDataProvider() DataProvider {
	return &embeddedDataProvider{fs: embeddedFS}
}

// ReadFile reads the named file from the embedded filesystem.
func (p *embeddedDataProvider) ReadFile(name string) ([]byte, error) {
	return p.fs.ReadFile(name)
}

// ReadDir reads the named directory from the embedded filesystem.
func (p *embeddedDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return p.fs.ReadDir(name)
}

// Default provider used by package-level functions
var defaultDataProvider DataProvider = NewEmbeddedDataProvider()
