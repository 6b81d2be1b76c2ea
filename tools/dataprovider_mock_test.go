package tools

import (
	"io/fs"
	"testing/fstest"
)

// MockDataProvider implements DataProvider for testing on top of an
// in-memory filesystem, so no embedded data needs to be present.
type MockDataProvider struct {
	files fstest.MapFS
}

// NewMockDataProvider creates a new mock data provider for testing.
func NewMockDataProvider() *MockDataProvider {
	return &MockDataProvider{files: fstest.MapFS{}}
}

// AddFile adds a file to the mock provider.
func (m *MockDataProvider) AddFile(name string, content []byte) {
	m.files[name] = &fstest.MapFile{Data: content}
}

// AddTable adds a search table under the embedded search directory.
func (m *MockDataProvider) AddTable(name, content string) {
	m.AddFile(embeddedSearchDir+"/"+name, []byte(content))
}

func (m *MockDataProvider) ReadFile(name string) ([]byte, error) {
	return m.files.ReadFile(name)
}

func (m *MockDataProvider) ReadDir(name string) ([]fs.DirEntry, error) {
	return m.files.ReadDir(name)
}

// useDataProvider swaps the package provider for the duration of a test.
func useDataProvider(provider DataProvider) (restore func()) {
	original := defaultDataProvider
	defaultDataProvider = provider
	return func() { defaultDataProvider = original }
}
