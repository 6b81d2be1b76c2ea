package tools

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/krakend/doxsearch/internal/indexing"
)

// Index is an interface that abstracts bleve.Index operations
// This allows for easier testing with mocks
type Index interface {
	// Search executes a search request
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)

	// DocCount returns the number of documents in the index
	DocCount() (uint64, error)

	// Close closes the index
	Close() error
}

// bleveIndexWrapper wraps a bleve.Index to implement our Index interface
type bleveIndexWrapper struct {
	index bleve.Index
}

// NewBleveIndexWrapper wraps a bleve.Index
func NewBleveIndexWrapper(index bleve.Index) Index {
	return &bleveIndexWrapper{index: index}
}

func (w *bleveIndexWrapper) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	return w.index.Search(req)
}

func (w *bleveIndexWrapper) DocCount() (uint64, error) {
	return w.index.DocCount()
}

func (w *bleveIndexWrapper) Close() error {
	return w.index.Close()
}

// NewIndexMapping describes how indexing.Document fields are analyzed.
// Free text goes through the standard analyzer, link parts are kept verbatim.
func NewIndexMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("label", text)
	doc.AddFieldMappingsAt("term", text)
	doc.AddFieldMappingsAt("description", text)
	doc.AddFieldMappingsAt("breadcrumb", text)
	doc.AddFieldMappingsAt("keywords", text)
	doc.AddFieldMappingsAt("key", keyword)
	doc.AddFieldMappingsAt("page", keyword)
	doc.AddFieldMappingsAt("anchor", keyword)
	doc.AddFieldMappingsAt("url", keyword)
	doc.AddFieldMappingsAt("local", bleve.NewBooleanFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// IndexDocuments adds documents to index in batches of indexing.BatchSize
func IndexDocuments(index bleve.Index, docs []indexing.Document) error {
	batch := index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}

		if (i+1)%indexing.BatchSize == 0 {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	// Submit remaining
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}
	return nil
}

// newMemoryIndex builds an in-memory full-text index over docs
func newMemoryIndex(docs []indexing.Document) (Index, error) {
	index, err := bleve.NewMemOnly(NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	if err := IndexDocuments(index, docs); err != nil {
		index.Close()
		return nil, err
	}
	return NewBleveIndexWrapper(index), nil
}
