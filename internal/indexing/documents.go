package indexing

import (
	"fmt"

	"github.com/krakend/doxsearch/internal/searchindex"
)

// BuildDocuments expands a search table into full-text documents, one per target,
// in key order
func BuildDocuments(idx *searchindex.SearchIndex, baseURL string) []Document {
	entries := idx.Entries()

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		label := CleanLabel(entry.Label)
		term := entry.Term()

		for i, target := range entry.Targets {
			doc := Document{
				ID:          fmt.Sprintf("%s#%d", entry.Key, i),
				Key:         entry.Key,
				Term:        term,
				Label:       label,
				Description: CleanLabel(target.Description),
				Page:        target.Page,
				Anchor:      target.Anchor,
				Local:       target.Local,
			}
			EnrichMetadata(&doc, baseURL)
			docs = append(docs, doc)
		}
	}
	return docs
}
