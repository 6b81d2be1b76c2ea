package indexing

const (
	// BatchSize is the number of documents submitted per bleve batch
	BatchSize = 100

	// MaxKeywords caps the keywords extracted per document
	MaxKeywords = 10

	// IndexSchemaVersion increments when document layout or mapping changes
	// v1: one document per entry, v2: one document per target with resolved URLs
	IndexSchemaVersion = 2
)
