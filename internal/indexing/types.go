package indexing

// Document is one full-text document in the search index.
// Each (entry, target) pair of the search table becomes a document.
type Document struct {
	ID          string   `json:"id"`                    // "<key>#<target position>"
	Key         string   `json:"key"`                   // Search table key
	Term        string   `json:"term"`                  // Decoded key, e.g. "step 1: import datasets"
	Label       string   `json:"label"`                 // Display label with markup removed
	Description string   `json:"description,omitempty"` // Target scope text
	Page        string   `json:"page"`
	Anchor      string   `json:"anchor,omitempty"`
	URL         string   `json:"url,omitempty"`
	Breadcrumb  string   `json:"breadcrumb,omitempty"` // "Label > Description"
	Keywords    []string `json:"keywords,omitempty"`
	Local       bool     `json:"local"`
}
