package indexing_test

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/krakend/doxsearch/internal/indexing"
	"github.com/krakend/doxsearch/internal/searchindex"
)

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "escaped tt markup",
			input:    "Step 1: Building &lt;tt&gt;ir2vec&lt;/tt&gt;",
			expected: "Step 1: Building ir2vec",
		},
		{
			name:     "plain label",
			input:    "Seed Embedding Vocabulary",
			expected: "Seed Embedding Vocabulary",
		},
		{
			name:     "collapses whitespace",
			input:    "  Quick   Start ",
			expected: "Quick Start",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := indexing.CleanLabel(tt.input)
			if result != tt.expected {
				t.Errorf("indexing.CleanLabel() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		page     string
		anchor   string
		expected string
	}{
		{
			name:     "relative page with anchor",
			baseURL:  "https://docs.example.org/ir2vec",
			page:     "../md_README.html",
			anchor:   "autotoc_md31",
			expected: "https://docs.example.org/ir2vec/md_README.html#autotoc_md31",
		},
		{
			name:     "class page without anchor",
			baseURL:  "https://docs.example.org/ir2vec/",
			page:     "../classSuffixTrie.html",
			expected: "https://docs.example.org/ir2vec/classSuffixTrie.html",
		},
		{
			name:     "no base url",
			page:     "../structsubset.html",
			anchor:   "a1",
			expected: "structsubset.html#a1",
		},
		{
			name:     "absolute page kept",
			baseURL:  "https://docs.example.org/ir2vec/",
			page:     "https://example.org/api.html",
			expected: "https://example.org/api.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := indexing.ResolveURL(tt.baseURL, tt.page, tt.anchor)
			if result != tt.expected {
				t.Errorf("indexing.ResolveURL() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		description string
		want        []string
	}{
		{
			name:        "label and description",
			label:       "Seed Embedding Vocabulary",
			description: "Files used to generate Seed Embedding Vocabulary",
			want:        []string{"embedding", "files", "generate", "seed", "used", "vocabulary"},
		},
		{
			name:  "filters stop words",
			label: "The Best Way To Configure",
			want:  []string{"best", "configure", "way"},
		},
		{
			name: "empty input",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keywords := indexing.ExtractKeywords(tt.label, tt.description)
			if !slices.Equal(keywords, tt.want) {
				t.Errorf("indexing.ExtractKeywords() = %v, want %v", keywords, tt.want)
			}
		})
	}

	t.Run("max limit", func(t *testing.T) {
		label := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"
		if got := indexing.ExtractKeywords(label, ""); len(got) != indexing.MaxKeywords {
			t.Errorf("expected %d keywords, got %d", indexing.MaxKeywords, len(got))
		}
	})
}

func TestBuildBreadcrumb(t *testing.T) {
	if got := indexing.BuildBreadcrumb("Steps to Run", "Steps to Run"); got != "Steps to Run" {
		t.Errorf("duplicate description should collapse, got %q", got)
	}
	if got := indexing.BuildBreadcrumb("Structure", "Directory structure"); got != "Structure > Directory structure" {
		t.Errorf("unexpected breadcrumb %q", got)
	}
	if got := indexing.BuildBreadcrumb("subset", ""); got != "subset" {
		t.Errorf("unexpected breadcrumb %q", got)
	}
}

func TestBuildDocuments(t *testing.T) {
	idx, err := searchindex.LoadFile(filepath.Join("..", "searchindex", "testdata", "all_15.js"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	docs := indexing.BuildDocuments(idx, "https://docs.example.org/ir2vec/")

	// 21 entries, three of which carry two targets
	if len(docs) != 24 {
		t.Fatalf("expected 24 documents, got %d", len(docs))
	}

	ids := make(map[string]bool)
	for _, doc := range docs {
		if ids[doc.ID] {
			t.Errorf("duplicate document ID %s", doc.ID)
		}
		ids[doc.ID] = true

		if !strings.HasPrefix(doc.URL, "https://docs.example.org/ir2vec/") {
			t.Errorf("document %s has unresolved URL %s", doc.ID, doc.URL)
		}
		if doc.Breadcrumb == "" {
			t.Errorf("document %s missing breadcrumb", doc.ID)
		}
		if strings.Contains(doc.Label, "&lt;") {
			t.Errorf("document %s label still escaped: %s", doc.ID, doc.Label)
		}
	}

	first := docs[0]
	if first.ID != "seed_20embedding_20vocabulary_0#0" {
		t.Errorf("first document ID = %s", first.ID)
	}
	if first.Term != "seed embedding vocabulary" {
		t.Errorf("Term = %q", first.Term)
	}
	if first.URL != "https://docs.example.org/ir2vec/md_seed__embeddings_2README.html#autotoc_md77" {
		t.Errorf("URL = %q", first.URL)
	}
	if !first.Local {
		t.Error("expected local link")
	}
}
