package searchindex_test

import (
	"testing"

	"github.com/krakend/doxsearch/internal/searchindex"
)

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain word",
			input:    "suffix",
			expected: "suffix",
		},
		{
			name:     "upper case folded",
			input:    "SuffixTrieNode",
			expected: "suffixtrienode",
		},
		{
			name:     "spaces and punctuation",
			input:    "Step 1: Import datasets",
			expected: "step_201_3a_20import_20datasets",
		},
		{
			name:     "surrounding spaces trimmed",
			input:    "   seed embedding  ",
			expected: "seed_20embedding",
		},
		{
			name:     "underscore escaped",
			input:    "api_reference",
			expected: "api_5freference",
		},
		{
			name:     "control character padded",
			input:    "a\tb",
			expected: "a_09b",
		},
		{
			name:     "non ascii kept",
			input:    "Größe",
			expected: "größe",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := searchindex.EscapeKey(tt.input)
			if result != tt.expected {
				t.Errorf("searchindex.EscapeKey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestUnescapeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "escaped sentence",
			input:    "step_201_3a_20import_20datasets",
			expected: "step 1: import datasets",
		},
		{
			name:     "no escapes",
			input:    "suffixtrie",
			expected: "suffixtrie",
		},
		{
			name:     "invalid escape kept",
			input:    "a_zz",
			expected: "a_zz",
		},
		{
			name:     "escape at the end",
			input:    "a_2",
			expected: "a_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := searchindex.UnescapeKey(tt.input)
			if result != tt.expected {
				t.Errorf("searchindex.UnescapeKey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestEntryTerm(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{key: "suffix_16", expected: "suffix"},
		{key: "step_203_3a_20export_20results_9", expected: "step 3: export results"},
		{key: "symbolic_20embeddings_20", expected: "symbolic embeddings"},
		{key: "noordinal", expected: "noordinal"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry := searchindex.Entry{Key: tt.key}
			if got := entry.Term(); got != tt.expected {
				t.Errorf("Term() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseHref(t *testing.T) {
	page, anchor := searchindex.ParseHref("../md_README.html#autotoc_md31")
	if page != "../md_README.html" || anchor != "autotoc_md31" {
		t.Errorf("ParseHref() = (%q, %q)", page, anchor)
	}

	page, anchor = searchindex.ParseHref("../classSuffixTrie.html")
	if page != "../classSuffixTrie.html" || anchor != "" {
		t.Errorf("ParseHref() = (%q, %q)", page, anchor)
	}
}
