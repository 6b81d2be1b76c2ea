package searchindex

import (
	"slices"
	"strings"
)

// Target is a single documentation destination of an entry
type Target struct {
	Page        string `json:"page"`                  // Path part of the link, e.g. "../classSuffixTrie.html"
	Anchor      string `json:"anchor,omitempty"`      // In-page fragment without '#'
	Description string `json:"description,omitempty"` // Scope text shown next to the label
	Local       bool   `json:"local"`                 // Opens inside the documentation frame
}

// Href rebuilds the page#anchor link of the target
func (t Target) Href() string {
	if t.Anchor == "" {
		return t.Page
	}
	return t.Page + "#" + t.Anchor
}

// ParseHref splits a link on its first '#'
// Example: "../md_README.html#autotoc_md31" -> ("../md_README.html", "autotoc_md31")
func ParseHref(href string) (page, anchor string) {
	page, anchor, _ = strings.Cut(href, "#")
	return page, anchor
}

// Entry is one row of the search index
type Entry struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Targets []Target `json:"targets"`
}

// Term returns the human-readable search term encoded in the key,
// without the trailing ordinal Doxygen appends for uniqueness
func (e Entry) Term() string {
	key := e.Key
	if i := strings.LastIndexByte(key, '_'); i > 0 && isDigits(key[i+1:]) {
		key = key[:i]
	}
	return UnescapeKey(key)
}

func (e Entry) clone() Entry {
	e.Targets = slices.Clone(e.Targets)
	return e
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SearchIndex is an immutable, key-ordered collection of entries.
// It is safe for concurrent use by any number of readers.
type SearchIndex struct {
	entries []Entry
	keys    []string
	byKey   map[string]int
}

// Len returns the number of entries
func (s *SearchIndex) Len() int {
	return len(s.entries)
}

// Keys returns all keys in order
func (s *SearchIndex) Keys() []string {
	return slices.Clone(s.keys)
}

// Entries returns a copy of all entries in key order
func (s *SearchIndex) Entries() []Entry {
	return s.Lookup("")
}

// Get returns the entry with exactly the given key
func (s *SearchIndex) Get(key string) (Entry, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i].clone(), true
}

// Equal reports whether both indexes hold the same keys, labels and target lists
func (s *SearchIndex) Equal(other *SearchIndex) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.EqualFunc(s.entries, other.entries, func(a, b Entry) bool {
		return a.Key == b.Key && a.Label == b.Label && slices.Equal(a.Targets, b.Targets)
	})
}
