package searchindex

import (
	"slices"
	"strings"
)

// Lookup returns the entries whose key starts with prefix, in key order.
// No match yields an empty slice, never an error.
func (s *SearchIndex) Lookup(prefix string) []Entry {
	results, _ := s.LookupLimit(prefix, 0)
	return results
}

// LookupTerm escapes a human query the way the documentation search box
// does and returns the matching entries
func (s *SearchIndex) LookupTerm(term string) []Entry {
	return s.Lookup(EscapeKey(term))
}

// LookupLimit is Lookup capped at max results (max <= 0 means no cap).
// It also reports the total number of matches.
func (s *SearchIndex) LookupLimit(prefix string, max int) ([]Entry, int) {
	start, _ := slices.BinarySearch(s.keys, prefix)
	end := start
	for end < len(s.keys) && strings.HasPrefix(s.keys[end], prefix) {
		end++
	}

	total := end - start
	if max > 0 && total > max {
		end = start + max
	}
	results := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		results = append(results, s.entries[i].clone())
	}
	return results, total
}
