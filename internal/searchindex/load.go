package searchindex

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

// Load parses a serialized table into a SearchIndex.
// The format is detected from the content: a JSON document written by
// WriteJSON, or a Doxygen JavaScript table (var searchData=[...];).
// Any malformed record fails the whole load.
func Load(r io.Reader) (*SearchIndex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read search data: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return New(entries)
}

// LoadFile loads a single serialized table from disk
func LoadFile(path string) (*SearchIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search data %s: %w", path, err)
	}
	defer f.Close()

	idx, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// LoadFS merges every file of fsys matching pattern into one index.
// Doxygen splits a category over several files (all_0.js ... all_N.js),
// so keys must stay unique across all of them.
func LoadFS(fsys fs.FS, pattern string) (*SearchIndex, error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no search data matching %q", pattern)
	}
	slices.Sort(matches)

	var all []Entry
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		entries, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		all = append(all, entries...)
	}
	return New(all)
}

// New validates entries and builds a key-ordered index from them.
// The entries are copied; the caller keeps ownership of its slice.
func New(entries []Entry) (*SearchIndex, error) {
	idx := &SearchIndex{
		entries: make([]Entry, 0, len(entries)),
		keys:    make([]string, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if err := validateEntry(i, e); err != nil {
			return nil, err
		}
		if _, dup := idx.byKey[e.Key]; dup {
			return nil, malformed(i, e.Key, "duplicate key")
		}
		idx.byKey[e.Key] = i
		idx.entries = append(idx.entries, e.clone())
	}

	slices.SortFunc(idx.entries, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	for i, e := range idx.entries {
		idx.keys = append(idx.keys, e.Key)
		idx.byKey[e.Key] = i
	}
	return idx, nil
}

func validateEntry(i int, e Entry) error {
	if e.Key == "" {
		return malformed(i, "", "missing key")
	}
	if !utf8.ValidString(e.Key) || !utf8.ValidString(e.Label) {
		return malformed(i, e.Key, "invalid UTF-8 in key or label")
	}
	if len(e.Targets) == 0 {
		return malformed(i, e.Key, "empty target list")
	}
	for j, t := range e.Targets {
		switch {
		case t.Page == "":
			return malformed(i, e.Key, fmt.Sprintf("target %d: missing page", j))
		case strings.Contains(t.Page, "#"):
			// Href joins page and anchor with '#'
			return malformed(i, e.Key, fmt.Sprintf("target %d: '#' in page", j))
		case !utf8.ValidString(t.Page) || !utf8.ValidString(t.Anchor) || !utf8.ValidString(t.Description):
			return malformed(i, e.Key, fmt.Sprintf("target %d: invalid UTF-8", j))
		}
	}
	return nil
}

// Parse decodes one serialized table into entries without building an index.
// Callers merging several tables pass the combined entries to New.
func Parse(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed(-1, "", "empty input")
	}
	if trimmed[0] == '{' {
		return decodeJSON(trimmed)
	}

	table, err := parseTable(string(trimmed))
	if err != nil {
		return nil, &MalformedDataError{Record: -1, Reason: "invalid search table", Err: err}
	}
	return decodeRecords(table)
}
