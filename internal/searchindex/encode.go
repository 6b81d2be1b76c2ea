package searchindex

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultVariable is the variable name Doxygen assigns the table to
const DefaultVariable = "searchData"

// document is the JSON form of an index
type document struct {
	Entries []Entry `json:"entries"`
}

// MarshalJSON encodes the index in its JSON form
func (s *SearchIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Entries: s.entries})
}

// WriteJSON writes the JSON form of the index
func (s *SearchIndex) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Entries: s.entries}); err != nil {
		return fmt.Errorf("failed to encode search data: %w", err)
	}
	return nil
}

// WriteJS writes the index as a Doxygen search table
func (s *SearchIndex) WriteJS(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "var %s=\n[\n", DefaultVariable)
	for i, e := range s.entries {
		bw.WriteString("  [")
		bw.WriteString(quoteJS(e.Key))
		bw.WriteString(",[")
		bw.WriteString(quoteJS(e.Label))
		for _, t := range e.Targets {
			local := 0
			if t.Local {
				local = 1
			}
			fmt.Fprintf(bw, ",[%s,%d,%s]", quoteJS(t.Href()), local, quoteJS(t.Description))
		}
		bw.WriteString("]]")
		if i < len(s.entries)-1 {
			bw.WriteByte(',')
		}
		bw.WriteByte('\n')
	}
	bw.WriteString("];\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write search table: %w", err)
	}
	return nil
}

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quoteJS(s string) string {
	return "'" + jsEscaper.Replace(s) + "'"
}
