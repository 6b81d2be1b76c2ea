package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/krakend/doxsearch/internal/searchindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ValidateSearchDataInput defines input for validate_search_data tool
type ValidateSearchDataInput struct {
	Data string `json:"data" jsonschema:"Search table (var searchData=[...];), JSON snapshot, or a file path to either"`
}

// ValidationError is one problem found in the search data
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Record  int    `json:"record"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// ValidateSearchDataOutput defines output for validate_search_data tool
type ValidateSearchDataOutput struct {
	Valid   bool              `json:"valid"`
	Format  string            `json:"format"`
	Entries int               `json:"entries"`
	Errors  []ValidationError `json:"errors"`
}

// readSearchData reads data from a file path or returns the content directly
func readSearchData(data string) ([]byte, error) {
	trimmed := strings.TrimSpace(data)
	if info, err := os.Stat(trimmed); err == nil && info.Mode().IsRegular() {
		content, err := os.ReadFile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to read search data file '%s': %w", trimmed, err)
		}
		return content, nil
	}

	if looksInline(trimmed) {
		return []byte(trimmed), nil
	}
	return nil, fmt.Errorf("search data file '%s' not found and content is not a search table", trimmed)
}

// looksInline reports whether s starts like a table or snapshot rather than a path
func looksInline(s string) bool {
	switch {
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["),
		strings.HasPrefix(s, "/*"), strings.HasPrefix(s, "//"):
		return true
	case strings.HasPrefix(s, "var") && len(s) > 3:
		r, _ := utf8.DecodeRuneInString(s[3:])
		return unicode.IsSpace(r)
	}
	return false
}

// ValidateSearchData checks that search data loads, reporting every schema
// violation for JSON snapshots and the first malformed record otherwise
func ValidateSearchData(ctx context.Context, req *mcp.CallToolRequest, input ValidateSearchDataInput) (*mcp.CallToolResult, ValidateSearchDataOutput, error) {
	output := ValidateSearchDataOutput{Errors: []ValidationError{}}

	data, err := readSearchData(input.Data)
	if err != nil {
		return nil, output, err
	}
	data = bytes.TrimSpace(data)

	output.Format = "js"
	if len(data) > 0 && data[0] == '{' {
		output.Format = "json"

		violations, err := searchindex.ValidateJSON(data)
		if err != nil && !errors.Is(err, searchindex.ErrMalformedData) {
			return nil, output, fmt.Errorf("schema validation failed: %w", err)
		}
		for _, v := range violations {
			output.Errors = append(output.Errors, ValidationError{
				Path:    v.Path,
				Record:  v.Record,
				Message: v.Message,
			})
		}
		if len(output.Errors) > 0 {
			return nil, output, nil
		}
	}

	table, err := searchindex.Load(bytes.NewReader(data))
	if err != nil {
		output.Errors = append(output.Errors, toValidationError(err))
		return nil, output, nil
	}

	output.Valid = true
	output.Entries = table.Len()
	return nil, output, nil
}

func toValidationError(err error) ValidationError {
	var malformed *searchindex.MalformedDataError
	if errors.As(err, &malformed) {
		return ValidationError{
			Record:  malformed.Record,
			Key:     malformed.Key,
			Message: malformed.Error(),
		}
	}
	return ValidationError{Record: -1, Message: err.Error()}
}

// RegisterValidationTools registers search data validation tools
func RegisterValidationTools(server *mcp.Server) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_search_data",
			Description: "Validates a Doxygen search table or JSON snapshot. Reports schema violations and malformed records without loading the data into the server.",
		},
		ValidateSearchData,
	)
}
