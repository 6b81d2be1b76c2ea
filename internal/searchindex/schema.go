package searchindex

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://doxsearch.local/schema/searchdata.json"

//go:embed schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// SchemaViolation is one flattened schema validation failure
type SchemaViolation struct {
	Path    string `json:"path"`
	Record  int    `json:"record"` // Entry position, -1 for document-level violations
	Message string `json:"message"`
}

// ValidateJSON checks a JSON document against the search data schema
func ValidateJSON(data []byte) ([]SchemaViolation, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedDataError{Record: -1, Reason: "invalid JSON", Err: err}
	}

	if err := schema.Validate(inst); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return flattenViolations(validationErr), nil
		}
		return nil, err
	}
	return nil, nil
}

// flattenViolations collects the leaf causes of a validation error
func flattenViolations(validationErr *jsonschema.ValidationError) []SchemaViolation {
	if len(validationErr.Causes) == 0 {
		path := "$"
		if len(validationErr.InstanceLocation) > 0 {
			path = "$." + strings.Join(validationErr.InstanceLocation, ".")
		}
		return []SchemaViolation{{Path: path, Record: recordOf(path), Message: validationErr.Error()}}
	}

	var violations []SchemaViolation
	for _, cause := range validationErr.Causes {
		violations = append(violations, flattenViolations(cause)...)
	}
	return violations
}

// recordOf extracts the entry position from a path like "$.entries.3.targets"
func recordOf(path string) int {
	parts := strings.Split(path, ".")
	if len(parts) >= 3 && parts[1] == "entries" {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			return n
		}
	}
	return -1
}

func decodeJSON(data []byte) ([]Entry, error) {
	violations, err := ValidateJSON(data)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		first := violations[0]
		return nil, &MalformedDataError{
			Record: first.Record,
			Reason: fmt.Sprintf("%s: %s", first.Path, first.Message),
		}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedDataError{Record: -1, Reason: "invalid JSON", Err: err}
	}
	return doc.Entries, nil
}
