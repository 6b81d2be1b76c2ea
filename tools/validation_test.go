package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadSearchData(t *testing.T) {
	t.Run("inline table", func(t *testing.T) {
		data, err := readSearchData("  " + sampleTable)
		if err != nil {
			t.Fatalf("readSearchData() error = %v", err)
		}
		if !strings.HasPrefix(string(data), "var searchData") {
			t.Errorf("Unexpected data %q", data)
		}
	})

	t.Run("file path", func(t *testing.T) {
		path := writeTable(t, t.TempDir(), "all_0.js", sampleTable)
		data, err := readSearchData(path)
		if err != nil {
			t.Fatalf("readSearchData() error = %v", err)
		}
		if string(data) != sampleTable {
			t.Error("File content not returned verbatim")
		}
	})

	t.Run("var followed by tab", func(t *testing.T) {
		data, err := readSearchData("var\tsearchData=[];")
		if err != nil {
			t.Fatalf("readSearchData() error = %v", err)
		}
		if string(data) != "var\tsearchData=[];" {
			t.Errorf("Unexpected data %q", data)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := readSearchData(filepath.Join(t.TempDir(), "missing.js")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestValidateSearchData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		data        string
		wantValid   bool
		wantFormat  string
		wantEntries int
		wantRecord  int
		wantMessage string
	}{
		{
			name:        "valid table",
			data:        sampleTable,
			wantValid:   true,
			wantFormat:  "js",
			wantEntries: 4,
		},
		{
			name:        "valid snapshot",
			data:        `{"entries":[{"key":"a_0","label":"a","targets":[{"page":"a.html"}]}]}`,
			wantValid:   true,
			wantFormat:  "json",
			wantEntries: 1,
		},
		{
			name:        "record without targets",
			data:        `var searchData=[['ok_0',['ok',['ok.html',1,'']]],['broken_1',['broken']]];`,
			wantFormat:  "js",
			wantRecord:  1,
			wantMessage: "broken_1",
		},
		{
			name:        "schema violation",
			data:        `{"entries":[{"key":"a_0","label":"a","targets":[{"page":"a.html"}]},{"key":"","label":"b","targets":[{"page":"b.html"}]}]}`,
			wantFormat:  "json",
			wantRecord:  1,
			wantMessage: "",
		},
		{
			name:        "document level violation",
			data:        `{"entries":[],"version":2}`,
			wantFormat:  "json",
			wantRecord:  -1,
			wantMessage: "",
		},
		{
			name:        "table after comment",
			data:        "/* generated */\n" + sampleTable,
			wantValid:   true,
			wantFormat:  "js",
			wantEntries: 4,
		},
		{
			name:        "var followed by newline",
			data:        "var\nsearchData=[['a_0',['a',['a.html',1,'']]]];",
			wantValid:   true,
			wantFormat:  "js",
			wantEntries: 1,
		},
		{
			name:        "truncated table",
			data:        `var searchData=[['a_0',['a',['a.html',1,'']]]`,
			wantFormat:  "js",
			wantRecord:  -1,
			wantMessage: "invalid search table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := ValidateSearchData(ctx, nil, ValidateSearchDataInput{Data: tt.data})
			if err != nil {
				t.Fatalf("ValidateSearchData() error = %v", err)
			}
			if out.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (errors: %+v)", out.Valid, tt.wantValid, out.Errors)
			}
			if out.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", out.Format, tt.wantFormat)
			}
			if tt.wantValid {
				if out.Entries != tt.wantEntries {
					t.Errorf("Entries = %d, want %d", out.Entries, tt.wantEntries)
				}
				if len(out.Errors) != 0 {
					t.Errorf("Unexpected errors %+v", out.Errors)
				}
				return
			}

			if len(out.Errors) == 0 {
				t.Fatal("Expected validation errors")
			}
			first := out.Errors[0]
			if first.Record != tt.wantRecord {
				t.Errorf("Record = %d, want %d", first.Record, tt.wantRecord)
			}
			if !strings.Contains(first.Message, tt.wantMessage) {
				t.Errorf("Message %q does not mention %q", first.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateSearchDataFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "searchdata.json")
	if err := os.WriteFile(path, []byte(`{"entries":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, out, err := ValidateSearchData(context.Background(), nil, ValidateSearchDataInput{Data: path})
	if err != nil {
		t.Fatalf("ValidateSearchData() error = %v", err)
	}
	if !out.Valid || out.Entries != 0 || out.Format != "json" {
		t.Errorf("Unexpected output %+v", out)
	}
}
