package indexing

import (
	"html"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
var spaceRegex = regexp.MustCompile(`\s+`)

// CleanLabel decodes HTML entities and removes markup from a label
// Example: "Step 1: Building &lt;tt&gt;ir2vec&lt;/tt&gt;" -> "Step 1: Building ir2vec"
func CleanLabel(text string) string {
	text = html.UnescapeString(text)
	text = htmlTagRegex.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// ResolveURL builds an absolute documentation URL for a target.
// Links in the search tables are relative to the search/ directory, so a
// single leading "../" is dropped before resolving against baseURL.
// Without a base URL the cleaned relative link is returned.
func ResolveURL(baseURL, page, anchor string) string {
	page = strings.TrimPrefix(page, "../")

	ref, err := url.Parse(page)
	if err != nil {
		return joinAnchor(page, anchor)
	}
	if ref.IsAbs() || baseURL == "" {
		return joinAnchor(page, anchor)
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return joinAnchor(page, anchor)
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = anchor
	return resolved.String()
}

func joinAnchor(page, anchor string) string {
	if anchor == "" {
		return page
	}
	return page + "#" + anchor
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "as": true, "by": true, "is": true,
	"it": true, "be": true, "with": true, "from": true, "that": true,
}

// ExtractKeywords extracts key terms from a label and its description
func ExtractKeywords(label, description string) []string {
	words := strings.FieldsFunc(strings.ToLower(label+" "+description), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 0x7f)
	})

	keywordMap := make(map[string]bool)
	for _, word := range words {
		if len(word) > 2 && !stopWords[word] {
			keywordMap[word] = true
		}
	}

	keywords := make([]string, 0, len(keywordMap))
	for word := range keywordMap {
		keywords = append(keywords, word)
	}
	slices.Sort(keywords)

	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}
	return keywords
}

// BuildBreadcrumb joins the label and the scope text of a target
func BuildBreadcrumb(label, description string) string {
	if description == "" || description == label {
		return label
	}
	return label + " > " + description
}

// EnrichMetadata fills URL, breadcrumb and keywords of a document
func EnrichMetadata(doc *Document, baseURL string) {
	doc.URL = ResolveURL(baseURL, doc.Page, doc.Anchor)
	doc.Breadcrumb = BuildBreadcrumb(doc.Label, doc.Description)
	doc.Keywords = ExtractKeywords(doc.Label, doc.Description)
}
