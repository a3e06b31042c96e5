package extractor

import "github.com/Pavankona715/seo-audit-platform/internal/seomodel"

// ExtractionResult holds the normalized on-page fields pulled out of one
// HTML document: everything PageData carries beyond the transport-level
// facts the fetcher already knows.
type ExtractionResult struct {
	Meta           map[string]string
	CanonicalURL   string
	Links          []string
	Images         []seomodel.Image
	StructuredData []any
	TextContent    string
	WordCount      int
	H1Count        int
	HasRelNext     bool
	HasRelPrev     bool
}

// emptyResult keeps the PageData invariant that extracted fields are
// empty, never absent, when a page has no parseable HTML.
func emptyResult() ExtractionResult {
	return ExtractionResult{
		Meta:           map[string]string{},
		Links:          []string{},
		Images:         []seomodel.Image{},
		StructuredData: []any{},
	}
}
