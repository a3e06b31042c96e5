package engines

import (
	"net/url"
	"strings"

	"github.com/Pavankona715/seo-audit-platform/internal/ruleengine"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// PageFields projects one PageData into the dot-path-addressable map the
// rule engine evaluates conditions against. Header keys are lowercased so
// conditions address them case-insensitively; meta keys are already
// lowercase by extraction.
func PageFields(page seomodel.PageData) ruleengine.Fields {
	headers := make(map[string]any, len(page.Headers))
	for k, v := range page.Headers {
		headers[strings.ToLower(k)] = v
	}

	meta := make(map[string]any, len(page.Meta))
	for k, v := range page.Meta {
		meta[k] = v
	}

	path := ""
	queryParams := 0
	if parsed, err := url.Parse(page.URL); err == nil {
		path = parsed.Path
		if parsed.RawQuery != "" {
			// segment count, not distinct keys: ?tag=a&tag=b is 2
			queryParams = strings.Count(parsed.RawQuery, "&") + 1
		}
	}

	return ruleengine.Fields{
		"url":               page.URL,
		"path":              path,
		"query_param_count": queryParams,
		"canonical_url":     page.CanonicalURL,
		"status":            page.Status,
		"content_type":      page.ContentType,
		"html":              page.HTML,
		"text_content":      page.TextContent,
		"headers":           headers,
		"meta":              meta,
		"links":             page.Links,
		"images":            page.Images,
		"structured_data":   page.StructuredData,
		"load_time_ms":      page.LoadTimeMs,
		"byte_size":         page.ByteSize,
		"depth":             page.Depth,
	}
}
