// Package seomodel defines the audit-wide data model shared by the
// crawler, the rule engine, the analysis engines, scoring and the
// prioritizer: PageData, SiteData, Issue, Recommendation, AuditResult
// and the Rule/Condition pair the rule engine interprets.
package seomodel

import "time"

// Image is one <img> descriptor captured by the HTML extractor.
type Image struct {
	Src     string
	Alt     string
	Width   string
	Height  string
	Loading string
}

// PageData is the normalized view of one crawled URL. Status 0 denotes a
// transport failure. When Status != 200 or ContentType is not HTML, the
// extracted fields may be empty slices/maps but must never be nil.
type PageData struct {
	URL            string
	CanonicalURL   string
	Status         int
	ContentType    string
	HTML           string
	TextContent    string
	Headers        map[string]string
	Meta           map[string]string
	Links          []string
	Images         []Image
	StructuredData []any
	LoadTimeMs     int64
	ByteSize       int
	Depth          int
	CrawledAt      time.Time
}

// NewPageData returns a PageData with all collection fields initialized to
// non-nil empty values, matching the invariant that absent data is empty,
// never absent.
func NewPageData(url string) PageData {
	return PageData{
		URL:            url,
		Headers:        map[string]string{},
		Meta:           map[string]string{},
		Links:          []string{},
		Images:         []Image{},
		StructuredData: []any{},
	}
}

// Header looks up a response header case-insensitively.
func (p PageData) Header(name string) (string, bool) {
	for k, v := range p.Headers {
		if eqFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// CrawlStats is the crawler's terminal summary of one audit's crawl phase.
type CrawlStats struct {
	TotalCrawled    int
	TotalFailed     int
	TotalSkipped    int
	TotalQueued     int
	JSRendered      int
	ElapsedSeconds  float64
	PagesPerSecond  float64
	SitemapURLsFound int
	StartedAt       time.Time
}
