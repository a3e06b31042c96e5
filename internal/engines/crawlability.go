package engines

import (
	"context"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

// slowPageThresholdMs is the load time above which a page counts as slow.
const slowPageThresholdMs = 5000

// crawlIssueSpec drives the crawl-level issue table: impact is
// clamp(affected_count * factor, 0, ceiling).
type crawlIssueSpec struct {
	id             string
	name           string
	description    string
	severity       seomodel.Severity
	factor         float64
	ceiling        float64
	effort         float64
	recommendation string
	docURL         string
}

var crawlIssueSpecs = map[string]crawlIssueSpec{
	"crawl-5xx-pages": {
		id: "crawl-5xx-pages", name: "Server errors (5xx)",
		description: "Pages answering with 5xx errors are dropped from the index after repeated failures.",
		severity:    seomodel.SeverityCritical, factor: 3.0, ceiling: 100, effort: 5,
		recommendation: "Fix or remove the failing pages; check server logs for the error source.",
		docURL:         "https://developers.google.com/search/docs/crawling-indexing/http-network-errors",
	},
	"crawl-4xx-pages": {
		id: "crawl-4xx-pages", name: "Broken pages (4xx)",
		description: "Pages answering 4xx waste crawl budget and break the paths that link to them.",
		severity:    seomodel.SeverityHigh, factor: 2.0, ceiling: 100, effort: 3,
		recommendation: "Restore the content, redirect to a replacement, or remove the inbound links.",
		docURL:         "https://developers.google.com/search/docs/crawling-indexing/http-network-errors",
	},
	"crawl-slow-pages": {
		id: "crawl-slow-pages", name: "Slow pages",
		description: "Pages taking over 5 seconds to load hurt both crawl rate and user experience.",
		severity:    seomodel.SeverityHigh, factor: 2.0, ceiling: 80, effort: 6,
		recommendation: "Profile server response time and cut render-blocking payloads.",
		docURL:         "https://developers.google.com/search/docs/appearance/page-experience",
	},
	"crawl-duplicate-content": {
		id: "crawl-duplicate-content", name: "Duplicate content",
		description: "Pages whose HTML is byte-identical to an earlier page split ranking signals.",
		severity:    seomodel.SeverityMedium, factor: 1.5, ceiling: 80, effort: 5,
		recommendation: "Consolidate duplicates behind one canonical URL.",
		docURL:         "https://developers.google.com/search/docs/crawling-indexing/consolidate-duplicate-urls",
	},
	"crawl-missing-canonical": {
		id: "crawl-missing-canonical", name: "Missing canonical link",
		description: "200-OK pages without a rel=canonical leave duplicate resolution to the search engine.",
		severity:    seomodel.SeverityMedium, factor: 0.5, ceiling: 60, effort: 2,
		recommendation: "Declare a self-referential canonical on every indexable page.",
		docURL:         "https://developers.google.com/search/docs/crawling-indexing/consolidate-duplicate-urls",
	},
	"crawl-canonical-mismatch": {
		id: "crawl-canonical-mismatch", name: "Canonical points elsewhere",
		description: "Pages whose canonical names a different URL are asking not to be indexed here.",
		severity:    seomodel.SeverityMedium, factor: 1.0, ceiling: 70, effort: 3,
		recommendation: "Verify each non-self canonical is intentional.",
		docURL:         "https://developers.google.com/search/docs/crawling-indexing/consolidate-duplicate-urls",
	},
}

// CrawlabilityEngine turns the crawl phase's observations into the
// crawlability category result. It is pure over the frozen SiteData: the
// crawl itself already happened.
type CrawlabilityEngine struct{}

func NewCrawlabilityEngine() *CrawlabilityEngine {
	return &CrawlabilityEngine{}
}

func (e *CrawlabilityEngine) Name() string {
	return "crawlability"
}

func (e *CrawlabilityEngine) Category() seomodel.Category {
	return seomodel.CategoryCrawlability
}

func (e *CrawlabilityEngine) Run(ctx context.Context, site *seomodel.SiteData) (seomodel.AuditResult, failure.ClassifiedError) {
	var (
		fourxx, fivexx, slow, duplicate, missingCanonical, canonicalMismatch []string
	)

	for _, page := range site.Pages {
		switch {
		case page.Status >= 500:
			fivexx = append(fivexx, page.URL)
		case page.Status >= 400:
			fourxx = append(fourxx, page.URL)
		}
		if page.LoadTimeMs > slowPageThresholdMs {
			slow = append(slow, page.URL)
		}
		if page.Meta["is_duplicate_content"] == "true" {
			duplicate = append(duplicate, page.URL)
		}
		if page.Status == 200 {
			switch {
			case page.CanonicalURL == "":
				missingCanonical = append(missingCanonical, page.URL)
			case page.CanonicalURL != page.URL:
				canonicalMismatch = append(canonicalMismatch, page.URL)
			}
		}
	}

	// Fixed emission order keeps repeated runs byte-identical.
	found := []struct {
		id   string
		urls []string
	}{
		{"crawl-5xx-pages", fivexx},
		{"crawl-4xx-pages", fourxx},
		{"crawl-slow-pages", slow},
		{"crawl-duplicate-content", duplicate},
		{"crawl-missing-canonical", missingCanonical},
		{"crawl-canonical-mismatch", canonicalMismatch},
	}
	issues := []seomodel.Issue{}
	for _, f := range found {
		if len(f.urls) == 0 {
			continue
		}
		issues = append(issues, crawlIssue(crawlIssueSpecs[f.id], f.urls))
	}

	return seomodel.AuditResult{
		Status:        seomodel.StatusSuccess,
		Score:         crawlScore(site.Pages, issues),
		Issues:        issues,
		PagesAnalyzed: len(site.Pages),
		Metadata: map[string]any{
			"total_crawled":    site.CrawlStats.TotalCrawled,
			"total_failed":     site.CrawlStats.TotalFailed,
			"total_skipped":    site.CrawlStats.TotalSkipped,
			"pages_per_second": site.CrawlStats.PagesPerSecond,
		},
	}, nil
}

func crawlIssue(spec crawlIssueSpec, urls []string) seomodel.Issue {
	impact := seomodel.Clamp(float64(len(urls))*spec.factor, 0, spec.ceiling)
	return seomodel.NewIssue(
		spec.id, spec.name, spec.description,
		spec.severity, seomodel.CategoryCrawlability,
		urls, len(urls),
		impact, spec.effort,
		spec.recommendation, spec.docURL,
	)
}

// crawlScore = clamp(success_rate*70 + canonical_coverage*20 - severity
// penalties, 0, 100).
func crawlScore(pages []seomodel.PageData, issues []seomodel.Issue) float64 {
	if len(pages) == 0 {
		return 0
	}
	var ok, canonical int
	for _, page := range pages {
		if page.Status >= 200 && page.Status < 400 {
			ok++
		}
		if page.CanonicalURL != "" {
			canonical++
		}
	}
	successRate := float64(ok) / float64(len(pages))
	canonicalCoverage := float64(canonical) / float64(len(pages))

	var penalty float64
	for _, issue := range issues {
		penalty += seomodel.SeverityPenalty(issue.Severity)
	}

	return seomodel.Clamp(successRate*70+canonicalCoverage*20-penalty, 0, 100)
}
