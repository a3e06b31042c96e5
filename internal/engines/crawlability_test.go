package engines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

func runCrawlability(t *testing.T, site *seomodel.SiteData) seomodel.AuditResult {
	t.Helper()
	result, err := NewCrawlabilityEngine().Run(context.Background(), site)
	require.Nil(t, err)
	return result
}

func canonicalPage(url string) seomodel.PageData {
	page := page200(url)
	page.CanonicalURL = url
	return page
}

func TestCrawlability_4xxIssue(t *testing.T) {
	broken := seomodel.NewPageData("https://example.com/404")
	broken.Status = 404
	site := siteWith(
		canonicalPage("https://example.com/"),
		canonicalPage("https://example.com/a"),
		broken,
	)
	result := runCrawlability(t, site)

	issue, found := issueByID(result.Issues, "crawl-4xx-pages")
	require.True(t, found)
	assert.Equal(t, seomodel.SeverityHigh, issue.Severity)
	assert.Equal(t, 1, issue.AffectedCount)
	assert.InDelta(t, 2.0, issue.ImpactScore, 0.001, "impact = count * 2.0")
}

func TestCrawlability_5xxIssue(t *testing.T) {
	var pages []seomodel.PageData
	for i := 0; i < 40; i++ {
		down := seomodel.NewPageData("https://example.com/down")
		down.Status = 500
		pages = append(pages, down)
	}
	result := runCrawlability(t, siteWith(pages...))

	issue, found := issueByID(result.Issues, "crawl-5xx-pages")
	require.True(t, found)
	assert.Equal(t, seomodel.SeverityCritical, issue.Severity)
	assert.InDelta(t, 100, issue.ImpactScore, 0.001, "impact caps at the ceiling")
	assert.Equal(t, 40, issue.AffectedCount)
}

func TestCrawlability_DuplicateContentFlagsOnlyLaterPages(t *testing.T) {
	first := canonicalPage("https://example.com/a")
	duplicate := canonicalPage("https://example.com/a/x")
	duplicate.Meta["is_duplicate_content"] = "true"
	site := siteWith(first, duplicate, canonicalPage("https://example.com/b"))
	result := runCrawlability(t, site)

	issue, found := issueByID(result.Issues, "crawl-duplicate-content")
	require.True(t, found)
	assert.Equal(t, seomodel.SeverityMedium, issue.Severity)
	assert.Equal(t, 1, issue.AffectedCount)
	assert.Equal(t, []string{"https://example.com/a/x"}, issue.AffectedURLs, "the first writer is not flagged")
}

func TestCrawlability_CanonicalIssues(t *testing.T) {
	missing := page200("https://example.com/no-canonical")
	elsewhere := page200("https://example.com/moved")
	elsewhere.CanonicalURL = "https://example.com/new-home"
	site := siteWith(canonicalPage("https://example.com/"), missing, elsewhere)
	result := runCrawlability(t, site)

	missingIssue, found := issueByID(result.Issues, "crawl-missing-canonical")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/no-canonical"}, missingIssue.AffectedURLs)

	mismatchIssue, found := issueByID(result.Issues, "crawl-canonical-mismatch")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/moved"}, mismatchIssue.AffectedURLs)
}

func TestCrawlability_SlowPages(t *testing.T) {
	fast := canonicalPage("https://example.com/fast")
	fast.LoadTimeMs = 4999
	slow := canonicalPage("https://example.com/slow")
	slow.LoadTimeMs = 5001
	result := runCrawlability(t, siteWith(fast, slow))

	issue, found := issueByID(result.Issues, "crawl-slow-pages")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/slow"}, issue.AffectedURLs)
}

func TestCrawlScore_HealthySiteScoresHigh(t *testing.T) {
	site := siteWith(
		canonicalPage("https://example.com/"),
		canonicalPage("https://example.com/a"),
		canonicalPage("https://example.com/b"),
	)
	result := runCrawlability(t, site)

	// success_rate 1.0 and full canonical coverage, no issues:
	// 70 + 20 - 0 = 90
	assert.InDelta(t, 90, result.Score, 0.001)
}

func TestCrawlScore_PenaltiesSubtract(t *testing.T) {
	broken := seomodel.NewPageData("https://example.com/404")
	broken.Status = 404
	site := siteWith(
		canonicalPage("https://example.com/"),
		broken,
	)
	result := runCrawlability(t, site)

	// success_rate 0.5 -> 35; canonical coverage 0.5 -> 10;
	// high 4xx penalty 10, medium missing-canonical penalty 0 (404 is not
	// a 200 page) => 35 + 10 - 10 = 35
	assert.InDelta(t, 35, result.Score, 0.001)
}

func TestCrawlability_EmptyCrawlScoresZero(t *testing.T) {
	result := runCrawlability(t, siteWith())

	assert.Zero(t, result.Score)
	assert.Empty(t, result.Issues)
}
