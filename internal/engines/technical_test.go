package engines

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

func runTechnical(t *testing.T, site *seomodel.SiteData, canonicalHost string) seomodel.AuditResult {
	t.Helper()
	engine := NewTechnicalEngine(DefaultRegistry(), canonicalHost)
	result, err := engine.Run(context.Background(), site)
	require.Nil(t, err)
	return result
}

func page200(url string) seomodel.PageData {
	page := seomodel.NewPageData(url)
	page.Status = 200
	page.ContentType = "text/html"
	return page
}

func TestTechnical_HTTPPagesFlaggedCritical(t *testing.T) {
	site := siteWith(
		page200("http://example.com/"),
		page200("https://example.com/"),
	)
	result := runTechnical(t, site, "")

	issue, found := issueByID(result.Issues, "tech-http-pages")
	require.True(t, found)
	assert.Equal(t, seomodel.SeverityCritical, issue.Severity)
	assert.GreaterOrEqual(t, issue.AffectedCount, 1)
	assert.Contains(t, issue.AffectedURLs, "http://example.com/")
}

func TestTechnical_MixedContent(t *testing.T) {
	clean := page200("https://example.com/clean")
	clean.HTML = `<img src="https://example.com/a.png">`
	mixed := page200("https://example.com/mixed")
	mixed.HTML = `<img SRC = "http://cdn.example.com/a.png">`
	site := siteWith(clean, mixed)

	result := runTechnical(t, site, "")

	issue, found := issueByID(result.Issues, "tech-mixed-content")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/mixed"}, issue.AffectedURLs)
}

func TestTechnical_RedirectChains(t *testing.T) {
	direct := page200("https://example.com/direct")
	direct.Meta["redirect_hops"] = "1"
	chained := page200("https://example.com/chained")
	chained.Meta["redirect_hops"] = "3"
	site := siteWith(direct, chained)

	result := runTechnical(t, site, "")

	issue, found := issueByID(result.Issues, "tech-redirect-chains")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/chained"}, issue.AffectedURLs, "a single hop is not a chain")
}

func TestTechnical_NoindexHeaderAndMeta(t *testing.T) {
	viaHeader := page200("https://example.com/h")
	viaHeader.Headers["X-ROBOTS-TAG"] = "NOINDEX, nofollow"
	viaMeta := page200("https://example.com/m")
	viaMeta.Meta["robots"] = "NoIndex"
	viaGooglebot := page200("https://example.com/g")
	viaGooglebot.Meta["googlebot"] = "noindex"
	site := siteWith(viaHeader, viaMeta, viaGooglebot)

	result := runTechnical(t, site, "")

	headerIssue, found := issueByID(result.Issues, "tech-xrobots-noindex")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/h"}, headerIssue.AffectedURLs, "header lookup is case-insensitive")

	metaIssue, found := issueByID(result.Issues, "tech-meta-noindex")
	require.True(t, found)
	assert.ElementsMatch(t, []string{"https://example.com/m", "https://example.com/g"}, metaIssue.AffectedURLs)
}

func TestTechnical_WWWConsistency(t *testing.T) {
	site := siteWith(
		page200("https://example.com/a"),
		page200("https://www.example.com/b"),
	)
	result := runTechnical(t, site, "")

	issue, found := issueByID(result.Issues, "tech-www-consistency")
	require.True(t, found)
	assert.Equal(t, 2, issue.AffectedCount)
}

func TestTechnical_WWWConsistencyWithCanonicalHost(t *testing.T) {
	site := siteWith(
		page200("https://example.com/a"),
		page200("https://www.example.com/b"),
	)
	result := runTechnical(t, site, "example.com")

	issue, found := issueByID(result.Issues, "tech-www-consistency")
	require.True(t, found)
	assert.Equal(t, []string{"https://www.example.com/b"}, issue.AffectedURLs, "only off-canonical pages flag")
}

func TestTechnical_MissingRobotsTxt(t *testing.T) {
	site := siteWith(page200("https://example.com/"))
	site.RobotsTxt = ""
	result := runTechnical(t, site, "")

	_, found := issueByID(result.Issues, "tech-missing-robots-txt")
	assert.True(t, found)

	site.RobotsTxt = "User-agent: *\nAllow: /\n"
	result = runTechnical(t, site, "")
	_, found = issueByID(result.Issues, "tech-missing-robots-txt")
	assert.False(t, found)
}

func TestTechnical_PaginationRel(t *testing.T) {
	bare := page200("https://example.com/blog?page=2")
	hinted := page200("https://example.com/blog/page/3")
	hinted.Meta["rel_next"] = "true"
	plain := page200("https://example.com/about")
	site := siteWith(bare, hinted, plain)

	result := runTechnical(t, site, "")

	issue, found := issueByID(result.Issues, "tech-missing-pagination-rel")
	require.True(t, found)
	assert.Equal(t, []string{"https://example.com/blog?page=2"}, issue.AffectedURLs)
}

func TestTechnical_HSTSSample(t *testing.T) {
	var pages []seomodel.PageData
	for i := 0; i < 10; i++ {
		page := page200("https://example.com/p" + strconv.Itoa(i))
		if i < 3 {
			page.Headers["Strict-Transport-Security"] = "max-age=31536000"
		}
		pages = append(pages, page)
	}
	result := runTechnical(t, siteWith(pages...), "")

	issue, found := issueByID(result.Issues, "tech-missing-hsts")
	require.True(t, found, "7 of 10 sampled pages lack HSTS")
	assert.Equal(t, 7, issue.AffectedCount)
}

func TestTechnical_HSTSMajorityPresentNotFlagged(t *testing.T) {
	var pages []seomodel.PageData
	for i := 0; i < 10; i++ {
		page := page200("https://example.com/p" + strconv.Itoa(i))
		if i < 6 {
			page.Headers["Strict-Transport-Security"] = "max-age=31536000"
		}
		pages = append(pages, page)
	}
	result := runTechnical(t, siteWith(pages...), "")

	_, found := issueByID(result.Issues, "tech-missing-hsts")
	assert.False(t, found, "4 of 10 missing is not a majority")
}
