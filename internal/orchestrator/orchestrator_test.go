package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavankona715/seo-audit-platform/internal/engines"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/internal/storage"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/timeutil"
)

// timeutilBackoffForTest keeps engine-retry sleeps negligible.
func timeutilBackoffForTest() timeutil.BackoffParam {
	return timeutil.NewBackoffParam(time.Millisecond, 1.0, time.Millisecond)
}

type stubCrawler struct {
	fail  bool
	pages int
}

type crawlFailure struct{}

func (crawlFailure) Error() string              { return "network unreachable" }
func (crawlFailure) Severity() failure.Severity { return failure.SeverityFatal }

func (c *stubCrawler) Crawl(ctx context.Context, site *seomodel.SiteData) failure.ClassifiedError {
	if c.fail {
		return crawlFailure{}
	}
	for i := 0; i < c.pages; i++ {
		page := seomodel.NewPageData("https://example.com/p")
		page.Status = 200
		page.CanonicalURL = page.URL
		site.Pages = append(site.Pages, page)
	}
	site.CrawlStats = seomodel.CrawlStats{TotalCrawled: c.pages}
	return nil
}

type scriptedEngine struct {
	name     string
	category seomodel.Category
	results  []seomodel.AuditResult
	errs     []failure.ClassifiedError
	calls    int
}

func (e *scriptedEngine) Name() string                { return e.name }
func (e *scriptedEngine) Category() seomodel.Category { return e.category }
func (e *scriptedEngine) Run(ctx context.Context, site *seomodel.SiteData) (seomodel.AuditResult, failure.ClassifiedError) {
	i := e.calls
	if i >= len(e.results) {
		i = len(e.results) - 1
	}
	e.calls++
	return e.results[i], e.errs[i]
}

func successEngine(name string, category seomodel.Category, score float64) *scriptedEngine {
	return &scriptedEngine{
		name: name, category: category,
		results: []seomodel.AuditResult{{Score: score, Status: seomodel.StatusSuccess}},
		errs:    []failure.ClassifiedError{nil},
	}
}

func failingEngine(name string, category seomodel.Category) *scriptedEngine {
	fail := seomodel.AuditResult{}
	return &scriptedEngine{
		name: name, category: category,
		results: []seomodel.AuditResult{fail, fail, fail},
		errs:    []failure.ClassifiedError{crawlFailure{}, crawlFailure{}, crawlFailure{}},
	}
}

func newOrchestrator(crawler Crawler, sink storage.Sink, engineSet ...engines.AuditEngine) *Orchestrator {
	o := NewOrchestrator(crawler, engineSet, sink)
	o.backoff = timeutilBackoffForTest()
	return o
}

func newAuditSite() *seomodel.SiteData {
	site := seomodel.NewSiteData("audit-1", "site-1", "example.com", "https://example.com/", map[string]any{})
	return &site
}

func TestRunAudit_HappyPathTransitions(t *testing.T) {
	sink := storage.NewMemorySink()
	o := newOrchestrator(&stubCrawler{pages: 5}, sink,
		successEngine("crawlability", seomodel.CategoryCrawlability, 90),
		successEngine("technical", seomodel.CategoryTechnical, 70),
	)

	outcome, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err)

	assert.Equal(t, []seomodel.AuditStatus{
		seomodel.AuditCrawling,
		seomodel.AuditAnalyzing,
		seomodel.AuditComplete,
	}, sink.Statuses["audit-1"])

	require.Len(t, outcome.EngineResults, 2)
	assert.Equal(t, "crawlability", outcome.EngineResults[0].EngineName)
	assert.Equal(t, "technical", outcome.EngineResults[1].EngineName)

	// (90*0.15 + 70*0.20) / 0.35
	assert.InDelta(t, (90*0.15+70*0.20)/0.35, outcome.Summary.OverallScore, 0.001)

	fields := sink.StatusFields["audit-1"]
	assert.Equal(t, 5, fields["pages_crawled"])
	assert.Contains(t, fields, "overall_score")
	assert.Contains(t, fields, "duration_seconds")

	assert.Len(t, sink.Pages["audit-1"], 5)
	assert.Len(t, sink.EngineResults["audit-1"], 2)
	_, persisted := sink.Finals["audit-1"]
	assert.True(t, persisted)
}

// slowCrawler blocks until its context is cancelled, then returns the
// pages it "already collected", the way the real crawler behaves on a
// soft time limit.
type slowCrawler struct {
	pages int
}

func (c *slowCrawler) Crawl(ctx context.Context, site *seomodel.SiteData) failure.ClassifiedError {
	<-ctx.Done()
	for i := 0; i < c.pages; i++ {
		page := seomodel.NewPageData("https://example.com/partial")
		page.Status = 200
		site.Pages = append(site.Pages, page)
	}
	site.CrawlStats = seomodel.CrawlStats{TotalCrawled: c.pages}
	return nil
}

func TestRunAudit_CrawlSoftLimitYieldsPartialAudit(t *testing.T) {
	sink := storage.NewMemorySink()
	o := newOrchestrator(&slowCrawler{pages: 2}, sink,
		successEngine("technical", seomodel.CategoryTechnical, 80),
	)
	o.WithCrawlLimits(10*time.Millisecond, 100*time.Millisecond)

	outcome, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err, "a soft-limited crawl completes the audit with partial pages")

	statuses := sink.Statuses["audit-1"]
	assert.Equal(t, seomodel.AuditComplete, statuses[len(statuses)-1])
	assert.Len(t, outcome.Site.Pages, 2)
	assert.Len(t, sink.Pages["audit-1"], 2)
}

func TestRunAudit_CrawlFailureFailsAudit(t *testing.T) {
	sink := storage.NewMemorySink()
	o := newOrchestrator(&stubCrawler{fail: true}, sink,
		successEngine("technical", seomodel.CategoryTechnical, 70),
	)

	_, err := o.RunAudit(context.Background(), newAuditSite())
	require.NotNil(t, err)

	statuses := sink.Statuses["audit-1"]
	assert.Equal(t, seomodel.AuditFailed, statuses[len(statuses)-1])
	assert.Equal(t, "network unreachable", sink.StatusFields["audit-1"]["error_message"])
}

func TestRunAudit_EngineFailureDoesNotFailAudit(t *testing.T) {
	sink := storage.NewMemorySink()
	o := newOrchestrator(&stubCrawler{pages: 3}, sink,
		successEngine("technical", seomodel.CategoryTechnical, 80),
		failingEngine("onpage", seomodel.CategoryOnPage),
	)

	outcome, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err)

	statuses := sink.Statuses["audit-1"]
	assert.Equal(t, seomodel.AuditComplete, statuses[len(statuses)-1])

	require.Len(t, outcome.EngineResults, 2)
	assert.Equal(t, seomodel.StatusFailed, outcome.EngineResults[1].Status)
	// weighted mean ignores the failed engine entirely
	assert.InDelta(t, 80, outcome.Summary.OverallScore, 0.001)
}

func TestRunAudit_FailedEngineRetriedTwice(t *testing.T) {
	sink := storage.NewMemorySink()
	engine := failingEngine("onpage", seomodel.CategoryOnPage)
	o := newOrchestrator(&stubCrawler{pages: 1}, sink, engine)

	_, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err)

	assert.Equal(t, 3, engine.calls, "initial run plus two retries")
}

func TestRunAudit_RetrySucceedsOnSecondAttempt(t *testing.T) {
	sink := storage.NewMemorySink()
	engine := &scriptedEngine{
		name: "technical", category: seomodel.CategoryTechnical,
		results: []seomodel.AuditResult{{}, {Score: 88, Status: seomodel.StatusSuccess}},
		errs:    []failure.ClassifiedError{crawlFailure{}, nil},
	}
	o := newOrchestrator(&stubCrawler{pages: 1}, sink, engine)

	outcome, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err)

	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, seomodel.StatusSuccess, outcome.EngineResults[0].Status)
	assert.InDelta(t, 88, outcome.EngineResults[0].Score, 0.001)
}

func TestRunAudit_RecommendationsComeFromIssues(t *testing.T) {
	issue := seomodel.NewIssue("tech-http-pages", "HTTP pages", "d",
		seomodel.SeverityCritical, seomodel.CategoryTechnical,
		[]string{"http://example.com/"}, 1, 85, 4, "move to https", "")
	engine := &scriptedEngine{
		name: "technical", category: seomodel.CategoryTechnical,
		results: []seomodel.AuditResult{{Score: 40, Status: seomodel.StatusSuccess, Issues: []seomodel.Issue{issue}}},
		errs:    []failure.ClassifiedError{nil},
	}
	sink := storage.NewMemorySink()
	o := newOrchestrator(&stubCrawler{pages: 1}, sink, engine)

	outcome, err := o.RunAudit(context.Background(), newAuditSite())
	require.Nil(t, err)

	require.Len(t, outcome.Recommendations, 1)
	assert.Equal(t, "tech-http-pages", outcome.Recommendations[0].RuleID)
	assert.Equal(t, 1, outcome.Recommendations[0].Rank)
	assert.Equal(t, 1, outcome.Summary.CriticalIssues)
}
