package engines

import (
	"context"
	"sort"
	"strings"

	"github.com/Pavankona715/seo-audit-platform/internal/ruleengine"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

// onPageTotalChecks is the number of distinct checks this engine runs:
// the nine declarative rules plus duplicate-title, duplicate-meta-
// description and missing-alt-text.
const onPageTotalChecks = 12

// OnPageEngine audits per-page content quality over 200-OK HTML pages:
// titles, meta descriptions, heading structure, content depth, URL shape,
// image alt text, and cross-page duplication.
type OnPageEngine struct {
	rules []seomodel.Rule
}

func NewOnPageEngine(registry *Registry) *OnPageEngine {
	return &OnPageEngine{rules: registry.ByCategory(seomodel.CategoryOnPage)}
}

func (e *OnPageEngine) Name() string {
	return "onpage"
}

func (e *OnPageEngine) Category() seomodel.Category {
	return seomodel.CategoryOnPage
}

func (e *OnPageEngine) Run(ctx context.Context, site *seomodel.SiteData) (seomodel.AuditResult, failure.ClassifiedError) {
	pages := htmlOKPages(site.Pages)
	total := len(pages)

	var issues []seomodel.Issue

	// Declarative per-page rules.
	affected := make(map[string][]string, len(e.rules))
	for _, page := range pages {
		fields := PageFields(page)
		for _, rule := range e.rules {
			if ruleengine.Evaluate(rule, fields) {
				affected[rule.ID] = append(affected[rule.ID], page.URL)
			}
		}
	}
	for _, rule := range e.rules {
		urls := affected[rule.ID]
		if len(urls) == 0 {
			continue
		}
		issues = append(issues, issueFromRule(rule, urls, len(urls), total))
	}

	// Population-level checks: exact-string duplicate titles and meta
	// descriptions across the crawled corpus.
	if urls := duplicateValues(pages, func(p seomodel.PageData) string { return p.Meta["title"] }); len(urls) > 0 {
		rule := duplicateTitleRule()
		issues = append(issues, issueFromRule(rule, urls, len(urls), total))
	}
	if urls := duplicateValues(pages, func(p seomodel.PageData) string { return p.Meta["description"] }); len(urls) > 0 {
		rule := duplicateMetaDescriptionRule()
		issues = append(issues, issueFromRule(rule, urls, len(urls), total))
	}

	// Image alt coverage needs per-image iteration, outside the condition
	// language.
	if urls := pagesWithMissingAlt(pages); len(urls) > 0 {
		rule := missingAltRule()
		issues = append(issues, issueFromRule(rule, urls, len(urls), total))
	}

	if issues == nil {
		issues = []seomodel.Issue{}
	}

	return seomodel.AuditResult{
		Status:        seomodel.StatusSuccess,
		Score:         EngineScore(issues, total, onPageTotalChecks),
		Issues:        issues,
		PagesAnalyzed: total,
		Metadata:      map[string]any{"total_pages": total},
	}, nil
}

// htmlOKPages filters to the 200-OK HTML pages the on-page checks apply to.
func htmlOKPages(pages []seomodel.PageData) []seomodel.PageData {
	var out []seomodel.PageData
	for _, page := range pages {
		if page.Status != 200 {
			continue
		}
		if page.ContentType != "" && !strings.Contains(strings.ToLower(page.ContentType), "html") {
			continue
		}
		out = append(out, page)
	}
	return out
}

// duplicateValues returns the URLs of every page whose extracted value
// collides with at least one other page's. All colliding pages are
// affected, including the first.
func duplicateValues(pages []seomodel.PageData, value func(seomodel.PageData) string) []string {
	byValue := make(map[string][]string)
	for _, page := range pages {
		v := value(page)
		if v == "" {
			continue
		}
		byValue[v] = append(byValue[v], page.URL)
	}
	var urls []string
	for _, group := range byValue {
		if len(group) > 1 {
			urls = append(urls, group...)
		}
	}
	// Map iteration order varies; sort so repeated runs emit identical
	// issues.
	sort.Strings(urls)
	return urls
}

func pagesWithMissingAlt(pages []seomodel.PageData) []string {
	var urls []string
	for _, page := range pages {
		for _, img := range page.Images {
			if img.Alt == "" {
				urls = append(urls, page.URL)
				break
			}
		}
	}
	return urls
}

func duplicateTitleRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "onpage-duplicate-title", Name: "Duplicate page titles",
		Description:     "Multiple pages share the same title, so search engines cannot tell them apart.",
		Category:        seomodel.CategoryOnPage, Severity: seomodel.SeverityHigh,
		BaseImpactScore: 65, BaseEffortScore: 4,
		Recommendation:   "Give every page a unique title describing its distinct content.",
		DocumentationURL: "https://developers.google.com/search/docs/appearance/title-link",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}

func duplicateMetaDescriptionRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "onpage-duplicate-meta-description", Name: "Duplicate meta descriptions",
		Description:     "Multiple pages share the same meta description.",
		Category:        seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
		BaseImpactScore: 45, BaseEffortScore: 4,
		Recommendation:   "Write a distinct meta description per page.",
		DocumentationURL: "https://developers.google.com/search/docs/appearance/snippet",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}

func missingAltRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "onpage-missing-alt-text", Name: "Images missing alt text",
		Description:     "Images without alt attributes are invisible to image search and screen readers.",
		Category:        seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
		BaseImpactScore: 40, BaseEffortScore: 5,
		Recommendation:   "Add descriptive alt text to every content image.",
		DocumentationURL: "https://developers.google.com/search/docs/appearance/google-images",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}
