package engines

import (
	"context"
	"net/url"
	"strings"

	"github.com/Pavankona715/seo-audit-platform/internal/ruleengine"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

// technicalTotalChecks counts the five declarative rules plus pagination,
// www-consistency, missing-robots and HSTS.
const technicalTotalChecks = 9

// hstsSampleSize bounds the HSTS header sample.
const hstsSampleSize = 10

// paginationMarkers identify paginated URL shapes that should carry
// rel=next/prev link elements.
var paginationMarkers = []string{"/page/", "?page=", "&page=", "/p/", "?p="}

// TechnicalEngine audits protocol and indexability hygiene: HTTPS
// adoption, mixed content, redirect chains, noindex directives, host
// consistency, pagination hints, robots.txt presence and HSTS.
type TechnicalEngine struct {
	rules []seomodel.Rule
	// canonicalHost, when configured, is the single host the site should
	// serve from; www-consistency then flags only pages off that host.
	canonicalHost string
}

func NewTechnicalEngine(registry *Registry, canonicalHost string) *TechnicalEngine {
	return &TechnicalEngine{
		rules:         registry.ByCategory(seomodel.CategoryTechnical),
		canonicalHost: strings.ToLower(canonicalHost),
	}
}

func (e *TechnicalEngine) Name() string {
	return "technical"
}

func (e *TechnicalEngine) Category() seomodel.Category {
	return seomodel.CategoryTechnical
}

func (e *TechnicalEngine) Run(ctx context.Context, site *seomodel.SiteData) (seomodel.AuditResult, failure.ClassifiedError) {
	total := len(site.Pages)
	var issues []seomodel.Issue

	affected := make(map[string][]string, len(e.rules))
	for _, page := range site.Pages {
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

	if urls := pagesMissingPaginationRel(site.Pages); len(urls) > 0 {
		issues = append(issues, issueFromRule(missingPaginationRule(), urls, len(urls), total))
	}
	if urls := e.wwwInconsistentPages(site.Pages); len(urls) > 0 {
		issues = append(issues, issueFromRule(wwwConsistencyRule(), urls, len(urls), total))
	}
	if site.RobotsTxt == "" {
		rule := missingRobotsTxtRule()
		issues = append(issues, issueFromRule(rule, []string{site.RootURL}, 1, total))
	}
	if urls, flagged := hstsMissingSample(site.Pages); flagged {
		issues = append(issues, issueFromRule(missingHSTSRule(), urls, len(urls), total))
	}

	if issues == nil {
		issues = []seomodel.Issue{}
	}

	return seomodel.AuditResult{
		Status:        seomodel.StatusSuccess,
		Score:         EngineScore(issues, total, technicalTotalChecks),
		Issues:        issues,
		PagesAnalyzed: total,
		Metadata:      map[string]any{"total_pages": total},
	}, nil
}

// pagesMissingPaginationRel flags paginated URLs carrying neither
// rel=next nor rel=prev link elements.
func pagesMissingPaginationRel(pages []seomodel.PageData) []string {
	var urls []string
	for _, page := range pages {
		if page.Status != 200 {
			continue
		}
		lower := strings.ToLower(page.URL)
		paginated := false
		for _, marker := range paginationMarkers {
			if strings.Contains(lower, marker) {
				paginated = true
				break
			}
		}
		if !paginated {
			continue
		}
		if page.Meta["rel_next"] == "" && page.Meta["rel_prev"] == "" {
			urls = append(urls, page.URL)
		}
	}
	return urls
}

// wwwInconsistentPages detects a crawl that mixes www. and bare-host
// pages. With a configured canonical host, only pages off that host are
// flagged; without one, any mixture flags every page on both the www.
// and the bare host.
func (e *TechnicalEngine) wwwInconsistentPages(pages []seomodel.PageData) []string {
	hostOf := func(raw string) string {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return strings.ToLower(u.Hostname())
	}

	if e.canonicalHost != "" {
		var off []string
		for _, page := range pages {
			h := hostOf(page.URL)
			if h != "" && h != e.canonicalHost {
				off = append(off, page.URL)
			}
		}
		return off
	}

	var www, bare []string
	for _, page := range pages {
		h := hostOf(page.URL)
		if h == "" {
			continue
		}
		if strings.HasPrefix(h, "www.") {
			www = append(www, page.URL)
		} else {
			bare = append(bare, page.URL)
		}
	}
	if len(www) == 0 || len(bare) == 0 {
		return nil
	}
	return append(www, bare...)
}

// hstsMissingSample samples up to 10 HTTPS pages and reports whether more
// than half of them lack a Strict-Transport-Security header.
func hstsMissingSample(pages []seomodel.PageData) ([]string, bool) {
	var sampled, missing []string
	for _, page := range pages {
		if !strings.HasPrefix(page.URL, "https://") || page.Status != 200 {
			continue
		}
		sampled = append(sampled, page.URL)
		if _, ok := page.Header("Strict-Transport-Security"); !ok {
			missing = append(missing, page.URL)
		}
		if len(sampled) == hstsSampleSize {
			break
		}
	}
	if len(sampled) == 0 {
		return nil, false
	}
	return missing, float64(len(missing)) > 0.5*float64(len(sampled))
}

func missingPaginationRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "tech-missing-pagination-rel", Name: "Paginated pages without rel hints",
		Description:     "Paginated URLs lacking rel=next/prev link elements obscure series structure from crawlers.",
		Category:        seomodel.CategoryTechnical, Severity: seomodel.SeverityLow,
		BaseImpactScore: 25, BaseEffortScore: 3,
		Recommendation:   "Add <link rel=\"next\"> and <link rel=\"prev\"> to paginated series.",
		DocumentationURL: "https://developers.google.com/search/docs/specialty/ecommerce/pagination-and-incremental-page-loading",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}

func wwwConsistencyRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "tech-www-consistency", Name: "Mixed www and bare-host pages",
		Description:     "The crawl reached the site under both www. and bare hostnames, splitting link equity.",
		Category:        seomodel.CategoryTechnical, Severity: seomodel.SeverityMedium,
		BaseImpactScore: 50, BaseEffortScore: 3,
		Recommendation:   "Pick one host as canonical and 301-redirect the other.",
		DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/consolidate-duplicate-urls",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}

func missingRobotsTxtRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "tech-missing-robots-txt", Name: "Missing robots.txt",
		Description:     "The site serves no robots.txt, so crawl budget and sitemap discovery are uncontrolled.",
		Category:        seomodel.CategoryTechnical, Severity: seomodel.SeverityMedium,
		BaseImpactScore: 40, BaseEffortScore: 1,
		Recommendation:   "Publish a robots.txt naming the sitemap and any crawl exclusions.",
		DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/robots/intro",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}

func missingHSTSRule() seomodel.Rule {
	return seomodel.Rule{
		ID: "tech-missing-hsts", Name: "Missing HSTS header",
		Description:     "Most sampled HTTPS pages lack Strict-Transport-Security, leaving downgrade attacks open.",
		Category:        seomodel.CategoryTechnical, Severity: seomodel.SeverityLow,
		BaseImpactScore: 20, BaseEffortScore: 2,
		Recommendation:   "Send a Strict-Transport-Security header on every HTTPS response.",
		DocumentationURL: "https://developer.mozilla.org/docs/Web/HTTP/Headers/Strict-Transport-Security",
		Enabled:          true, Scope: seomodel.ScopeSite,
	}
}
