package engines

import (
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// Registry is the immutable rule registry, loaded once at process start
// and keyed by rule id: rule dispatch via data, not code. It is never
// mutated inside a running audit.
type Registry struct {
	byID    map[string]seomodel.Rule
	ordered []seomodel.Rule
}

func NewRegistry(rules []seomodel.Rule) *Registry {
	byID := make(map[string]seomodel.Rule, len(rules))
	ordered := make([]seomodel.Rule, 0, len(rules))
	for _, rule := range rules {
		if _, dup := byID[rule.ID]; dup {
			continue
		}
		byID[rule.ID] = rule
		ordered = append(ordered, rule)
	}
	return &Registry{byID: byID, ordered: ordered}
}

// DefaultRegistry loads the built-in on-page and technical rule set.
func DefaultRegistry() *Registry {
	rules := append(onPageRules(), technicalRules()...)
	return NewRegistry(rules)
}

func (r *Registry) Get(id string) (seomodel.Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// ByCategory returns the enabled rules of one category, in load order.
func (r *Registry) ByCategory(category seomodel.Category) []seomodel.Rule {
	var out []seomodel.Rule
	for _, rule := range r.ordered {
		if rule.Category == category && rule.Enabled {
			out = append(out, rule)
		}
	}
	return out
}

func onPageRules() []seomodel.Rule {
	return []seomodel.Rule{
		{
			ID: "onpage-missing-title", Name: "Missing page title",
			Description: "Pages without a <title> tag cannot present a headline in search results.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityCritical,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.title", Operator: seomodel.OpNotExists},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 90, BaseEffortScore: 2,
			Recommendation:   "Add a unique, descriptive <title> of 30-60 characters to every page.",
			DocumentationURL: "https://developers.google.com/search/docs/appearance/title-link",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-short-title", Name: "Title too short",
			Description: "Titles under 30 characters waste result-page real estate and rarely describe the page.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.title", Operator: seomodel.OpExists},
				{FieldPath: "meta.title", Transform: seomodel.TransformLen, Operator: seomodel.OpLt, Value: 30},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 50, BaseEffortScore: 2,
			Recommendation:   "Expand the title to 30-60 characters covering the page's primary topic.",
			DocumentationURL: "https://developers.google.com/search/docs/appearance/title-link",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-long-title", Name: "Title too long",
			Description: "Titles over 60 characters are truncated in search results.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.title", Transform: seomodel.TransformLen, Operator: seomodel.OpGt, Value: 60},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 45, BaseEffortScore: 2,
			Recommendation:   "Shorten the title to at most 60 characters, front-loading the key phrase.",
			DocumentationURL: "https://developers.google.com/search/docs/appearance/title-link",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-missing-meta-description", Name: "Missing meta description",
			Description: "Without a meta description, search engines synthesize a snippet you do not control.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityHigh,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.description", Operator: seomodel.OpNotExists},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 70, BaseEffortScore: 3,
			Recommendation:   "Write a 70-160 character meta description summarizing the page.",
			DocumentationURL: "https://developers.google.com/search/docs/appearance/snippet",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-missing-h1", Name: "Missing H1 heading",
			Description: "Pages without an H1 lose their strongest on-page topical signal.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityHigh,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.h1_count", Transform: seomodel.TransformInt, Operator: seomodel.OpEq, Value: 0},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 65, BaseEffortScore: 2,
			Recommendation:   "Add exactly one H1 heading stating the page's topic.",
			DocumentationURL: "https://developers.google.com/search/docs/fundamentals/seo-starter-guide",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-multiple-h1", Name: "Multiple H1 headings",
			Description: "More than one H1 dilutes the page's primary topic signal.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.h1_count", Transform: seomodel.TransformInt, Operator: seomodel.OpGt, Value: 1},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 40, BaseEffortScore: 3,
			Recommendation:   "Keep a single H1 and demote the others to H2/H3.",
			DocumentationURL: "https://developers.google.com/search/docs/fundamentals/seo-starter-guide",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-thin-content", Name: "Thin content",
			Description: "Pages under 300 words rarely satisfy a search intent on their own.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityMedium,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.word_count", Transform: seomodel.TransformInt, Operator: seomodel.OpLt, Value: 300},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 55, BaseEffortScore: 6,
			Recommendation:   "Expand the page to at least 300 words of substantive content, or consolidate it into a stronger page.",
			DocumentationURL: "https://developers.google.com/search/docs/fundamentals/creating-helpful-content",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-long-urls", Name: "Overly long or parameter-heavy URL",
			Description: "URLs beyond 115 characters or with more than 3 query parameters are hard to crawl, share and dedupe.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityLow,
			Conditions: []seomodel.Condition{
				{FieldPath: "url", Transform: seomodel.TransformLen, Operator: seomodel.OpGt, Value: 115},
				{FieldPath: "query_param_count", Operator: seomodel.OpGt, Value: 3},
			},
			Combinator: seomodel.CombinatorOR, BaseImpactScore: 30, BaseEffortScore: 7,
			Recommendation:   "Shorten URLs and move tracking parameters out of canonical paths.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/url-structure",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "onpage-uppercase-urls", Name: "Uppercase characters in URL path",
			Description: "Mixed-case paths create duplicate-URL variants on case-sensitive servers.",
			Category:    seomodel.CategoryOnPage, Severity: seomodel.SeverityLow,
			Conditions: []seomodel.Condition{
				{FieldPath: "path", Operator: seomodel.OpMatches, Value: "[A-Z]"},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 25, BaseEffortScore: 5,
			Recommendation:   "Serve lowercase paths and 301-redirect the uppercase variants.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/url-structure",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
	}
}

func technicalRules() []seomodel.Rule {
	return []seomodel.Rule{
		{
			ID: "tech-http-pages", Name: "Pages served over HTTP",
			Description: "Pages reachable over plain HTTP are flagged insecure by browsers and ranked down.",
			Category:    seomodel.CategoryTechnical, Severity: seomodel.SeverityCritical,
			Conditions: []seomodel.Condition{
				{FieldPath: "status", Operator: seomodel.OpEq, Value: 200},
				{FieldPath: "url", Operator: seomodel.OpStartsWith, Value: "http://"},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 85, BaseEffortScore: 4,
			Recommendation:   "Serve all pages over HTTPS and 301-redirect the HTTP variants.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/site-structure#https",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "tech-mixed-content", Name: "Mixed content on HTTPS pages",
			Description: "HTTPS pages loading http:// subresources trigger browser warnings and block rendering.",
			Category:    seomodel.CategoryTechnical, Severity: seomodel.SeverityHigh,
			Conditions: []seomodel.Condition{
				{FieldPath: "url", Operator: seomodel.OpStartsWith, Value: "https://"},
				{FieldPath: "html", Operator: seomodel.OpMatches, Value: `(?i)\b(src|href|action)\s*=\s*["']http://`},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 70, BaseEffortScore: 4,
			Recommendation:   "Rewrite subresource references to https:// or protocol-relative URLs.",
			DocumentationURL: "https://web.dev/articles/what-is-mixed-content",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "tech-redirect-chains", Name: "Redirect chains",
			Description: "URLs reached through more than one redirect hop waste crawl budget and dilute link equity.",
			Category:    seomodel.CategoryTechnical, Severity: seomodel.SeverityMedium,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.redirect_hops", Transform: seomodel.TransformInt, Operator: seomodel.OpGt, Value: 1},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 50, BaseEffortScore: 3,
			Recommendation:   "Point internal links and redirects directly at the final URL.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/301-redirects",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "tech-xrobots-noindex", Name: "X-Robots-Tag noindex header",
			Description: "Pages served with an X-Robots-Tag: noindex header are excluded from the index.",
			Category:    seomodel.CategoryTechnical, Severity: seomodel.SeverityHigh,
			Conditions: []seomodel.Condition{
				{FieldPath: "headers.x-robots-tag", Transform: seomodel.TransformLower, Operator: seomodel.OpContains, Value: "noindex"},
			},
			Combinator: seomodel.CombinatorAND, BaseImpactScore: 75, BaseEffortScore: 2,
			Recommendation:   "Remove the noindex directive from pages that should rank.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/block-indexing",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
		{
			ID: "tech-meta-noindex", Name: "Meta robots noindex",
			Description: "Pages carrying a robots/googlebot noindex meta tag are excluded from the index.",
			Category:    seomodel.CategoryTechnical, Severity: seomodel.SeverityHigh,
			Conditions: []seomodel.Condition{
				{FieldPath: "meta.robots", Transform: seomodel.TransformLower, Operator: seomodel.OpContains, Value: "noindex"},
				{FieldPath: "meta.googlebot", Transform: seomodel.TransformLower, Operator: seomodel.OpContains, Value: "noindex"},
			},
			Combinator: seomodel.CombinatorOR, BaseImpactScore: 75, BaseEffortScore: 2,
			Recommendation:   "Remove the noindex meta tag from pages that should rank.",
			DocumentationURL: "https://developers.google.com/search/docs/crawling-indexing/block-indexing",
			Enabled:          true, Scope: seomodel.ScopePage,
		},
	}
}
