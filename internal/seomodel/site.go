package seomodel

// SiteData is the audit-wide state threaded through the pipeline: owned by
// one audit, mutated only by the Crawler, read-only to every Analysis
// Engine once the crawl phase has completed.
type SiteData struct {
	AuditID     string
	SiteID      string
	RootDomain  string
	RootURL     string
	Pages       []PageData
	SitemapURLs []string
	RobotsTxt   string
	CrawlStats  CrawlStats
	Settings    map[string]any
}

// NewSiteData returns a SiteData seeded for a fresh audit.
func NewSiteData(auditID, siteID, rootDomain, rootURL string, settings map[string]any) SiteData {
	if settings == nil {
		settings = map[string]any{}
	}
	return SiteData{
		AuditID:     auditID,
		SiteID:      siteID,
		RootDomain:  rootDomain,
		RootURL:     rootURL,
		Pages:       []PageData{},
		SitemapURLs: []string{},
		Settings:    settings,
	}
}

// priorResultsSettingsKey is the well-known Settings slot where one
// engine's AuditResult is stashed so later engines and stages can read
// earlier findings.
const priorResultsSettingsKey = "prior_engine_results"

// PutPriorResult records result under its engine name for later stages.
func (s *SiteData) PutPriorResult(result AuditResult) {
	raw, ok := s.Settings[priorResultsSettingsKey]
	if !ok {
		raw = map[string]AuditResult{}
	}
	m, ok := raw.(map[string]AuditResult)
	if !ok {
		m = map[string]AuditResult{}
	}
	m[result.EngineName] = result
	s.Settings[priorResultsSettingsKey] = m
}

// PriorResult retrieves a previously recorded engine result by name.
func (s SiteData) PriorResult(engineName string) (AuditResult, bool) {
	raw, ok := s.Settings[priorResultsSettingsKey]
	if !ok {
		return AuditResult{}, false
	}
	m, ok := raw.(map[string]AuditResult)
	if !ok {
		return AuditResult{}, false
	}
	r, ok := m[engineName]
	return r, ok
}
