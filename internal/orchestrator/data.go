package orchestrator

import (
	"time"

	"github.com/Pavankona715/seo-audit-platform/internal/scoring"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// Default stage time limits: soft triggers graceful cancellation (the
// crawler returns its partial pages, engines return a failed result),
// hard abandons the stage outright.
const (
	DefaultCrawlSoftLimit  = 1800 * time.Second
	DefaultCrawlHardLimit  = 2400 * time.Second
	DefaultEngineSoftLimit = 1800 * time.Second
	DefaultEngineHardLimit = 2400 * time.Second

	// engineRetries is how many times a failed engine is re-run before
	// its failure is accepted.
	engineRetries = 2
)

// AuditOutcome is everything one completed audit produced.
type AuditOutcome struct {
	Site            *seomodel.SiteData
	EngineResults   []seomodel.AuditResult
	Summary         scoring.Summary
	Recommendations []seomodel.Recommendation
	StartedAt       time.Time
	CompletedAt     time.Time
}

// DurationSeconds is the wall-clock audit duration.
func (o AuditOutcome) DurationSeconds() float64 {
	return o.CompletedAt.Sub(o.StartedAt).Seconds()
}

// AllIssues flattens every non-failed engine's issues, in engine order.
func (o AuditOutcome) AllIssues() []seomodel.Issue {
	var issues []seomodel.Issue
	for _, result := range o.EngineResults {
		if result.Status == seomodel.StatusFailed {
			continue
		}
		issues = append(issues, result.Issues...)
	}
	return issues
}
