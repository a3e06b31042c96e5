package orchestrator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/engines"
	"github.com/Pavankona715/seo-audit-platform/internal/prioritize"
	"github.com/Pavankona715/seo-audit-platform/internal/scoring"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/internal/storage"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/timeutil"
)

/*
 Orchestrator is the sole authority over an audit's lifecycle.

 - It alone transitions audit status (pending -> crawling -> analyzing ->
   complete | failed) through the persistence sink.
 - Pipeline stages are pure over SiteData + result lists; persistence is
   a side-effectful sink invoked between stages, never inside engines.
 - A failed engine never fails the audit: scoring excludes it from the
   weighted mean. Only a crawl failure or a final persistence failure
   flips the audit to failed.
*/

// Crawler is the crawl-phase port.
type Crawler interface {
	Crawl(ctx context.Context, site *seomodel.SiteData) failure.ClassifiedError
}

type Orchestrator struct {
	crawler         Crawler
	engineSet       []engines.AuditEngine
	sink            storage.Sink
	crawlSoftLimit  time.Duration
	crawlHardLimit  time.Duration
	engineSoftLimit time.Duration
	engineHardLimit time.Duration
	backoff         timeutil.BackoffParam
	rng             *rand.Rand
}

func NewOrchestrator(crawler Crawler, engineSet []engines.AuditEngine, sink storage.Sink) *Orchestrator {
	return &Orchestrator{
		crawler:         crawler,
		engineSet:       engineSet,
		sink:            sink,
		crawlSoftLimit:  DefaultCrawlSoftLimit,
		crawlHardLimit:  DefaultCrawlHardLimit,
		engineSoftLimit: DefaultEngineSoftLimit,
		engineHardLimit: DefaultEngineHardLimit,
		backoff:         timeutil.NewBackoffParam(2*time.Second, 1.0, 30*time.Second),
		rng:             rand.New(rand.NewSource(1)),
	}
}

// WithCrawlLimits overrides the crawl stage's soft/hard time limits.
func (o *Orchestrator) WithCrawlLimits(soft, hard time.Duration) *Orchestrator {
	if soft > 0 {
		o.crawlSoftLimit = soft
	}
	if hard > 0 {
		o.crawlHardLimit = hard
	}
	return o
}

// WithEngineLimits overrides the per-engine soft/hard time limits.
func (o *Orchestrator) WithEngineLimits(soft, hard time.Duration) *Orchestrator {
	if soft > 0 {
		o.engineSoftLimit = soft
	}
	if hard > 0 {
		o.engineHardLimit = hard
	}
	return o
}

// RunAudit drives one audit end to end. The returned outcome carries
// whatever was produced even when the audit fails partway.
func (o *Orchestrator) RunAudit(ctx context.Context, site *seomodel.SiteData) (AuditOutcome, failure.ClassifiedError) {
	outcome := AuditOutcome{Site: site, StartedAt: time.Now()}

	// pending -> crawling
	o.updateStatus(site.AuditID, seomodel.AuditCrawling, map[string]any{
		"started_at": outcome.StartedAt,
	})

	if err := o.crawlWithLimits(ctx, site); err != nil {
		log.Error().Str("audit_id", site.AuditID).Err(err).Msg("crawl failed")
		o.updateStatus(site.AuditID, seomodel.AuditFailed, map[string]any{
			"error_message": err.Error(),
		})
		return outcome, &AuditError{Message: err.Error(), Retryable: false, Cause: ErrCauseCrawlFailed}
	}

	if perr := o.sink.PersistPages(site.AuditID, site.SiteID, site.Pages); perr != nil {
		log.Warn().Str("audit_id", site.AuditID).Err(perr).Msg("persisting pages failed")
	}

	// crawling -> analyzing
	o.updateStatus(site.AuditID, seomodel.AuditAnalyzing, map[string]any{
		"pages_crawled": len(site.Pages),
	})

	outcome.EngineResults = o.runEngines(ctx, site)
	for _, result := range outcome.EngineResults {
		if perr := o.sink.PersistEngineResult(site.AuditID, result); perr != nil {
			log.Warn().Str("audit_id", site.AuditID).Str("engine", result.EngineName).Err(perr).Msg("persisting engine result failed")
		}
		site.PutPriorResult(result)
	}

	weights, monthlyTraffic := scoringSettings(site.Settings)
	scorer := scoring.NewScorer(weights, monthlyTraffic)
	outcome.Summary = scorer.Score(outcome.EngineResults, site)

	prioritizer := prioritize.NewPrioritizer(monthlyTraffic)
	outcome.Recommendations = prioritizer.Prioritize(outcome.AllIssues())

	outcome.CompletedAt = time.Now()

	final := storage.FinalResults{Summary: outcome.Summary, Recommendations: outcome.Recommendations}
	if perr := o.sink.PersistFinalResults(site.AuditID, final); perr != nil {
		o.updateStatus(site.AuditID, seomodel.AuditFailed, map[string]any{
			"error_message": perr.Error(),
		})
		return outcome, &AuditError{Message: perr.Error(), Retryable: perr.Severity() == failure.SeverityRecoverable, Cause: ErrCausePersistFailed}
	}

	o.updateStatus(site.AuditID, seomodel.AuditComplete, map[string]any{
		"overall_score":            outcome.Summary.OverallScore,
		"overall_grade":            string(outcome.Summary.OverallGrade),
		"confidence_score":         outcome.Summary.ConfidenceScore,
		"estimated_revenue_impact": outcome.Summary.EstimatedRevenueImpact,
		"issues_found":             outcome.Summary.IssuesFound,
		"critical_issues":          outcome.Summary.CriticalIssues,
		"completed_at":             outcome.CompletedAt,
		"duration_seconds":         outcome.DurationSeconds(),
	})

	return outcome, nil
}

// crawlWithLimits bounds the crawl stage the same way engines are
// bounded: a hard outer deadline and a soft inner one. On the soft
// deadline the crawler observes the cancellation and returns the pages it
// has already collected, with crawl stats stamped.
func (o *Orchestrator) crawlWithLimits(ctx context.Context, site *seomodel.SiteData) failure.ClassifiedError {
	hardCtx, hardCancel := context.WithTimeout(ctx, o.crawlHardLimit)
	defer hardCancel()
	softCtx, softCancel := context.WithTimeout(hardCtx, o.crawlSoftLimit)
	defer softCancel()

	return o.crawler.Crawl(softCtx, site)
}

// runEngines fans the engine set out in parallel, each under its own soft
// time limit and retry budget. Results come back in engine-set order so
// repeated audits are deterministic.
func (o *Orchestrator) runEngines(ctx context.Context, site *seomodel.SiteData) []seomodel.AuditResult {
	results := make([]seomodel.AuditResult, len(o.engineSet))

	var wg sync.WaitGroup
	for i, engine := range o.engineSet {
		wg.Add(1)
		go func(i int, engine engines.AuditEngine) {
			defer wg.Done()
			results[i] = o.runEngineWithRetry(ctx, engine, site)
		}(i, engine)
	}
	wg.Wait()

	return results
}

// runEngineWithRetry executes one engine up to 1+engineRetries times with
// linear backoff between attempts, the whole budget bounded by the hard
// time limit. A failed result on the last attempt is accepted as the
// engine's final answer.
func (o *Orchestrator) runEngineWithRetry(ctx context.Context, engine engines.AuditEngine, site *seomodel.SiteData) seomodel.AuditResult {
	hardCtx, hardCancel := context.WithTimeout(ctx, o.engineHardLimit)
	defer hardCancel()

	var result seomodel.AuditResult
	for attempt := 1; attempt <= 1+engineRetries; attempt++ {
		engineCtx, cancel := context.WithTimeout(hardCtx, o.engineSoftLimit)
		result = engines.Execute(engineCtx, engine, site)
		cancel()

		if result.Status != seomodel.StatusFailed {
			return result
		}
		if hardCtx.Err() != nil || attempt == 1+engineRetries {
			break
		}
		delay := timeutil.LinearBackoffDelay(attempt, 0, *o.rng, o.backoff)
		log.Warn().Str("engine", engine.Name()).Int("attempt", attempt).Dur("backoff", delay).Msg("engine failed, retrying")
		time.Sleep(delay)
	}
	return result
}

func (o *Orchestrator) updateStatus(auditID string, status seomodel.AuditStatus, fields map[string]any) {
	if err := o.sink.UpdateAuditStatus(auditID, status, fields); err != nil {
		log.Warn().Str("audit_id", auditID).Str("status", string(status)).Err(err).Msg("status update failed")
	}
}

// scoringSettings resolves the category weights and monthly traffic from
// the audit settings, falling back to the documented defaults.
func scoringSettings(settings map[string]any) (map[seomodel.Category]float64, float64) {
	weights := scoring.DefaultCategoryWeights()
	if raw, ok := settings["category_weights"].(map[string]float64); ok && len(raw) > 0 {
		weights = make(map[seomodel.Category]float64, len(raw))
		for k, v := range raw {
			weights[seomodel.Category(k)] = v
		}
	}

	monthlyTraffic := float64(scoring.DefaultMonthlyTraffic)
	switch v := settings["monthly_traffic"].(type) {
	case int:
		monthlyTraffic = float64(v)
	case int64:
		monthlyTraffic = float64(v)
	case float64:
		monthlyTraffic = v
	}

	return weights, monthlyTraffic
}
