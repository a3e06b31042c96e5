package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/config"
	"github.com/Pavankona715/seo-audit-platform/internal/crawler"
	"github.com/Pavankona715/seo-audit-platform/internal/engines"
	"github.com/Pavankona715/seo-audit-platform/internal/extractor"
	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/internal/orchestrator"
	"github.com/Pavankona715/seo-audit-platform/internal/pagefetch"
	"github.com/Pavankona715/seo-audit-platform/internal/ratelimit"
	"github.com/Pavankona715/seo-audit-platform/internal/robotsgate"
	robotscache "github.com/Pavankona715/seo-audit-platform/internal/robotsgate/cache"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/internal/sitemap"
	"github.com/Pavankona715/seo-audit-platform/internal/storage"
	"github.com/Pavankona715/seo-audit-platform/pkg/retry"
	"github.com/Pavankona715/seo-audit-platform/pkg/timeutil"
)

// printedRecommendations bounds the remediation plan echoed to stdout;
// the full plan is in the audit database.
const printedRecommendations = 10

// runAudit wires the pipeline and drives one audit to completion.
func runAudit(ctx context.Context, cfg config.Config) error {
	recorder := metadata.NewRecorder("cli-audit-worker")

	robotsFetcher := robotsgate.NewRobotsFetcher(&recorder, cfg.UserAgent(), robotscache.NewMemoryCache())
	robot := robotsgate.NewRobot(robotsFetcher, &recorder)

	httpFetcher := pagefetch.NewHTTPFetcher(cfg.InsecureSkipVerify())
	renderFetcher := pagefetch.NewRenderFetcher()
	defer renderFetcher.Close()
	fetcher := pagefetch.NewFetcher(httpFetcher, renderFetcher)

	capacity := cfg.RateLimitRPS()
	if capacity < 1 {
		capacity = 1
	}
	limiter := ratelimit.New(cfg.RateLimitRPS(), capacity)

	domExtractor := extractor.NewDomExtractor(&recorder)

	retryParam := retry.NewRetryParam(
		cfg.BackoffInitialDuration(),
		0,
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(cfg.BackoffInitialDuration(), cfg.BackoffMultiplier(), cfg.BackoffMaxDuration()),
	)

	siteCrawler := crawler.NewCrawler(fetcher, robot, sitemap.NewDiscoverer(), limiter, &domExtractor, &recorder, retryParam)

	registry := engines.DefaultRegistry()
	engineSet := []engines.AuditEngine{
		engines.NewCrawlabilityEngine(),
		engines.NewTechnicalEngine(registry, cfg.CanonicalHost()),
		engines.NewOnPageEngine(registry),
	}

	sink, sinkErr := storage.NewBoltSink(cfg.OutputDir(), &recorder)
	if sinkErr != nil {
		return fmt.Errorf("opening audit database: %w", sinkErr)
	}
	defer sink.Close()

	root := cfg.RootURL()
	site := seomodel.NewSiteData(
		uuid.NewString(),
		uuid.NewString(),
		strings.ToLower(root.Hostname()),
		root.String(),
		cfg.Settings(),
	)

	log.Info().Str("audit_id", site.AuditID).Str("url", site.RootURL).Msg("starting audit")

	orch := orchestrator.NewOrchestrator(siteCrawler, engineSet, sink)
	outcome, auditErr := orch.RunAudit(ctx, &site)
	if auditErr != nil {
		return fmt.Errorf("audit failed: %w", auditErr)
	}

	printOutcome(outcome)
	return nil
}

func printOutcome(outcome orchestrator.AuditOutcome) {
	stats := outcome.Site.CrawlStats
	fmt.Printf("\nAudit %s complete in %.1fs\n", outcome.Site.AuditID, outcome.DurationSeconds())
	fmt.Printf("Crawled %s pages (%s failed, %s skipped, %.1f pages/s)\n",
		humanize.Comma(int64(stats.TotalCrawled)),
		humanize.Comma(int64(stats.TotalFailed)),
		humanize.Comma(int64(stats.TotalSkipped)),
		stats.PagesPerSecond,
	)

	fmt.Printf("\nOverall score: %.1f (%s), confidence %.0f%%\n",
		outcome.Summary.OverallScore, outcome.Summary.OverallGrade, outcome.Summary.ConfidenceScore)
	fmt.Printf("Issues: %d found, %d critical\n", outcome.Summary.IssuesFound, outcome.Summary.CriticalIssues)
	fmt.Printf("Estimated monthly revenue impact: %s\n", humanize.CommafWithDigits(outcome.Summary.EstimatedRevenueImpact, 2))

	fmt.Println("\nCategory scores:")
	for _, result := range outcome.EngineResults {
		status := string(result.Status)
		fmt.Printf("  %-14s %6.1f (%s) [%s, %d pages, %dms]\n",
			result.Category, result.Score, result.Grade, status, result.PagesAnalyzed, result.ExecutionTimeMs)
	}

	if len(outcome.Recommendations) == 0 {
		fmt.Println("\nNo recommendations: nothing to fix.")
		return
	}

	fmt.Println("\nTop recommendations:")
	for _, rec := range outcome.Recommendations {
		if rec.Rank > printedRecommendations {
			break
		}
		fmt.Printf("  %2d. [%s effort, %s impact] %s (+%s visits/mo)\n",
			rec.Rank, rec.Effort, rec.Impact, rec.Title,
			humanize.Comma(int64(rec.EstimatedTrafficGain)),
		)
	}
}
