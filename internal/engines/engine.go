// Package engines holds the analysis engines: each one is a stateless,
// read-only pass over a frozen SiteData producing an AuditResult for a
// single category. The Execute wrapper owns timing and error capture so
// engine implementations stay pure.
package engines

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

// AuditEngine is one unit of analysis.
type AuditEngine interface {
	Name() string
	Category() seomodel.Category
	Run(ctx context.Context, site *seomodel.SiteData) (seomodel.AuditResult, failure.ClassifiedError)
}

// Execute times an engine run and converts any error or panic into a
// failed AuditResult with score 0 and grade F. Engines therefore never
// fail the audit; they fail their own result.
func Execute(ctx context.Context, engine AuditEngine, site *seomodel.SiteData) (result seomodel.AuditResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("engine", engine.Name()).Any("panic", r).Msg("engine panicked")
			result = seomodel.NewFailedResult(
				engine.Name(), site.AuditID, engine.Category(),
				fmt.Sprintf("panic: %v", r), time.Since(start),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		return seomodel.NewFailedResult(engine.Name(), site.AuditID, engine.Category(), err.Error(), time.Since(start))
	}

	runResult, err := engine.Run(ctx, site)
	if err != nil {
		log.Warn().Str("engine", engine.Name()).Err(err).Msg("engine failed")
		return seomodel.NewFailedResult(engine.Name(), site.AuditID, engine.Category(), err.Error(), time.Since(start))
	}

	runResult.EngineName = engine.Name()
	runResult.AuditID = site.AuditID
	runResult.Category = engine.Category()
	runResult.ExecutionTimeMs = time.Since(start).Milliseconds()
	if runResult.Status == "" {
		runResult.Status = seomodel.StatusSuccess
	}
	if runResult.Issues == nil {
		runResult.Issues = []seomodel.Issue{}
	}
	if runResult.Recommendations == nil {
		runResult.Recommendations = []seomodel.Recommendation{}
	}
	if runResult.Metadata == nil {
		runResult.Metadata = map[string]any{}
	}
	runResult.Grade = seomodel.GradeFromScore(runResult.Score)
	return runResult
}
