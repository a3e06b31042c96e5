// Package scoring aggregates engine results into the audit's overall
// score, grade, confidence and estimated revenue impact. All of its math
// is deterministic over the input result list; failed engines contribute
// nothing to the weighted mean.
package scoring

import (
	"math"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// expectedEngines is the denominator of engine coverage in the confidence
// formula, fixed regardless of how many engines are actually registered.
const expectedEngines = 8

// pageCoverageCeiling is the crawl size at which page coverage saturates.
const pageCoverageCeiling = 1000

// revenuePerVisit converts estimated monthly visits to currency units:
// 2% conversion at 100 per conversion.
const revenuePerVisit = 0.02 * 100

// DefaultMonthlyTraffic is the revenue-model baseline when the audit's
// settings carry none.
const DefaultMonthlyTraffic = 10000

// DefaultCategoryWeights is the weighted-mean configuration; the eight
// weights sum to 1.0.
func DefaultCategoryWeights() map[seomodel.Category]float64 {
	return map[seomodel.Category]float64{
		seomodel.CategoryCrawlability:  0.15,
		seomodel.CategoryTechnical:     0.20,
		seomodel.CategoryOnPage:        0.15,
		seomodel.CategoryContent:       0.15,
		seomodel.CategoryPerformance:   0.15,
		seomodel.CategoryInternalLinks: 0.10,
		seomodel.CategorySchema:        0.05,
		seomodel.CategoryAuthority:     0.05,
	}
}

// Summary is the scoring stage's output.
type Summary struct {
	OverallScore           float64
	OverallGrade           seomodel.Grade
	CategoryScores         map[seomodel.Category]float64
	ConfidenceScore        float64
	EstimatedRevenueImpact float64
	IssuesFound            int
	CriticalIssues         int
}

// Scorer computes the audit summary from engine results.
type Scorer struct {
	weights        map[seomodel.Category]float64
	monthlyTraffic float64
}

func NewScorer(weights map[seomodel.Category]float64, monthlyTraffic float64) *Scorer {
	if len(weights) == 0 {
		weights = DefaultCategoryWeights()
	}
	if monthlyTraffic <= 0 {
		monthlyTraffic = DefaultMonthlyTraffic
	}
	return &Scorer{weights: weights, monthlyTraffic: monthlyTraffic}
}

// Score aggregates results into the overall summary. Failed engines are
// excluded from the weighted mean but their issues (always empty by the
// Execute contract) never reach the revenue model anyway.
func (s *Scorer) Score(results []seomodel.AuditResult, site *seomodel.SiteData) Summary {
	summary := Summary{
		CategoryScores: make(map[seomodel.Category]float64),
	}

	var weightedSum, weightSum float64
	successful := 0
	for _, result := range results {
		if result.Status == seomodel.StatusFailed {
			continue
		}
		successful++
		summary.CategoryScores[result.Category] = result.Score
		weight := s.weights[result.Category]
		weightedSum += result.Score * weight
		weightSum += weight
	}

	if weightSum > 0 {
		summary.OverallScore = seomodel.Clamp(weightedSum/weightSum, 0, 100)
	}
	summary.OverallGrade = seomodel.GradeFromScore(summary.OverallScore)

	summary.ConfidenceScore = confidence(successful, len(site.Pages))

	for _, result := range results {
		if result.Status == seomodel.StatusFailed {
			continue
		}
		for _, issue := range result.Issues {
			summary.IssuesFound++
			if issue.Severity == seomodel.SeverityCritical {
				summary.CriticalIssues++
			}
			summary.EstimatedRevenueImpact += s.issueRevenue(issue)
		}
	}
	summary.EstimatedRevenueImpact = roundCents(summary.EstimatedRevenueImpact)

	return summary
}

// issueRevenue estimates one issue's monthly revenue drag:
// lift = traffic * base_lift(severity) * min(1, affected/1000) * impact/100,
// revenue = lift * 2% conversion * 100 currency units.
func (s *Scorer) issueRevenue(issue seomodel.Issue) float64 {
	affectedShare := float64(issue.AffectedCount) / 1000
	if affectedShare > 1 {
		affectedShare = 1
	}
	lift := s.monthlyTraffic * seomodel.BaseLift(issue.Severity) * affectedShare * issue.ImpactScore / 100
	return lift * revenuePerVisit
}

// confidence = (engine_coverage*0.6 + page_coverage*0.4) * 100.
func confidence(successfulEngines, pagesCrawled int) float64 {
	engineCoverage := float64(successfulEngines) / float64(expectedEngines)
	if engineCoverage > 1 {
		engineCoverage = 1
	}
	pageCoverage := float64(pagesCrawled) / pageCoverageCeiling
	if pageCoverage > 1 {
		pageCoverage = 1
	}
	return (engineCoverage*0.6 + pageCoverage*0.4) * 100
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
