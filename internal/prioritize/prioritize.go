// Package prioritize turns the audit's full issue bag into ranked,
// revenue-weighted recommendations: a deterministic priority score per
// issue, descending order with rule-id tiebreaks, dense 1..N ranks, and a
// static implementation-steps playbook per rule.
package prioritize

import (
	"sort"

	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
)

// maxRecommendations bounds the emitted plan.
const maxRecommendations = 50

// revenuePerVisit mirrors the scoring revenue model: 2% conversion at 100
// currency units per conversion.
const revenuePerVisit = 0.02 * 100

// Prioritizer ranks issues into recommendations.
type Prioritizer struct {
	monthlyTraffic float64
}

func NewPrioritizer(monthlyTraffic float64) *Prioritizer {
	if monthlyTraffic <= 0 {
		monthlyTraffic = 10000
	}
	return &Prioritizer{monthlyTraffic: monthlyTraffic}
}

// Priority computes an issue's priority score:
// 0.40*impact + 0.25*traffic_potential + 0.20*effort_ease + 0.15*severity.
func Priority(issue seomodel.Issue) float64 {
	effortEase := (10 - issue.EffortScore) * 10
	return 0.40*issue.ImpactScore +
		0.25*seomodel.TrafficPotential(issue.Severity) +
		0.20*effortEase +
		0.15*seomodel.SeverityRank(issue.Severity)
}

// Prioritize sorts all issues by descending priority (ties broken by rule
// id, ascending) and emits the top 50 as ranked recommendations.
func (p *Prioritizer) Prioritize(issues []seomodel.Issue) []seomodel.Recommendation {
	type scored struct {
		issue    seomodel.Issue
		priority float64
	}

	ranked := make([]scored, 0, len(issues))
	for _, issue := range issues {
		ranked = append(ranked, scored{issue: issue, priority: Priority(issue)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].issue.RuleID < ranked[j].issue.RuleID
	})

	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}

	recommendations := make([]seomodel.Recommendation, 0, len(ranked))
	for i, entry := range ranked {
		issue := entry.issue
		trafficGain := p.monthlyTraffic * seomodel.TrafficPotential(issue.Severity) / 100 * issue.ImpactScore / 100
		recommendations = append(recommendations, seomodel.Recommendation{
			RuleID:                 issue.RuleID,
			Rank:                   i + 1,
			Title:                  issue.Title,
			Description:            issue.Description,
			Effort:                 seomodel.EffortLabelFor(issue.EffortScore),
			Impact:                 seomodel.ImpactLabelFor(issue.ImpactScore),
			EstimatedTrafficGain:   trafficGain,
			EstimatedRevenueImpact: trafficGain * revenuePerVisit,
			ImplementationSteps:    StepsFor(issue.RuleID),
		})
	}
	return recommendations
}
