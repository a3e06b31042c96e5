package engines

import "github.com/Pavankona715/seo-audit-platform/internal/seomodel"

// PageIssueImpact computes a per-page issue's impact score:
// clamp(rule_base * severity_mult * (0.3 + 0.7 * coverage), 0, 100).
func PageIssueImpact(ruleBase float64, severity seomodel.Severity, affectedCount, totalPages int) float64 {
	coverage := seomodel.Coverage(affectedCount, totalPages)
	impact := ruleBase * seomodel.SeverityMultiplier(severity) * (0.3 + 0.7*coverage)
	return seomodel.Clamp(impact, 0, 100)
}

// EngineScore computes the shared engine score:
// clamp(100 - (sum(issue_penalty) / max(1, max_penalty)) * 100, 0, 100)
// where issue_penalty = severity_weight * (0.5 + 0.5 * coverage) and
// max_penalty = sum of all severity weights * min(total_checks, 10).
func EngineScore(issues []seomodel.Issue, totalPages, totalChecks int) float64 {
	var penalty float64
	for _, issue := range issues {
		coverage := seomodel.Coverage(issue.AffectedCount, totalPages)
		penalty += seomodel.SeverityWeight(issue.Severity) * (0.5 + 0.5*coverage)
	}

	checks := totalChecks
	if checks > 10 {
		checks = 10
	}
	weightSum := seomodel.SeverityWeight(seomodel.SeverityCritical) +
		seomodel.SeverityWeight(seomodel.SeverityHigh) +
		seomodel.SeverityWeight(seomodel.SeverityMedium) +
		seomodel.SeverityWeight(seomodel.SeverityLow) +
		seomodel.SeverityWeight(seomodel.SeverityInfo)
	maxPenalty := weightSum * float64(checks)
	if maxPenalty < 1 {
		maxPenalty = 1
	}

	return seomodel.Clamp(100-(penalty/maxPenalty)*100, 0, 100)
}

// issueFromRule materializes an Issue for a triggered rule over the pages
// it affected, applying the per-page impact formula.
func issueFromRule(rule seomodel.Rule, affectedURLs []string, affectedCount, totalPages int) seomodel.Issue {
	impact := PageIssueImpact(rule.BaseImpactScore, rule.Severity, affectedCount, totalPages)
	return seomodel.NewIssue(
		rule.ID, rule.Name, rule.Description,
		rule.Severity, rule.Category,
		affectedURLs, affectedCount,
		impact, rule.BaseEffortScore,
		rule.Recommendation, rule.DocumentationURL,
	)
}
