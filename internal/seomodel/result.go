package seomodel

import "time"

// Status is an engine execution outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Grade is a letter grade banded from a 0-100 score at 90/80/65/50.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFromScore bands score into its letter grade.
func GradeFromScore(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 65:
		return GradeC
	case score >= 50:
		return GradeD
	default:
		return GradeF
	}
}

// AuditResult is one analysis engine's complete output for an audit.
type AuditResult struct {
	EngineName      string
	AuditID         string
	Status          Status
	Category        Category
	Score           float64
	Grade           Grade
	Issues          []Issue
	Recommendations []Recommendation
	Metadata        map[string]any
	ExecutionTimeMs int64
	PagesAnalyzed   int
	ErrorMessage    string
}

// NewFailedResult builds the canonical failed-engine result shape used by
// the Execute wrapper on panic/error/timeout.
func NewFailedResult(engineName, auditID string, category Category, errMsg string, elapsed time.Duration) AuditResult {
	return AuditResult{
		EngineName:      engineName,
		AuditID:         auditID,
		Status:          StatusFailed,
		Category:        category,
		Score:           0,
		Grade:           GradeF,
		Issues:          []Issue{},
		Recommendations: []Recommendation{},
		Metadata:        map[string]any{},
		ExecutionTimeMs: elapsed.Milliseconds(),
		ErrorMessage:    errMsg,
	}
}
