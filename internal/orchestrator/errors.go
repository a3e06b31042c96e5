package orchestrator

import (
	"fmt"

	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

type AuditErrorCause string

const (
	ErrCauseCrawlFailed   AuditErrorCause = "crawl failed"
	ErrCausePersistFailed AuditErrorCause = "persistence failed"
)

type AuditError struct {
	Message   string
	Retryable bool
	Cause     AuditErrorCause
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("audit error: %s: %s", e.Cause, e.Message)
}

func (e *AuditError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
