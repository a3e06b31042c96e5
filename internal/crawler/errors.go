package crawler

import (
	"fmt"

	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

type CrawlErrorCause string

const (
	ErrCauseInvalidRootURL CrawlErrorCause = "invalid root url"
	ErrCauseCancelled      CrawlErrorCause = "crawl cancelled"
)

type CrawlError struct {
	Message   string
	Retryable bool
	Cause     CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: %s: %s", e.Cause, e.Message)
}

func (e *CrawlError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
