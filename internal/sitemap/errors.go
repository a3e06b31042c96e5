package sitemap

import (
	"fmt"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

type SitemapErrorCause string

const (
	ErrCauseFetchFailed  SitemapErrorCause = "fetch failed"
	ErrCauseParseFailed  SitemapErrorCause = "xml parse failed"
	ErrCauseDepthExceeded SitemapErrorCause = "recursion depth exceeded"
)

type SitemapError struct {
	Message   string
	Retryable bool
	Cause     SitemapErrorCause
}

func (e *SitemapError) Error() string {
	return fmt.Sprintf("sitemap error: %s: %s", e.Cause, e.Message)
}

func (e *SitemapError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func mapSitemapErrorToMetadataCause(err *SitemapError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseParseFailed:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
