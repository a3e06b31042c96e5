package pagefetch

import (
	"fmt"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseRedirectLoop          FetchErrorCause = "redirect loop"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseRenderFailure         FetchErrorCause = "headless render failure"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("pagefetch error: %s", e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// StatusFor maps a transport-level failure to the synthetic PageData status
// code used when no HTTP response was ever received: 0 for generic
// transport errors, 408 for timeouts, 310 for redirect cycles (a
// non-standard code reserved by this pipeline for "too many redirects").
func (e *FetchError) StatusFor() int {
	switch e.Cause {
	case ErrCauseTimeout:
		return 408
	case ErrCauseRedirectLoop:
		return 310
	default:
		return 0
	}
}

// mapFetchErrorToMetadataCause is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseRedirectLoop:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
