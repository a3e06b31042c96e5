package textify

import (
	"fmt"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

type TextifyErrorCause string

const (
	ErrCauseConversionFailure TextifyErrorCause = "markdown conversion failure"
	ErrCauseNilNode           TextifyErrorCause = "nil content node"
)

type TextifyError struct {
	Message   string
	Retryable bool
	Cause     TextifyErrorCause
}

func (e *TextifyError) Error() string {
	return fmt.Sprintf("textify error: %s", e.Cause)
}

func (e *TextifyError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapTextifyErrorToMetadataCause maps textify-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapTextifyErrorToMetadataCause(err *TextifyError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConversionFailure, ErrCauseNilNode:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
