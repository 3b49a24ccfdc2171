package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/cooksync/internal/scene"
)

// SyncError represents a failure of one sync unit or of the whole pass.
//
// Sync errors include:
//   - Missing payload: a part or material the unit needs is absent
//   - Malformed payload: cooked data the unit cannot interpret
//   - Unsupported feature: output the engine does not reconcile
//   - Apply failed: the host rejected a command buffer
//   - Empty cook: the pass produced no parts
//
// Unit-level errors are logged and the unit is skipped. Apply failures
// abort the pass.
type SyncError struct {
	// Code identifies the error category.
	Code SyncErrorCode

	// Message is a human-readable description.
	Message string

	// Unit names the sync unit that failed, e.g. "part objA/box".
	Unit string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// SyncErrorCode categorizes sync errors.
type SyncErrorCode string

const (
	// ErrCodeMissingPayload indicates required cooked data is absent.
	ErrCodeMissingPayload SyncErrorCode = "MISSING_PAYLOAD"

	// ErrCodeMalformedPayload indicates cooked data is inconsistent.
	ErrCodeMalformedPayload SyncErrorCode = "MALFORMED_PAYLOAD"

	// ErrCodeUnsupported indicates an output kind the engine skips.
	ErrCodeUnsupported SyncErrorCode = "UNSUPPORTED_FEATURE"

	// ErrCodeApplyFailed indicates the host rejected a command buffer.
	ErrCodeApplyFailed SyncErrorCode = "APPLY_FAILED"

	// ErrCodeEmptyCook indicates the pass synced no parts.
	ErrCodeEmptyCook SyncErrorCode = "EMPTY_COOK"
)

// Error implements the error interface.
func (e *SyncError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Unit != "" {
		msg = fmt.Sprintf("%s (unit=%s)", msg, e.Unit)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// IsApplyFailure returns true if the error aborted a pass: either a
// SyncError with ErrCodeApplyFailed or a raw host apply error.
// Uses errors.As to handle wrapped errors.
func IsApplyFailure(err error) bool {
	var se *SyncError
	if errors.As(err, &se) && se.Code == ErrCodeApplyFailed {
		return true
	}
	return scene.IsApplyError(err)
}

// IsPayloadError returns true if the error reports missing or malformed
// cooked data.
func IsPayloadError(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeMissingPayload || se.Code == ErrCodeMalformedPayload
	}
	return false
}

// IsEmptyCook returns true if the error reports a pass with no parts.
func IsEmptyCook(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == ErrCodeEmptyCook
	}
	return false
}

// NewMissingPayloadError creates a SyncError for absent cooked data.
func NewMissingPayloadError(unit, what string) *SyncError {
	return &SyncError{
		Code:    ErrCodeMissingPayload,
		Message: fmt.Sprintf("%s is missing", what),
		Unit:    unit,
	}
}

// NewMalformedPayloadError creates a SyncError for inconsistent cooked data.
func NewMalformedPayloadError(unit string, err error) *SyncError {
	return &SyncError{
		Code:    ErrCodeMalformedPayload,
		Message: "cooked data is malformed",
		Unit:    unit,
		Err:     err,
	}
}

// NewApplyFailedError wraps a host apply error for a unit.
func NewApplyFailedError(unit string, err error) *SyncError {
	return &SyncError{
		Code:    ErrCodeApplyFailed,
		Message: "host rejected command buffer",
		Unit:    unit,
		Err:     err,
	}
}

// NewEmptyCookError creates a SyncError for a pass that synced no parts.
func NewEmptyCookError(asset string) *SyncError {
	return &SyncError{
		Code:    ErrCodeEmptyCook,
		Message: "sync produced no parts",
		Details: map[string]string{"asset": asset},
	}
}
