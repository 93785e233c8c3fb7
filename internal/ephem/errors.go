package ephem

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors returned by the ephemeris layer and the
// packages built on top of it. The set is closed: callers can switch on the
// code without worrying about unnamed failure kinds.
type ErrorCode string

const (
	// ErrCodeUnsupportedBody indicates a body outside the allow-list.
	ErrCodeUnsupportedBody ErrorCode = "UNSUPPORTED_BODY"

	// ErrCodeInvalidTimeStandard indicates a non-UT time was supplied at a
	// UT-only boundary.
	ErrCodeInvalidTimeStandard ErrorCode = "INVALID_TIME_STANDARD"

	// ErrCodeConflictingContext indicates a nested scope requested a
	// configuration incompatible with a pending outer scope.
	ErrCodeConflictingContext ErrorCode = "CONFLICTING_CONTEXT"

	// ErrCodeComputation indicates the underlying ephemeris engine failed.
	ErrCodeComputation ErrorCode = "COMPUTATION_FAILED"

	// ErrCodeSearchRangeTooLarge indicates a search window exceeded the
	// configured guardrail.
	ErrCodeSearchRangeTooLarge ErrorCode = "SEARCH_RANGE_TOO_LARGE"

	// ErrCodeAmbiguousCrossing indicates a search found more crossings than
	// resolvable at the minimum step floor.
	ErrCodeAmbiguousCrossing ErrorCode = "AMBIGUOUS_CROSSING"

	// ErrCodeConfiguration indicates a malformed configuration, rule, or
	// partition table definition.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
)

// Error is the single error type for the closed taxonomy. Details carries
// structured context for diagnostics; it is never required for matching.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the ErrorCode from err, or "" if err is not from this
// taxonomy. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// NewUnsupportedBodyError creates an error for a body outside the allow-list.
func NewUnsupportedBodyError(body Body) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedBody,
		Message: fmt.Sprintf("body %s (id %d) is not in the allowed set", body, int(body)),
	}
}

// NewInvalidTimeStandardError creates an error for a non-UT time input.
func NewInvalidTimeStandardError(scale TimeScale) *Error {
	return &Error{
		Code:    ErrCodeInvalidTimeStandard,
		Message: fmt.Sprintf("time standard %s supplied at a UT-only boundary", scale),
	}
}

// NewConflictingContextError creates an error for an incompatible nested
// state request. field names the first conflicting component.
func NewConflictingContextError(field string) *Error {
	return &Error{
		Code:    ErrCodeConflictingContext,
		Message: fmt.Sprintf("nested scope requests %s already pinned by an outer scope", field),
		Details: map[string]string{"field": field},
	}
}

// NewScopeMisuseError creates an error for scope stack-discipline
// violations: nesting from a non-innermost scope, out-of-order release, or
// use after release. Shares the conflicting-context code since all of them
// are context lifecycle faults.
func NewScopeMisuseError(msg string) *Error {
	return &Error{Code: ErrCodeConflictingContext, Message: msg}
}

// NewComputationError wraps an underlying engine failure.
func NewComputationError(msg string, cause error) *Error {
	return &Error{Code: ErrCodeComputation, Message: msg, cause: cause}
}

// NewSearchRangeTooLargeError creates an error for an oversized window.
func NewSearchRangeTooLargeError(spanDays, maxDays float64) *Error {
	return &Error{
		Code:    ErrCodeSearchRangeTooLarge,
		Message: fmt.Sprintf("search range of %.1f days exceeds maximum allowed (%.0f days)", spanDays, maxDays),
		Details: map[string]string{
			"span_days": fmt.Sprintf("%.4f", spanDays),
			"max_days":  fmt.Sprintf("%.0f", maxDays),
		},
	}
}

// NewAmbiguousCrossingError creates an error for unresolvable multiple
// crossings within one minimum-width sampling step.
func NewAmbiguousCrossingError(t0, t1 float64) *Error {
	return &Error{
		Code:    ErrCodeAmbiguousCrossing,
		Message: fmt.Sprintf("multiple crossings in [%f, %f] below the step floor", t0, t1),
	}
}

// NewConfigurationError creates an error for invalid configuration input.
func NewConfigurationError(msg string) *Error {
	return &Error{Code: ErrCodeConfiguration, Message: msg}
}

// WrapConfigurationError creates a configuration error with a cause.
func WrapConfigurationError(msg string, cause error) *Error {
	return &Error{Code: ErrCodeConfiguration, Message: msg, cause: cause}
}
