package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-curator/internal/types"
)

// Error is a failed provider attempt, already classified.
type Error struct {
	Code     types.ErrorCode
	Provider ProviderID
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Failure converts the error to its attempt log entry.
func (e *Error) Failure() types.AttemptFailure {
	return types.AttemptFailure{Code: e.Code, Provider: string(e.Provider), Message: e.Message}
}

// CodeOf returns the failure code carried by err, or "" if err is not an *Error.
func CodeOf(err error) types.ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func unconfiguredError(id ProviderID) *Error {
	return &Error{Code: types.CodeProviderUnconfigured, Provider: id, Message: "no API key configured"}
}

func cancelledError(id ProviderID, cause error) *Error {
	return &Error{Code: types.CodeCancelled, Provider: id, Message: "request cancelled", Cause: cause}
}

// classifyCallError maps a failed vendor call to a failure code. status is the HTTP status
// the vendor answered with, or 0 when no response arrived. The vendor's own error text is
// kept only as Cause.
func classifyCallError(ctx context.Context, id ProviderID, err error, status int) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cancelledError(id, ctxErr)
	}

	var msg string
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "call timed out"
	case status == 429:
		msg = "rate limited (HTTP 429)"
	case status >= 500:
		msg = fmt.Sprintf("server error (HTTP %d)", status)
	case status >= 400:
		// auth and bad-request failures repeat on every retry
		msg = fmt.Sprintf("request rejected (HTTP %d)", status)
	default:
		msg = "network failure"
	}
	return &Error{Code: types.CodeProviderDown, Provider: id, Message: msg, Cause: err}
}
