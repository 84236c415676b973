package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/types"
)

// ErrUnknownProvider is returned before any provider call when the caller names a provider
// that does not exist.
var ErrUnknownProvider = llm.ErrUnknownProvider

// SelectionError is returned when every provider in the order failed or the request was
// cancelled. Attempts holds the full per-attempt history for logs; UserMessage is safe to
// show to end users.
type SelectionError struct {
	Attempts []types.AttemptFailure
	// Calls counts provider calls made. Unconfigured providers are skipped without one.
	Calls int
	// RetriesAttempted counts in-place retries: calls after the first on the same provider.
	RetriesAttempted int
	Provider         string
	Cause            error
}

func (e *SelectionError) Error() string {
	msg := fmt.Sprintf("bullet selection failed after %d provider calls and %d retries (last provider %q, %d failures)",
		e.Calls, e.RetriesAttempted, e.Provider, len(e.Attempts))
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *SelectionError) Unwrap() error {
	return e.Cause
}

// Cancelled reports whether the run stopped because the caller's context ended.
func (e *SelectionError) Cancelled() bool {
	return errors.Is(e.Cause, context.Canceled) || errors.Is(e.Cause, context.DeadlineExceeded)
}

// UserMessage returns a short explanation without vendor error text.
func (e *SelectionError) UserMessage() string {
	if e.Cancelled() {
		return "The request was cancelled before bullets could be selected."
	}
	if e.Calls == 0 {
		return "No AI provider is configured. Add an API key and try again."
	}
	return "We couldn't tailor your resume right now. Please try again in a few minutes."
}
