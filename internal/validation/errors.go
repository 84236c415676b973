// Package validation checks raw provider output against the corpus before any score reaches
// the selection engine.
package validation

import (
	"fmt"

	"github.com/jonathan/resume-curator/internal/types"
)

// Error is a rejected provider response. Code is always one of the correctable codes.
type Error struct {
	Code    types.ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
