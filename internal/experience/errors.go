// Package experience loads and normalizes resume corpus files.
package experience

import (
	"fmt"

	"github.com/jonathan/resume-curator/internal/types"
)

// LoadError represents an error during file I/O, JSON parsing or corpus validation.
// It matches types.ErrDataUnavailable under errors.Is.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is types.ErrDataUnavailable.
func (e *LoadError) Is(target error) bool {
	return target == types.ErrDataUnavailable
}
