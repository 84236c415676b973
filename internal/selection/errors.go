// Package selection picks the final bullet set from scored candidates under diversity constraints.
package selection

import "fmt"

// ConfigError reports an invalid SelectionConfig. Limits are never silently clamped.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid selection config: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid selection config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Shortfall records a company whose minimum could not be met without breaking another limit.
type Shortfall struct {
	CompanyID string `json:"companyId"`
	Have      int    `json:"have"`
	Want      int    `json:"want"`
}
