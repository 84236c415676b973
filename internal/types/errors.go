package types

// ErrorCode classifies a failed provider attempt.
type ErrorCode string

// Failure codes. E001-E005 are validation failures and may be corrected by re-prompting the
// same provider; E011-E013 are not.
const (
	CodeMalformedJSON        ErrorCode = "E001_MALFORMED_JSON"
	CodeSchemaMismatch       ErrorCode = "E002_SCHEMA_MISMATCH"
	CodeDuplicateBulletID    ErrorCode = "E003_DUPLICATE_BULLET_ID"
	CodeWrongBulletCount     ErrorCode = "E004_WRONG_BULLET_COUNT"
	CodeInvalidBulletID      ErrorCode = "E005_INVALID_BULLET_ID"
	CodeProviderDown         ErrorCode = "E011_PROVIDER_DOWN"
	CodeProviderUnconfigured ErrorCode = "E012_PROVIDER_UNCONFIGURED"
	CodeCancelled            ErrorCode = "E013_CANCELLED"
)

// Correctable reports whether a retry against the same provider with corrective context can
// succeed.
func (c ErrorCode) Correctable() bool {
	switch c {
	case CodeMalformedJSON, CodeSchemaMismatch, CodeDuplicateBulletID, CodeWrongBulletCount, CodeInvalidBulletID:
		return true
	default:
		return false
	}
}

// AttemptFailure records one failed provider attempt.
type AttemptFailure struct {
	Code     ErrorCode `json:"code"`
	Provider string    `json:"provider"`
	Message  string    `json:"message"`
}
