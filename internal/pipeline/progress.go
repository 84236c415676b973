package pipeline

// ProgressEvent represents a progress update during a selection run
type ProgressEvent struct {
	Step      string `json:"step"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// ProgressCallback is called when selection progress occurs
type ProgressCallback func(event ProgressEvent)

// Event categories.
const (
	CategoryProvider  = "provider"
	CategorySelection = "selection"
)

// Event steps.
const (
	StepRetry     = "retry"
	StepFallback  = "fallback"
	StepScored    = "scored"
	StepSelected  = "selected"
	StepPersisted = "persisted"
)
