package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/selection"
	"github.com/jonathan/resume-curator/internal/types"
)

// RunRecorder persists selection runs. *db.DB implements it.
type RunRecorder interface {
	SaveSelectionRun(ctx context.Context, run *types.SelectionRun) error
}

// RunOptions holds configuration for one selection run
type RunOptions struct {
	JobDescription string
	Corpus         *types.Corpus
	// Provider, when set, is tried before the fallback order.
	Provider      string
	FallbackOrder []llm.ProviderID
	Selection     types.SelectionConfig
	// CandidatePool is how many scored bullets to request from the provider. Zero means
	// twice Selection.MaxBullets.
	CandidatePool int
	// Recorder, when set, receives the run record. Persistence failures are logged, not
	// returned.
	Recorder   RunRecorder
	OnProgress ProgressCallback
}

// Outcome is the result of a successful selection run.
type Outcome struct {
	RequestID    string                 `json:"requestId"`
	Bullets      []types.SelectedBullet `json:"bullets"`
	Shortfalls   []selection.Shortfall  `json:"shortfalls,omitempty"`
	Reasoning    string                 `json:"reasoning"`
	JobTitle     string                 `json:"jobTitle,omitempty"`
	Salary       *types.Salary          `json:"salary,omitempty"`
	Provider     string                 `json:"provider"`
	TokensUsed   int                    `json:"tokensUsed"`
	AttemptCount int                    `json:"attemptCount"`
	// Attempts lists the failures that preceded the winning call.
	Attempts []types.AttemptFailure `json:"attempts,omitempty"`
}

// Result returns the provider metadata of the outcome.
func (o *Outcome) Result() *types.ProviderResult {
	return &types.ProviderResult{
		Reasoning:    o.Reasoning,
		JobTitle:     o.JobTitle,
		Salary:       o.Salary,
		TokensUsed:   o.TokensUsed,
		AttemptCount: o.AttemptCount,
		Provider:     o.Provider,
	}
}

// candidatePool returns the number of bullets to request.
func (opts *RunOptions) candidatePool() int {
	if opts.CandidatePool > 0 {
		return opts.CandidatePool
	}
	return 2 * opts.Selection.MaxBullets
}

func (opts *RunOptions) emit(requestID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:      step,
			Category:  CategorySelection,
			Message:   message,
			RequestID: requestID,
			Content:   content,
		})
	}
}

// RunSelection scores the corpus with the first provider that succeeds, applies the
// diversity constraints and orders the result by company chronology.
//
// Invalid limits, unknown providers and a missing corpus are rejected before any provider
// call. Provider exhaustion and cancellation return a *SelectionError.
func RunSelection(ctx context.Context, orch *Orchestrator, opts RunOptions) (*Outcome, error) {
	requestID := uuid.NewString()
	logger := observability.RequestLogger(slog.Default(), requestID)

	if err := opts.Selection.Validate(); err != nil {
		observability.ObserveSelection(observability.StatusRejected)
		return nil, &selection.ConfigError{Message: "limits must be positive with minPerCompany <= maxPerCompany <= maxBullets", Cause: err}
	}
	if opts.Corpus == nil || opts.Corpus.CountBullets() == 0 {
		observability.ObserveSelection(observability.StatusRejected)
		return nil, fmt.Errorf("corpus has no bullets: %w", types.ErrDataUnavailable)
	}
	order, err := ProviderOrder(opts.Provider, opts.FallbackOrder)
	if err != nil {
		observability.ObserveSelection(observability.StatusRejected)
		return nil, err
	}

	req := llm.Request{
		JobDescription: opts.JobDescription,
		Compendium:     opts.Corpus,
		MaxBullets:     opts.candidatePool(),
		MinBullets:     opts.Selection.MaxBullets,
	}

	logger.InfoContext(ctx, "selection started", "providers", order, "requested", req.Count())
	emit := func(step, message string, content any) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{
				Step:      step,
				Category:  CategoryProvider,
				Message:   message,
				RequestID: requestID,
				Content:   content,
			})
		}
	}

	result, failures, err := orch.run(ctx, order, req, emit)
	if err != nil {
		var selErr *SelectionError
		status := observability.StatusFailed
		if errors.As(err, &selErr) && selErr.Cancelled() {
			status = observability.StatusCancelled
		}
		observability.ObserveSelection(status)
		logger.ErrorContext(ctx, "selection failed", "status", status, "error", err)
		if selErr != nil {
			record(ctx, logger, opts.Recorder, &types.SelectionRun{
				RequestID: requestID,
				Status:    status,
				Provider:  selErr.Provider,
				Attempts:  selErr.Attempts,
				CreatedAt: time.Now().UTC(),
			})
		}
		return nil, err
	}
	opts.emit(requestID, StepScored, fmt.Sprintf("%s scored %d bullets", result.Provider, len(result.Bullets)), result)

	bullets, shortfalls, err := selection.SelectBulletsWithConstraints(opts.Corpus, result.Scores(), opts.Selection)
	if err != nil {
		observability.ObserveSelection(observability.StatusRejected)
		return nil, fmt.Errorf("bullet selection failed: %w", err)
	}
	bullets = selection.ReorderByCompanyChronology(bullets, opts.Corpus)
	for _, s := range shortfalls {
		logger.WarnContext(ctx, "company below minimum", "company", s.CompanyID, "have", s.Have, "want", s.Want)
	}
	opts.emit(requestID, StepSelected, fmt.Sprintf("Selected %d bullets", len(bullets)), bullets)

	outcome := &Outcome{
		RequestID:    requestID,
		Bullets:      bullets,
		Shortfalls:   shortfalls,
		Reasoning:    result.Reasoning,
		JobTitle:     result.JobTitle,
		Salary:       result.Salary,
		Provider:     result.Provider,
		TokensUsed:   result.TokensUsed,
		AttemptCount: result.AttemptCount,
		Attempts:     failures,
	}

	observability.ObserveSelection(observability.StatusSuccess)
	logger.InfoContext(ctx, "selection completed",
		"provider", outcome.Provider,
		"attempts", outcome.AttemptCount,
		"tokens", outcome.TokensUsed,
		"bullets", len(outcome.Bullets))

	if record(ctx, logger, opts.Recorder, &types.SelectionRun{
		RequestID:    requestID,
		Status:       observability.StatusSuccess,
		Provider:     outcome.Provider,
		AttemptCount: outcome.AttemptCount,
		TokensUsed:   outcome.TokensUsed,
		JobTitle:     outcome.JobTitle,
		Reasoning:    outcome.Reasoning,
		Attempts:     outcome.Attempts,
		Bullets:      outcome.Bullets,
		CreatedAt:    time.Now().UTC(),
	}) {
		opts.emit(requestID, StepPersisted, "Saved selection run", nil)
	}

	return outcome, nil
}

// record saves run if a recorder is configured and reports whether it was saved.
func record(ctx context.Context, logger *slog.Logger, recorder RunRecorder, run *types.SelectionRun) bool {
	if recorder == nil {
		return false
	}
	if run.Attempts == nil {
		run.Attempts = []types.AttemptFailure{}
	}
	if run.Bullets == nil {
		run.Bullets = []types.SelectedBullet{}
	}
	if err := recorder.SaveSelectionRun(ctx, run); err != nil {
		logger.WarnContext(ctx, "failed to save selection run", "error", err)
		return false
	}
	return true
}
