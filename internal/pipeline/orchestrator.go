// Package pipeline runs a bullet-selection request end to end: provider retry and fallback,
// then constraint selection and chronological ordering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/observability"
	"github.com/jonathan/resume-curator/internal/types"
)

// RetryPolicy bounds in-place retries against a single provider.
type RetryPolicy struct {
	// MaxRetriesPerProvider is the number of calls a provider gets before the orchestrator
	// moves on, counting the first.
	MaxRetriesPerProvider int
	InitialInterval       time.Duration
	MaxInterval           time.Duration
	Multiplier            float64
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetriesPerProvider: 2,
		InitialInterval:       500 * time.Millisecond,
		MaxInterval:           5 * time.Second,
		Multiplier:            2,
	}
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxRetriesPerProvider < 1 {
		return 1
	}
	return p.MaxRetriesPerProvider
}

// newBackOff returns a fresh pacing schedule for one provider, stopped when ctx ends.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	// attempts are bounded by MaxRetriesPerProvider, not elapsed time
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// ProviderOrder returns the providers to try: selected first, if set, then the fallback
// order without it. Unknown ids fail with ErrUnknownProvider.
func ProviderOrder(selected string, fallback []llm.ProviderID) ([]llm.ProviderID, error) {
	order := make([]llm.ProviderID, 0, len(fallback)+1)
	seen := make(map[llm.ProviderID]bool, len(fallback)+1)

	if selected != "" {
		id, err := llm.ParseProviderID(selected)
		if err != nil {
			return nil, err
		}
		order = append(order, id)
		seen[id] = true
	}

	for _, id := range fallback {
		if _, err := llm.ParseProviderID(string(id)); err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		order = append(order, id)
		seen[id] = true
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no providers to try", ErrUnknownProvider)
	}
	return order, nil
}

// Orchestrator tries providers in order, retrying correctable failures in place with
// corrective context and falling back on everything else.
type Orchestrator struct {
	providers  map[llm.ProviderID]llm.Provider
	policy     RetryPolicy
	onProgress ProgressCallback
}

// NewOrchestrator creates an Orchestrator over the given providers.
func NewOrchestrator(providers []llm.Provider, policy RetryPolicy) *Orchestrator {
	byID := make(map[llm.ProviderID]llm.Provider, len(providers))
	for _, p := range providers {
		byID[p.Name()] = p
	}
	return &Orchestrator{providers: byID, policy: policy}
}

// OnProgress registers a callback for attempt and fallback events.
func (o *Orchestrator) OnProgress(cb ProgressCallback) {
	o.onProgress = cb
}

func (o *Orchestrator) emit(step, message string, content any) {
	if o.onProgress != nil {
		o.onProgress(ProgressEvent{Step: step, Category: CategoryProvider, Message: message, Content: content})
	}
}

// emitFunc reports a provider event.
type emitFunc func(step, message string, content any)

// Select runs req against each provider in order until one returns a validated result.
//
// A provider gets up to MaxRetriesPerProvider calls while it fails with a correctable
// validation code; each retry carries the previous failure as RetryContext. Provider-down
// failures and exhausted retries advance to the next provider, unconfigured providers are
// skipped without a call, and cancellation stops immediately. The returned result's
// AttemptCount counts calls on the winning provider only; the failures that preceded it are
// returned alongside.
func (o *Orchestrator) Select(ctx context.Context, order []llm.ProviderID, req llm.Request) (*types.ProviderResult, []types.AttemptFailure, error) {
	return o.run(ctx, order, req, o.emit)
}

func (o *Orchestrator) run(ctx context.Context, order []llm.ProviderID, req llm.Request, emit emitFunc) (*types.ProviderResult, []types.AttemptFailure, error) {
	var attempts []types.AttemptFailure
	calls, retries := 0, 0
	last := ""

	fail := func(cause error) *SelectionError {
		if last == "" && len(order) > 0 {
			last = string(order[len(order)-1])
		}
		return &SelectionError{Attempts: attempts, Calls: calls, RetriesAttempted: retries, Provider: last, Cause: cause}
	}

	for i, id := range order {
		provider, ok := o.providers[id]
		if !ok || !provider.IsAvailable() {
			attempts = append(attempts, types.AttemptFailure{
				Code:     types.CodeProviderUnconfigured,
				Provider: string(id),
				Message:  "provider not configured",
			})
			slog.DebugContext(ctx, "provider skipped", "provider", id, "code", types.CodeProviderUnconfigured)
			continue
		}

		pacing := o.policy.newBackOff(ctx)
		attemptReq := req
		attemptReq.RetryContext = ""

		for attempt := 1; ; attempt++ {
			if err := ctx.Err(); err != nil {
				attempts = append(attempts, cancelledFailure(id))
				return nil, attempts, fail(err)
			}

			calls++
			if attempt > 1 {
				retries++
			}
			last = string(id)
			start := time.Now()
			result, err := provider.Select(ctx, attemptReq)
			if err == nil {
				observability.ObserveAttempt(string(id), "", time.Since(start))
				result.AttemptCount = attempt
				result.Provider = string(id)
				slog.InfoContext(ctx, "provider succeeded", "provider", id, "attempt", attempt, "tokens", result.TokensUsed)
				return result, attempts, nil
			}

			failure := failureOf(ctx, id, err)
			observability.ObserveAttempt(string(id), failure.Code, time.Since(start))
			slog.WarnContext(ctx, "provider attempt failed",
				"provider", id,
				"attempt", attempt,
				"code", failure.Code,
				"error", err)

			if failure.Code == types.CodeProviderUnconfigured {
				// not a real call
				calls--
				if attempt > 1 {
					retries--
				}
				attempts = append(attempts, failure)
				break
			}
			attempts = append(attempts, failure)

			if failure.Code == types.CodeCancelled {
				cause := ctx.Err()
				if cause == nil {
					cause = err
				}
				return nil, attempts, fail(cause)
			}

			if !failure.Code.Correctable() || attempt >= o.policy.maxAttempts() {
				break
			}

			attemptReq.RetryContext = llm.RetryContext(failure, req.Count())
			emit(StepRetry, fmt.Sprintf("%s rejected (%s), retrying", id, failure.Code), failure)
			if err := wait(ctx, pacing); err != nil {
				attempts = append(attempts, cancelledFailure(id))
				return nil, attempts, fail(err)
			}
		}

		if i < len(order)-1 {
			emit(StepFallback, fmt.Sprintf("%s failed, trying %s", id, order[i+1]), nil)
		}
	}

	return nil, attempts, fail(nil)
}

// failureOf converts a provider error to its attempt record. Errors that did not come from
// an adapter are treated as the provider being down.
func failureOf(ctx context.Context, id llm.ProviderID, err error) types.AttemptFailure {
	var e *llm.Error
	if errors.As(err, &e) {
		return e.Failure()
	}
	if ctx.Err() != nil {
		return cancelledFailure(id)
	}
	return types.AttemptFailure{Code: types.CodeProviderDown, Provider: string(id), Message: "provider call failed"}
}

func cancelledFailure(id llm.ProviderID) types.AttemptFailure {
	return types.AttemptFailure{Code: types.CodeCancelled, Provider: string(id), Message: "request cancelled"}
}

// wait sleeps for the next backoff interval, returning early with ctx's error.
func wait(ctx context.Context, b backoff.BackOff) error {
	d := b.NextBackOff()
	if d == backoff.Stop {
		if err := ctx.Err(); err != nil {
			return err
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
