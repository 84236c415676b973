package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/resume-curator/internal/types"
)

// ProviderID names a bullet-selection backend. The set is closed.
type ProviderID string

// Known providers.
const (
	ClaudeSonnet ProviderID = "claude-sonnet"
	ClaudeHaiku  ProviderID = "claude-haiku"
	GPT4oMini    ProviderID = "gpt-4o-mini"
	GeminiFlash  ProviderID = "gemini-flash"
	// Heuristic scores offline from tags and priorities. It is never part of the default
	// fallback order.
	Heuristic ProviderID = "heuristic"
)

// ErrUnknownProvider is returned for provider ids outside the known set.
var ErrUnknownProvider = errors.New("unknown provider")

// DefaultFallbackOrder returns the order in which remote providers are tried.
func DefaultFallbackOrder() []ProviderID {
	return []ProviderID{ClaudeSonnet, ClaudeHaiku, GPT4oMini, GeminiFlash}
}

// KnownProviders returns every valid provider id.
func KnownProviders() []ProviderID {
	return append(DefaultFallbackOrder(), Heuristic)
}

// ParseProviderID validates a provider id.
func ParseProviderID(s string) (ProviderID, error) {
	id := ProviderID(strings.TrimSpace(s))
	for _, known := range KnownProviders() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// ParseProviderList parses a comma separated list of provider ids, e.g. "claude-haiku,gemini-flash".
func ParseProviderList(s string) ([]ProviderID, error) {
	var ids []ProviderID
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := ParseProviderID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Request is one bullet-selection call.
type Request struct {
	JobDescription string
	Compendium     *types.Corpus
	// MaxBullets is how many scored candidates to ask for.
	MaxBullets int
	// MinBullets is how many bullets must survive the diversity constraints.
	MinBullets int
	// RetryContext, when set, describes why the previous attempt was rejected.
	RetryContext string
}

// Count is the exact number of bullets a response must contain.
func (r Request) Count() int {
	if r.Compendium == nil {
		return 0
	}
	total := r.Compendium.CountBullets()
	if r.MaxBullets < total {
		return r.MaxBullets
	}
	return total
}

// Provider scores corpus bullets against a job description.
//
// Select returns a validated result or an *Error carrying a failure code. Implementations
// hold no per-request state and are safe for concurrent use.
type Provider interface {
	Name() ProviderID
	// IsAvailable reports whether credentials are configured.
	IsAvailable() bool
	Select(ctx context.Context, req Request) (*types.ProviderResult, error)
}
