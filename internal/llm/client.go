package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// NewProvider builds the provider for id. Remote providers without credentials are still
// returned; they report IsAvailable() == false and fail with E012 without any network call.
func NewProvider(ctx context.Context, id ProviderID, cfg *Config) (Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch id {
	case ClaudeSonnet, ClaudeHaiku:
		return newAnthropicProvider(id, cfg), nil
	case GPT4oMini:
		return newOpenAIProvider(cfg), nil
	case GeminiFlash:
		return newGeminiProvider(ctx, cfg)
	case Heuristic:
		return NewHeuristicProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
}

// NewProviders builds one provider per id, in order.
func NewProviders(ctx context.Context, ids []ProviderID, cfg *Config) ([]Provider, error) {
	providers := make([]Provider, 0, len(ids))
	for _, id := range ids {
		p, err := NewProvider(ctx, id, cfg)
		if err != nil {
			_ = CloseAll(providers)
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// CloseAll closes every provider that holds resources.
func CloseAll(providers []Provider) error {
	var errs []error
	for _, p := range providers {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", p.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
