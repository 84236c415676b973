package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// newAnthropicProvider builds claude-sonnet or claude-haiku. Without a key it returns a
// provider that reports itself unavailable.
func newAnthropicProvider(id ProviderID, cfg *Config) *remoteProvider {
	p := &remoteProvider{
		id:      id,
		model:   cfg.GetModel(id),
		apiKey:  cfg.APIKey(id),
		timeout: cfg.timeout(),
	}
	if p.apiKey == "" {
		return p
	}

	opts := []option.RequestOption{
		option.WithAPIKey(p.apiKey),
		// retries are the orchestrator's job
		option.WithMaxRetries(0),
	}
	if baseURL := cfg.BaseURLs[id]; baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	p.backend = &anthropicBackend{
		client:    anthropic.NewClient(opts...),
		model:     p.model,
		maxTokens: cfg.maxOutputTokens(),
	}
	return p
}

func (b *anthropicBackend) complete(ctx context.Context, p Prompt) (completion, error) {
	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(b.maxTokens),
		Temperature: anthropic.Float(0.1),
		System: []anthropic.TextBlockParam{
			{Text: p.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		return completion{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return completion{
		Text:       sb.String(),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}

func (b *anthropicBackend) statusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
