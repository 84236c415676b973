package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jonathan/resume-curator/internal/schemas"
)

type openaiBackend struct {
	client    openai.Client
	model     string
	maxTokens int
}

func newOpenAIProvider(cfg *Config) *remoteProvider {
	p := &remoteProvider{
		id:      GPT4oMini,
		model:   cfg.GetModel(GPT4oMini),
		apiKey:  cfg.APIKey(GPT4oMini),
		timeout: cfg.timeout(),
	}
	if p.apiKey == "" {
		return p
	}

	opts := []option.RequestOption{
		option.WithAPIKey(p.apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := cfg.BaseURLs[GPT4oMini]; baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	p.backend = &openaiBackend{
		client:    openai.NewClient(opts...),
		model:     p.model,
		maxTokens: cfg.maxOutputTokens(),
	}
	return p
}

func (b *openaiBackend) complete(ctx context.Context, p Prompt) (completion, error) {
	// not strict: jobTitle and salary are optional
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "bullet_selection",
		Description: openai.String("Scored resume bullets"),
		Schema:      schemas.ResponseSchema(),
		Strict:      openai.Bool(false),
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		MaxCompletionTokens: openai.Int(int64(b.maxTokens)),
		Temperature:         openai.Float(0.1),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return completion{}, fmt.Errorf("openai chat: %w", err)
	}

	out := completion{TokensUsed: int(resp.Usage.TotalTokens)}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}

func (b *openaiBackend) statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
