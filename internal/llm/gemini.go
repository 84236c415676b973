package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type geminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// newGeminiProvider builds gemini-flash. Client construction does not touch the network.
func newGeminiProvider(ctx context.Context, cfg *Config) (*remoteProvider, error) {
	p := &remoteProvider{
		id:      GeminiFlash,
		model:   cfg.GetModel(GeminiFlash),
		apiKey:  cfg.APIKey(GeminiFlash),
		timeout: cfg.timeout(),
	}
	if p.apiKey == "" {
		return p, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(p.apiKey)}
	if endpoint := cfg.BaseURLs[GeminiFlash]; endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p.backend = &geminiBackend{
		client:    client,
		model:     p.model,
		maxTokens: cfg.maxOutputTokens(),
	}
	return p, nil
}

func (b *geminiBackend) complete(ctx context.Context, p Prompt) (completion, error) {
	model := b.client.GenerativeModel(b.model)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(int32(b.maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(p.System))

	resp, err := model.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return completion{}, fmt.Errorf("failed to generate content: %w", err)
	}

	out := completion{Text: extractTextFromResponse(resp)}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func (b *geminiBackend) statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func (b *geminiBackend) Close() error {
	return b.client.Close()
}

// extractTextFromResponse joins the text parts of the first candidate. An empty result is
// left for validation to reject as malformed.
func extractTextFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.Join(parts, "")
}
