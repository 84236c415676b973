package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/resume-curator/internal/types"
	"github.com/jonathan/resume-curator/internal/validation"
)

// completion is a vendor's raw answer.
type completion struct {
	Text       string
	TokensUsed int
}

// backend performs one vendor call.
type backend interface {
	complete(ctx context.Context, p Prompt) (completion, error)
	// statusCode extracts the HTTP status from a complete error, or 0.
	statusCode(err error) int
}

// remoteProvider is the Provider shared by every vendor: credential gate, per-call timeout,
// failure classification and response validation.
type remoteProvider struct {
	id      ProviderID
	model   string
	apiKey  string
	timeout time.Duration
	backend backend
}

func (p *remoteProvider) Name() ProviderID { return p.id }

func (p *remoteProvider) IsAvailable() bool { return p.apiKey != "" && p.backend != nil }

func (p *remoteProvider) Select(ctx context.Context, req Request) (*types.ProviderResult, error) {
	if !p.IsAvailable() {
		return nil, unconfiguredError(p.id)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(p.id, err)
	}

	prompt := BuildPrompt(req)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := p.backend.complete(callCtx, prompt)
	if err != nil {
		classified := classifyCallError(ctx, p.id, err, p.backend.statusCode(err))
		slog.WarnContext(ctx, "provider call failed",
			"provider", p.id,
			"model", p.model,
			"code", classified.Code,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, classified
	}

	slog.DebugContext(ctx, "provider call completed",
		"provider", p.id,
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"tokens", out.TokensUsed)

	return finish(p.id, out, req)
}

// Close releases vendor clients that hold resources.
func (p *remoteProvider) Close() error {
	if closer, ok := p.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// finish validates a raw completion and converts it to a ProviderResult.
func finish(id ProviderID, out completion, req Request) (*types.ProviderResult, error) {
	resp, err := validation.Validate(CleanJSONBlock(out.Text), req.Compendium, req.Count())
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return nil, &Error{Code: verr.Code, Provider: id, Message: verr.Message, Cause: err}
		}
		return nil, &Error{Code: types.CodeMalformedJSON, Provider: id, Message: "response could not be validated", Cause: err}
	}

	return &types.ProviderResult{
		Bullets:    resp.Bullets,
		Reasoning:  resp.Reasoning,
		JobTitle:   resp.JobTitle,
		Salary:     resp.Salary,
		TokensUsed: out.TokensUsed,
		Provider:   string(id),
	}, nil
}
