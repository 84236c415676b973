// Package llm adapts LLM vendors to a common bullet-selection contract and classifies their
// failures.
package llm

import "time"

// Defaults for vendor calls.
const (
	DefaultMaxOutputTokens = 4096
	DefaultTimeout         = 60 * time.Second
)

// Config holds credentials and call limits for every provider.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GeminiAPIKey    string

	Models map[ProviderID]string
	// BaseURLs overrides vendor endpoints, for proxies and tests.
	BaseURLs map[ProviderID]string

	MaxOutputTokens int
	Timeout         time.Duration
}

// DefaultConfig returns the default models and limits, without credentials.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ProviderID]string{
			ClaudeSonnet: "claude-sonnet-4-5",
			ClaudeHaiku:  "claude-haiku-4-5",
			GPT4oMini:    "gpt-4o-mini",
			GeminiFlash:  "gemini-2.5-flash",
		},
		BaseURLs:        map[ProviderID]string{},
		MaxOutputTokens: DefaultMaxOutputTokens,
		Timeout:         DefaultTimeout,
	}
}

// GetModel returns the model name used for a provider, falling back to the default.
func (c *Config) GetModel(id ProviderID) string {
	if model, ok := c.Models[id]; ok && model != "" {
		return model
	}
	return DefaultConfig().Models[id]
}

// WithModel returns a copy of the config with a different model for one provider.
func (c *Config) WithModel(id ProviderID, model string) *Config {
	clone := *c
	clone.Models = make(map[ProviderID]string, len(c.Models)+1)
	for k, v := range c.Models {
		clone.Models[k] = v
	}
	clone.Models[id] = model
	return &clone
}

// APIKey returns the credential a provider needs. Heuristic needs none.
func (c *Config) APIKey(id ProviderID) string {
	switch id {
	case ClaudeSonnet, ClaudeHaiku:
		return c.AnthropicAPIKey
	case GPT4oMini:
		return c.OpenAIAPIKey
	case GeminiFlash:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

func (c *Config) maxOutputTokens() int {
	if c.MaxOutputTokens > 0 {
		return c.MaxOutputTokens
	}
	return DefaultMaxOutputTokens
}

func (c *Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}
