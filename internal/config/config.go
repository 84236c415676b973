// Package config provides configuration loading and validation for the CLI.
//
// Values come from three layers: environment variables (read with FromEnv), an optional
// JSON config file (LoadConfig) and built-in Defaults. Load merges them in that order of
// precedence; CLI flags are applied on top by the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/jonathan/resume-curator/internal/llm"
	"github.com/jonathan/resume-curator/internal/pipeline"
	"github.com/jonathan/resume-curator/internal/types"
)

// Config represents the CLI configuration. All fields are optional; missing values use
// defaults or must be provided via CLI flags. Credentials and durations are read from the
// environment only.
type Config struct {
	// Inputs
	Job        string `json:"job,omitempty" env:"JOB_FILE"`       // Path to job description text file
	JobURL     string `json:"job_url,omitempty" env:"JOB_URL"`    // URL to fetch job description from
	Corpus     string `json:"corpus,omitempty" env:"CORPUS_FILE"` // Path to corpus JSON file
	UseBrowser bool   `json:"use_browser,omitempty"`              // Use headless browser for SPA sites

	// Providers
	Provider        string   `json:"provider,omitempty" env:"PROVIDER"`
	FallbackOrder   []string `json:"fallback_order,omitempty" env:"FALLBACK_ORDER" envSeparator:","`
	AnthropicAPIKey string   `json:"-" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string   `json:"-" env:"OPENAI_API_KEY"`
	GeminiAPIKey    string   `json:"-" env:"GEMINI_API_KEY"`

	AnthropicBaseURL string `json:"anthropic_base_url,omitempty" env:"ANTHROPIC_BASE_URL"`
	OpenAIBaseURL    string `json:"openai_base_url,omitempty" env:"OPENAI_BASE_URL"`
	GeminiEndpoint   string `json:"gemini_endpoint,omitempty" env:"GEMINI_ENDPOINT"`

	SonnetModel string `json:"sonnet_model,omitempty" env:"CLAUDE_SONNET_MODEL"`
	HaikuModel  string `json:"haiku_model,omitempty" env:"CLAUDE_HAIKU_MODEL"`
	OpenAIModel string `json:"openai_model,omitempty" env:"OPENAI_MODEL"`
	GeminiModel string `json:"gemini_model,omitempty" env:"GEMINI_MODEL"`

	MaxOutputTokens int           `json:"max_output_tokens,omitempty" env:"MAX_OUTPUT_TOKENS"`
	ProviderTimeout time.Duration `json:"-" env:"PROVIDER_TIMEOUT"`

	// Retry
	MaxRetriesPerProvider int           `json:"max_retries_per_provider,omitempty" env:"MAX_RETRIES_PER_PROVIDER"`
	RetryInitialInterval  time.Duration `json:"-" env:"RETRY_INITIAL_INTERVAL"`
	RetryMaxInterval      time.Duration `json:"-" env:"RETRY_MAX_INTERVAL"`

	// Limits. Nil means unset; an explicit 0 is kept so selection rejects it.
	MaxBullets     *int `json:"max_bullets,omitempty" env:"MAX_BULLETS"`
	MaxPerCompany  *int `json:"max_per_company,omitempty" env:"MAX_PER_COMPANY"`
	MaxPerPosition *int `json:"max_per_position,omitempty" env:"MAX_PER_POSITION"`
	MinPerCompany  *int `json:"min_per_company,omitempty" env:"MIN_PER_COMPANY"`
	CandidatePool  int  `json:"candidate_pool,omitempty" env:"CANDIDATE_POOL"`

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`                         // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty" env:"DATABASE_URL"` // PostgreSQL connection URL
	MetricsFile string `json:"metrics_file,omitempty" env:"METRICS_FILE"` // Prometheus textfile output
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	order := llm.DefaultFallbackOrder()
	fallback := make([]string, len(order))
	for i, id := range order {
		fallback[i] = string(id)
	}

	sel := types.DefaultSelectionConfig()
	retry := pipeline.DefaultRetryPolicy()
	return Config{
		FallbackOrder:         fallback,
		MaxOutputTokens:       llm.DefaultMaxOutputTokens,
		ProviderTimeout:       llm.DefaultTimeout,
		MaxRetriesPerProvider: retry.MaxRetriesPerProvider,
		RetryInitialInterval:  retry.InitialInterval,
		RetryMaxInterval:      retry.MaxInterval,
		MaxBullets:            Int(sel.MaxBullets),
		MaxPerCompany:         Int(sel.MaxPerCompany),
		MaxPerPosition:        Int(sel.MaxPerPosition),
		MinPerCompany:         Int(sel.MinPerCompany),
	}
}

// FromEnv reads configuration from environment variables. Unset variables stay zero so the
// result can be merged over a file config.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load merges the environment over the config file at path (skipped when empty) over
// Defaults.
func Load(path string) (*Config, error) {
	fromEnv, err := FromEnv()
	if err != nil {
		return nil, err
	}

	file := &Config{}
	if path != "" {
		file, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	merged := fromEnv.MergeWithDefaults(file.MergeWithDefaults(Defaults()))
	merged.Verbose = fromEnv.Verbose || file.Verbose
	merged.UseBrowser = fromEnv.UseBrowser || file.UseBrowser
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	// Validate numeric ranges
	nonNegative := []struct {
		name  string
		value int
	}{
		{"max_bullets", deref(c.MaxBullets)},
		{"max_per_company", deref(c.MaxPerCompany)},
		{"max_per_position", deref(c.MaxPerPosition)},
		{"min_per_company", deref(c.MinPerCompany)},
		{"candidate_pool", c.CandidatePool},
		{"max_output_tokens", c.MaxOutputTokens},
		{"max_retries_per_provider", c.MaxRetriesPerProvider},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", f.name)
		}
	}
	if c.ProviderTimeout < 0 || c.RetryInitialInterval < 0 || c.RetryMaxInterval < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}

	// Validate provider ids
	if c.Provider != "" {
		if _, err := llm.ParseProviderID(c.Provider); err != nil {
			return fmt.Errorf("config error: 'provider': %w", err)
		}
	}
	if _, err := c.ProviderOrder(); err != nil {
		return fmt.Errorf("config error: 'fallback_order': %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Job != "" {
		if _, err := os.Stat(c.Job); os.IsNotExist(err) {
			return fmt.Errorf("config error: job file not found: %s", c.Job)
		}
	}
	if c.Corpus != "" {
		if _, err := os.Stat(c.Corpus); os.IsNotExist(err) {
			return fmt.Errorf("config error: corpus file not found: %s", c.Corpus)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.Job, defaults.Job)
	mergeString(&result.JobURL, defaults.JobURL)
	mergeString(&result.Corpus, defaults.Corpus)
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.AnthropicAPIKey, defaults.AnthropicAPIKey)
	mergeString(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.AnthropicBaseURL, defaults.AnthropicBaseURL)
	mergeString(&result.OpenAIBaseURL, defaults.OpenAIBaseURL)
	mergeString(&result.GeminiEndpoint, defaults.GeminiEndpoint)
	mergeString(&result.SonnetModel, defaults.SonnetModel)
	mergeString(&result.HaikuModel, defaults.HaikuModel)
	mergeString(&result.OpenAIModel, defaults.OpenAIModel)
	mergeString(&result.GeminiModel, defaults.GeminiModel)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.MetricsFile, defaults.MetricsFile)

	if len(result.FallbackOrder) == 0 {
		result.FallbackOrder = append([]string(nil), defaults.FallbackOrder...)
	}

	// Int and duration fields: use default if zero
	mergeInt(&result.MaxOutputTokens, defaults.MaxOutputTokens)
	mergeInt(&result.MaxRetriesPerProvider, defaults.MaxRetriesPerProvider)
	mergeLimit(&result.MaxBullets, defaults.MaxBullets)
	mergeLimit(&result.MaxPerCompany, defaults.MaxPerCompany)
	mergeLimit(&result.MaxPerPosition, defaults.MaxPerPosition)
	mergeLimit(&result.MinPerCompany, defaults.MinPerCompany)
	mergeInt(&result.CandidatePool, defaults.CandidatePool)
	mergeInt(&result.ProviderTimeout, defaults.ProviderTimeout)
	mergeInt(&result.RetryInitialInterval, defaults.RetryInitialInterval)
	mergeInt(&result.RetryMaxInterval, defaults.RetryMaxInterval)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(field *string, fallback string) {
	if *field == "" {
		*field = fallback
	}
}

func mergeInt[T int | time.Duration](field *T, fallback T) {
	if *field == 0 {
		*field = fallback
	}
}

// mergeLimit fills an unset limit with a copy of fallback. A set limit, zero included, is
// kept.
func mergeLimit(field **int, fallback *int) {
	if *field == nil && fallback != nil {
		*field = Int(*fallback)
	}
}

// Int returns a pointer to v, for setting limits.
func Int(v int) *int {
	return &v
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ProviderOrder parses FallbackOrder. Blank entries are skipped.
func (c *Config) ProviderOrder() ([]llm.ProviderID, error) {
	return llm.ParseProviderList(strings.Join(c.FallbackOrder, ","))
}

// LLMConfig returns the provider settings.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	cfg.AnthropicAPIKey = c.AnthropicAPIKey
	cfg.OpenAIAPIKey = c.OpenAIAPIKey
	cfg.GeminiAPIKey = c.GeminiAPIKey
	cfg.MaxOutputTokens = c.MaxOutputTokens
	cfg.Timeout = c.ProviderTimeout

	for id, model := range map[llm.ProviderID]string{
		llm.ClaudeSonnet: c.SonnetModel,
		llm.ClaudeHaiku:  c.HaikuModel,
		llm.GPT4oMini:    c.OpenAIModel,
		llm.GeminiFlash:  c.GeminiModel,
	} {
		if model != "" {
			cfg = cfg.WithModel(id, model)
		}
	}

	for id, url := range map[llm.ProviderID]string{
		llm.ClaudeSonnet: c.AnthropicBaseURL,
		llm.ClaudeHaiku:  c.AnthropicBaseURL,
		llm.GPT4oMini:    c.OpenAIBaseURL,
		llm.GeminiFlash:  c.GeminiEndpoint,
	} {
		if url != "" {
			cfg.BaseURLs[id] = url
		}
	}
	return cfg
}

// RetryPolicy returns the orchestrator retry settings.
func (c *Config) RetryPolicy() pipeline.RetryPolicy {
	policy := pipeline.DefaultRetryPolicy()
	if c.MaxRetriesPerProvider > 0 {
		policy.MaxRetriesPerProvider = c.MaxRetriesPerProvider
	}
	if c.RetryInitialInterval > 0 {
		policy.InitialInterval = c.RetryInitialInterval
	}
	if c.RetryMaxInterval > 0 {
		policy.MaxInterval = c.RetryMaxInterval
	}
	return policy
}

// SelectionConfig returns the diversity limits. It is not validated here; the pipeline
// rejects invalid limits with a ConfigError.
func (c *Config) SelectionConfig() types.SelectionConfig {
	return types.SelectionConfig{
		MaxBullets:     deref(c.MaxBullets),
		MaxPerCompany:  deref(c.MaxPerCompany),
		MaxPerPosition: deref(c.MaxPerPosition),
		MinPerCompany:  deref(c.MinPerCompany),
	}
}
