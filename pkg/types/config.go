package types

import "time"

// BackoffKind selects how the delay between retry attempts grows.
type BackoffKind string

const (
	BackoffLinear      BackoffKind = "linear"
	BackoffExponential BackoffKind = "exponential"
)

// HTTPConfig holds shared HTTP settings used by adapters that make network requests.
type HTTPConfig struct {
	// Timeout is the per-call wall-clock cap (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig holds the adapter retry policy.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per call (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the first backoff delay (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// Backoff selects linear or exponential growth (default exponential).
	Backoff BackoffKind `json:"backoff" yaml:"backoff"`
}

// AdapterConfig groups the settings shared by every upstream adapter.
type AdapterConfig struct {
	HTTPConfig  `yaml:",inline"`
	RetryConfig `yaml:",inline"`
}

// LLMConfig holds credentials and model selection for one LLM adapter.
type LLMConfig struct {
	// Provider selects the upstream: anthropic, openai, or ollama.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Empty means the adapter is unavailable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// APIURL overrides the provider's default endpoint.
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty"`

	// MaxTokens caps the completion length.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// Configured reports whether the adapter has what it needs to make a call.
// Local OpenAI-compatible hosts (ollama) need an endpoint but no key.
func (c LLMConfig) Configured() bool {
	if c.Provider == "ollama" {
		return c.APIURL != ""
	}
	return c.APIKey != ""
}

// SearchConfig holds settings for the web-search adapter.
type SearchConfig struct {
	// Provider selects the backend: tavily, brave, or searxng (default tavily).
	Provider string `json:"provider" yaml:"provider"`

	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty"`

	// Depth is the Tavily search depth: basic or advanced.
	Depth string `json:"depth" yaml:"depth"`

	// MaxResults is the default number of results per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// HealthConfig bounds the primary-adapter health check that gates script generation.
type HealthConfig struct {
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
	Attempts int           `json:"attempts" yaml:"attempts"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config is the immutable process configuration, resolved once at startup
// and passed into adapter constructors.
type Config struct {
	Primary   LLMConfig    `json:"primary" yaml:"primary"`
	Secondary LLMConfig    `json:"secondary" yaml:"secondary"`
	Tertiary  LLMConfig    `json:"tertiary" yaml:"tertiary"`
	Search    SearchConfig `json:"search" yaml:"search"`

	Adapter AdapterConfig `json:"adapter" yaml:"adapter"`
	Health  HealthConfig  `json:"health" yaml:"health"`
	Log     LogConfig     `json:"log" yaml:"log"`

	// FrontendBaseURL is used by the boundary when emitting links.
	FrontendBaseURL string `json:"frontend_base_url" yaml:"frontend_base_url"`

	// AutoInstallDeps is read for the image collaborator; the pipeline ignores it.
	AutoInstallDeps bool `json:"auto_install_deps" yaml:"auto_install_deps"`

	// ArchivePath is the SQLite file used to store generation runs.
	ArchivePath string `json:"archive_path" yaml:"archive_path"`

	// ServerAddr is the listen address of the HTTP boundary.
	ServerAddr string `json:"server_addr" yaml:"server_addr"`
}
