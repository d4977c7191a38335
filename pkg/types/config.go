package types

import "time"

// HTTPConfig holds shared HTTP settings used by transports that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "parts-engine/0.1"). Per prd003-web-search R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ReasoningConfig holds settings for the reasoning client.
// Per prd008-reasoning R1.1-R1.5.
type ReasoningConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the reasoning model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the reasoning API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts bounds the attempts per completion, rate-limit retries
	// included (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Cooldown is the steady-state minimum interval between completions
	// (default 2s). Modeled as a token bucket, not a post-call sleep.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// RetryDelay is the wait before retrying a rate-limited call when the
	// provider does not suggest its own delay (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// SearchConfig holds settings for the web-search stage.
// Per prd003-web-search R1.2, R3.1.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the authentication key for the search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the maximum number of snippets kept per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// CatalogConfig holds settings for the catalog enrichment stage.
// Per prd006-enrichment R1.1.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// ClientID and ClientSecret are the client-credentials pair for the
	// catalog token exchange. Enrichment is skipped when either is empty.
	ClientID     string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
}

// PipelineConfig groups the provider configurations for one pipeline.
type PipelineConfig struct {
	Reasoning ReasoningConfig `json:"reasoning" yaml:"reasoning"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
}

// DatasheetConfig holds settings for datasheet downloads.
// Per prd009-operations R4.1-R4.3.
type DatasheetConfig struct {
	HTTPConfig `yaml:",inline"`

	// Dir is the directory datasheet PDFs are written to.
	Dir string `json:"dir" yaml:"dir"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// HistoryConfig holds settings for the run-history store.
// Per prd009-operations R2.1.
type HistoryConfig struct {
	// Path is the SQLite database file (default "runs/history.db").
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP serving surface.
// Per prd009-operations R3.1-R3.4.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// Environment selects gin's mode: "development" or "production".
	Environment string `json:"environment" yaml:"environment"`

	// AllowedOrigins lists CORS origins; entries may end in "*" for
	// prefix matching.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}
