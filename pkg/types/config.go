package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the client without one.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "outline-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchSource identifies the literature search backend.
type SearchSource string

const (
	SourceADS      SearchSource = "ads"
	SourceOpenAlex SearchSource = "openalex"
)

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Source selects the search backend (default ads).
	Source SearchSource `json:"source" yaml:"source" mapstructure:"source"`

	// APIToken is the bearer token for the ADS API.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// Email is sent to OpenAlex as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// PageSize is the number of records requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxResults caps the number of records kept (default 1000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// EmbeddingConfig holds settings for the embedding stage.
type EmbeddingConfig struct {
	// Model is the embedding model identifier (default "text-embedding-ada-002").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the embedding endpoint.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// ChatProvider selects the chat-completion API.
type ChatProvider string

const (
	ProviderOpenAI    ChatProvider = "openai"
	ProviderAnthropic ChatProvider = "anthropic"
)

// ChatConfig holds shared settings for stages that call a chat model.
type ChatConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects openai (default) or anthropic.
	Provider ChatProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the chat model identifier (e.g. "gpt-4o-2024-05-13").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens bounds the response length where the provider requires it (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LabelConfig holds settings for the subtopic labelling stage.
type LabelConfig struct {
	// ChunkSize is the number of papers sent per chat call (default 30).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`

	// MinClusterSize is the largest cluster that is removed without a chat
	// call (default 3).
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size" mapstructure:"min_cluster_size"`
}

// StoreBackend selects where artifacts are kept.
type StoreBackend string

const (
	StoreFiles  StoreBackend = "files"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the artifact store.
type StoreConfig struct {
	// Backend selects files (default) or sqlite.
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// OutputDir is the base directory for artifacts (default "Data").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Chat      ChatConfig      `json:"chat" yaml:"chat" mapstructure:"chat"`
	Label     LabelConfig     `json:"label" yaml:"label" mapstructure:"label"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultPipelineConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{UserAgent: "outline-engine/0.1"},
			Source:     SourceADS,
			PageSize:   100,
			MaxResults: 1000,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-ada-002",
		},
		Chat: ChatConfig{
			HTTPConfig: HTTPConfig{UserAgent: "outline-engine/0.1"},
			Provider:   ProviderOpenAI,
			Model:      "gpt-4o-2024-05-13",
			MaxTokens:  4096,
		},
		Label: LabelConfig{
			ChunkSize:      30,
			MinClusterSize: 3,
		},
		Store: StoreConfig{
			Backend:   StoreFiles,
			OutputDir: "Data",
		},
	}
}
