package llm

import (
	"context"
	"os"
)

// SummarizationResult is what a Provider returns for one SessionContext.
type SummarizationResult struct {
	Summary       string   `json:"summary"`
	SuggestedType string   `json:"suggested_type,omitempty"`
	KeyFiles      []string `json:"key_files"`
	TokensUsed    int      `json:"tokens_used,omitempty"`
}

// Provider summarises a session's activity into a SummarizationResult.
// Implementations must be safe for concurrent use.
type Provider interface {
	Summarize(ctx context.Context, sc *SessionContext) (SummarizationResult, error)

	// Name identifies the provider for logging/config.
	Name() string

	// IsAvailable reports whether the provider is usable (has credentials).
	IsAvailable() bool
}

// Config selects and configures a Provider.
type Config struct {
	Provider        string `toml:"provider"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
	OllamaURL       string `toml:"ollama_url"`
	Model           string `toml:"model"`
	MaxTokens       int    `toml:"max_tokens"`
}

// DefaultConfig matches the original's serde defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "none",
		OllamaURL: "http://localhost:11434",
		MaxTokens: 1024,
	}
}

// NewFromConfig selects a Provider variant per cfg.Provider, falling back
// to a NoOpProvider with an explanatory reason whenever credentials are
// missing or the provider name is unrecognised.
func NewFromConfig(cfg Config) Provider {
	switch cfg.Provider {
	case "anthropic":
		apiKey := cfg.AnthropicAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return NewNoOpProvider("Anthropic API key not configured. Set ANTHROPIC_API_KEY or add anthropic_api_key to config.")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		return NewAnthropicProvider(apiKey, model, maxTokensOrDefault(cfg.MaxTokens))

	case "openai":
		apiKey := cfg.OpenAIAPIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return NewNoOpProvider("OpenAI API key not configured. Set OPENAI_API_KEY or add openai_api_key to config.")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIProvider(apiKey, model, maxTokensOrDefault(cfg.MaxTokens))

	case "ollama":
		endpoint := cfg.OllamaURL
		if endpoint == "" {
			endpoint = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3.2"
		}
		return NewOllamaProvider(endpoint, model)

	case "none", "":
		return NewNoOpProvider("LLM provider disabled. Set [llm].provider in config to enable.")

	default:
		return NewNoOpProvider("Unknown LLM provider: '" + cfg.Provider + "'. Valid options: anthropic, openai, ollama, none")
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 1024
	}
	return n
}
