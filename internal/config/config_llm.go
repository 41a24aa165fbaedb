package config

// LLMConfig registers the completion providers available to C5/C6.
type LLMConfig struct {
	// DefaultModel is the registered-model key used when a query/agent
	// request doesn't specify one.
	DefaultModel string `yaml:"default_model"`

	// Models is the registered-model table, keyed by the name clients pass
	// in requests (mirrors Morphik's REGISTERED_MODELS).
	Models map[string]ModelConfig `yaml:"models"`

	Providers LLMProvidersConfig `yaml:"providers"`
}

// ModelConfig names a provider + underlying model id, plus the context
// window used for ContextWindowExceeded accounting.
type ModelConfig struct {
	Provider      string `yaml:"provider"` // "anthropic" | "openai" | "ollama"
	Model         string `yaml:"model"`
	ContextWindow int    `yaml:"context_window"`
}

// LLMProvidersConfig holds provider-level credentials/endpoints.
type LLMProvidersConfig struct {
	Anthropic AnthropicConfig `yaml:"anthropic"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Ollama    OllamaConfig    `yaml:"ollama"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
}

// OllamaConfig configures the fallback adapter's direct HTTP dispatch.
type OllamaConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Temperature float32 `yaml:"temperature"` // forced to 0.0 at call time regardless
	NumCtx      int     `yaml:"num_ctx"`     // forced fixed context window at call time
}
