// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the top-level configuration for the service, loaded once at
// startup and passed by reference into every component constructor.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	RAG      RAGConfig      `yaml:"rag"`
	Quota    QuotaConfig    `yaml:"quota"`
}

// Load reads, expands, merges (via $include), decodes with strict field
// checking, applies defaults and environment overrides, and validates a
// configuration file.
func Load(path string) (*Config, error) {
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyAuthDefaults(&cfg.Auth)
	applyLLMDefaults(&cfg.LLM)
	applyRAGDefaults(&cfg.RAG)
	applyQuotaDefaults(&cfg.Quota)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}
	if cfg.MetricsPort == 0 {
		cfg.MetricsPort = 9090
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 25
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.TokenExpiry == 0 {
		cfg.TokenExpiry = 24 * time.Hour
	}
}

func applyLLMDefaults(cfg *LLMConfig) {
	if cfg.Providers.Ollama.BaseURL == "" {
		cfg.Providers.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Providers.Ollama.NumCtx == 0 {
		cfg.Providers.Ollama.NumCtx = 16384
	}
	// Temperature is intentionally left at zero-value (0.0): the fallback
	// adapter forces temperature=0 on every call regardless of config.
}

func applyRAGDefaults(cfg *RAGConfig) {
	if cfg.Mode == "" {
		cfg.Mode = ModeSelfHosted
	}
	if cfg.GraphMode == "" {
		cfg.GraphMode = "local"
	}
	if cfg.DebugLogDir == "" {
		cfg.DebugLogDir = "debug_logs"
	}
}

func applyQuotaDefaults(cfg *QuotaConfig) {
	if cfg.MaxQueriesPerMonth == 0 {
		cfg.MaxQueriesPerMonth = 10000
	}
	if cfg.MaxTokensPerMonth == 0 {
		cfg.MaxTokensPerMonth = 50_000_000
	}
}

func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if value := strings.TrimSpace(os.Getenv("MORPHIK_HOST")); value != "" {
		cfg.Server.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_HTTP_PORT")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.Server.HTTPPort = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_METRICS_PORT")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.Server.MetricsPort = parsed
		}
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_EXEC_WORKSPACE_DIR")); value != "" {
		cfg.Server.ExecWorkspaceDir = value
	}

	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		cfg.Database.URL = value
	}

	if value := strings.TrimSpace(os.Getenv("JWT_SECRET")); value != "" {
		cfg.Auth.JWTSecret = value
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_TOKEN_EXPIRY")); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			cfg.Auth.TokenExpiry = parsed
		}
	}

	if value := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); value != "" {
		cfg.LLM.Providers.Anthropic.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); value != "" {
		cfg.LLM.Providers.OpenAI.APIKey = value
	}
	if value := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); value != "" {
		cfg.LLM.Providers.Ollama.BaseURL = value
	}

	if value := strings.TrimSpace(os.Getenv("MORPHIK_MODE")); value != "" {
		cfg.RAG.Mode = Mode(value)
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_GRAPH_MODE")); value != "" {
		cfg.RAG.GraphMode = value
	}
	if value := strings.TrimSpace(os.Getenv("MORPHIK_DOCUMENT_SERVICE_URL")); value != "" {
		cfg.RAG.DocumentServiceBaseURL = value
	}
}

// ConfigValidationError collects every validation failure found in one pass
// so a misconfigured deployment reports all problems at once.
type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var issues []string

	if cfg.RAG.Mode != ModeCloud && cfg.RAG.Mode != ModeSelfHosted {
		issues = append(issues, fmt.Sprintf("rag.mode must be %q or %q", ModeCloud, ModeSelfHosted))
	}
	if cfg.RAG.GraphMode != "local" && cfg.RAG.GraphMode != "api" {
		issues = append(issues, `rag.graph_mode must be "local" or "api"`)
	}
	if cfg.RAG.GraphMode == "api" && strings.TrimSpace(cfg.RAG.GraphAPIBaseURL) == "" {
		issues = append(issues, "rag.graph_api_base_url is required when rag.graph_mode is \"api\"")
	}
	if cfg.RAG.MaxLoopIterations < 0 {
		issues = append(issues, "rag.max_loop_iterations must be >= 0")
	}
	if strings.TrimSpace(cfg.RAG.DocumentServiceBaseURL) == "" {
		issues = append(issues, "rag.document_service_base_url is required")
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" && !cfg.Auth.Dev {
		issues = append(issues, "auth.jwt_secret is required unless auth.dev is true")
	}
	if cfg.Auth.TokenExpiry < 0 {
		issues = append(issues, "auth.token_expiry must be >= 0")
	}

	if strings.TrimSpace(cfg.Database.URL) == "" {
		issues = append(issues, "database.url is required")
	}
	if cfg.Database.MaxConnections < 0 {
		issues = append(issues, "database.max_connections must be >= 0")
	}

	for name, model := range cfg.LLM.Models {
		switch model.Provider {
		case "anthropic", "openai", "ollama":
		default:
			issues = append(issues, fmt.Sprintf("llm.models[%s].provider must be \"anthropic\", \"openai\", or \"ollama\"", name))
		}
		if strings.TrimSpace(model.Model) == "" {
			issues = append(issues, fmt.Sprintf("llm.models[%s].model is required", name))
		}
	}
	if cfg.LLM.DefaultModel != "" {
		if _, ok := cfg.LLM.Models[cfg.LLM.DefaultModel]; !ok {
			issues = append(issues, fmt.Sprintf("llm.default_model %q is not registered in llm.models", cfg.LLM.DefaultModel))
		}
	}

	if cfg.Quota.MaxQueriesPerMonth < 0 {
		issues = append(issues, "quota.max_queries_per_month must be >= 0")
	}
	if cfg.Quota.MaxTokensPerMonth < 0 {
		issues = append(issues, "quota.max_tokens_per_month must be >= 0")
	}

	if len(issues) > 0 {
		return &ConfigValidationError{Issues: issues}
	}
	return nil
}
