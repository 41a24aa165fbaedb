package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/config"
)

// ProviderRouter resolves a registered model name (an llm.models key, per
// config.LLMConfig) to the concrete C5 provider that serves its family and
// the underlying model id to pass in the completion request. It exists
// because each concrete provider (anthropic, openai, ollama) is
// single-model-family: nothing upstream of it otherwise knows which one a
// given request's model name belongs to.
type ProviderRouter struct {
	mu           sync.RWMutex
	models       map[string]config.ModelConfig
	providers    map[string]agent.LLMProvider
	defaultModel string
}

// NewProviderRouter builds a router over the registered model table and a
// provider-family map keyed by the same strings config.ModelConfig.Provider
// uses ("anthropic", "openai", "ollama").
func NewProviderRouter(cfg config.LLMConfig, providers map[string]agent.LLMProvider) *ProviderRouter {
	models := make(map[string]config.ModelConfig, len(cfg.Models))
	for name, mc := range cfg.Models {
		models[name] = mc
	}
	return &ProviderRouter{
		models:       models,
		providers:    providers,
		defaultModel: cfg.DefaultModel,
	}
}

// Resolve returns the provider and underlying model id for a registered
// model name. An empty name falls back to the configured default model.
func (r *ProviderRouter) Resolve(name string) (agent.LLMProvider, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if strings.TrimSpace(name) == "" {
		name = r.defaultModel
	}
	if name == "" {
		return nil, "", apperr.ValidationErrorf("no model specified and no default_model configured")
	}

	mc, ok := r.models[name]
	if !ok {
		return nil, "", apperr.ValidationErrorf("unregistered model %q", name)
	}
	provider, ok := r.providers[mc.Provider]
	if !ok {
		return nil, "", apperr.Wrap(apperr.Internal, fmt.Sprintf("no provider configured for family %q", mc.Provider), nil)
	}
	return provider, mc.Model, nil
}

// ContextWindow returns the configured context window for a registered
// model name, or zero if the model is unregistered or the window was left
// unconfigured.
func (r *ProviderRouter) ContextWindow(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[name].ContextWindow
}
