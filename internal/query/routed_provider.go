package query

import (
	"context"

	"github.com/haasonsaas/nexus-rag/internal/agent"
)

// RoutedProvider adapts a ProviderRouter to the agent.LLMProvider
// interface the orchestrator expects: the orchestrator is built once at
// startup against a single provider, but /agent requests may name any
// registered model across provider families, so this indirection
// resolves the family and rewrites the request's Model field to the
// resolved provider's own model id before delegating.
type RoutedProvider struct {
	router *ProviderRouter
}

// NewRoutedProvider builds a RoutedProvider over router.
func NewRoutedProvider(router *ProviderRouter) *RoutedProvider {
	return &RoutedProvider{router: router}
}

func (p *RoutedProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	provider, modelID, err := p.router.Resolve(req.Model)
	if err != nil {
		return nil, err
	}
	resolved := *req
	resolved.Model = modelID
	return provider.Complete(ctx, &resolved)
}

func (p *RoutedProvider) Name() string { return "routed" }

// Models lists the models registered across every provider family the
// router knows about.
func (p *RoutedProvider) Models() []agent.Model {
	p.router.mu.RLock()
	defer p.router.mu.RUnlock()
	models := make([]agent.Model, 0, len(p.router.models))
	for name := range p.router.models {
		models = append(models, agent.Model{ID: name, Name: name})
	}
	return models
}

// SupportsTools reports whether any registered provider supports tools;
// the orchestrator checks isFallbackAdapter per-call against the
// provider actually resolved for a given request, so this aggregate
// value only needs to be a reasonable default for callers that inspect
// it before a model is chosen.
func (p *RoutedProvider) SupportsTools() bool {
	p.router.mu.RLock()
	defer p.router.mu.RUnlock()
	for _, provider := range p.router.providers {
		if provider.SupportsTools() {
			return true
		}
	}
	return false
}
