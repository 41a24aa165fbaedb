package query

import (
	"context"
	"testing"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/config"
)

type fakeProvider struct{ name string }

func (p *fakeProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	return nil, nil
}
func (p *fakeProvider) Name() string        { return p.name }
func (p *fakeProvider) Models() []agent.Model { return nil }
func (p *fakeProvider) SupportsTools() bool { return true }

func TestProviderRouterResolvesRegisteredModel(t *testing.T) {
	anthropic := &fakeProvider{name: "anthropic"}
	router := NewProviderRouter(config.LLMConfig{
		DefaultModel: "fast",
		Models: map[string]config.ModelConfig{
			"fast": {Provider: "anthropic", Model: "claude-haiku", ContextWindow: 200_000},
		},
	}, map[string]agent.LLMProvider{"anthropic": anthropic})

	provider, modelID, err := router.Resolve("fast")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if provider != anthropic || modelID != "claude-haiku" {
		t.Fatalf("expected anthropic/claude-haiku, got %v/%s", provider, modelID)
	}
	if router.ContextWindow("fast") != 200_000 {
		t.Fatalf("expected context window 200000, got %d", router.ContextWindow("fast"))
	}
}

func TestProviderRouterFallsBackToDefaultModel(t *testing.T) {
	anthropic := &fakeProvider{name: "anthropic"}
	router := NewProviderRouter(config.LLMConfig{
		DefaultModel: "fast",
		Models:       map[string]config.ModelConfig{"fast": {Provider: "anthropic", Model: "claude-haiku"}},
	}, map[string]agent.LLMProvider{"anthropic": anthropic})

	_, modelID, err := router.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if modelID != "claude-haiku" {
		t.Fatalf("expected default model resolution, got %s", modelID)
	}
}

func TestProviderRouterRejectsUnregisteredModel(t *testing.T) {
	router := NewProviderRouter(config.LLMConfig{}, map[string]agent.LLMProvider{})
	_, _, err := router.Resolve("nonexistent")
	if !apperr.Is(err, apperr.ValidationError) {
		t.Fatalf("expected ValidationError for unregistered model, got %v", err)
	}
}
