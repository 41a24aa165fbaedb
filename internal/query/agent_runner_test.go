package query

import (
	"context"
	"testing"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/cache"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

func TestAgentRunnerPersistsUserAndAssistantTogether(t *testing.T) {
	chats := newFakeChatStore()
	provider := &scriptedAgentProvider{turns: [][]*agent.CompletionChunk{
		{{Text: "the agent answer"}, {Done: true}},
	}}
	registry := agent.NewToolRegistry()
	orch := agent.NewOrchestrator(provider, registry, nil)

	runner := NewAgentRunner(cache.New(chats), &fakeUsageStore{}, config.QuotaConfig{}, config.ModeSelfHosted, orch)

	result, err := runner.Run(context.Background(), models.AuthContext{EntityID: "dev-1"}, AgentRequest{ChatID: "chat-1", Query: "what is x?", Model: "test-model"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Response != "the agent answer" {
		t.Fatalf("expected agent response, got %q", result.Response)
	}

	history := chats.historyOf("chat-1")
	if len(history) != 2 || history[0].Role != models.RoleUser || history[1].Role != models.RoleAssistant {
		t.Fatalf("expected user+assistant pair persisted, got %+v", history)
	}
}

type scriptedAgentProvider struct {
	turns [][]*agent.CompletionChunk
	calls int
}

func (p *scriptedAgentProvider) Complete(ctx context.Context, req *agent.CompletionRequest) (<-chan *agent.CompletionChunk, error) {
	turn := p.turns[p.calls]
	p.calls++
	ch := make(chan *agent.CompletionChunk, len(turn))
	for _, c := range turn {
		ch <- c
	}
	close(ch)
	return ch, nil
}
func (p *scriptedAgentProvider) Name() string         { return "generic" }
func (p *scriptedAgentProvider) Models() []agent.Model { return nil }
func (p *scriptedAgentProvider) SupportsTools() bool   { return true }
