package agent

import (
	"context"
	"encoding/json"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// LLMProvider is the C5 completion-provider abstraction: a uniform
// interface over one or more chat-completion backends with
// function-calling. Two concrete shapes satisfy it: a generic adapter
// whose responses carry tool calls directly, and a fallback adapter (see
// providers.Ollama) for backends whose tool-calling is unreliable, which
// instead re-injects tool results as a synthetic user-role message.
type LLMProvider interface {
	Complete(ctx context.Context, req *CompletionRequest) (<-chan *CompletionChunk, error)
	Name() string
	Models() []Model
	SupportsTools() bool
}

// CompletionRequest is a single completion call: the running message
// list plus the tool surface currently advertised by the registry.
type CompletionRequest struct {
	Model                string               `json:"model"`
	System               string               `json:"system,omitempty"`
	Messages             []CompletionMessage  `json:"messages"`
	Tools                []Tool               `json:"tools,omitempty"`
	MaxTokens            int                  `json:"max_tokens,omitempty"`
	EnableThinking       bool                 `json:"enable_thinking,omitempty"`
	ThinkingBudgetTokens int                  `json:"thinking_budget_tokens,omitempty"`
}

// CompletionMessage is one turn of the working message list the
// orchestrator feeds to the provider.
type CompletionMessage struct {
	Role        string               `json:"role"`
	Content     string               `json:"content,omitempty"`
	ToolCalls   []models.ToolCall    `json:"tool_calls,omitempty"`
	ToolResults []models.ToolResult  `json:"tool_results,omitempty"`
	Attachments []models.Attachment  `json:"attachments,omitempty"`
}

// CompletionChunk is a single streamed piece of a completion response.
type CompletionChunk struct {
	Text         string           `json:"text,omitempty"`
	ToolCall     *models.ToolCall `json:"tool_call,omitempty"`
	Done         bool             `json:"done,omitempty"`
	Error        error            `json:"-"`
	InputTokens  int              `json:"input_tokens,omitempty"`
	OutputTokens int              `json:"output_tokens,omitempty"`
}

// Model describes a completion model the provider exposes.
type Model struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ContextSize    int    `json:"context_size"`
	SupportsVision bool   `json:"supports_vision"`
}

// Tool is the C4 tool-registry entry surfaced to the provider: name,
// description, JSON schema, and the handler the dispatcher invokes.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (*ToolResult, error)
}

// ToolResult is a tool handler's output, pre-dispatch formatting.
type ToolResult struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}
