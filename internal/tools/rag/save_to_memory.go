package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// SaveToMemoryTool implements save_to_memory: persisting a key/value pair
// to the caller's long-lived agent memory via the DocumentService.
type SaveToMemoryTool struct {
	service DocumentService
	auth    func(context.Context) (models.AuthContext, bool)
}

// NewSaveToMemoryTool builds the save_to_memory tool.
func NewSaveToMemoryTool(service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *SaveToMemoryTool {
	return &SaveToMemoryTool{service: service, auth: authFn}
}

func (t *SaveToMemoryTool) Name() string        { return "save_to_memory" }
func (t *SaveToMemoryTool) Description() string { return "Save important information to persistent memory for later recall." }

func (t *SaveToMemoryTool) Schema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "key": {"type": "string"},
    "value": {"type": "string"}
  },
  "required": ["key", "value"]
}`)
}

type saveToMemoryInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (t *SaveToMemoryTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input saveToMemoryInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	key := strings.TrimSpace(input.Key)
	if key == "" {
		return &agent.ToolResult{Content: "key is required", IsError: true}, nil
	}
	auth, _ := t.auth(ctx)
	result, err := t.service.SaveToMemory(ctx, auth, key, input.Value)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to save to memory: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: result}, nil
}
