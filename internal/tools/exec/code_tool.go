package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haasonsaas/nexus-rag/internal/agent"
)

// defaultCodeTimeout bounds how long a single execute_code invocation may
// run before its sandbox process is killed.
const defaultCodeTimeout = 30 * time.Second

// CodeExecTool implements the agent catalogue's execute_code tool: a
// single sandboxed command string in; stdout out on success, stdout
// followed by stderr (as an error result) on a non-zero exit. It
// narrows ExecTool's richer surface (cwd, env, stdin, background) down to
// the fixed-name, single-argument contract the tool catalogue publishes.
type CodeExecTool struct {
	manager *Manager
	timeout time.Duration
}

// NewCodeExecTool builds the execute_code tool over manager, running each
// invocation inside the manager's workspace root with the given timeout
// (0 uses defaultCodeTimeout).
func NewCodeExecTool(manager *Manager, timeout time.Duration) *CodeExecTool {
	if timeout <= 0 {
		timeout = defaultCodeTimeout
	}
	return &CodeExecTool{manager: manager, timeout: timeout}
}

func (t *CodeExecTool) Name() string { return "execute_code" }

func (t *CodeExecTool) Description() string {
	return "Run a snippet of code in a sandboxed workspace and return its output."
}

func (t *CodeExecTool) Schema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "code": {"type": "string", "description": "Code to execute"}
  },
  "required": ["code"]
}`)
}

type codeExecInput struct {
	Code string `json:"code"`
}

func (t *CodeExecTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.manager == nil {
		return &agent.ToolResult{Content: "execute_code sandbox unavailable", IsError: true}, nil
	}
	var input codeExecInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	if input.Code == "" {
		return &agent.ToolResult{Content: "code is required", IsError: true}, nil
	}

	result, err := t.manager.RunCommand(ctx, input.Code, "", nil, "", t.timeout)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("execution failed: %v", err), IsError: true}, nil
	}
	if result.ExitCode != 0 {
		return &agent.ToolResult{Content: result.Stdout + result.Stderr, IsError: true}, nil
	}
	return &agent.ToolResult{Content: result.Stdout}, nil
}
