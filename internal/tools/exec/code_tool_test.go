package exec

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestCodeExecToolRunsCommand(t *testing.T) {
	mgr := NewManager(t.TempDir())
	tool := NewCodeExecTool(mgr, 0)

	params, _ := json.Marshal(map[string]string{"code": "echo hi-from-sandbox"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %s", result.Content)
	}
	if !strings.Contains(result.Content, "hi-from-sandbox") {
		t.Fatalf("expected stdout in result, got %q", result.Content)
	}
}

func TestCodeExecToolReportsNonZeroExit(t *testing.T) {
	mgr := NewManager(t.TempDir())
	tool := NewCodeExecTool(mgr, 0)

	params, _ := json.Marshal(map[string]string{"code": "exit 3"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result for non-zero exit")
	}
}

func TestCodeExecToolRejectsEmptyCode(t *testing.T) {
	mgr := NewManager(t.TempDir())
	tool := NewCodeExecTool(mgr, 0)

	params, _ := json.Marshal(map[string]string{"code": ""})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error for empty code")
	}
}
