package models

import "time"

// WorkflowStatus is the lifecycle state of a WorkflowRun.
type WorkflowStatus string

const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// Workflow is a saved, named agent configuration: a system prompt, model
// selection, and tool allowlist that a caller can invoke repeatedly by
// name instead of re-specifying the run parameters every time.
type Workflow struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Owner         Owner          `json:"owner"`
	AppID         string         `json:"app_id,omitempty"`
	SystemPrompt  string         `json:"system_prompt,omitempty"`
	Model         string         `json:"model,omitempty"`
	AllowedTools  []string       `json:"allowed_tools,omitempty"`
	AccessControl ACL            `json:"access_control"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// WorkflowRun is one invocation of a Workflow: its input, resulting agent
// loop output, and status.
type WorkflowRun struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Status     WorkflowStatus `json:"status"`
	Input      string         `json:"input"`
	Output     string         `json:"output,omitempty"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
}
