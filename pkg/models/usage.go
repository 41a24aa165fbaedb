package models

import "time"

// UsageOperation categorizes a billable/quota-counted unit of work.
type UsageOperation string

const (
	UsageQuery          UsageOperation = "query"
	UsageIngest         UsageOperation = "ingest"
	UsageGraphBuild     UsageOperation = "graph_build"
	UsageToolExecution  UsageOperation = "tool_execution"
)

// UsageLog is one row of the append-only usage ledger consulted by the
// quota enforcer and exposed to callers for billing reconciliation.
type UsageLog struct {
	ID           string         `json:"id"`
	AppID        string         `json:"app_id,omitempty"`
	EntityType   EntityType     `json:"entity_type"`
	EntityID     string         `json:"entity_id"`
	Operation    UsageOperation `json:"operation"`
	Provider     string         `json:"provider,omitempty"`
	Model        string         `json:"model,omitempty"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	CreatedAt    time.Time      `json:"created_at"`
}

// QuotaUsage summarizes the current billing-period totals for a principal.
type QuotaUsage struct {
	Queries int `json:"queries"`
	Tokens  int `json:"tokens"`
}
