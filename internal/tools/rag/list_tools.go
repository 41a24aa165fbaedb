package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// ListGraphsTool implements list_graphs: the graphs visible to the caller,
// sourced directly from the metadata store (graph construction is external,
// but the catalogue of named graphs is owned by C2).
type ListGraphsTool struct {
	graphs store.GraphStore
	auth   func(context.Context) (models.AuthContext, bool)
}

// NewListGraphsTool builds the list_graphs tool.
func NewListGraphsTool(graphs store.GraphStore, authFn func(context.Context) (models.AuthContext, bool)) *ListGraphsTool {
	return &ListGraphsTool{graphs: graphs, auth: authFn}
}

func (t *ListGraphsTool) Name() string            { return "list_graphs" }
func (t *ListGraphsTool) Description() string     { return "List knowledge graphs accessible to the caller." }
func (t *ListGraphsTool) Schema() json.RawMessage  { return json.RawMessage(`{"type":"object","properties":{}}`) }

func (t *ListGraphsTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	auth, _ := t.auth(ctx)
	graphs, err := t.graphs.List(ctx, auth)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to list graphs: %v", err), IsError: true}, nil
	}
	names := make([]string, 0, len(graphs))
	for _, g := range graphs {
		names = append(names, g.Name)
	}
	payload, err := json.MarshalIndent(struct {
		Count  int      `json:"count"`
		Graphs []string `json:"graphs"`
	}{Count: len(names), Graphs: names}, "", "  ")
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to format result: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

// ListDocumentsTool implements list_documents: the documents accessible to
// the caller, sourced directly from the metadata store.
type ListDocumentsTool struct {
	documents store.DocumentStore
	auth      func(context.Context) (models.AuthContext, bool)
}

// NewListDocumentsTool builds the list_documents tool.
func NewListDocumentsTool(documents store.DocumentStore, authFn func(context.Context) (models.AuthContext, bool)) *ListDocumentsTool {
	return &ListDocumentsTool{documents: documents, auth: authFn}
}

func (t *ListDocumentsTool) Name() string           { return "list_documents" }
func (t *ListDocumentsTool) Description() string    { return "List documents accessible to the caller." }
func (t *ListDocumentsTool) Schema() json.RawMessage { return json.RawMessage(`{"type":"object","properties":{}}`) }

func (t *ListDocumentsTool) Execute(ctx context.Context, _ json.RawMessage) (*agent.ToolResult, error) {
	auth, _ := t.auth(ctx)
	docs, err := t.documents.List(ctx, auth, nil, nil, 100, 0)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to list documents: %v", err), IsError: true}, nil
	}
	type docSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]docSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, docSummary{ID: d.ID, Name: d.Name})
	}
	payload, err := json.MarshalIndent(struct {
		Count     int          `json:"count"`
		Documents []docSummary `json:"documents"`
	}{Count: len(out), Documents: out}, "", "  ")
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to format result: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}
