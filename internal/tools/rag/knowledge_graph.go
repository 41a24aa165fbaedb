package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

const graphQuerySchema = `{
  "type": "object",
  "properties": {
    "graph_name": {"type": "string"},
    "query": {"type": "string"},
    "query_type": {"type": "string", "enum": ["entities", "paths", "subgraph", "list_entities"]}
  },
  "required": ["graph_name", "query"]
}`

type graphQueryInput struct {
	GraphName string `json:"graph_name"`
	Query     string `json:"query"`
	QueryType string `json:"query_type,omitempty"`
}

func parseGraphQueryInput(params json.RawMessage) (graphQueryInput, error) {
	var input graphQueryInput
	if err := json.Unmarshal(params, &input); err != nil {
		return input, err
	}
	input.GraphName = strings.TrimSpace(input.GraphName)
	input.Query = strings.TrimSpace(input.Query)
	return input, nil
}

// KnowledgeGraphQueryTool implements knowledge_graph_query: querying a
// locally constructed knowledge graph for entities, paths, subgraphs, or
// entity listings. Mutually exclusive with GraphAPIRetrieveTool, gated by
// config.RAGConfig.GraphMode via the registry's availability predicate.
type KnowledgeGraphQueryTool struct {
	service DocumentService
	auth    func(context.Context) (models.AuthContext, bool)
}

// NewKnowledgeGraphQueryTool builds the knowledge_graph_query tool.
func NewKnowledgeGraphQueryTool(service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *KnowledgeGraphQueryTool {
	return &KnowledgeGraphQueryTool{service: service, auth: authFn}
}

func (t *KnowledgeGraphQueryTool) Name() string { return "knowledge_graph_query" }

func (t *KnowledgeGraphQueryTool) Description() string {
	return "Query the local knowledge graph for entities, paths, subgraphs, or an entity listing."
}

func (t *KnowledgeGraphQueryTool) Schema() json.RawMessage { return json.RawMessage(graphQuerySchema) }

func (t *KnowledgeGraphQueryTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	input, err := parseGraphQueryInput(params)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	if input.GraphName == "" || input.Query == "" {
		return &agent.ToolResult{Content: "graph_name and query are required", IsError: true}, nil
	}
	auth, _ := t.auth(ctx)
	result, err := t.service.QueryGraph(ctx, auth, GraphQueryRequest{
		GraphName: input.GraphName,
		Query:     input.Query,
		QueryType: input.QueryType,
	})
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("graph query failed: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: result}, nil
}

// GraphAPIRetrieveTool implements graph_api_retrieve: querying a remote
// Morphik-style knowledge-graph API in place of a locally constructed
// graph. Mutually exclusive with KnowledgeGraphQueryTool.
type GraphAPIRetrieveTool struct {
	service DocumentService
	auth    func(context.Context) (models.AuthContext, bool)
}

// NewGraphAPIRetrieveTool builds the graph_api_retrieve tool.
func NewGraphAPIRetrieveTool(service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *GraphAPIRetrieveTool {
	return &GraphAPIRetrieveTool{service: service, auth: authFn}
}

func (t *GraphAPIRetrieveTool) Name() string { return "graph_api_retrieve" }

func (t *GraphAPIRetrieveTool) Description() string {
	return "Retrieve an answer from a remote knowledge-graph API."
}

func (t *GraphAPIRetrieveTool) Schema() json.RawMessage { return json.RawMessage(graphQuerySchema) }

func (t *GraphAPIRetrieveTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	input, err := parseGraphQueryInput(params)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	if input.GraphName == "" || input.Query == "" {
		return &agent.ToolResult{Content: "graph_name and query are required", IsError: true}, nil
	}
	auth, _ := t.auth(ctx)
	result, err := t.service.RetrieveFromGraphAPI(ctx, auth, GraphQueryRequest{
		GraphName: input.GraphName,
		Query:     input.Query,
		QueryType: input.QueryType,
	})
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("graph API retrieval failed: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: result}, nil
}
