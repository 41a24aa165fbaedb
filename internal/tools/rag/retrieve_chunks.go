package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// RetrieveChunksTool implements the retrieve_chunks tool: semantic search
// over indexed document content, returning content parts plus new
// source-map entries for every chunk it surfaces.
type RetrieveChunksTool struct {
	service  DocumentService
	auth     func(context.Context) (models.AuthContext, bool)
	defaultK int
}

// NewRetrieveChunksTool builds the retrieve_chunks tool over service,
// resolving caller identity from ctx via authFn (see internal/auth.FromContext).
func NewRetrieveChunksTool(service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *RetrieveChunksTool {
	return &RetrieveChunksTool{service: service, auth: authFn, defaultK: 5}
}

func (t *RetrieveChunksTool) Name() string { return "retrieve_chunks" }

func (t *RetrieveChunksTool) Description() string {
	return "Retrieve relevant text and image chunks from the knowledge base for a query."
}

func (t *RetrieveChunksTool) Schema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "Natural-language search query"},
    "k": {"type": "integer", "description": "Maximum chunks to retrieve (default 5)"},
    "filters": {"type": "object", "description": "Metadata filters, scalar or list values"},
    "min_score": {"type": "number", "description": "Minimum similarity score, 0 to 1"},
    "folder_name": {"type": "string", "description": "Restrict retrieval to a named folder"},
    "end_user_id": {"type": "string", "description": "Restrict retrieval to an end user's documents"},
    "use_colpali": {"type": "boolean", "description": "Use multi-vector image-aware retrieval"}
  },
  "required": ["query"]
}`)
}

type retrieveChunksInput struct {
	Query      string         `json:"query"`
	K          int            `json:"k,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
	MinScore   float32        `json:"min_score,omitempty"`
	FolderName string         `json:"folder_name,omitempty"`
	EndUserID  string         `json:"end_user_id,omitempty"`
	UseColPali bool           `json:"use_colpali,omitempty"`
}

// Execute retrieves chunks and records each into the context's source map
// (attached by agent.WithSourceMap), returning a JSON array of content
// parts citing the assigned source index.
func (t *RetrieveChunksTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input retrieveChunksInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return &agent.ToolResult{Content: "query is required", IsError: true}, nil
	}

	k := input.K
	if k <= 0 {
		k = t.defaultK
	}

	auth, _ := t.auth(ctx)
	resp, err := t.service.SearchChunks(ctx, auth, ChunkSearchRequest{
		Query:      query,
		K:          k,
		Filters:    input.Filters,
		MinScore:   input.MinScore,
		FolderName: input.FolderName,
		EndUserID:  input.EndUserID,
		UseColPali: input.UseColPali,
	})
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("retrieval failed: %v", err), IsError: true}, nil
	}
	if resp == nil || len(resp.Results) == 0 {
		return &agent.ToolResult{Content: fmt.Sprintf("No relevant chunks found for query: %q", query)}, nil
	}

	sourceMap, _ := agent.SourceMapFromContext(ctx)

	type contentPart struct {
		Type   string `json:"type"`
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	parts := make([]contentPart, 0, len(resp.Results))
	for _, chunk := range resp.Results {
		if chunk == nil {
			continue
		}
		sourceID := chunk.DocumentID
		if sourceMap != nil {
			idx := sourceMap.Add(&models.SourceInfo{
				DocumentID:   chunk.DocumentID,
				DocumentName: chunk.Metadata.DocumentName,
				ChunkIndex:   chunk.Index,
				Content:      chunk.Content,
				Score:        chunk.Score,
			})
			sourceID = strconv.Itoa(idx)
		}
		parts = append(parts, contentPart{Type: "text", Text: chunk.Content, Source: sourceID})
	}

	payload, err := json.Marshal(parts)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("failed to format results: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}
