package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// RetrieveDocumentTool implements the retrieve_document tool: the full
// reconstructed content of a document (via the DocumentService) or its
// metadata record (via the metadata store), selected by mode.
type RetrieveDocumentTool struct {
	documents store.DocumentStore
	service   DocumentService
	auth      func(context.Context) (models.AuthContext, bool)
}

// NewRetrieveDocumentTool builds the retrieve_document tool.
func NewRetrieveDocumentTool(documents store.DocumentStore, service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *RetrieveDocumentTool {
	return &RetrieveDocumentTool{documents: documents, service: service, auth: authFn}
}

func (t *RetrieveDocumentTool) Name() string { return "retrieve_document" }

func (t *RetrieveDocumentTool) Description() string {
	return "Get a document's full content or metadata by id."
}

func (t *RetrieveDocumentTool) Schema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "document_id": {"type": "string"},
    "mode": {"type": "string", "enum": ["content", "metadata"], "description": "default: content"}
  },
  "required": ["document_id"]
}`)
}

type retrieveDocumentInput struct {
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode,omitempty"`
}

// Execute returns either the document's reconstructed text (mode=content)
// or its metadata record as JSON (mode=metadata), recording a
// whole-document source-map entry in either case.
func (t *RetrieveDocumentTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input retrieveDocumentInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	docID := strings.TrimSpace(input.DocumentID)
	if docID == "" {
		return &agent.ToolResult{Content: "document_id is required", IsError: true}, nil
	}
	mode := input.Mode
	if mode == "" {
		mode = "content"
	}

	auth, _ := t.auth(ctx)
	doc, err := t.documents.Get(ctx, auth, docID)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Document not found: %s", docID), IsError: true}, nil
	}

	var result string
	switch mode {
	case "metadata":
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("failed to format metadata: %v", err), IsError: true}, nil
		}
		result = string(payload)
	case "content":
		content, err := t.service.DocumentContent(ctx, auth, docID)
		if err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("failed to load document content: %v", err), IsError: true}, nil
		}
		result = content
	default:
		return &agent.ToolResult{Content: fmt.Sprintf("unknown mode: %s", mode), IsError: true}, nil
	}

	if sourceMap, ok := agent.SourceMapFromContext(ctx); ok {
		sourceMap.Add(&models.SourceInfo{
			DocumentID:   docID,
			DocumentName: doc.Name,
			ChunkIndex:   -1,
			Content:      result,
		})
	}

	return &agent.ToolResult{Content: result}, nil
}
