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

// validAnalysisTypes are the analysis_type values the tool accepts.
var validAnalysisTypes = map[string]bool{
	"entities":  true,
	"facts":     true,
	"summary":   true,
	"sentiment": true,
	"full":      true,
}

// DocumentAnalyzerTool implements the document_analyzer tool: entity,
// fact, summary, sentiment, or full analysis of a document's content via
// the DocumentService.
type DocumentAnalyzerTool struct {
	documents store.DocumentStore
	service   DocumentService
	auth      func(context.Context) (models.AuthContext, bool)
}

// NewDocumentAnalyzerTool builds the document_analyzer tool.
func NewDocumentAnalyzerTool(documents store.DocumentStore, service DocumentService, authFn func(context.Context) (models.AuthContext, bool)) *DocumentAnalyzerTool {
	return &DocumentAnalyzerTool{documents: documents, service: service, auth: authFn}
}

func (t *DocumentAnalyzerTool) Name() string { return "document_analyzer" }

func (t *DocumentAnalyzerTool) Description() string {
	return "Analyze a document for entities, facts, summary, sentiment, or a full combined analysis."
}

func (t *DocumentAnalyzerTool) Schema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "document_id": {"type": "string"},
    "analysis_type": {"type": "string", "enum": ["entities", "facts", "summary", "sentiment", "full"]}
  },
  "required": ["document_id", "analysis_type"]
}`)
}

type documentAnalyzerInput struct {
	DocumentID   string `json:"document_id"`
	AnalysisType string `json:"analysis_type"`
}

// Execute analyzes a document and records a whole-document source-map
// entry tagged with the analysis type.
func (t *DocumentAnalyzerTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input documentAnalyzerInput
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, nil
	}
	docID := strings.TrimSpace(input.DocumentID)
	if docID == "" {
		return &agent.ToolResult{Content: "document_id is required", IsError: true}, nil
	}
	if !validAnalysisTypes[input.AnalysisType] {
		return &agent.ToolResult{Content: fmt.Sprintf("unknown analysis_type: %s", input.AnalysisType), IsError: true}, nil
	}

	auth, _ := t.auth(ctx)
	doc, err := t.documents.Get(ctx, auth, docID)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("Document not found: %s", docID), IsError: true}, nil
	}

	analysis, err := t.service.AnalyzeDocument(ctx, auth, docID, input.AnalysisType)
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("analysis failed: %v", err), IsError: true}, nil
	}

	if sourceMap, ok := agent.SourceMapFromContext(ctx); ok {
		sourceMap.Add(&models.SourceInfo{
			DocumentID:   docID,
			DocumentName: fmt.Sprintf("%s (%s)", doc.Name, input.AnalysisType),
			ChunkIndex:   -1,
			Content:      analysis,
		})
	}

	return &agent.ToolResult{Content: analysis}, nil
}
