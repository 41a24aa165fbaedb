// Package query implements the C7 query pipeline: the single-turn
// retrieve-then-generate flow behind POST /query, and the bookkeeping
// (history load/append, quota enforcement, usage recording) shared with
// the agent turn behind POST /agent. It depends on C1 (auth), C2/C3
// (store/cache), and C5 (completion providers) the same way
// internal/agent's orchestrator does, but owns the persistence and quota
// concerns the orchestrator deliberately does not.
package query

import (
	"context"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// maxSystemPromptLen bounds a caller-supplied system prompt override; a
// much larger value is almost certainly a client bug, not an intentional
// prompt, and would otherwise crowd out the context window silently.
const maxSystemPromptLen = 32 * 1024

// PromptOverrides carries the caller-supplied adjustments to a query's
// generation parameters. A nil *PromptOverrides is equivalent to no
// overrides and always validates.
type PromptOverrides struct {
	SystemPrompt string
	Temperature  float32
}

// Validate rejects a malformed override with a typed validation error, per
// the query pipeline's first step.
func (o *PromptOverrides) Validate() error {
	if o == nil {
		return nil
	}
	if len(o.SystemPrompt) > maxSystemPromptLen {
		return apperr.ValidationErrorf("system_prompt override exceeds %d characters", maxSystemPromptLen)
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		return apperr.ValidationErrorf("temperature override must be between 0 and 2")
	}
	return nil
}

// QueryRequest is a single /query call, after request-body decoding.
type QueryRequest struct {
	ChatID     string
	Query      string
	Model      string
	MaxTokens  int
	K          int
	Filters    map[string]any
	FolderName string
	EndUserID  string
	Overrides  *PromptOverrides
}

// QueryResult is the non-streaming CompletionResponse the pipeline hands
// back to the caller and records to the usage ledger.
type QueryResult struct {
	Text         string
	Sources      []*models.SourceInfo
	InputTokens  int
	OutputTokens int
}

// StreamEventType names the three SSE event shapes the wire format
// defines.
type StreamEventType string

const (
	StreamEventAssistant StreamEventType = "assistant"
	StreamEventDone      StreamEventType = "done"
	StreamEventError     StreamEventType = "error"
)

// StreamEvent is one transport-neutral SSE event: internal/httpapi, not
// this package, turns it into `data: {...}\n\n` wire bytes, so this
// package never imports net/http.
type StreamEvent struct {
	Type    StreamEventType
	Content string
	Sources []*models.SourceInfo
}

// StreamChunk is one item from a Completer's token stream. Done chunks
// carry the accumulated sources and token accounting; Err chunks abort
// the turn without a Done chunk following.
type StreamChunk struct {
	Text         string
	Done         bool
	Err          error
	Sources      []*models.SourceInfo
	InputTokens  int
	OutputTokens int
}

// Completer is the external retrieval+generation collaborator
// (DocumentService.query(...) in the abstract design): it performs
// semantic retrieval over indexed content and generates an answer
// grounded in what it finds. Document parsing, chunking, embedding, and
// vector search live behind this contract, same as rag.DocumentService
// does for the agent tool catalogue — the two are separate collaborators
// because the query pipeline's single-shot retrieve+generate call is not
// the agent loop's multi-turn tool dispatch.
type Completer interface {
	// Query runs one non-streaming turn over the given history: the
	// authoritative history loaded before generation with the new user
	// message appended as its last entry.
	Query(ctx context.Context, auth models.AuthContext, req QueryRequest, history []models.Message) (*QueryResult, error)

	// StreamQuery runs one turn, streaming token chunks followed by a
	// final Done chunk carrying sources and usage. The returned channel is
	// always closed by the Completer, including on context cancellation.
	StreamQuery(ctx context.Context, auth models.AuthContext, req QueryRequest, history []models.Message) (<-chan StreamChunk, error)
}

// ChunkGroup is one document's chunks in a grouped-retrieval response.
type ChunkGroup struct {
	DocumentID string
	Chunks     []*models.DocumentChunk
}

// GroupedChunkResponse is the /retrieve/chunks/grouped response shape:
// the same chunks a plain search would return, grouped by document.
type GroupedChunkResponse struct {
	Groups []ChunkGroup
}

// Retriever answers the raw (non-generative) /retrieve/* endpoints. It is
// the same underlying collaborator as rag.DocumentService's SearchChunks,
// re-declared here so internal/httpapi depends only on internal/query for
// every external-collaborator contract rather than reaching into
// internal/tools/rag directly.
type Retriever interface {
	SearchChunks(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) (*models.DocumentSearchResponse, error)
	GroupedSearch(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) (*GroupedChunkResponse, error)
	SearchDocuments(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) ([]*models.Document, error)
}
