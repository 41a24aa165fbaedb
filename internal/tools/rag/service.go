// Package rag implements the C4 tool catalogue: the fixed-name tools the
// agent orchestrator advertises to the model (retrieve_chunks,
// retrieve_document, document_analyzer,
// knowledge_graph_query/graph_api_retrieve, list_graphs, list_documents,
// save_to_memory); execute_code lives in internal/tools/exec. Document parsing, chunking, embedding, vector search,
// and knowledge-graph construction are owned by an external DocumentService
// collaborator these tools call into; document/graph/folder metadata is
// owned by internal/store and looked up directly.
package rag

import (
	"context"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// DocumentService is the external retrieval/graph collaborator. Its
// implementation (parsing, chunking, embedding, vector search, reranking,
// knowledge-graph construction) is out of scope; tools depend only on this
// contract.
type DocumentService interface {
	// SearchChunks runs semantic retrieval over indexed document content.
	SearchChunks(ctx context.Context, auth models.AuthContext, req ChunkSearchRequest) (*models.DocumentSearchResponse, error)

	// DocumentContent returns the full reconstructed text of a document.
	DocumentContent(ctx context.Context, auth models.AuthContext, documentID string) (string, error)

	// AnalyzeDocument runs one of {entities, facts, summary, sentiment, full}
	// over a document's content and returns a textual analysis.
	AnalyzeDocument(ctx context.Context, auth models.AuthContext, documentID, analysisType string) (string, error)

	// QueryGraph answers a local knowledge-graph query (entities, paths,
	// subgraphs, or entity listing) scoped to a named graph.
	QueryGraph(ctx context.Context, auth models.AuthContext, req GraphQueryRequest) (string, error)

	// RetrieveFromGraphAPI answers a query via a remote Morphik-style
	// knowledge-graph API instead of a locally constructed graph.
	RetrieveFromGraphAPI(ctx context.Context, auth models.AuthContext, req GraphQueryRequest) (string, error)

	// SaveToMemory persists a key/value pair to the caller's long-lived
	// agent memory, scoped by auth.
	SaveToMemory(ctx context.Context, auth models.AuthContext, key, value string) (string, error)
}

// ChunkSearchRequest is the retrieve_chunks tool's request to the
// DocumentService, after argument sanitization and defaulting.
type ChunkSearchRequest struct {
	Query      string
	K          int
	Filters    map[string]any
	MinScore   float32
	FolderName string
	EndUserID  string
	UseColPali bool
}

// GraphQueryRequest is the knowledge_graph_query/graph_api_retrieve tools'
// request to the DocumentService.
type GraphQueryRequest struct {
	GraphName string
	Query     string
	QueryType string
}
