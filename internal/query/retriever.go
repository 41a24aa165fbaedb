package query

import (
	"context"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// ragRetriever answers the raw /retrieve/* endpoints over the same
// rag.DocumentService the agent's retrieve_chunks tool and the query
// pipeline's Completer both use, plus internal/store for the
// document-level view GroupedSearch/SearchDocuments need.
type ragRetriever struct {
	service   rag.DocumentService
	documents store.DocumentStore
}

// NewRetriever builds the default Retriever.
func NewRetriever(service rag.DocumentService, documents store.DocumentStore) Retriever {
	return &ragRetriever{service: service, documents: documents}
}

func (r *ragRetriever) SearchChunks(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) (*models.DocumentSearchResponse, error) {
	resp, err := r.service.SearchChunks(ctx, auth, req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "retrieval failed", err)
	}
	return resp, nil
}

// GroupedSearch runs the same chunk search and buckets the results by
// document, preserving each document's first-seen order.
func (r *ragRetriever) GroupedSearch(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) (*GroupedChunkResponse, error) {
	resp, err := r.SearchChunks(ctx, auth, req)
	if err != nil {
		return nil, err
	}

	var order []string
	byDoc := make(map[string][]*models.DocumentChunk)
	for _, chunk := range resp.Results {
		if chunk == nil {
			continue
		}
		if _, seen := byDoc[chunk.DocumentID]; !seen {
			order = append(order, chunk.DocumentID)
		}
		byDoc[chunk.DocumentID] = append(byDoc[chunk.DocumentID], chunk)
	}

	groups := make([]ChunkGroup, 0, len(order))
	for _, docID := range order {
		groups = append(groups, ChunkGroup{DocumentID: docID, Chunks: byDoc[docID]})
	}
	return &GroupedChunkResponse{Groups: groups}, nil
}

// SearchDocuments runs a chunk search and resolves the distinct documents
// it touched through the metadata store, so callers get full Document
// records rather than chunk fragments.
func (r *ragRetriever) SearchDocuments(ctx context.Context, auth models.AuthContext, req rag.ChunkSearchRequest) ([]*models.Document, error) {
	resp, err := r.SearchChunks(ctx, auth, req)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, chunk := range resp.Results {
		if chunk == nil || seen[chunk.DocumentID] {
			continue
		}
		seen[chunk.DocumentID] = true
		ids = append(ids, chunk.DocumentID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := r.documents.GetByIDs(ctx, auth, ids)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "resolve search result documents", err)
	}
	return docs, nil
}
