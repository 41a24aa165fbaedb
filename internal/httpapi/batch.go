package httpapi

import (
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
)

type batchDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids"`
	FolderName  string   `json:"folder_name"`
	EndUserID   string   `json:"end_user_id"`
}

// batchDocuments handles POST /batch/documents: fetch a caller-chosen set
// of documents by id in one round trip.
func (h *handlers) batchDocuments(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req batchDocumentsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	docs, err := h.deps.Store.Documents.GetByIDs(r.Context(), auth, req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

type batchChunksRequest struct {
	Sources    []string `json:"sources"`
	FolderName string   `json:"folder_name"`
	EndUserID  string   `json:"end_user_id"`
	UseColPali bool     `json:"use_colpali"`
}

// batchChunks handles POST /batch/chunks: fetch the chunks belonging to a
// caller-chosen set of source documents. Each source is searched
// independently (scoped to that document) and the results concatenated, so
// a caller gets exactly the documents it asked for rather than the top-K
// across the whole corpus.
func (h *handlers) batchChunks(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req batchChunksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var results []any
	for _, documentID := range req.Sources {
		resp, err := h.deps.Retriever.SearchChunks(r.Context(), auth, rag.ChunkSearchRequest{
			Filters:    map[string]any{"document_id": documentID},
			FolderName: req.FolderName,
			EndUserID:  req.EndUserID,
			UseColPali: req.UseColPali,
			K:          1000,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		for _, chunk := range resp.Results {
			results = append(results, chunk)
		}
	}
	writeJSON(w, http.StatusOK, results)
}
