package httpapi

import (
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
)

type retrieveRequest struct {
	Query      string         `json:"query"`
	K          int            `json:"k"`
	Filters    map[string]any `json:"filters"`
	MinScore   float32        `json:"min_score"`
	FolderName string         `json:"folder_name"`
	EndUserID  string         `json:"end_user_id"`
	UseColPali bool           `json:"use_colpali"`
}

func (req retrieveRequest) toSearchRequest() rag.ChunkSearchRequest {
	return rag.ChunkSearchRequest{
		Query:      req.Query,
		K:          req.K,
		Filters:    req.Filters,
		MinScore:   req.MinScore,
		FolderName: req.FolderName,
		EndUserID:  req.EndUserID,
		UseColPali: req.UseColPali,
	}
}

// retrieveChunks handles POST /retrieve/chunks.
func (h *handlers) retrieveChunks(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req retrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.deps.Retriever.SearchChunks(r.Context(), auth, req.toSearchRequest())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Results)
}

// retrieveChunksGrouped handles POST /retrieve/chunks/grouped.
func (h *handlers) retrieveChunksGrouped(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req retrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.deps.Retriever.GroupedSearch(r.Context(), auth, req.toSearchRequest())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// retrieveDocs handles POST /retrieve/docs.
func (h *handlers) retrieveDocs(w http.ResponseWriter, r *http.Request) {
	auth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var req retrieveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	docs, err := h.deps.Retriever.SearchDocuments(r.Context(), auth, req.toSearchRequest())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
