package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type createGraphRequest struct {
	Name        string   `json:"name"`
	DocumentIDs []string `json:"document_ids"`
}

func (h *handlers) createGraph(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body createGraphRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, apperr.ValidationErrorf("name is required"))
		return
	}

	now := time.Now()
	graph := &models.Graph{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Owner:       models.Owner{ID: authCtx.EntityID, Type: string(authCtx.EntityType)},
		DocumentIDs: body.DocumentIDs,
		SystemMetadata: models.SystemMetadata{
			AppID:     authCtx.AppID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.deps.Store.Graphs.Create(r.Context(), graph); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, graph)
}

func (h *handlers) getGraph(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	graph, err := h.deps.Store.Graphs.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (h *handlers) listGraphs(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	graphs, err := h.deps.Store.Graphs.List(r.Context(), authCtx)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, graphs)
}

func (h *handlers) deleteGraph(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if err := h.deps.Store.Graphs.Delete(r.Context(), authCtx, r.PathValue("id")); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
