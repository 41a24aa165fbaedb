package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type createDocumentRequest struct {
	Name        string         `json:"name"`
	ContentType string         `json:"content_type"`
	Metadata    map[string]any `json:"metadata"`
	FolderName  string         `json:"folder_name"`
	EndUserID   string         `json:"end_user_id"`
}

// createDocument handles POST /documents: registers document metadata.
// Content ingestion (parsing, chunking, embedding) is the external
// retrieval collaborator's job; this store call only records the
// resulting metadata row.
func (h *handlers) createDocument(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body createDocumentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, apperr.ValidationErrorf("name is required"))
		return
	}

	now := time.Now()
	doc := &models.Document{
		ID:          uuid.NewString(),
		Name:        body.Name,
		ContentType: body.ContentType,
		Owner:       models.Owner{ID: authCtx.EntityID, Type: string(authCtx.EntityType)},
		SystemMetadata: models.SystemMetadata{
			AppID:      authCtx.AppID,
			EndUserID:  body.EndUserID,
			FolderName: body.FolderName,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		DocMetadata: body.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.deps.Store.Documents.Create(r.Context(), doc); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *handlers) getDocument(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	doc, err := h.deps.Store.Documents.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	docs, err := h.deps.Store.Documents.List(r.Context(), authCtx, nil, nil, limit, offset)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *handlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if err := h.deps.Store.Documents.Delete(r.Context(), authCtx, r.PathValue("id")); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
