package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type createFolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handlers) createFolder(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body createFolderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, apperr.ValidationErrorf("name is required"))
		return
	}

	now := time.Now()
	folder := &models.Folder{
		ID:          uuid.NewString(),
		Name:        body.Name,
		Description: body.Description,
		Owner:       models.Owner{ID: authCtx.EntityID, Type: string(authCtx.EntityType)},
		SystemMetadata: models.SystemMetadata{
			AppID:     authCtx.AppID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.deps.Store.Folders.Create(r.Context(), folder); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *handlers) getFolder(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	folder, err := h.deps.Store.Folders.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *handlers) listFolders(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	folders, err := h.deps.Store.Folders.List(r.Context(), authCtx)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// deleteFolder handles DELETE /folders/{id}?cascade=true, cascading to
// every document the folder owns when cascade is set (folders own their
// documents' lifecycle, same as the original implementation).
func (h *handlers) deleteFolder(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	cascade := r.URL.Query().Get("cascade") == "true"
	deletedDocs, err := h.deps.Store.Folders.Delete(r.Context(), authCtx, r.PathValue("id"), cascade)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "deleted_document_ids": deletedDocs})
}
