package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type createWorkflowRequest struct {
	Name         string   `json:"name"`
	SystemPrompt string   `json:"system_prompt"`
	Model        string   `json:"model"`
	AllowedTools []string `json:"allowed_tools"`
}

// createWorkflow handles POST /workflows: saves a named agent
// configuration callers can invoke repeatedly without re-specifying its
// run parameters every time.
func (h *handlers) createWorkflow(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body createWorkflowRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, apperr.ValidationErrorf("name is required"))
		return
	}

	now := time.Now()
	wf := &models.Workflow{
		ID:           uuid.NewString(),
		Name:         body.Name,
		Owner:        models.Owner{ID: authCtx.EntityID, Type: string(authCtx.EntityType)},
		AppID:        authCtx.AppID,
		SystemPrompt: body.SystemPrompt,
		Model:        body.Model,
		AllowedTools: body.AllowedTools,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.deps.Store.Workflows.Create(r.Context(), wf); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

func (h *handlers) getWorkflow(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	wf, err := h.deps.Store.Workflows.Get(r.Context(), authCtx, r.PathValue("id"))
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func (h *handlers) listWorkflows(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	workflows, err := h.deps.Store.Workflows.List(r.Context(), authCtx)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, workflows)
}
