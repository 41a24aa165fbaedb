package httpapi

import (
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// localGenerateURI handles POST /local/generate_uri: a self-hosted
// developer URI embedding a signed token. It is intentionally
// unauthenticated — generating a local developer's own URI is how a fresh
// self-hosted deployment bootstraps its first credential — so it does not
// call mustAuth.
func (h *handlers) localGenerateURI(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, apperr.ValidationErrorf("malformed form body: %v", err))
		return
	}
	name := r.FormValue("name")
	if name == "" {
		name = "developer"
	}

	token, err := h.deps.Auth.Issue(models.AuthContext{
		EntityType:  models.EntityDeveloper,
		EntityID:    name,
		Permissions: []string{"read", "write", "admin"},
	})
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, "issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uri": auth.BuildURI(name, token, r.Host)})
}

type cloudGenerateURIRequest struct {
	Name  string `json:"name"`
	AppID string `json:"app_id"`
}

// cloudGenerateURI handles POST /cloud/generate_uri: a bearer-guarded
// per-app developer URI, scoping the issued token to AppID so every
// subsequent call through it is restricted to that app's data (see
// models.AuthContext.IsDeveloperScopedToApp).
func (h *handlers) cloudGenerateURI(w http.ResponseWriter, r *http.Request) {
	callerAuth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if !callerAuth.HasPermission("admin") {
		writeError(w, apperr.Forbiddenf("admin permission required"))
		return
	}
	var body cloudGenerateURIRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.AppID == "" {
		writeError(w, apperr.ValidationErrorf("app_id is required"))
		return
	}
	name := body.Name
	if name == "" {
		name = body.AppID
	}

	token, err := h.deps.Auth.Issue(models.AuthContext{
		EntityType:  models.EntityDeveloper,
		EntityID:    name,
		AppID:       body.AppID,
		Permissions: []string{"read", "write"},
	})
	if err != nil {
		writeError(w, apperr.Wrap(apperr.Internal, "issue token", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"uri":    auth.BuildURI(name, token, r.Host),
		"app_id": body.AppID,
	})
}

// cloudDeleteApp handles DELETE /cloud/apps?app_name=...: cascades the
// delete to every document, folder, and graph scoped to that app. It
// impersonates a developer token bound to app_name so the existing
// app_id-scoped store predicates (the same ones a real per-app token
// exercises) do the scoping, rather than duplicating that logic here.
// Workflows have no Delete in the store contract (see internal/store/store.go)
// so they are left in place; the response does not count them.
func (h *handlers) cloudDeleteApp(w http.ResponseWriter, r *http.Request) {
	callerAuth, ok := mustAuth(w, r)
	if !ok {
		return
	}
	if !callerAuth.HasPermission("admin") {
		writeError(w, apperr.Forbiddenf("admin permission required"))
		return
	}
	appName := r.URL.Query().Get("app_name")
	if appName == "" {
		writeError(w, apperr.ValidationErrorf("app_name is required"))
		return
	}

	appAuth := models.AuthContext{EntityType: models.EntityDeveloper, AppID: appName, Permissions: []string{"read", "write", "admin"}}
	ctx := r.Context()

	docs, err := h.deps.Store.Documents.List(ctx, appAuth, nil, nil, 10000, 0)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	deletedDocs := 0
	for _, doc := range docs {
		if err := h.deps.Store.Documents.Delete(ctx, appAuth, doc.ID); err == nil {
			deletedDocs++
		}
	}

	folders, err := h.deps.Store.Folders.List(ctx, appAuth)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	deletedFolders := 0
	for _, f := range folders {
		if _, err := h.deps.Store.Folders.Delete(ctx, appAuth, f.ID, false); err == nil {
			deletedFolders++
		}
	}

	graphs, err := h.deps.Store.Graphs.List(ctx, appAuth)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	deletedGraphs := 0
	for _, g := range graphs {
		if err := h.deps.Store.Graphs.Delete(ctx, appAuth, g.ID); err == nil {
			deletedGraphs++
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"deleted_documents": deletedDocs,
		"deleted_folders":   deletedFolders,
		"deleted_graphs":    deletedGraphs,
	})
}
