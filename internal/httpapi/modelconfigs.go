package httpapi

import "net/http"

type modelConfigSummary struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	ContextWindow int    `json:"context_window"`
}

// listModelConfigs handles GET /models: the registered-model table callers
// can pass as the "model" field of a /query or /agent request.
func (h *handlers) listModelConfigs(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustAuth(w, r); !ok {
		return
	}
	out := make([]modelConfigSummary, 0, len(h.deps.Models.Models))
	for name, cfg := range h.deps.Models.Models {
		out = append(out, modelConfigSummary{
			Name:          name,
			Provider:      cfg.Provider,
			Model:         cfg.Model,
			ContextWindow: cfg.ContextWindow,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"default_model": h.deps.Models.DefaultModel,
		"models":        out,
	})
}
