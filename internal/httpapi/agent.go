package httpapi

import (
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/query"
)

type agentRequestBody struct {
	ChatID        string `json:"chat_id"`
	Query         string `json:"query"`
	Model         string `json:"model"`
	MaxTokens     int    `json:"max_tokens"`
	MaxIterations int    `json:"max_iterations"`
	EndUserID     string `json:"end_user_id"`
	DisplayMode   string `json:"display_mode"`
}

// agent handles POST /agent: one multi-turn tool-dispatch run over the
// orchestrator, wrapped with the same history/quota bookkeeping as /query.
// display_mode selects between the raw textual response and the parsed,
// display-object-annotated one the orchestrator already produces;
// "formatted" is the default per §4.6.
func (h *handlers) agent(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body agentRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.deps.Agent.Run(r.Context(), authCtx, query.AgentRequest{
		ChatID:        body.ChatID,
		Query:         body.Query,
		Model:         body.Model,
		MaxTokens:     body.MaxTokens,
		MaxIterations: body.MaxIterations,
		EndUserID:     body.EndUserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if body.DisplayMode == "raw" {
		writeJSON(w, http.StatusOK, map[string]any{
			"response": result.Response,
			"sources":  result.Sources,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
