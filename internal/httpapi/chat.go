package httpapi

import (
	"net/http"
	"strconv"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
)

// getChat handles GET /chat/{chat_id}: the full message history, empty if
// the conversation doesn't exist yet (mirrors Pipeline's own
// create-on-first-use semantics).
func (h *handlers) getChat(w http.ResponseWriter, r *http.Request) {
	if _, ok := mustAuth(w, r); !ok {
		return
	}
	chatID := r.PathValue("chat_id")
	conv, err := h.deps.Store.Chats.Get(r.Context(), chatID)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, conv.History)
}

// listChats handles GET /chats?limit=N: conversation summaries (history
// omitted) visible to the caller.
func (h *handlers) listChats(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperr.ValidationErrorf("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	convs, err := h.deps.Store.Chats.List(r.Context(), authCtx, limit)
	if err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

type setChatTitleRequest struct {
	Title string `json:"title"`
}

// setChatTitle handles PATCH /chats/{chat_id}/title.
func (h *handlers) setChatTitle(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body setChatTitleRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Title == "" {
		writeError(w, apperr.ValidationErrorf("title is required"))
		return
	}
	chatID := r.PathValue("chat_id")
	if err := h.deps.Store.Chats.SetTitle(r.Context(), authCtx, chatID, body.Title); err != nil {
		writeError(w, storeErr(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
