package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/query"
)

type queryRequestBody struct {
	ChatID       string         `json:"chat_id"`
	Query        string         `json:"query"`
	Model        string         `json:"model"`
	MaxTokens    int            `json:"max_tokens"`
	K            int            `json:"k"`
	Filters      map[string]any `json:"filters"`
	FolderName   string         `json:"folder_name"`
	EndUserID    string         `json:"end_user_id"`
	Stream       bool           `json:"stream"`
	SystemPrompt string         `json:"system_prompt"`
	Temperature  float32        `json:"temperature"`
}

func (b queryRequestBody) toPipelineRequest() query.QueryRequest {
	var overrides *query.PromptOverrides
	if b.SystemPrompt != "" || b.Temperature != 0 {
		overrides = &query.PromptOverrides{SystemPrompt: b.SystemPrompt, Temperature: b.Temperature}
	}
	return query.QueryRequest{
		ChatID:     b.ChatID,
		Query:      b.Query,
		Model:      b.Model,
		MaxTokens:  b.MaxTokens,
		K:          b.K,
		Filters:    b.Filters,
		FolderName: b.FolderName,
		EndUserID:  b.EndUserID,
		Overrides:  overrides,
	}
}

// query handles POST /query: a single-turn retrieve-then-generate call,
// either a plain CompletionResponse or, when the caller asks for
// stream=true, an SSE token stream. All turn semantics (history, quota,
// persistence, cancellation) live in internal/query.Pipeline; this handler
// only decodes the request and picks a transport.
func (h *handlers) query(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := mustAuth(w, r)
	if !ok {
		return
	}
	var body queryRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	req := body.toPipelineRequest()

	if !body.Stream {
		result, err := h.deps.Pipeline.Run(r.Context(), authCtx, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, apperr.Wrap(apperr.Internal, "stream query", fmt.Errorf("response writer does not support flushing")))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	err := h.deps.Pipeline.Stream(r.Context(), authCtx, req, func(evt query.StreamEvent) error {
		return writeSSEEvent(w, flusher, evt)
	})
	if err != nil {
		_ = writeSSEEvent(w, flusher, query.StreamEvent{Type: query.StreamEventError, Content: err.Error()})
	}
}

type sseSource struct {
	DocumentID  string  `json:"document_id"`
	ChunkNumber int     `json:"chunk_number"`
	Score       float32 `json:"score"`
}

func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, evt query.StreamEvent) error {
	var payload any
	switch evt.Type {
	case query.StreamEventAssistant:
		payload = struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{Type: string(evt.Type), Content: evt.Content}
	case query.StreamEventDone:
		sources := make([]sseSource, 0, len(evt.Sources))
		for _, s := range evt.Sources {
			sources = append(sources, sseSource{DocumentID: s.DocumentID, ChunkNumber: s.ChunkIndex, Score: s.Score})
		}
		payload = struct {
			Type    string      `json:"type"`
			Sources []sseSource `json:"sources"`
		}{Type: string(evt.Type), Sources: sources}
	case query.StreamEventError:
		payload = struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{Type: string(evt.Type), Content: evt.Content}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
