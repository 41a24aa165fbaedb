package query

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/cache"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// Pipeline runs the C7 single-turn flow: validate overrides, load history,
// enforce quota, persist the user message, invoke the Completer, then —
// only once generation has fully finished — persist the assistant message
// and record usage. internal/httpapi
// calls Run for a non-streaming /query and Stream for an SSE one; neither
// method does any net/http work, per §4.8's "no business logic" boundary.
type Pipeline struct {
	history     *cache.ChatCache
	usage       store.UsageStore
	quota       quotaEnforcer
	completer   Completer
	debugLogDir string
}

// NewPipeline builds a Pipeline. debugLogDir is where oversized message
// lists are dumped when the Completer reports ContextWindowExceeded (§7);
// empty disables the dump.
func NewPipeline(history *cache.ChatCache, usage store.UsageStore, quota config.QuotaConfig, mode config.Mode, completer Completer, debugLogDir string) *Pipeline {
	return &Pipeline{
		history:     history,
		usage:       usage,
		quota:       quotaEnforcer{usage: usage, cfg: quota, mode: mode},
		completer:   completer,
		debugLogDir: debugLogDir,
	}
}

// Run executes one non-streaming /query turn.
func (p *Pipeline) Run(ctx context.Context, auth models.AuthContext, req QueryRequest) (*QueryResult, error) {
	if err := req.Overrides.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperr.ValidationErrorf("query is required")
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}

	conv, err := p.history.Get(ctx, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load chat history", err)
	}

	if err := p.quota.enforce(ctx, auth); err != nil {
		return nil, err
	}

	owner := ownerOf(auth)
	userMsg := newMessage(chatID, models.RoleUser, req.Query)
	if err := p.history.AppendTurn(ctx, chatID, owner, auth.AppID, req.EndUserID, []models.Message{userMsg}); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "persist user message", err)
	}

	result, err := p.completer.Query(ctx, auth, req, append(conv.History, userMsg))
	if err != nil {
		return nil, p.handleCompletionError(chatID, conv.History, req.Query, err)
	}

	assistantMsg := newMessage(chatID, models.RoleAssistant, result.Text)
	if err := p.history.AppendTurn(ctx, chatID, owner, auth.AppID, req.EndUserID, []models.Message{assistantMsg}); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "persist assistant message", err)
	}

	p.recordUsage(ctx, auth, req.Model, result.InputTokens, result.OutputTokens)
	return result, nil
}

// Stream executes one streaming /query turn, calling emit for every SSE
// event. If ctx is cancelled before the Completer's stream drains, Stream
// returns without persisting an assistant message: partial content is
// discarded, per §4.7's cancellation clause and property S4.
func (p *Pipeline) Stream(ctx context.Context, auth models.AuthContext, req QueryRequest, emit func(StreamEvent) error) error {
	if err := req.Overrides.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(req.Query) == "" {
		return apperr.ValidationErrorf("query is required")
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}

	conv, err := p.history.Get(ctx, chatID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "load chat history", err)
	}

	if err := p.quota.enforce(ctx, auth); err != nil {
		return err
	}

	owner := ownerOf(auth)
	userMsg := newMessage(chatID, models.RoleUser, req.Query)
	if err := p.history.AppendTurn(ctx, chatID, owner, auth.AppID, req.EndUserID, []models.Message{userMsg}); err != nil {
		return apperr.Wrap(apperr.Internal, "persist user message", err)
	}

	chunks, err := p.completer.StreamQuery(ctx, auth, req, append(conv.History, userMsg))
	if err != nil {
		return p.handleCompletionError(chatID, conv.History, req.Query, err)
	}

	var content strings.Builder
	for {
		if ctx.Err() != nil {
			// Client disconnected or deadline hit: abort without
			// persisting the assistant turn. The user turn already
			// persisted above stays, matching S4.
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-chunks:
			if !ok {
				return nil
			}
			if chunk.Err != nil {
				_ = emit(StreamEvent{Type: StreamEventError, Content: chunk.Err.Error()})
				return p.handleCompletionError(chatID, conv.History, req.Query, chunk.Err)
			}
			if chunk.Text != "" {
				content.WriteString(chunk.Text)
				if err := emit(StreamEvent{Type: StreamEventAssistant, Content: chunk.Text}); err != nil {
					return nil // downstream transport closed; nothing left to persist
				}
			}
			if chunk.Done {
				if err := emit(StreamEvent{Type: StreamEventDone, Sources: chunk.Sources}); err != nil {
					return nil
				}
				assistantMsg := newMessage(chatID, models.RoleAssistant, content.String())
				if err := p.history.AppendTurn(ctx, chatID, owner, auth.AppID, req.EndUserID, []models.Message{assistantMsg}); err != nil {
					return apperr.Wrap(apperr.Internal, "persist assistant message", err)
				}
				p.recordUsage(ctx, auth, req.Model, chunk.InputTokens, chunk.OutputTokens)
				return nil
			}
		}
	}
}

// handleCompletionError classifies a Completer failure: ContextWindowExceeded
// errors are durably dumped for debugging and passed through untouched;
// anything else not already apperr-typed is wrapped as ProviderError. In
// neither case is an assistant message persisted.
func (p *Pipeline) handleCompletionError(chatID string, history []models.Message, query string, err error) error {
	if apperr.Is(err, apperr.ContextWindowExceeded) {
		p.dumpDebugMessages(chatID, history, query)
		return err
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Wrap(apperr.ProviderError, "query completion failed", err)
}

// dumpDebugMessages writes the offending message list to debugLogDir so a
// ContextWindowExceeded failure can be diagnosed after the fact. A write
// failure here is logged nowhere and never surfaces to the caller: the
// debug dump is best-effort, not part of the error contract.
func (p *Pipeline) dumpDebugMessages(chatID string, history []models.Message, query string) {
	if p.debugLogDir == "" {
		return
	}
	if err := os.MkdirAll(p.debugLogDir, 0o755); err != nil {
		return
	}
	payload, err := json.MarshalIndent(struct {
		ChatID  string           `json:"chat_id"`
		Query   string           `json:"query"`
		History []models.Message `json:"history"`
	}{ChatID: chatID, Query: query, History: history}, "", "  ")
	if err != nil {
		return
	}
	name := fmt.Sprintf("context_window_exceeded_%s_%d.json", chatID, time.Now().UnixNano())
	_ = os.WriteFile(filepath.Join(p.debugLogDir, name), payload, 0o644)
}

// recordUsage writes the usage ledger row for a completed turn. A
// failure here never fails the request: the answer already reached the
// caller, and usage accounting lagging briefly is preferable to rejecting
// a completed turn over a bookkeeping write.
func (p *Pipeline) recordUsage(ctx context.Context, auth models.AuthContext, model string, inputTokens, outputTokens int) {
	if p.usage == nil {
		return
	}
	_ = p.usage.Record(ctx, &models.UsageLog{
		ID:           uuid.NewString(),
		AppID:        auth.AppID,
		EntityType:   auth.EntityType,
		EntityID:     auth.EntityID,
		Operation:    models.UsageQuery,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CreatedAt:    time.Now(),
	})
}

func ownerOf(auth models.AuthContext) models.Owner {
	return models.Owner{ID: auth.EntityID, Type: string(auth.EntityType)}
}

func newMessage(conversationID string, role models.Role, content string) models.Message {
	return models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}
