package query

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/cache"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// AgentRequest is a single /agent call, after request-body decoding.
type AgentRequest struct {
	ChatID        string
	Query         string
	Model         string
	MaxTokens     int
	MaxIterations int
	EndUserID     string
}

// AgentRunner executes one /agent turn over the C6 orchestrator, wrapping
// it with the same chat-history load/append and quota bookkeeping Pipeline
// applies to /query. The orchestrator itself stays a pure turn executor
// with no store/cache access (see internal/agent/orchestrator.go); this
// type is where that plumbing lives instead of being duplicated in
// internal/httpapi.
type AgentRunner struct {
	history      *cache.ChatCache
	usage        store.UsageStore
	quota        quotaEnforcer
	orchestrator *agent.Orchestrator
}

// NewAgentRunner builds an AgentRunner over orch.
func NewAgentRunner(history *cache.ChatCache, usage store.UsageStore, quota config.QuotaConfig, mode config.Mode, orch *agent.Orchestrator) *AgentRunner {
	return &AgentRunner{
		history:      history,
		usage:        usage,
		quota:        quotaEnforcer{usage: usage, cfg: quota, mode: mode},
		orchestrator: orch,
	}
}

// Run loads history, enforces quota, runs one agent turn, and — only once
// the orchestrator returns — persists the user and assistant messages and
// records usage.
func (r *AgentRunner) Run(ctx context.Context, auth models.AuthContext, req AgentRequest) (*agent.RunResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperr.ValidationErrorf("query is required")
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}

	conv, err := r.history.Get(ctx, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load chat history", err)
	}

	if err := r.quota.enforce(ctx, auth); err != nil {
		return nil, err
	}

	result, err := r.orchestrator.Run(ctx, conv.History, req.Query, agent.Options{
		Model:         req.Model,
		MaxTokens:     req.MaxTokens,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.ProviderError, "agent turn failed", err)
	}

	owner := ownerOf(auth)
	userMsg := newMessage(chatID, models.RoleUser, req.Query)
	assistantMsg := newMessage(chatID, models.RoleAssistant, result.Response)
	if err := r.history.AppendTurn(ctx, chatID, owner, auth.AppID, req.EndUserID, []models.Message{userMsg, assistantMsg}); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "persist agent turn", err)
	}

	if r.usage != nil {
		_ = r.usage.Record(ctx, &models.UsageLog{
			ID:         uuid.NewString(),
			AppID:      auth.AppID,
			EntityType: auth.EntityType,
			EntityID:   auth.EntityID,
			Operation:  models.UsageQuery,
			Model:      req.Model,
			CreatedAt:  time.Now(),
		})
	}

	return result, nil
}
