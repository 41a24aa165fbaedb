package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// ragCompleter is the Completer the /query endpoint actually runs against:
// one retrieval call against the rag.DocumentService, followed by one
// generation call through whichever C5 provider the router resolves for
// the request's model. It is the single-shot counterpart to the agent
// orchestrator's multi-turn tool loop — no tool-call round trips, no
// retry-on-tool-error, just retrieve once and answer.
type ragCompleter struct {
	retriever rag.DocumentService
	router    *ProviderRouter
	defaultK  int
}

// NewCompleter builds the default Completer over a retrieval collaborator
// and a provider router.
func NewCompleter(retriever rag.DocumentService, router *ProviderRouter) Completer {
	return &ragCompleter{retriever: retriever, router: router, defaultK: 5}
}

// prepare resolves the request's model to a provider, runs retrieval, and
// assembles the CompletionRequest the provider call needs.
func (c *ragCompleter) prepare(ctx context.Context, auth models.AuthContext, req QueryRequest, history []models.Message) (agent.LLMProvider, *agent.CompletionRequest, []*models.SourceInfo, error) {
	provider, modelID, err := c.router.Resolve(req.Model)
	if err != nil {
		return nil, nil, nil, err
	}

	k := req.K
	if k <= 0 {
		k = c.defaultK
	}
	search, err := c.retriever.SearchChunks(ctx, auth, rag.ChunkSearchRequest{
		Query:      req.Query,
		K:          k,
		Filters:    req.Filters,
		FolderName: req.FolderName,
		EndUserID:  req.EndUserID,
	})
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.ProviderError, "retrieval failed", err)
	}

	var sources []*models.SourceInfo
	var retrieved strings.Builder
	for i, chunk := range search.Results {
		if chunk == nil {
			continue
		}
		sources = append(sources, &models.SourceInfo{
			DocumentID:   chunk.DocumentID,
			DocumentName: chunk.Metadata.DocumentName,
			ChunkIndex:   chunk.Index,
			Content:      chunk.Content,
			Score:        chunk.Score,
		})
		fmt.Fprintf(&retrieved, "[%d] %s\n\n", i+1, chunk.Content)
	}

	system := req.Overrides.systemPrompt()
	if retrieved.Len() > 0 {
		system = strings.TrimSpace(system + "\n\nUse the following retrieved context to answer. Cite sources by their bracketed index.\n\n" + retrieved.String())
	}

	messages := make([]agent.CompletionMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, agent.CompletionMessage{Role: string(msg.Role), Content: msg.Content})
	}

	return provider, &agent.CompletionRequest{
		Model:     modelID,
		System:    system,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}, sources, nil
}

func (o *PromptOverrides) systemPrompt() string {
	if o == nil {
		return ""
	}
	return o.SystemPrompt
}

// Query runs one non-streaming retrieve-then-generate turn.
func (c *ragCompleter) Query(ctx context.Context, auth models.AuthContext, req QueryRequest, history []models.Message) (*QueryResult, error) {
	provider, compReq, sources, err := c.prepare(ctx, auth, req, history)
	if err != nil {
		return nil, err
	}

	chunks, err := provider.Complete(ctx, compReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "completion failed", err)
	}

	var text strings.Builder
	var inputTokens, outputTokens int
	for chunk := range chunks {
		if chunk.Error != nil {
			return nil, apperr.Wrap(apperr.ProviderError, "completion failed", chunk.Error)
		}
		text.WriteString(chunk.Text)
		if chunk.Done {
			inputTokens = chunk.InputTokens
			outputTokens = chunk.OutputTokens
		}
	}

	return &QueryResult{
		Text:         text.String(),
		Sources:      sources,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}

// StreamQuery runs one retrieve-then-generate turn, forwarding the
// provider's own token stream and appending a final Done chunk carrying
// sources and accounting once the provider signals completion.
func (c *ragCompleter) StreamQuery(ctx context.Context, auth models.AuthContext, req QueryRequest, history []models.Message) (<-chan StreamChunk, error) {
	provider, compReq, sources, err := c.prepare(ctx, auth, req, history)
	if err != nil {
		return nil, err
	}

	providerChunks, err := provider.Complete(ctx, compReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "completion failed", err)
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		send := func(c StreamChunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for chunk := range providerChunks {
			if chunk.Error != nil {
				send(StreamChunk{Err: apperr.Wrap(apperr.ProviderError, "completion failed", chunk.Error)})
				return
			}
			if chunk.Done {
				send(StreamChunk{Done: true, Sources: sources, InputTokens: chunk.InputTokens, OutputTokens: chunk.OutputTokens})
				return
			}
			if chunk.Text != "" && !send(StreamChunk{Text: chunk.Text}) {
				return
			}
		}
	}()
	return out, nil
}
