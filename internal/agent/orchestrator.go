// Package agent implements the C6 agent orchestrator: the tool-dispatch
// state machine running over a C5 completion provider.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// DefaultMaxIterations caps the number of MODEL_CALL/TOOL_DISPATCH
// round trips a run will make. The core itself imposes no hard cap (see
// spec); this is the configurable safety cap implementers are permitted
// to add. Exceeding it yields a synthetic final message, never an error.
const DefaultMaxIterations = 10

// Options configures a single orchestrator Run.
type Options struct {
	Model          string
	MaxTokens      int
	MaxIterations  int
	EnableThinking bool
}

// Orchestrator runs the BUILD_MESSAGES -> MODEL_CALL -> [TOOL_DISPATCH ->
// MODEL_CALL]* -> PARSE -> DONE loop for a single agent turn.
type Orchestrator struct {
	provider   LLMProvider
	registry   *ToolRegistry
	dispatcher *Dispatcher
}

// NewOrchestrator builds an Orchestrator over provider and registry,
// dispatching tool calls with the given execution configuration (nil for
// defaults).
func NewOrchestrator(provider LLMProvider, registry *ToolRegistry, execConfig *ExecutorConfig) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		registry:   registry,
		dispatcher: NewDispatcher(registry, execConfig),
	}
}

// ToolHistoryEntry records one tool invocation for the output contract's
// tool_history field.
type ToolHistoryEntry struct {
	ToolName   string          `json:"tool_name"`
	ToolArgs   string          `json:"tool_args"`
	ToolResult string          `json:"tool_result"`
}

// RunResult is the C6 output contract.
type RunResult struct {
	Response       string                  `json:"response"`
	DisplayObjects []models.DisplayObject  `json:"display_objects"`
	ToolHistory    []ToolHistoryEntry      `json:"tool_history"`
	Sources        []*models.SourceInfo    `json:"sources"`
}

// Run executes one full agent turn: it builds the working message list
// from the prior conversation history and the new query, then loops
// MODEL_CALL/TOOL_DISPATCH until the model emits a final, non-tool-
// calling message, which it parses into the output contract.
func (o *Orchestrator) Run(ctx context.Context, history []models.Message, query string, opts Options) (*RunResult, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	sourceMap := models.NewSourceMap()
	tools := o.registry.AsLLMTools()
	system := BuildSystemPrompt(tools)

	messages := buildMessages(history, query)

	var toolHistory []ToolHistoryEntry
	var finalContent string

	for iteration := 0; ; iteration++ {
		if iteration >= opts.MaxIterations {
			finalContent = `[{"type":"text","content":"I was unable to finish within the allotted number of steps.","source":"agent-response"}]`
			break
		}

		content, toolCalls, err := o.modelCall(ctx, system, messages, tools, opts, query)
		if err != nil {
			return nil, &LoopError{Phase: PhaseStream, Iteration: iteration, Cause: err}
		}

		if len(toolCalls) == 0 {
			finalContent = content
			break
		}

		messages = append(messages, CompletionMessage{Role: string(models.RoleAssistant), Content: content, ToolCalls: toolCalls})

		results := o.dispatcher.DispatchAll(ctx, toolCalls, sourceMap)
		toolResults := make([]models.ToolResult, len(results))
		for i, r := range results {
			tr := models.ToolResult{ToolCallID: r.ToolCallID}
			if r.Error != nil {
				tr.Content = r.Error.Error()
				tr.IsError = true
			} else if r.Result != nil {
				tr.Content = r.Result.Content
				tr.IsError = r.Result.IsError
			}
			toolResults[i] = tr
			toolHistory = append(toolHistory, ToolHistoryEntry{
				ToolName:   toolCalls[i].Name,
				ToolArgs:   string(toolCalls[i].Input),
				ToolResult: tr.Content,
			})
		}
		messages = append(messages, CompletionMessage{Role: string(models.RoleTool), ToolResults: toolResults})
	}

	parsed := ParseTerminalResponse(finalContent)
	response := parsed.Text
	if response == "" {
		response = finalContent
	}

	return &RunResult{
		Response:       response,
		DisplayObjects: parsed.DisplayObjects,
		ToolHistory:    toolHistory,
		Sources:        ResolvedSources(parsed, sourceMap),
	}, nil
}

// buildMessages implements BUILD_MESSAGES: conversation history is
// copied verbatim (assistant/tool_calls paired with their tool replies
// are preserved pairwise via repairTranscript), followed by the new
// user query.
func buildMessages(history []models.Message, query string) []CompletionMessage {
	ptrs := make([]*models.Message, len(history))
	for i := range history {
		ptrs[i] = &history[i]
	}
	repaired := repairTranscript(ptrs)

	messages := make([]CompletionMessage, 0, len(repaired)+1)
	for _, m := range repaired {
		messages = append(messages, CompletionMessage{
			Role:        string(m.Role),
			Content:     m.Content,
			ToolCalls:   m.ToolCalls,
			ToolResults: m.ToolResults,
			Attachments: m.Attachments,
		})
	}
	messages = append(messages, CompletionMessage{Role: string(models.RoleUser), Content: query})
	return messages
}

// isFallbackAdapter reports whether provider requires fallback-adapter
// semantics: tool results re-injected as a synthetic user turn instead
// of native tool-role messages, because its tool-calling is unreliable.
// Matched by provider name substring, mirroring the original
// implementation's own model-name check as closely as possible in Go.
func isFallbackAdapter(provider LLMProvider) bool {
	return strings.Contains(strings.ToLower(provider.Name()), "ollama")
}

// modelCall invokes MODEL_CALL, draining the provider's stream into a
// single content string and any tool calls it requested. For a fallback
// adapter, the most recent tool-reply messages are re-injected as a
// synthetic user message (the adapter's own wire format has no tool
// role) before the request is issued.
func (o *Orchestrator) modelCall(ctx context.Context, system string, messages []CompletionMessage, tools []Tool, opts Options, originalQuery string) (string, []models.ToolCall, error) {
	req := &CompletionRequest{
		Model:          opts.Model,
		System:         system,
		Messages:       messages,
		Tools:          tools,
		MaxTokens:      opts.MaxTokens,
		EnableThinking: opts.EnableThinking,
	}
	if isFallbackAdapter(o.provider) {
		req.Messages = rewriteForFallbackAdapter(messages, originalQuery)
		req.Tools = nil
	}

	chunks, err := o.provider.Complete(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("model call: %w", err)
	}

	var content strings.Builder
	var toolCalls []models.ToolCall
	for chunk := range chunks {
		if chunk.Error != nil {
			return "", nil, fmt.Errorf("model call: %w", chunk.Error)
		}
		if chunk.Text != "" {
			content.WriteString(chunk.Text)
		}
		if chunk.ToolCall != nil {
			toolCalls = append(toolCalls, *chunk.ToolCall)
		}
	}
	return content.String(), toolCalls, nil
}

// fallbackContinuationTemplate is the synthetic user-role message a
// fallback adapter receives in place of native tool-role replies. The
// wording is mandated exactly, including the "ONLY ... Do not use your
// own knowledge" grounding instruction: fallback-adapter backends are
// prone to ignoring tool results in favor of their own knowledge unless
// told not to in the injected message itself.
const fallbackContinuationTemplate = "RETRIEVED INFORMATION:\n\n%s\n\nNow answer this query: '%s' using ONLY the retrieved information above. Do not use your own knowledge."

// rewriteForFallbackAdapter replaces the trailing run of tool-role
// messages with one synthetic user message, since fallback-adapter
// backends (see providers.Ollama) have no native tool role and their
// tool-calling support is otherwise unreliable. Structured content parts
// within a tool result have their text parts concatenated; anything else
// is serialized as JSON, per the mandated fallback-adapter contract.
func rewriteForFallbackAdapter(messages []CompletionMessage, originalQuery string) []CompletionMessage {
	if len(messages) == 0 {
		return messages
	}
	last := messages[len(messages)-1]
	if last.Role != string(models.RoleTool) {
		return messages
	}

	var b strings.Builder
	for i, r := range last.ToolResults {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(flattenToolResultContent(r.Content))
	}

	out := make([]CompletionMessage, len(messages)-1, len(messages))
	copy(out, messages[:len(messages)-1])
	out = append(out, CompletionMessage{
		Role:    string(models.RoleUser),
		Content: fmt.Sprintf(fallbackContinuationTemplate, b.String(), originalQuery),
	})
	return out
}

// flattenToolResultContent concatenates the text parts of a structured
// content-part array (as retrieve_chunks returns); content that isn't a
// JSON array of {type,text} parts is passed through unchanged, since it is
// already a plain string result.
func flattenToolResultContent(content string) string {
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parts); err != nil {
		return content
	}
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString("\n")
		}
		if p.Type == "text" {
			b.WriteString(p.Text)
		} else {
			encoded, _ := json.Marshal(p)
			b.Write(encoded)
		}
	}
	return b.String()
}
