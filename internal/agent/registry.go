package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// ToolRegistry is the C4 tool registry: it enumerates tools with
// thread-safe registration and lookup, and an availability predicate per
// tool that filters the advertised list (used to make
// knowledge_graph_query/graph_api_retrieve mutually exclusive based on a
// process-wide config option).
type ToolRegistry struct {
	mu           sync.RWMutex
	tools        map[string]Tool
	availability map[string]func() bool
}

// NewToolRegistry creates a new empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:        make(map[string]Tool),
		availability: make(map[string]func() bool),
	}
}

// Register adds a tool to the registry. An optional availability
// predicate filters whether the tool is advertised to the model; omitted
// or nil means always advertised.
func (r *ToolRegistry) Register(tool Tool, available ...func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
	if len(available) > 0 && available[0] != nil {
		r.availability[tool.Name()] = available[0]
	}
}

// Unregister removes a tool from the registry by name.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
	delete(r.availability, name)
}

// Get returns a tool by name regardless of its current availability —
// availability only governs what is advertised to the model, not what a
// direct dispatch may invoke.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Execute looks up name and invokes it, rejecting unknown tool names with
// a hard failure per the C4 dispatcher contract.
func (r *ToolRegistry) Execute(ctx context.Context, name string, params json.RawMessage) (*ToolResult, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool.Execute(ctx, params)
}

// AsLLMTools returns the tools currently advertised to the model: every
// registered tool whose availability predicate (if any) returns true.
func (r *ToolRegistry) AsLLMTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for name, tool := range r.tools {
		if pred, ok := r.availability[name]; ok && !pred() {
			continue
		}
		tools = append(tools, tool)
	}
	return tools
}

type sourceMapKey struct{}

// WithSourceMap attaches the per-run source map to ctx so tool handlers
// that produce source evidence (retrieve_chunks, retrieve_document,
// document_analyzer) can record source_id -> source_info entries as they
// run, without threading the map through every tool's Execute signature.
func WithSourceMap(ctx context.Context, sm *models.SourceMap) context.Context {
	return context.WithValue(ctx, sourceMapKey{}, sm)
}

// SourceMapFromContext retrieves the source map attached by WithSourceMap.
func SourceMapFromContext(ctx context.Context) (*models.SourceMap, bool) {
	sm, ok := ctx.Value(sourceMapKey{}).(*models.SourceMap)
	return sm, ok
}

// sanitizer strips fields from a tool's arguments that do not belong to
// its schema but that the model is prone to hallucinating from
// neighboring tool schemas (notably an accidental document_id on
// retrieve_chunks).
type sanitizer func(json.RawMessage) json.RawMessage

var sanitizers = map[string]sanitizer{
	"retrieve_chunks": stripFields("document_id"),
}

func stripFields(fields ...string) sanitizer {
	return func(params json.RawMessage) json.RawMessage {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(params, &m); err != nil {
			return params
		}
		changed := false
		for _, f := range fields {
			if _, ok := m[f]; ok {
				delete(m, f)
				changed = true
			}
		}
		if !changed {
			return params
		}
		out, err := json.Marshal(m)
		if err != nil {
			return params
		}
		return out
	}
}

// Dispatcher is the C4 dispatch contract: reject unknown tools, sanitize
// arguments, invoke the handler with caller auth and the per-run source
// map attached to its context, and return the result unchanged.
type Dispatcher struct {
	registry *ToolRegistry
	executor *Executor
}

// NewDispatcher builds a Dispatcher over registry, executing calls with
// the given concurrency/timeout/retry configuration.
func NewDispatcher(registry *ToolRegistry, config *ExecutorConfig) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		executor: NewExecutor(registry, config),
	}
}

// Dispatch sanitizes and invokes a single tool call, with auth and
// sourceMap available to the handler via ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, call models.ToolCall, sourceMap *models.SourceMap) *ExecutionResult {
	if _, ok := d.registry.Get(call.Name); !ok {
		return &ExecutionResult{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Error:      fmt.Errorf("%w: %s", ErrToolNotFound, call.Name),
		}
	}
	if s, ok := sanitizers[call.Name]; ok {
		call.Input = s(call.Input)
	}
	ctx = WithSourceMap(ctx, sourceMap)
	return d.executor.Execute(ctx, call)
}

// DispatchAll runs every call in calls, honoring the per-tool_call_id
// ordering the orchestrator must preserve when it appends tool-reply
// messages, regardless of the concurrency the executor used internally.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []models.ToolCall, sourceMap *models.SourceMap) []*ExecutionResult {
	results := make([]*ExecutionResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, tc models.ToolCall) {
			defer wg.Done()
			results[idx] = d.Dispatch(ctx, tc, sourceMap)
		}(i, call)
	}
	wg.Wait()
	return results
}
