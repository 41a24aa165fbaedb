package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haasonsaas/nexus-rag/internal/agent"
	"github.com/haasonsaas/nexus-rag/internal/agent/providers"
	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/cache"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/internal/httpapi"
	"github.com/haasonsaas/nexus-rag/internal/query"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/internal/tools/exec"
	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
	"github.com/spf13/cobra"
)

// buildServeCmd creates the "serve" command that starts the HTTP API.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the nexus HTTP API",
		Long: `Start the nexus HTTP API with all configured providers and tools.

The server will:
1. Load and validate configuration
2. Open the metadata store connection
3. Build the completion providers and tool registry
4. Serve the retrieval, query, and agent endpoints

Graceful shutdown is handled on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func runServe(ctx context.Context, configPath string, debug bool) error {
	if debug {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	logger := slog.Default()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("configuration loaded",
		"http_port", cfg.Server.HTTPPort,
		"rag_mode", cfg.RAG.Mode,
		"default_model", cfg.LLM.DefaultModel,
	)

	stores, err := store.NewPostgresStoresFromDSN(cfg.Database.URL, cfg.RAG.Mode, &store.Config{
		MaxOpenConns:    cfg.Database.MaxConnections,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	authService := auth.NewService(auth.Config{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenExpiry: cfg.Auth.TokenExpiry,
		Dev:         cfg.Auth.Dev,
	})

	llmProviders, err := buildProviders(cfg.LLM.Providers)
	if err != nil {
		return fmt.Errorf("build providers: %w", err)
	}
	router := query.NewProviderRouter(cfg.LLM, llmProviders)

	documentService := rag.NewHTTPDocumentService(cfg.RAG.DocumentServiceBaseURL, nil)

	registry := buildToolRegistry(documentService, stores, cfg.RAG, cfg.Server)
	execConfig := agent.DefaultExecutorConfig()
	orchestrator := agent.NewOrchestrator(query.NewRoutedProvider(router), registry, execConfig)

	history := cache.New(stores.Chats)
	completer := query.NewCompleter(documentService, router)
	pipeline := query.NewPipeline(history, stores.Usage, cfg.Quota, cfg.RAG.Mode, completer, cfg.RAG.DebugLogDir)
	agentRunner := query.NewAgentRunner(history, stores.Usage, cfg.Quota, cfg.RAG.Mode, orchestrator)
	retriever := query.NewRetriever(documentService, stores.Documents)

	server := httpapi.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort), httpapi.Deps{
		Auth:      authService,
		Store:     stores,
		Pipeline:  pipeline,
		Agent:     agentRunner,
		Retriever: retriever,
		Service:   documentService,
		Models:    cfg.LLM,
		Mode:      cfg.RAG.Mode,
		CORS:      []string{"*"},
		Logger:    logger,
	})

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	logger.Info("nexus HTTP API started", "addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("nexus HTTP API stopped gracefully")
	return nil
}

// buildProviders constructs one agent.LLMProvider per configured family.
// Each provider is single-model-family; query.ProviderRouter resolves a
// registered model name to the right one of these at request time.
func buildProviders(cfg config.LLMProvidersConfig) (map[string]agent.LLMProvider, error) {
	out := make(map[string]agent.LLMProvider)

	if cfg.Anthropic.APIKey != "" {
		p, err := providers.NewAnthropicProvider(providers.AnthropicConfig{APIKey: cfg.Anthropic.APIKey})
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		out["anthropic"] = p
	}
	if cfg.OpenAI.APIKey != "" {
		out["openai"] = providers.NewOpenAIProvider(cfg.OpenAI.APIKey)
	}
	if cfg.Ollama.BaseURL != "" {
		out["ollama"] = providers.NewOllamaProvider(providers.OllamaConfig{
			BaseURL:     cfg.Ollama.BaseURL,
			Temperature: cfg.Ollama.Temperature,
			NumCtx:      cfg.Ollama.NumCtx,
		})
	}
	return out, nil
}

// defaultExecTimeout bounds how long a single execute_code invocation may
// run before the tool's sandboxed process is killed.
const defaultExecTimeout = 30 * time.Second

// buildToolRegistry registers every C4 retrieval/graph tool plus the
// execute_code sandbox tool the agent orchestrator can call, gating
// knowledge_graph_query/graph_api_retrieve against the configured graph
// mode so exactly one is ever advertised.
func buildToolRegistry(service rag.DocumentService, stores store.Set, ragCfg config.RAGConfig, serverCfg config.ServerConfig) *agent.ToolRegistry {
	registry := agent.NewToolRegistry()

	registry.Register(rag.NewRetrieveChunksTool(service, auth.FromContext))
	registry.Register(rag.NewRetrieveDocumentTool(stores.Documents, service, auth.FromContext))
	registry.Register(rag.NewDocumentAnalyzerTool(stores.Documents, service, auth.FromContext))
	registry.Register(rag.NewListDocumentsTool(stores.Documents, auth.FromContext))
	registry.Register(rag.NewListGraphsTool(stores.Graphs, auth.FromContext))
	registry.Register(rag.NewSaveToMemoryTool(service, auth.FromContext))

	registry.Register(rag.NewKnowledgeGraphQueryTool(service, auth.FromContext), func() bool {
		return ragCfg.GraphMode == "local"
	})
	registry.Register(rag.NewGraphAPIRetrieveTool(service, auth.FromContext), func() bool {
		return ragCfg.GraphMode == "api"
	})

	workspace := serverCfg.ExecWorkspaceDir
	if workspace == "" {
		workspace = os.TempDir()
	}
	execManager := exec.NewManager(workspace)
	registry.Register(exec.NewCodeExecTool(execManager, defaultExecTimeout))

	return registry
}
