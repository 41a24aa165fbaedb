// Package httpapi is the C8 HTTP surface: a thin adapter mapping
// authenticated requests onto the C6 agent orchestrator, the C7 query
// pipeline, and the C2 metadata store. It carries no business logic of
// its own — every handler's job is request decoding, auth/permission
// checks that are unique to the wire contract, and response encoding.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/internal/query"
	"github.com/haasonsaas/nexus-rag/internal/store"
	"github.com/haasonsaas/nexus-rag/internal/tools/rag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps bundles the collaborators handlers need. Server owns none of their
// lifecycles except its own *http.Server.
type Deps struct {
	Auth      *auth.Service
	Store     store.Set
	Pipeline  *query.Pipeline
	Agent     *query.AgentRunner
	Retriever query.Retriever
	Service   rag.DocumentService
	Models    config.LLMConfig
	Mode      config.Mode
	CORS      []string
	Logger    *slog.Logger
}

// Server wraps an *http.Server over the mux built from Deps, following
// the gateway's own startHTTPServer/stopHTTPServer shape: Listen and
// Serve in a background goroutine, Shutdown on Stop with a fallback
// timeout if the caller passes a context with no deadline of its own.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server listening on addr. It does not start listening;
// call Start.
func New(addr string, deps Deps) *Server {
	mux := http.NewServeMux()
	registerRoutes(mux, deps)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handleHealthz)

	handler := loggingMiddleware(deps.Logger)(
		corsMiddleware(deps.CORS)(
			authMiddleware(deps.Auth, deps.Logger)(mux),
		),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: deps.Logger,
	}
}

// Start listens on the server's address and serves until ctx is
// cancelled or Stop is called. A clean shutdown returns nil
// (http.ErrServerClosed is not passed on); any other serve or shutdown
// error is returned.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if s.logger != nil {
			s.logger.Error("http server error", "error", err)
		}
		return err
	}
}

// Stop gracefully shuts the server down, falling back to a 5-second
// timeout if ctx carries no deadline of its own.
func (s *Server) Stop(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerRoutes(mux *http.ServeMux, deps Deps) {
	h := &handlers{deps: deps}

	mux.HandleFunc("POST /retrieve/chunks", h.retrieveChunks)
	mux.HandleFunc("POST /retrieve/chunks/grouped", h.retrieveChunksGrouped)
	mux.HandleFunc("POST /retrieve/docs", h.retrieveDocs)
	mux.HandleFunc("POST /batch/documents", h.batchDocuments)
	mux.HandleFunc("POST /batch/chunks", h.batchChunks)

	mux.HandleFunc("POST /query", h.query)
	mux.HandleFunc("POST /agent", h.agent)

	mux.HandleFunc("GET /chat/{chat_id}", h.getChat)
	mux.HandleFunc("GET /chats", h.listChats)
	mux.HandleFunc("PATCH /chats/{chat_id}/title", h.setChatTitle)

	mux.HandleFunc("POST /documents", h.createDocument)
	mux.HandleFunc("GET /documents/{id}", h.getDocument)
	mux.HandleFunc("GET /documents", h.listDocuments)
	mux.HandleFunc("DELETE /documents/{id}", h.deleteDocument)

	mux.HandleFunc("POST /folders", h.createFolder)
	mux.HandleFunc("GET /folders/{id}", h.getFolder)
	mux.HandleFunc("GET /folders", h.listFolders)
	mux.HandleFunc("DELETE /folders/{id}", h.deleteFolder)

	mux.HandleFunc("POST /graphs", h.createGraph)
	mux.HandleFunc("GET /graphs/{id}", h.getGraph)
	mux.HandleFunc("GET /graphs", h.listGraphs)
	mux.HandleFunc("DELETE /graphs/{id}", h.deleteGraph)

	mux.HandleFunc("POST /workflows", h.createWorkflow)
	mux.HandleFunc("GET /workflows/{id}", h.getWorkflow)
	mux.HandleFunc("GET /workflows", h.listWorkflows)

	mux.HandleFunc("GET /models", h.listModelConfigs)

	mux.HandleFunc("POST /local/generate_uri", h.localGenerateURI)
	mux.HandleFunc("POST /cloud/generate_uri", h.cloudGenerateURI)
	mux.HandleFunc("DELETE /cloud/apps", h.cloudDeleteApp)
}

type handlers struct {
	deps Deps
}
