package config

import "time"

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host        string `yaml:"host"`
	HTTPPort    int    `yaml:"http_port"`
	MetricsPort int    `yaml:"metrics_port"`

	// ExecWorkspaceDir roots the execute_code tool's sandboxed workspace.
	ExecWorkspaceDir string `yaml:"exec_workspace_dir"`
}

// DatabaseConfig configures the Postgres/CockroachDB metadata store.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConnections  int           `yaml:"max_connections"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Mode selects between cloud multi-tenant behavior and self-hosted behavior.
type Mode string

const (
	ModeCloud      Mode = "cloud"
	ModeSelfHosted Mode = "self_hosted"
)

// RAGConfig controls tenant-mode behavior and graph tool resolution.
type RAGConfig struct {
	// Mode gates the end-user access-control shortcut (cloud only).
	Mode Mode `yaml:"mode"`

	// GraphMode selects which graph tool is advertised: "local" advertises
	// knowledge_graph_query, "api" advertises graph_api_retrieve. Exactly
	// one is ever available to the agent.
	GraphMode string `yaml:"graph_mode"`

	// GraphAPIBaseURL is the upstream used by the graph_api_retrieve tool
	// when GraphMode is "api".
	GraphAPIBaseURL string `yaml:"graph_api_base_url"`

	// DocumentServiceBaseURL is the upstream retrieval engine backing
	// rag.DocumentService: parsing, chunking, embedding, and vector search
	// all live there. Required in every mode — there is no in-process
	// implementation of document ingestion/retrieval in this tree.
	DocumentServiceBaseURL string `yaml:"document_service_base_url"`

	// MaxLoopIterations bounds the agent tool-call loop. Zero means no cap.
	MaxLoopIterations int `yaml:"max_loop_iterations"`

	// DebugLogDir is where message histories are dumped when a completion
	// provider reports a context-window-exceeded failure.
	DebugLogDir string `yaml:"debug_log_dir"`
}

// QuotaConfig controls per-tenant usage limits enforced before a query
// or agent turn is dispatched to a completion provider.
type QuotaConfig struct {
	Enabled            bool `yaml:"enabled"`
	MaxQueriesPerMonth int  `yaml:"max_queries_per_month"`
	MaxTokensPerMonth  int  `yaml:"max_tokens_per_month"`
}
