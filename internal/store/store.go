// Package store is the Postgres-backed metadata store (documents, folders,
// graphs, chat conversations, workflows, and usage logs) behind the query
// pipeline and tool catalogue. It holds metadata only: document content,
// chunk embeddings, and graph construction are owned by an external
// retrieval collaborator this package never imports.
package store

import (
	"context"
	"time"

	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// Config configures connection pooling for the metadata store.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultConfig returns default connection pool settings.
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// DocumentStore persists Document metadata.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, auth models.AuthContext, id string) (*models.Document, error)
	GetByFilename(ctx context.Context, auth models.AuthContext, filename string, systemFilters map[string]any) (*models.Document, error)
	GetByIDs(ctx context.Context, auth models.AuthContext, ids []string) ([]*models.Document, error)
	List(ctx context.Context, auth models.AuthContext, metadataFilters, systemFilters map[string]any, limit, offset int) ([]*models.Document, error)
	Update(ctx context.Context, auth models.AuthContext, doc *models.Document) error
	Delete(ctx context.Context, auth models.AuthContext, id string) error
}

// FolderStore persists Folder metadata.
type FolderStore interface {
	Create(ctx context.Context, folder *models.Folder) error
	Get(ctx context.Context, auth models.AuthContext, id string) (*models.Folder, error)
	GetByName(ctx context.Context, auth models.AuthContext, name string) (*models.Folder, error)
	List(ctx context.Context, auth models.AuthContext) ([]*models.Folder, error)
	AddDocument(ctx context.Context, auth models.AuthContext, folderID, documentID string) error
	// Delete cascades to every document the folder owns when cascadeDocuments
	// is true, mirroring the folder-delete semantics of the original
	// implementation (folders own their documents' lifecycle).
	Delete(ctx context.Context, auth models.AuthContext, id string, cascadeDocuments bool) ([]string, error)
}

// GraphStore persists Graph metadata.
type GraphStore interface {
	Create(ctx context.Context, graph *models.Graph) error
	Get(ctx context.Context, auth models.AuthContext, id string) (*models.Graph, error)
	GetByName(ctx context.Context, auth models.AuthContext, name string) (*models.Graph, error)
	List(ctx context.Context, auth models.AuthContext) ([]*models.Graph, error)
	Delete(ctx context.Context, auth models.AuthContext, id string) error
}

// ChatStore persists ChatConversation history.
type ChatStore interface {
	Get(ctx context.Context, id string) (*models.ChatConversation, error)
	AppendMessages(ctx context.Context, id string, owner models.Owner, appID, endUserID string, msgs []models.Message) error
	// List returns conversation summaries (history omitted) scoped to auth,
	// most recently updated first, capped at limit (0 means the store's
	// default cap).
	List(ctx context.Context, auth models.AuthContext, limit int) ([]*models.ChatConversation, error)
	// SetTitle renames a conversation already scoped to auth's owner/app_id.
	SetTitle(ctx context.Context, auth models.AuthContext, id, title string) error
}

// WorkflowStore persists Workflow definitions and runs.
type WorkflowStore interface {
	Create(ctx context.Context, wf *models.Workflow) error
	Get(ctx context.Context, auth models.AuthContext, id string) (*models.Workflow, error)
	List(ctx context.Context, auth models.AuthContext) ([]*models.Workflow, error)
	CreateRun(ctx context.Context, run *models.WorkflowRun) error
	UpdateRun(ctx context.Context, run *models.WorkflowRun) error
	GetRun(ctx context.Context, id string) (*models.WorkflowRun, error)
}

// UsageStore persists the usage ledger and answers quota queries.
type UsageStore interface {
	Record(ctx context.Context, log *models.UsageLog) error
	// UsageSince sums queries/tokens recorded for (appID, entityID) at or
	// after since — the current billing period's start.
	UsageSince(ctx context.Context, appID, entityID string, since time.Time) (models.QuotaUsage, error)
}

// Set bundles every collaborator the query pipeline and tool catalogue need,
// plus a single Close for the pooled connection underneath them all.
type Set struct {
	Documents DocumentStore
	Folders   FolderStore
	Graphs    GraphStore
	Chats     ChatStore
	Workflows WorkflowStore
	Usage     UsageStore

	closer func() error
}

// Close releases the underlying connection pool.
func (s Set) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
