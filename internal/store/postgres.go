package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/haasonsaas/nexus-rag/internal/config"
)

// NewPostgresStoresFromDSN opens a pooled Postgres connection and returns
// every store collaborator backed by it.
func NewPostgresStoresFromDSN(dsn string, mode config.Mode, cfg *Config) (Set, error) {
	if strings.TrimSpace(dsn) == "" {
		return Set{}, fmt.Errorf("dsn is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return Set{}, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return Set{}, fmt.Errorf("ping database: %w", err)
	}

	return Set{
		Documents: &documentStore{db: db, mode: mode},
		Folders:   &folderStore{db: db, mode: mode},
		Graphs:    &graphStore{db: db, mode: mode},
		Chats:     &chatStore{db: db, mode: mode},
		Workflows: &workflowStore{db: db, mode: mode},
		Usage:     &usageStore{db: db},
		closer:    db.Close,
	}, nil
}

func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "23505")
}
