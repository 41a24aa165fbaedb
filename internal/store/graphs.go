package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

type graphStore struct {
	db   *sql.DB
	mode config.Mode
}

const graphColumns = `id, name, owner, access_control, system_metadata, document_ids, created_at, updated_at`

func (s *graphStore) scanGraph(row interface{ Scan(dest ...any) error }) (*models.Graph, error) {
	var g models.Graph
	var owner, acl, sysMeta []byte
	var docIDs []string
	if err := row.Scan(&g.ID, &g.Name, &owner, &acl, &sysMeta, pq.Array(&docIDs), &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.DocumentIDs = docIDs
	if len(owner) > 0 {
		if err := json.Unmarshal(owner, &g.Owner); err != nil {
			return nil, fmt.Errorf("unmarshal owner: %w", err)
		}
	}
	if len(acl) > 0 {
		if err := json.Unmarshal(acl, &g.AccessControl); err != nil {
			return nil, fmt.Errorf("unmarshal access_control: %w", err)
		}
	}
	if len(sysMeta) > 0 {
		if err := json.Unmarshal(sysMeta, &g.SystemMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal system_metadata: %w", err)
		}
	}
	return &g, nil
}

func (s *graphStore) Create(ctx context.Context, g *models.Graph) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("graph is required")
	}
	owner, err := json.Marshal(g.Owner)
	if err != nil {
		return fmt.Errorf("marshal owner: %w", err)
	}
	acl, err := json.Marshal(g.AccessControl)
	if err != nil {
		return fmt.Errorf("marshal access_control: %w", err)
	}
	sysMeta, err := json.Marshal(g.SystemMetadata)
	if err != nil {
		return fmt.Errorf("marshal system_metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO graphs (id, name, owner, access_control, system_metadata, document_ids, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		g.ID, g.Name, owner, acl, sysMeta, pq.Array(g.DocumentIDs), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create graph: %w", err)
	}
	return nil
}

func (s *graphStore) Get(ctx context.Context, who models.AuthContext, id string) (*models.Graph, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM graphs WHERE id = $1 AND (%s)`, graphColumns, access.Clause)
	g, err := s.scanGraph(s.db.QueryRowContext(ctx, query, append([]any{id}, access.Args...)...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get graph: %w", err)
	}
	return g, nil
}

func (s *graphStore) GetByName(ctx context.Context, who models.AuthContext, name string) (*models.Graph, error) {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`SELECT %s FROM graphs WHERE name = $1 AND (%s) ORDER BY updated_at DESC LIMIT 1`, graphColumns, access.Clause)
	g, err := s.scanGraph(s.db.QueryRowContext(ctx, query, append([]any{name}, access.Args...)...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get graph by name: %w", err)
	}
	return g, nil
}

func (s *graphStore) List(ctx context.Context, who models.AuthContext) ([]*models.Graph, error) {
	access := auth.BuildAccessFilter(who, s.mode, 1)
	query := fmt.Sprintf(`SELECT %s FROM graphs WHERE %s ORDER BY created_at DESC`, graphColumns, access.Clause)
	rows, err := s.db.QueryContext(ctx, query, access.Args...)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var graphs []*models.Graph
	for rows.Next() {
		g, err := s.scanGraph(rows)
		if err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

func (s *graphStore) Delete(ctx context.Context, who models.AuthContext, id string) error {
	access := auth.BuildAccessFilter(who, s.mode, 2)
	query := fmt.Sprintf(`DELETE FROM graphs WHERE id = $1 AND (%s)`, access.Clause)
	res, err := s.db.ExecContext(ctx, query, append([]any{id}, access.Args...)...)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete graph rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
